package config

import (
	"os"
	"time"
)

const (
	playbackDefaultSoundEnv = "PLAYBACK_DEFAULT_SOUND"
	playbackDefaultStopEnv  = "PLAYBACK_DEFAULT_STOP_MS"
	playbackSoundDirEnv     = "PLAYBACK_SOUND_DIR"

	defaultPlaybackSound = "bell"
)

// PlaybackConfig controls the sound queue. SoundDir empty means no
// clips are loaded and playback degrades to the no-op player.
type PlaybackConfig struct {
	DefaultSound string
	DefaultStop  time.Duration
	SoundDir     string
}

func LoadPlaybackConfig() *PlaybackConfig {
	sound := os.Getenv(playbackDefaultSoundEnv)
	if sound == "" {
		sound = defaultPlaybackSound
	}

	return &PlaybackConfig{
		DefaultSound: sound,
		DefaultStop:  millisEnv(playbackDefaultStopEnv, time.Second),
		SoundDir:     os.Getenv(playbackSoundDirEnv),
	}
}

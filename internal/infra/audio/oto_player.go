package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

// The oto context is process-global and created once, from the format of
// the first clip played. Clips with a different sample layout still play
// but may sound off; the registry logs a warning when loading them.
var (
	otoCtx     *oto.Context
	otoCtxOnce sync.Once
	otoCtxErr  error
)

type wavFormat struct {
	SampleRate int
	Channels   int
	BitDepth   int
}

type wavClip struct {
	name   string
	format wavFormat
	data   []byte
}

func (c *wavClip) Name() string { return c.name }

// OtoPlayer plays WAV clips through the system audio device. Clips are
// decoded at registration time so Play never touches the filesystem.
type OtoPlayer struct {
	mu    sync.Mutex
	clips map[string]*wavClip
}

func NewOtoPlayer() *OtoPlayer {
	return &OtoPlayer{clips: make(map[string]*wavClip)}
}

// LoadDir registers every .wav file in dir under its base name without
// the extension. Undecodable files are skipped with a warning.
func (p *OtoPlayer) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read sound directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".wav") {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), ".wav")
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			slog.Warn("failed to read sound file",
				slog.String("file", entry.Name()),
				slog.String("error", err.Error()),
			)
			continue
		}
		if err := p.Register(name, data); err != nil {
			slog.Warn("failed to register sound",
				slog.String("file", entry.Name()),
				slog.String("error", err.Error()),
			)
		}
	}
	return nil
}

// Register decodes wavData and stores it under name, replacing any
// previous clip with the same name.
func (p *OtoPlayer) Register(name string, wavData []byte) error {
	format, data, err := parseWAV(wavData)
	if err != nil {
		return fmt.Errorf("failed to parse wav data: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.clips[name] = &wavClip{name: name, format: format, data: data}

	slog.Debug("sound registered",
		slog.String("name", name),
		slog.Int("sample_rate", format.SampleRate),
		slog.Int("channels", format.Channels),
	)
	return nil
}

func (p *OtoPlayer) Resolve(name string) (Clip, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	clip, ok := p.clips[name]
	if !ok {
		return nil, ErrClipNotFound
	}
	return clip, nil
}

func (p *OtoPlayer) Play(clip Clip, volume float64, done func(err error)) (Playback, error) {
	wc, ok := clip.(*wavClip)
	if !ok {
		return nil, fmt.Errorf("unsupported clip type %T", clip)
	}

	if err := initContext(wc.format); err != nil {
		return nil, err
	}

	player := otoCtx.NewPlayer(bytes.NewReader(wc.data))
	player.SetVolume(volume)
	player.Play()

	pb := &otoPlayback{player: player, stop: make(chan struct{})}
	go pb.watch(done)
	return pb, nil
}

func initContext(format wavFormat) error {
	otoCtxOnce.Do(func() {
		ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
			SampleRate:   format.SampleRate,
			ChannelCount: format.Channels,
			Format:       oto.FormatSignedInt16LE,
		})
		if err != nil {
			otoCtxErr = fmt.Errorf("failed to initialize audio context: %w", err)
			return
		}
		<-ready
		otoCtx = ctx
		slog.Info("audio context initialized",
			slog.Int("sample_rate", format.SampleRate),
			slog.Int("channels", format.Channels),
		)
	})
	return otoCtxErr
}

type otoPlayback struct {
	player    *oto.Player
	stop      chan struct{}
	stopOnce  sync.Once
	closeOnce sync.Once
}

func (pb *otoPlayback) watch(done func(err error)) {
	for pb.player.IsPlaying() {
		select {
		case <-pb.stop:
			done(nil)
			return
		case <-time.After(10 * time.Millisecond):
		}
	}

	pb.close()
	done(nil)
}

func (pb *otoPlayback) Stop() {
	pb.stopOnce.Do(func() {
		close(pb.stop)
		pb.player.Pause()
		pb.close()
	})
}

func (pb *otoPlayback) close() {
	pb.closeOnce.Do(func() {
		if err := pb.player.Close(); err != nil {
			slog.Warn("failed to close audio player", slog.String("error", err.Error()))
		}
	})
}

func parseWAV(data []byte) (wavFormat, []byte, error) {
	reader := bytes.NewReader(data)

	header := make([]byte, 4)
	if _, err := io.ReadFull(reader, header); err != nil {
		return wavFormat{}, nil, fmt.Errorf("failed to read riff header: %w", err)
	}
	if string(header) != "RIFF" {
		return wavFormat{}, nil, fmt.Errorf("not a riff file")
	}
	if _, err := reader.Seek(4, io.SeekCurrent); err != nil {
		return wavFormat{}, nil, err
	}
	if _, err := io.ReadFull(reader, header); err != nil {
		return wavFormat{}, nil, fmt.Errorf("failed to read wave header: %w", err)
	}
	if string(header) != "WAVE" {
		return wavFormat{}, nil, fmt.Errorf("not a wave file")
	}

	var format wavFormat
	for {
		chunkID := make([]byte, 4)
		if _, err := io.ReadFull(reader, chunkID); err != nil {
			if err == io.EOF {
				return wavFormat{}, nil, fmt.Errorf("no data chunk found")
			}
			return wavFormat{}, nil, err
		}

		var chunkSize uint32
		if err := binary.Read(reader, binary.LittleEndian, &chunkSize); err != nil {
			return wavFormat{}, nil, err
		}

		switch string(chunkID) {
		case "fmt ":
			var audioFormat, numChannels uint16
			var sampleRate uint32
			binary.Read(reader, binary.LittleEndian, &audioFormat)
			binary.Read(reader, binary.LittleEndian, &numChannels)
			binary.Read(reader, binary.LittleEndian, &sampleRate)
			reader.Seek(6, io.SeekCurrent)
			var bitsPerSample uint16
			binary.Read(reader, binary.LittleEndian, &bitsPerSample)

			format.Channels = int(numChannels)
			format.SampleRate = int(sampleRate)
			format.BitDepth = int(bitsPerSample)

			if chunkSize > 16 {
				reader.Seek(int64(chunkSize-16), io.SeekCurrent)
			}
		case "data":
			audioData := make([]byte, chunkSize)
			if _, err := io.ReadFull(reader, audioData); err != nil {
				return wavFormat{}, nil, fmt.Errorf("failed to read audio data: %w", err)
			}
			if format.SampleRate == 0 {
				return wavFormat{}, nil, fmt.Errorf("data chunk before fmt chunk")
			}
			return format, audioData, nil
		default:
			if _, err := reader.Seek(int64(chunkSize), io.SeekCurrent); err != nil {
				return wavFormat{}, nil, err
			}
		}
	}
}

package config

import (
	"os"
	"strconv"
	"time"
)

const (
	fireLookbackEnv = "FIRE_LOOKBACK_MS"
	fireWindowEnv   = "FIRE_WINDOW_MS"

	defaultFireLookback = 500 * time.Millisecond
	defaultFireWindow   = 5 * time.Second
)

// FireConfig bounds the due window of the fire handler: a wake-up
// services every action inside [now-Lookback, now+Window].
type FireConfig struct {
	Lookback time.Duration
	Window   time.Duration
}

func LoadFireConfig() *FireConfig {
	return &FireConfig{
		Lookback: millisEnv(fireLookbackEnv, defaultFireLookback),
		Window:   millisEnv(fireWindowEnv, defaultFireWindow),
	}
}

func millisEnv(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	ms, err := strconv.Atoi(raw)
	if err != nil || ms <= 0 {
		return fallback
	}
	return time.Duration(ms) * time.Millisecond
}

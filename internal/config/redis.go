package config

import (
	"os"
	"strconv"
)

const (
	redisAddrEnv     = "REDIS_ADDR"
	redisPasswordEnv = "REDIS_PASSWORD"
	redisDBEnv       = "REDIS_DB"

	defaultRedisDB = 0
)

// RedisConfig has no default address on purpose: an empty Addr selects
// memory-only mode, which is the desktop/local way to run the service.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

func LoadRedisConfig() (*RedisConfig, error) {
	db := defaultRedisDB
	if raw := os.Getenv(redisDBEnv); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return nil, ErrInvalidRedisDB
		}
		db = parsed
	}

	return &RedisConfig{
		Addr:     os.Getenv(redisAddrEnv),
		Password: os.Getenv(redisPasswordEnv),
		DB:       db,
	}, nil
}

func (c *RedisConfig) Enabled() bool {
	return c != nil && c.Addr != ""
}

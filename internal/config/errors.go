package config

import "errors"

var ErrInvalidRedisDB = errors.New("REDIS_DB must be a valid integer")

package repository

import "errors"

var ErrInvalidActionData = errors.New("invalid action data")

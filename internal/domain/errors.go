package domain

import "errors"

var (
	ErrActionNotFound   = errors.New("action not found")
	ErrInvalidRequestID = errors.New("request id must be positive")
	ErrInvalidInterval  = errors.New("interval seconds must be positive for interval mode")
)

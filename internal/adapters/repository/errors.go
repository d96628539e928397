package repository

import "errors"

// Sentinel errors returned by stores.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid repository input")
)

package repository

import "errors"

var (
	// ErrUnavailable means the backend could not be reached or read.
	ErrUnavailable = errors.New("entry store unavailable")
	// ErrWriteFailed means the write was rejected or aborted; nothing was persisted.
	ErrWriteFailed = errors.New("entry store write failed")
)

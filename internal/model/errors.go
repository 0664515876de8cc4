package model

import (
	"errors"
	"fmt"
)

// ErrInvalidInput rejects malformed call arguments before the cascade runs
var ErrInvalidInput = errors.New("invalid input")

// DatasetLoadError reports a failed dataset load. It is non-fatal: the
// matcher degrades to always-miss and the cascade continues past it.
type DatasetLoadError struct {
	Path string
	Err  error
}

func (e *DatasetLoadError) Error() string {
	return fmt.Sprintf("failed to load dataset %s: %v", e.Path, e.Err)
}

func (e *DatasetLoadError) Unwrap() error { return e.Err }

// Generative service errors. Each kind maps to a distinct user-facing
// apology chosen by the resolver; none of them may escape to the transport.
var (
	ErrRateLimit      = errors.New("generative service rate limited")
	ErrInvalidRequest = errors.New("generative service rejected request")
	ErrService        = errors.New("generative service unavailable")
)

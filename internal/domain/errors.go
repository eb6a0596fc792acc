package domain

import "errors"

var (
	ErrUnknownContact  = errors.New("unknown contact")
	ErrUnknownEvent    = errors.New("unknown event category")
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionLimit    = errors.New("session limit reached")
	ErrStopped         = errors.New("visualizer stopped")
)

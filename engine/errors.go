package engine

import "errors"

var (
	// ErrUnknownVoice is returned for voice kinds without a builder.
	ErrUnknownVoice = errors.New("engine: unknown voice")
	// ErrInvalidParams is returned when voice parameters are out of range.
	ErrInvalidParams = errors.New("engine: invalid voice parameters")
)

package device

import "errors"

var (
	// ErrUnavailable is returned when the backend cannot open an output.
	ErrUnavailable = errors.New("device: audio output unavailable")
	// ErrStarted is returned when Start is called twice.
	ErrStarted = errors.New("device: already started")
)

package graph

import "errors"

var (
	// ErrAlreadyStarted is returned when a source is started twice.
	ErrAlreadyStarted = errors.New("graph: source already started")
	// ErrNotStarted is returned when stopping a source that never started.
	ErrNotStarted = errors.New("graph: source not started")
	// ErrAlreadyStopped is returned when stopping a source that has ended.
	ErrAlreadyStopped = errors.New("graph: source already stopped")
	// ErrInvalidParam is returned for non-finite automation values or times.
	ErrInvalidParam = errors.New("graph: invalid parameter value")
	// ErrContextMismatch is returned when connecting nodes of different contexts.
	ErrContextMismatch = errors.New("graph: nodes belong to different contexts")
	// ErrNoOutput is returned when connecting from the destination.
	ErrNoOutput = errors.New("graph: node has no output")
)

package graph

// source tracks the start/stop schedule shared by scheduled source nodes.
type source struct {
	started    bool
	ended      bool
	startFrame int64
	stopFrame  int64
	onEnded    []func()
}

func (s *source) start(ctx *Context, when float64) error {
	if s.started {
		return ErrAlreadyStarted
	}
	if !finite(when) {
		return ErrInvalidParam
	}
	s.started = true
	s.startFrame = ctx.frameAt(when)
	s.stopFrame = -1
	return nil
}

func (s *source) stop(ctx *Context, when float64) error {
	if !s.started {
		return ErrNotStarted
	}
	if s.ended {
		return ErrAlreadyStopped
	}
	if !finite(when) {
		return ErrInvalidParam
	}
	f := ctx.frameAt(when)
	if f < s.startFrame {
		f = s.startFrame
	}
	s.stopFrame = f
	return nil
}

// playing reports whether frame f lies inside the scheduled window.
func (s *source) playing(f int64) bool {
	if !s.started || s.ended || f < s.startFrame {
		return false
	}
	return s.stopFrame < 0 || f < s.stopFrame
}

// finish marks the source ended once the quantum ending at endFrame has
// passed its stop frame and queues the ended callbacks.
func (s *source) finish(ctx *Context, endFrame int64) {
	if s.ended || !s.started || s.stopFrame < 0 || endFrame < s.stopFrame {
		return
	}
	s.ended = true
	ctx.enqueue(s.onEnded)
	s.onEnded = nil
}

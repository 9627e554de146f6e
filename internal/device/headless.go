package device

import (
	"sync"
	"time"
)

// Headless renders at real-time pace without producing sound.
type Headless struct {
	sampleRate int
	period     time.Duration

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

// NewHeadless creates a backend that renders sampleRate frames per second
// in chunks of period.
func NewHeadless(sampleRate int, period time.Duration) *Headless {
	if period <= 0 {
		period = 10 * time.Millisecond
	}
	return &Headless{sampleRate: sampleRate, period: period}
}

// Name implements the engine output contract.
func (h *Headless) Name() string { return "headless" }

// Start launches the render loop.
func (h *Headless) Start(render func([]float32)) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.stop != nil {
		return ErrStarted
	}
	if h.sampleRate <= 0 {
		return ErrUnavailable
	}

	frames := int(int64(h.sampleRate) * int64(h.period) / int64(time.Second))
	if frames < 1 {
		frames = 1
	}
	h.stop = make(chan struct{})
	h.done = make(chan struct{})
	go h.loop(render, make([]float32, 2*frames), h.stop, h.done)
	return nil
}

func (h *Headless) loop(render func([]float32), buf []float32, stop, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(h.period)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			render(buf)
		}
	}
}

// Close stops the render loop and waits for it to exit.
func (h *Headless) Close() error {
	h.mu.Lock()
	stop, done := h.stop, h.done
	h.stop, h.done = nil, nil
	h.mu.Unlock()

	if stop == nil {
		return nil
	}
	close(stop)
	<-done
	return nil
}

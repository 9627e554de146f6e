package graph

import (
	"fmt"
	"math"
)

// Buffer holds decoded or generated audio for a BufferSource.
type Buffer struct {
	sampleRate float64
	data       [][]float64
}

// NewBuffer allocates a silent buffer of one or two channels.
func NewBuffer(channels, frames int, sampleRate float64) (*Buffer, error) {
	if channels < 1 || channels > 2 {
		return nil, fmt.Errorf("buffer channels must be 1 or 2: %d", channels)
	}
	if frames <= 0 {
		return nil, fmt.Errorf("buffer frames must be > 0: %d", frames)
	}
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("buffer sample rate must be > 0: %f", sampleRate)
	}
	b := &Buffer{sampleRate: sampleRate, data: make([][]float64, channels)}
	for i := range b.data {
		b.data[i] = make([]float64, frames)
	}
	return b, nil
}

// NewMonoBuffer wraps samples as a one-channel buffer without copying.
func NewMonoBuffer(samples []float64, sampleRate float64) (*Buffer, error) {
	if len(samples) == 0 {
		return nil, fmt.Errorf("buffer frames must be > 0: %d", len(samples))
	}
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("buffer sample rate must be > 0: %f", sampleRate)
	}
	return &Buffer{sampleRate: sampleRate, data: [][]float64{samples}}, nil
}

// Channel returns the samples of channel i for in-place editing.
func (b *Buffer) Channel(i int) []float64 { return b.data[i] }

// Channels returns the channel count.
func (b *Buffer) Channels() int { return len(b.data) }

// Len returns the length in frames.
func (b *Buffer) Len() int { return len(b.data[0]) }

// SampleRate returns the buffer sample rate in Hz.
func (b *Buffer) SampleRate() float64 { return b.sampleRate }

// Duration returns the buffer length in seconds.
func (b *Buffer) Duration() float64 { return float64(b.Len()) / b.sampleRate }

// BufferSource plays a Buffer once. Buffers recorded at a different rate
// are resampled by linear interpolation.
type BufferSource struct {
	node
	source

	buffer *Buffer
}

// NewBufferSource creates a source for buf.
func (c *Context) NewBufferSource(buf *Buffer) *BufferSource {
	s := &BufferSource{buffer: buf}
	s.init(c, s)
	return s
}

// Start schedules playback at when. Times in the past start immediately.
func (s *BufferSource) Start(when float64) error {
	s.ctx.mu.Lock()
	defer s.ctx.mu.Unlock()
	return s.start(s.ctx, when)
}

// Stop schedules the end of playback at when.
func (s *BufferSource) Stop(when float64) error {
	s.ctx.mu.Lock()
	defer s.ctx.mu.Unlock()
	return s.stop(s.ctx, when)
}

// OnEnded registers fn to run once playback has stopped.
func (s *BufferSource) OnEnded(fn func()) {
	s.ctx.mu.Lock()
	defer s.ctx.mu.Unlock()
	if fn != nil {
		s.onEnded = append(s.onEnded, fn)
	}
}

// Ended reports whether playback has stopped.
func (s *BufferSource) Ended() bool {
	s.ctx.mu.Lock()
	defer s.ctx.mu.Unlock()
	return s.ended
}

func (s *BufferSource) process() {
	start := s.ctx.frame
	n := len(s.out.L)
	s.out.Channels = s.buffer.Channels()

	ratio := s.buffer.sampleRate / s.ctx.cfg.SampleRate
	frames := int64(math.Ceil(float64(s.buffer.Len()) / ratio))
	if s.started && (s.stopFrame < 0 || s.stopFrame > s.startFrame+frames) {
		s.stopFrame = s.startFrame + frames
	}

	for i := 0; i < n; i++ {
		f := start + int64(i)
		if !s.playing(f) {
			s.out.L[i], s.out.R[i] = 0, 0
			continue
		}
		pos := float64(f-s.startFrame) * ratio
		s.out.L[i] = sampleAt(s.buffer.data[0], pos)
		if s.out.Channels == 2 {
			s.out.R[i] = sampleAt(s.buffer.data[1], pos)
		}
	}
	s.finish(s.ctx, start+int64(n))
}

func sampleAt(data []float64, pos float64) float64 {
	i := int(pos)
	if i >= len(data) {
		return 0
	}
	frac := pos - float64(i)
	if frac == 0 || i+1 >= len(data) {
		return data[i]
	}
	return data[i] + (data[i+1]-data[i])*frac
}

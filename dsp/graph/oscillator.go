package graph

import (
	"github.com/cwbudde/quantum-sounds/dsp/signal"
)

// Oscillator is a scheduled periodic source producing a mono signal.
type Oscillator struct {
	node
	source

	wave      signal.Waveform
	frequency *Param
	phase     float64
}

// NewOscillator creates an oscillator of the given shape at 440 Hz.
func (c *Context) NewOscillator(w signal.Waveform) *Oscillator {
	o := &Oscillator{wave: w}
	o.init(c, o)
	nyquist := c.cfg.SampleRate / 2
	o.frequency = newParam(c, "frequency", 440, -nyquist, nyquist)
	return o
}

// Frequency returns the frequency parameter in Hz.
func (o *Oscillator) Frequency() *Param { return o.frequency }

// Type returns the waveform shape.
func (o *Oscillator) Type() signal.Waveform {
	o.ctx.mu.Lock()
	defer o.ctx.mu.Unlock()
	return o.wave
}

// SetType switches the waveform shape without resetting the phase.
func (o *Oscillator) SetType(w signal.Waveform) {
	o.ctx.mu.Lock()
	defer o.ctx.mu.Unlock()
	o.wave = w
}

// Start schedules playback at when. Times in the past start immediately.
func (o *Oscillator) Start(when float64) error {
	o.ctx.mu.Lock()
	defer o.ctx.mu.Unlock()
	return o.start(o.ctx, when)
}

// Stop schedules the end of playback at when.
func (o *Oscillator) Stop(when float64) error {
	o.ctx.mu.Lock()
	defer o.ctx.mu.Unlock()
	return o.stop(o.ctx, when)
}

// OnEnded registers fn to run once playback has stopped.
func (o *Oscillator) OnEnded(fn func()) {
	o.ctx.mu.Lock()
	defer o.ctx.mu.Unlock()
	if fn != nil {
		o.onEnded = append(o.onEnded, fn)
	}
}

// Ended reports whether playback has stopped.
func (o *Oscillator) Ended() bool {
	o.ctx.mu.Lock()
	defer o.ctx.mu.Unlock()
	return o.ended
}

func (o *Oscillator) process() {
	start := o.ctx.frame
	n := len(o.out.L)
	freq := o.frequency.fill(start)
	step := 1 / o.ctx.cfg.SampleRate

	o.out.Channels = 1
	for i := 0; i < n; i++ {
		if !o.playing(start + int64(i)) {
			o.out.L[i] = 0
			continue
		}
		o.out.L[i] = o.wave.At(o.phase)
		o.phase = signal.WrapPhase(o.phase + freq[i]*step)
	}
	o.finish(o.ctx, start+int64(n))
}

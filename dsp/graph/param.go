package graph

import (
	"math"
	"sort"

	"github.com/cwbudde/quantum-sounds/dsp/core"
)

type eventKind int

const (
	eventSet eventKind = iota
	eventLinear
	eventExponential
)

type event struct {
	kind  eventKind
	time  float64
	value float64
}

// Param is an automatable, audio-rate parameter.
//
// Without scheduled events a Param holds its intrinsic value. Ramps
// interpolate from the previous event towards their own target and
// complete at their own time; a ramp scheduled without any earlier event
// starts from the value held at the moment it was scheduled.
type Param struct {
	ctx      *Context
	name     string
	value    float64
	min, max float64
	events   []event
	inputs   []Node
	values   []float64
}

func newParam(ctx *Context, name string, value, minValue, maxValue float64) *Param {
	return &Param{
		ctx:    ctx,
		name:   name,
		value:  value,
		min:    minValue,
		max:    maxValue,
		values: make([]float64, ctx.cfg.BlockSize),
	}
}

// Name returns the parameter name.
func (p *Param) Name() string { return p.name }

// Value returns the automated value at the current audio clock.
func (p *Param) Value() float64 {
	p.ctx.mu.Lock()
	defer p.ctx.mu.Unlock()
	return p.clamp(p.valueAt(p.ctx.now()))
}

// ValueAt returns the automated value at time t, ignoring modulation inputs.
// Events that elapsed before the current quantum are discarded, so t should
// not lie in the rendered past.
func (p *Param) ValueAt(t float64) float64 {
	p.ctx.mu.Lock()
	defer p.ctx.mu.Unlock()
	return p.clamp(p.valueAt(t))
}

// SetValue sets the intrinsic value. When automation is present it is
// equivalent to SetValueAtTime(v, now).
func (p *Param) SetValue(v float64) error {
	if !finite(v) {
		return ErrInvalidParam
	}
	p.ctx.mu.Lock()
	defer p.ctx.mu.Unlock()
	p.value = v
	if len(p.events) > 0 {
		p.insert(event{kind: eventSet, time: p.ctx.now(), value: v})
	}
	return nil
}

// SetValueAtTime schedules an instantaneous change to v at time t.
func (p *Param) SetValueAtTime(v, t float64) error {
	if !finite(v) || !finite(t) || t < 0 {
		return ErrInvalidParam
	}
	p.ctx.mu.Lock()
	defer p.ctx.mu.Unlock()
	p.insert(event{kind: eventSet, time: t, value: v})
	return nil
}

// LinearRampToValueAtTime schedules a linear ramp reaching v at time t.
func (p *Param) LinearRampToValueAtTime(v, t float64) error {
	if !finite(v) || !finite(t) || t < 0 {
		return ErrInvalidParam
	}
	p.ctx.mu.Lock()
	defer p.ctx.mu.Unlock()
	p.anchor()
	p.insert(event{kind: eventLinear, time: t, value: v})
	return nil
}

// ExponentialRampToValueAtTime schedules an exponential ramp reaching v at
// time t. v must be non-zero.
func (p *Param) ExponentialRampToValueAtTime(v, t float64) error {
	if !finite(v) || v == 0 || !finite(t) || t < 0 {
		return ErrInvalidParam
	}
	p.ctx.mu.Lock()
	defer p.ctx.mu.Unlock()
	p.anchor()
	p.insert(event{kind: eventExponential, time: t, value: v})
	return nil
}

// CancelScheduledValues removes every event scheduled at or after t.
func (p *Param) CancelScheduledValues(t float64) error {
	if !finite(t) {
		return ErrInvalidParam
	}
	p.ctx.mu.Lock()
	defer p.ctx.mu.Unlock()
	p.truncate(t)
	return nil
}

// CancelAndHoldAtTime removes every event at or after t and holds the
// value the automation had reached at t, including a ramp in progress.
func (p *Param) CancelAndHoldAtTime(t float64) error {
	if !finite(t) {
		return ErrInvalidParam
	}
	p.ctx.mu.Lock()
	defer p.ctx.mu.Unlock()
	held := p.valueAt(t)
	p.truncate(t)
	p.insert(event{kind: eventSet, time: t, value: held})
	return nil
}

// anchor records the current value as a set event when a ramp would
// otherwise have nothing to start from.
func (p *Param) anchor() {
	if len(p.events) == 0 {
		p.insert(event{kind: eventSet, time: p.ctx.now(), value: p.value})
	}
}

func (p *Param) insert(e event) {
	i := sort.Search(len(p.events), func(i int) bool { return p.events[i].time > e.time })
	p.events = append(p.events, event{})
	copy(p.events[i+1:], p.events[i:])
	p.events[i] = e
}

func (p *Param) truncate(t float64) {
	i := sort.Search(len(p.events), func(i int) bool { return p.events[i].time >= t })
	p.events = p.events[:i]
}

// prune drops events that can no longer affect values at or after t. The
// last event at or before t is kept as the start of what follows.
func (p *Param) prune(t float64) {
	i := sort.Search(len(p.events), func(i int) bool { return p.events[i].time > t })
	if i > 1 {
		p.events = append(p.events[:0], p.events[i-1:]...)
	}
}

func (p *Param) valueAt(t float64) float64 {
	i := sort.Search(len(p.events), func(i int) bool { return p.events[i].time > t })

	prevValue, prevTime := p.value, 0.0
	hasPrev := i > 0
	if hasPrev {
		prevValue = p.events[i-1].value
		prevTime = p.events[i-1].time
	}
	if i == len(p.events) {
		return prevValue
	}

	next := p.events[i]
	if !hasPrev {
		return prevValue
	}
	frac := (t - prevTime) / (next.time - prevTime)
	switch next.kind {
	case eventLinear:
		return prevValue + (next.value-prevValue)*frac
	case eventExponential:
		if prevValue == 0 || prevValue*next.value < 0 {
			return prevValue
		}
		return prevValue * math.Pow(next.value/prevValue, frac)
	default:
		return prevValue
	}
}

func (p *Param) clamp(v float64) float64 {
	return core.Clamp(v, p.min, p.max)
}

// fill evaluates the parameter for every frame of the current quantum.
// Must be called with the context lock held.
func (p *Param) fill(startFrame int64) []float64 {
	sr := p.ctx.cfg.SampleRate
	p.prune(float64(startFrame) / sr)
	if len(p.events) == 0 || p.events[len(p.events)-1].time <= float64(startFrame)/sr {
		v := p.value
		if len(p.events) > 0 {
			v = p.events[len(p.events)-1].value
		}
		for i := range p.values {
			p.values[i] = v
		}
	} else {
		for i := range p.values {
			p.values[i] = p.valueAt(float64(startFrame+int64(i)) / sr)
		}
	}

	for _, in := range p.inputs {
		b := p.ctx.pull(in)
		for i := range p.values {
			p.values[i] += b.monoAt(i)
		}
	}
	for i, v := range p.values {
		p.values[i] = p.clamp(v)
	}
	return p.values
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

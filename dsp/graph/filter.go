package graph

import (
	"fmt"

	"github.com/cwbudde/quantum-sounds/dsp/filter/biquad"
	"github.com/cwbudde/quantum-sounds/dsp/filter/design"
)

// FilterType selects the response of a BiquadFilter.
type FilterType int

const (
	Lowpass FilterType = iota
	Highpass
	Bandpass
)

func (t FilterType) String() string {
	switch t {
	case Lowpass:
		return "lowpass"
	case Highpass:
		return "highpass"
	case Bandpass:
		return "bandpass"
	default:
		return fmt.Sprintf("filter(%d)", int(t))
	}
}

func (t FilterType) coefficients(freq, q, sampleRate float64) biquad.Coefficients {
	switch t {
	case Highpass:
		return design.Highpass(freq, q, sampleRate)
	case Bandpass:
		return design.Bandpass(freq, q, sampleRate)
	default:
		return design.Lowpass(freq, q, sampleRate)
	}
}

// BiquadFilter is a second-order filter whose cutoff and Q are automatable.
// Coefficients are recomputed per sample while either parameter moves.
type BiquadFilter struct {
	node

	kind      FilterType
	frequency *Param
	q         *Param

	left, right     *biquad.Section
	lastF, lastQ    float64
	hasCoefficients bool
}

// NewBiquadFilter creates a filter at 350 Hz with Butterworth Q.
func (c *Context) NewBiquadFilter(t FilterType) *BiquadFilter {
	f := &BiquadFilter{kind: t}
	f.init(c, f)
	f.frequency = newParam(c, "frequency", 350, 0, c.cfg.SampleRate/2)
	f.q = newParam(c, "Q", design.DefaultQ, 1e-4, 1000)
	f.left = biquad.NewSection(biquad.Coefficients{B0: 1})
	f.right = biquad.NewSection(biquad.Coefficients{B0: 1})
	return f
}

// Frequency returns the cutoff or centre frequency parameter in Hz.
func (f *BiquadFilter) Frequency() *Param { return f.frequency }

// Q returns the quality factor parameter.
func (f *BiquadFilter) Q() *Param { return f.q }

// Type returns the filter response.
func (f *BiquadFilter) Type() FilterType { return f.kind }

func (f *BiquadFilter) process() {
	f.ctx.mixInputs(&f.node, &f.out)
	freq := f.frequency.fill(f.ctx.frame)
	q := f.q.fill(f.ctx.frame)

	for i := range f.out.L {
		if !f.hasCoefficients || freq[i] != f.lastF || q[i] != f.lastQ {
			c := f.kind.coefficients(freq[i], q[i], f.ctx.cfg.SampleRate)
			f.left.SetCoefficients(c)
			f.right.SetCoefficients(c)
			f.lastF, f.lastQ = freq[i], q[i]
			f.hasCoefficients = true
		}
		f.out.L[i] = f.left.ProcessSample(f.out.L[i])
		if f.out.Channels == 2 {
			f.out.R[i] = f.right.ProcessSample(f.out.R[i])
		}
	}
}

package graph

import (
	"math"

	"github.com/cwbudde/quantum-sounds/dsp/core"
)

// StereoPanner positions its input in the stereo field with the
// equal-power law. Its output is always stereo.
type StereoPanner struct {
	node
	pan *Param
}

// NewStereoPanner creates a centred panner.
func (c *Context) NewStereoPanner() *StereoPanner {
	p := &StereoPanner{}
	p.init(c, p)
	p.pan = newParam(c, "pan", 0, -1, 1)
	return p
}

// Pan returns the pan parameter in [-1, 1], -1 being fully left.
func (p *StereoPanner) Pan() *Param { return p.pan }

func (p *StereoPanner) process() {
	p.ctx.mixInputs(&p.node, &p.mix)
	pan := p.pan.fill(p.ctx.frame)
	in := &p.mix

	for i := range p.out.L {
		if in.Channels == 1 {
			l, r := core.EqualPowerGains((pan[i] + 1) / 2)
			p.out.L[i] = in.L[i] * l
			p.out.R[i] = in.L[i] * r
			continue
		}

		// Stereo input keeps the near channel and folds the far one in.
		x := pan[i]
		if x <= 0 {
			x++
		}
		theta := x * math.Pi / 2
		gl, gr := math.Cos(theta), math.Sin(theta)
		if pan[i] <= 0 {
			p.out.L[i] = in.L[i] + in.R[i]*gl
			p.out.R[i] = in.R[i] * gr
		} else {
			p.out.L[i] = in.L[i] * gl
			p.out.R[i] = in.R[i] + in.L[i]*gr
		}
	}
	p.out.Channels = 2
}

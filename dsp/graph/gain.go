package graph

import (
	"math"

	vecmath "github.com/cwbudde/algo-vecmath"
)

// Gain scales its summed input by an automatable factor.
type Gain struct {
	node
	gain *Param
}

// NewGain creates a unity gain node.
func (c *Context) NewGain() *Gain {
	g := &Gain{}
	g.init(c, g)
	g.gain = newParam(c, "gain", 1, math.Inf(-1), math.Inf(1))
	return g
}

// Gain returns the gain parameter.
func (g *Gain) Gain() *Param { return g.gain }

func (g *Gain) process() {
	g.ctx.mixInputs(&g.node, &g.out)
	gain := g.gain.fill(g.ctx.frame)

	vecmath.MulBlockInPlace(g.out.L, gain)
	if g.out.Channels == 2 {
		vecmath.MulBlockInPlace(g.out.R, gain)
	}
}

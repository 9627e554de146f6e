package engine

import (
	"errors"
	"log"

	"github.com/cwbudde/quantum-sounds/dsp/graph"
)

const (
	// stopGrace delays source stops so in-flight ramps can settle.
	stopGrace = 0.1
	// disconnectGrace delays disconnection past the stop.
	disconnectGrace = 0.2
)

type stopper interface {
	Stop(when float64) error
}

// Registry tracks the voices that must be torn down before the next
// registered voice starts.
type Registry struct {
	voices []*Voice
}

// Add registers v as active.
func (r *Registry) Add(v *Voice) {
	r.voices = append(r.voices, v)
}

// Active returns the registered voices.
func (r *Registry) Active() []*Voice {
	out := make([]*Voice, len(r.voices))
	copy(out, r.voices)
	return out
}

// Len returns the number of registered voices.
func (r *Registry) Len() int { return len(r.voices) }

// biasVoice returns the active bias-sensitive voice, if any.
func (r *Registry) biasVoice() *Voice {
	for _, v := range r.voices {
		if v.kind.BiasSensitive() {
			return v
		}
	}
	return nil
}

// TeardownAll fades the output gains of every registered voice from their
// current value to zero over stopGrace seconds, stops every source once
// the fade ends and disconnects every node disconnectGrace seconds from
// now, then clears the registry. Sources that already ended are ignored.
func (r *Registry) TeardownAll(ctx *graph.Context, logger *log.Logger) {
	if len(r.voices) == 0 {
		return
	}

	now := ctx.CurrentTime()
	var nodes []graph.Node
	for _, v := range r.voices {
		for _, g := range v.outputs {
			glide(g.Gain(), 0, now, stopGrace)
		}
		for _, n := range v.nodes {
			if s, ok := n.(stopper); ok {
				err := s.Stop(now + stopGrace)
				if err != nil && !errors.Is(err, graph.ErrAlreadyStopped) && !errors.Is(err, graph.ErrNotStarted) {
					logger.Printf("teardown %s: %v", v.kind, err)
				}
			}
		}
		nodes = append(nodes, v.nodes...)
	}

	ctx.At(now+disconnectGrace, func() {
		for _, n := range nodes {
			n.Disconnect()
		}
	})
	r.voices = nil
}

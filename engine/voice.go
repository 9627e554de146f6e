package engine

import (
	"fmt"

	"github.com/cwbudde/quantum-sounds/dsp/graph"
)

// Kind identifies a voice.
type Kind int

const (
	Superposition Kind = iota
	Navigation
	Tunneling
	TunnelResult
	Interference
	Collapse
	Tutorial
	Feedback
)

var kindNames = map[Kind]string{
	Superposition: "superposition",
	Navigation:    "navigation",
	Tunneling:     "tunneling",
	TunnelResult:  "tunnel-result",
	Interference:  "interference",
	Collapse:      "collapse",
	Tutorial:      "tutorial",
	Feedback:      "feedback",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("voice(%d)", int(k))
}

// ParseKind maps a voice name onto a Kind.
func ParseKind(name string) (Kind, error) {
	for k, n := range kindNames {
		if n == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownVoice, name)
}

// OneShot reports whether the voice stops by itself and bypasses the
// registry.
func (k Kind) OneShot() bool {
	switch k {
	case TunnelResult, Collapse, Tutorial, Feedback:
		return true
	default:
		return false
	}
}

// BiasSensitive reports whether the voice follows SetBalance.
func (k Kind) BiasSensitive() bool {
	return k == Superposition || k == Navigation
}

// Side is a stereo side for tutorial tones.
type Side int

const (
	Left Side = iota
	Right
)

func (s Side) String() string {
	if s == Right {
		return "right"
	}
	return "left"
}

// ParseSide maps "left" or "right" onto a Side.
func ParseSide(name string) (Side, error) {
	switch name {
	case "left":
		return Left, nil
	case "right":
		return Right, nil
	default:
		return 0, fmt.Errorf("unknown side: %q", name)
	}
}

// Params carries the voice-specific inputs. Fields a voice does not use
// are ignored.
type Params struct {
	// Success selects the tunneling result and feedback variants.
	Success bool
	// State is the measured basis state for collapse, 0 or 1.
	State int
	// Side positions a tutorial tone.
	Side Side
}

// Voice is one disposable group of nodes.
type Voice struct {
	kind  Kind
	nodes []graph.Node

	// left and right are the channel gains of bias-sensitive voices.
	left, right *graph.Gain
	// outputs are faded to silence on teardown.
	outputs []*graph.Gain
}

// Kind returns the voice kind.
func (v *Voice) Kind() Kind { return v.kind }

// Nodes returns the nodes owned by the voice.
func (v *Voice) Nodes() []graph.Node { return v.nodes }

// Gains returns the left and right channel gains of a bias-sensitive
// voice, or nil for other voices.
func (v *Voice) Gains() (left, right *graph.Gain) { return v.left, v.right }

func (v *Voice) add(nodes ...graph.Node) {
	v.nodes = append(v.nodes, nodes...)
}

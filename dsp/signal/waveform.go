package signal

import (
	"fmt"
	"math"
)

// Waveform identifies a periodic oscillator shape.
type Waveform int

const (
	WaveSine Waveform = iota
	WaveTriangle
	WaveSawtooth
	WaveSquare
)

func (w Waveform) String() string {
	switch w {
	case WaveSine:
		return "sine"
	case WaveTriangle:
		return "triangle"
	case WaveSawtooth:
		return "sawtooth"
	case WaveSquare:
		return "square"
	default:
		return fmt.Sprintf("waveform(%d)", int(w))
	}
}

// At evaluates the waveform at a normalized phase in [0, 1).
// All shapes start at zero (square starts high) and peak at phase 0.25 so
// switching shape does not shift the perceived onset.
func (w Waveform) At(phase float64) float64 {
	switch w {
	case WaveTriangle:
		return 4*math.Abs(WrapPhase(phase+0.75)-0.5) - 1
	case WaveSawtooth:
		p := WrapPhase(phase + 0.5)
		return 2*p - 1
	case WaveSquare:
		if WrapPhase(phase) < 0.5 {
			return 1
		}
		return -1
	default:
		return math.Sin(2 * math.Pi * phase)
	}
}

// ParseWaveform maps a shape name onto a Waveform.
func ParseWaveform(name string) (Waveform, error) {
	switch name {
	case "sine":
		return WaveSine, nil
	case "triangle":
		return WaveTriangle, nil
	case "sawtooth":
		return WaveSawtooth, nil
	case "square":
		return WaveSquare, nil
	default:
		return 0, fmt.Errorf("unknown waveform: %q", name)
	}
}

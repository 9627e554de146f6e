package signal

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/cwbudde/quantum-sounds/dsp/core"
)

// Generator creates deterministic signals from a shared configuration.
type Generator struct {
	cfg  core.ProcessorConfig
	seed int64
}

// Option configures a Generator.
type Option func(*Generator)

// WithSeed sets deterministic random seed for noise generation.
func WithSeed(seed int64) Option {
	return func(g *Generator) {
		g.seed = seed
	}
}

// NewGenerator creates a configured signal generator.
func NewGenerator(coreOpts []core.ProcessorOption, opts ...Option) *Generator {
	g := &Generator{
		cfg:  core.ApplyProcessorOptions(coreOpts...),
		seed: 1,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	return g
}

// Config returns the generator processor configuration.
func (g *Generator) Config() core.ProcessorConfig {
	return g.cfg
}

// Seed returns the current noise seed.
func (g *Generator) Seed() int64 {
	return g.seed
}

// Periodic renders samples of waveform w at freqHz starting at phase 0.
func (g *Generator) Periodic(w Waveform, freqHz, amplitude float64, samples int) ([]float64, error) {
	if samples <= 0 {
		return nil, fmt.Errorf("%s samples must be > 0: %d", w, samples)
	}
	if g.cfg.SampleRate <= 0 {
		return nil, fmt.Errorf("%s sample rate must be > 0: %f", w, g.cfg.SampleRate)
	}
	out := make([]float64, samples)
	step := freqHz / g.cfg.SampleRate
	phase := 0.0
	for i := range out {
		out[i] = amplitude * w.At(phase)
		phase = WrapPhase(phase + step)
	}
	return out, nil
}

// WhiteNoise generates deterministic white noise in [-amplitude, amplitude].
// The generator's seed advances after each call so consecutive buffers differ.
func (g *Generator) WhiteNoise(amplitude float64, samples int) ([]float64, error) {
	if samples <= 0 {
		return nil, fmt.Errorf("noise samples must be > 0: %d", samples)
	}
	if amplitude < 0 {
		return nil, fmt.Errorf("noise amplitude must be >= 0: %f", amplitude)
	}
	out := make([]float64, samples)
	rng := rand.New(rand.NewSource(g.seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	g.seed++
	return out, nil
}

// WrapPhase folds a normalized phase into [0, 1).
func WrapPhase(phase float64) float64 {
	phase -= math.Floor(phase)
	if phase >= 1 {
		return 0
	}
	return phase
}

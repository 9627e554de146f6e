package engine

import (
	"io"
	"log"
	"math"
	"sync"

	"github.com/cwbudde/quantum-sounds/dsp/core"
	"github.com/cwbudde/quantum-sounds/dsp/graph"
	"github.com/cwbudde/quantum-sounds/dsp/signal"
)

// LimiterGain is the fixed attenuation of the master limiter.
const LimiterGain = 0.2

// balanceRamp is the glide time of SetBalance.
const balanceRamp = 0.1

// Output renders the graph in real time by repeatedly calling render with
// an interleaved stereo float32 buffer.
type Output interface {
	Name() string
	Start(render func(out []float32)) error
	Close() error
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for degraded-mode and teardown reports.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithSampleRate sets the rendering sample rate.
func WithSampleRate(sampleRate float64) Option {
	return func(e *Engine) {
		core.WithSampleRate(sampleRate)(&e.cfg)
	}
}

// WithOutputs sets the real-time outputs tried in order by Init. The first
// one that starts drives the graph. Without outputs the caller renders the
// context itself.
func WithOutputs(outputs ...Output) Option {
	return func(e *Engine) {
		e.outputs = append(e.outputs[:0], outputs...)
	}
}

// WithSeed sets the seed of the tunneling noise.
func WithSeed(seed int64) Option {
	return func(e *Engine) {
		e.seed = seed
	}
}

// Engine builds, balances and tears down voices on one audio graph.
type Engine struct {
	mu sync.Mutex

	cfg     core.ProcessorConfig
	log     *log.Logger
	outputs []Output
	seed    int64

	ctx      *graph.Context
	limiter  *graph.Gain
	output   Output
	noise    *signal.Generator
	silent   bool
	registry Registry
	bias     float64
}

// New creates an engine. No audio resources are allocated before Init.
func New(opts ...Option) *Engine {
	e := &Engine{
		cfg:  core.DefaultProcessorConfig(),
		log:  log.New(io.Discard, "", 0),
		seed: 1,
		bias: 0.5,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// Init creates the context and the master limiter and starts the first
// working output. Repeated calls are no-ops. When outputs were configured
// and none of them starts, the engine turns silent: every later call is a
// no-op.
func (e *Engine) Init() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.init()
}

func (e *Engine) init() {
	if e.ctx != nil || e.silent {
		return
	}

	ctx := graph.NewContext(core.WithSampleRate(e.cfg.SampleRate), core.WithBlockSize(e.cfg.BlockSize))
	limiter := ctx.NewGain()
	_ = limiter.Gain().SetValue(LimiterGain)
	_ = limiter.Connect(ctx.Destination())

	if len(e.outputs) > 0 {
		for _, out := range e.outputs {
			if err := out.Start(ctx.Render); err != nil {
				e.log.Printf("audio output %s unavailable: %v", out.Name(), err)
				continue
			}
			e.output = out
			break
		}
		if e.output == nil {
			e.log.Printf("no audio output available, continuing silently")
			e.silent = true
			return
		}
		e.log.Printf("audio output %s at %.0f Hz", e.output.Name(), e.cfg.SampleRate)
	}

	e.ctx = ctx
	e.limiter = limiter
	e.noise = signal.NewGenerator(
		[]core.ProcessorOption{core.WithSampleRate(e.cfg.SampleRate)},
		signal.WithSeed(e.seed),
	)
}

// Close stops the real-time output. The graph itself is kept.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.output == nil {
		return nil
	}
	err := e.output.Close()
	e.output = nil
	return err
}

// Context returns the audio graph, or nil before Init and in silent mode.
func (e *Engine) Context() *graph.Context {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ctx
}

// Limiter returns the master limiter, or nil before Init and in silent mode.
func (e *Engine) Limiter() *graph.Gain {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.limiter
}

// Silent reports whether the engine degraded to no-ops.
func (e *Engine) Silent() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.silent
}

// Bias returns the stored bias parameter.
func (e *Engine) Bias() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.bias
}

// Active returns the kinds of the registered voices.
func (e *Engine) Active() []Kind {
	e.mu.Lock()
	defer e.mu.Unlock()
	var kinds []Kind
	for _, v := range e.registry.voices {
		kinds = append(kinds, v.kind)
	}
	return kinds
}

// Balance returns the equal-power channel gains for bias:
// left = cos(bias·π/2), right = sin(bias·π/2).
func Balance(bias float64) (left, right float64) {
	return core.EqualPowerGains(bias)
}

// SetBalance stores bias, clamped to [0, 1], and glides the channel gains
// of the active bias-sensitive voice to the equal-power targets starting
// from whatever value they currently hold.
func (e *Engine) SetBalance(bias float64) {
	if math.IsNaN(bias) {
		bias = 0.5
	}
	bias = core.Clamp(bias, 0, 1)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.bias = bias

	if e.ctx == nil {
		return
	}
	v := e.registry.biasVoice()
	if v == nil {
		return
	}

	now := e.ctx.CurrentTime()
	l, r := Balance(bias)
	glide(v.left.Gain(), l, now, balanceRamp)
	glide(v.right.Gain(), r, now, balanceRamp)
}

func glide(p *graph.Param, target, now, duration float64) {
	_ = p.CancelAndHoldAtTime(now)
	_ = p.LinearRampToValueAtTime(target, now+duration)
}

// StopAll tears down every registered voice.
func (e *Engine) StopAll() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.ctx == nil {
		return
	}
	e.registry.TeardownAll(e.ctx, e.log)
}

// StartVoice tears down the registered voices and starts a new voice of
// kind. One-shot kinds are forwarded to PlayOneShot.
func (e *Engine) StartVoice(kind Kind, p Params) error {
	if kind.OneShot() {
		return e.PlayOneShot(kind, p)
	}
	b, ok := builders[kind]
	if !ok {
		return ErrUnknownVoice
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.init()
	if e.ctx == nil {
		return nil
	}

	e.registry.TeardownAll(e.ctx, e.log)
	v, err := b(e, e.ctx.CurrentTime(), p)
	if err != nil {
		return err
	}
	e.registry.Add(v)
	return nil
}

// PlayOneShot plays a self-terminating voice. Collapse and tutorial tones
// silence the registered voices first; tunneling results and feedback
// pings overlap them.
func (e *Engine) PlayOneShot(kind Kind, p Params) error {
	if !kind.OneShot() {
		return e.StartVoice(kind, p)
	}
	b, ok := builders[kind]
	if !ok {
		return ErrUnknownVoice
	}
	if err := validate(kind, p); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.init()
	if e.ctx == nil {
		return nil
	}

	if kind == Collapse || kind == Tutorial {
		e.registry.TeardownAll(e.ctx, e.log)
	}
	v, err := b(e, e.ctx.CurrentTime(), p)
	if err != nil {
		return err
	}
	release(v)
	return nil
}

// release disconnects a one-shot once its sources have ended.
func release(v *Voice) {
	for _, n := range v.nodes {
		if o, ok := n.(*graph.Oscillator); ok {
			o.OnEnded(func() {
				for _, n := range v.nodes {
					n.Disconnect()
				}
			})
			return
		}
	}
}

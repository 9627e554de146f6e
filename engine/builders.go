package engine

import (
	"fmt"

	"github.com/cwbudde/quantum-sounds/dsp/graph"
	"github.com/cwbudde/quantum-sounds/dsp/signal"
)

// builder wires a voice into e.limiter. It runs with e.mu held after any
// required teardown; now is the audio clock sampled for the build.
type builder func(e *Engine, now float64, p Params) (*Voice, error)

var builders = map[Kind]builder{
	Superposition: func(e *Engine, now float64, _ Params) (*Voice, error) {
		return buildSuperposition(e, now, Superposition)
	},
	Navigation: func(e *Engine, now float64, _ Params) (*Voice, error) {
		return buildSuperposition(e, now, Navigation)
	},
	Tunneling:    buildTunneling,
	TunnelResult: buildTunnelResult,
	Interference: buildInterference,
	Collapse:     buildCollapse,
	Tutorial:     buildTutorial,
	Feedback:     buildFeedback,
}

const (
	zeroHz = 200.0
	oneHz  = 800.0

	rippleHz    = 4.0
	rippleDepth = 5.0
	fadeIn      = 0.5

	tunnelNoise    = 2.0
	tunnelStop     = 2.5
	tunnelFromHz   = 100.0
	tunnelToHz     = 1000.0
	tunnelFadeTime = 0.05

	beatLowHz  = 300.0
	beatHighHz = 302.0
	beatGain   = 0.5

	groundHz  = 110.0
	excitedHz = 660.0
	// silenceFloor is the target of exponential decays, which cannot
	// reach zero.
	silenceFloor = 0.01
)

func validate(kind Kind, p Params) error {
	switch kind {
	case Collapse:
		if p.State != 0 && p.State != 1 {
			return fmt.Errorf("%w: collapse state must be 0 or 1: %d", ErrInvalidParams, p.State)
		}
	case Tutorial:
		if p.Side != Left && p.Side != Right {
			return fmt.Errorf("%w: tutorial side: %d", ErrInvalidParams, int(p.Side))
		}
	}
	return nil
}

func (e *Engine) oscillator(w signal.Waveform, hz float64) *graph.Oscillator {
	o := e.ctx.NewOscillator(w)
	_ = o.Frequency().SetValue(hz)
	return o
}

func (e *Engine) silentGain() *graph.Gain {
	g := e.ctx.NewGain()
	_ = g.Gain().SetValue(0)
	return g
}

func (e *Engine) panner(pan float64) *graph.StereoPanner {
	p := e.ctx.NewStereoPanner()
	_ = p.Pan().SetValue(pan)
	return p
}

// chain connects nodes in order and the last one into the limiter.
func (e *Engine) chain(nodes ...graph.Node) {
	for i := 0; i+1 < len(nodes); i++ {
		_ = nodes[i].Connect(nodes[i+1])
	}
	_ = nodes[len(nodes)-1].Connect(e.limiter)
}

// buildSuperposition plays |0> at 200 Hz on the left and |1> at 800 Hz on
// the right, both wobbled by a shared 4 Hz LFO, fading in to the
// equal-power gains of the stored bias.
func buildSuperposition(e *Engine, now float64, kind Kind) (*Voice, error) {
	oscL := e.oscillator(signal.WaveSine, zeroHz)
	gainL := e.silentGain()
	panL := e.panner(-1)
	e.chain(oscL, gainL, panL)

	oscR := e.oscillator(signal.WaveSine, oneHz)
	gainR := e.silentGain()
	panR := e.panner(1)
	e.chain(oscR, gainR, panR)

	lfo := e.oscillator(signal.WaveSine, rippleHz)
	depth := e.ctx.NewGain()
	_ = depth.Gain().SetValue(rippleDepth)
	_ = lfo.Connect(depth)
	_ = depth.ConnectParam(oscL.Frequency())
	_ = depth.ConnectParam(oscR.Frequency())

	_ = oscL.Start(now)
	_ = oscR.Start(now)
	_ = lfo.Start(now)

	l, r := Balance(e.bias)
	_ = gainL.Gain().SetValueAtTime(0, now)
	_ = gainL.Gain().LinearRampToValueAtTime(l, now+fadeIn)
	_ = gainR.Gain().SetValueAtTime(0, now)
	_ = gainR.Gain().LinearRampToValueAtTime(r, now+fadeIn)

	v := &Voice{kind: kind, left: gainL, right: gainR, outputs: []*graph.Gain{gainL, gainR}}
	v.add(oscL, oscR, gainL, gainR, panL, panR, lfo, depth)
	return v, nil
}

// buildTunneling sweeps a lowpass over two seconds of white noise from
// 100 Hz to 1000 Hz.
func buildTunneling(e *Engine, now float64, _ Params) (*Voice, error) {
	frames := e.cfg.SecondsToFrames(tunnelNoise)
	samples, err := e.noise.WhiteNoise(1, frames)
	if err != nil {
		return nil, fmt.Errorf("tunneling noise: %w", err)
	}
	buf, err := graph.NewMonoBuffer(samples, e.cfg.SampleRate)
	if err != nil {
		return nil, fmt.Errorf("tunneling noise: %w", err)
	}

	src := e.ctx.NewBufferSource(buf)
	lp := e.ctx.NewBiquadFilter(graph.Lowpass)
	_ = lp.Frequency().SetValue(tunnelFromHz)
	env := e.silentGain()
	e.chain(src, lp, env)

	_ = src.Start(now)
	_ = src.Stop(now + tunnelStop)

	_ = lp.Frequency().SetValueAtTime(tunnelFromHz, now)
	_ = lp.Frequency().ExponentialRampToValueAtTime(tunnelToHz, now+tunnelNoise)

	_ = env.Gain().SetValueAtTime(0, now)
	_ = env.Gain().LinearRampToValueAtTime(1, now+tunnelFadeTime)
	_ = env.Gain().SetValueAtTime(1, now+tunnelNoise-tunnelFadeTime)
	_ = env.Gain().LinearRampToValueAtTime(0, now+tunnelNoise)

	v := &Voice{kind: Tunneling, outputs: []*graph.Gain{env}}
	v.add(src, lp, env)
	return v, nil
}

// buildTunnelResult plays a bright rising ping when the particle got
// through and a dull falling thud when it bounced.
func buildTunnelResult(e *Engine, now float64, p Params) (*Voice, error) {
	var (
		osc     *graph.Oscillator
		glideTo float64
		glideAt float64
		decayAt float64
	)
	if p.Success {
		osc = e.oscillator(signal.WaveSine, 1200)
		glideTo, glideAt, decayAt = 1320, 0.2, 1.0
	} else {
		osc = e.oscillator(signal.WaveTriangle, 100)
		glideTo, glideAt, decayAt = 80, 0.4, 0.5
	}
	gain := e.silentGain()
	e.chain(osc, gain)

	_ = osc.Start(now)
	_ = osc.Stop(now + 1)

	start := osc.Frequency().ValueAt(now)
	_ = osc.Frequency().SetValueAtTime(start, now)
	_ = osc.Frequency().ExponentialRampToValueAtTime(glideTo, now+glideAt)

	_ = gain.Gain().SetValueAtTime(0, now)
	_ = gain.Gain().LinearRampToValueAtTime(0.5, now+0.05)
	_ = gain.Gain().ExponentialRampToValueAtTime(silenceFloor, now+decayAt)

	v := &Voice{kind: TunnelResult}
	v.add(osc, gain)
	return v, nil
}

// buildInterference sums 300 Hz and 302 Hz into an audible 2 Hz beat.
func buildInterference(e *Engine, now float64, _ Params) (*Voice, error) {
	low := e.oscillator(signal.WaveSine, beatLowHz)
	high := e.oscillator(signal.WaveSine, beatHighHz)
	gain := e.silentGain()
	_ = low.Connect(gain)
	e.chain(high, gain)

	_ = low.Start(now)
	_ = high.Start(now)

	_ = gain.Gain().SetValueAtTime(0, now)
	_ = gain.Gain().LinearRampToValueAtTime(beatGain, now+0.1)

	v := &Voice{kind: Interference, outputs: []*graph.Gain{gain}}
	v.add(low, high, gain)
	return v, nil
}

// buildCollapse plays the measured basis state on its own side: |0> low
// and left, |1> high and right.
func buildCollapse(e *Engine, now float64, p Params) (*Voice, error) {
	hz, pan := groundHz, -1.0
	if p.State == 1 {
		hz, pan = excitedHz, 1.0
	}

	osc := e.oscillator(signal.WaveSine, hz)
	gain := e.silentGain()
	panner := e.panner(pan)
	e.chain(osc, gain, panner)

	_ = osc.Start(now)
	_ = osc.Stop(now + 2)

	_ = gain.Gain().SetValueAtTime(0, now)
	_ = gain.Gain().LinearRampToValueAtTime(1, now+0.05)
	_ = gain.Gain().SetValueAtTime(1, now+0.5)
	_ = gain.Gain().ExponentialRampToValueAtTime(silenceFloor, now+2)

	v := &Voice{kind: Collapse}
	v.add(osc, gain, panner)
	return v, nil
}

// buildTutorial introduces one basis tone on its side.
func buildTutorial(e *Engine, now float64, p Params) (*Voice, error) {
	hz, pan := groundHz, -1.0
	if p.Side == Right {
		hz, pan = excitedHz, 1.0
	}

	osc := e.oscillator(signal.WaveSine, hz)
	gain := e.silentGain()
	panner := e.panner(pan)
	e.chain(osc, gain, panner)

	_ = osc.Start(now)
	_ = osc.Stop(now + 2)

	_ = gain.Gain().SetValueAtTime(0, now)
	_ = gain.Gain().LinearRampToValueAtTime(0.5, now+0.1)
	_ = gain.Gain().LinearRampToValueAtTime(0.5, now+1.5)
	_ = gain.Gain().LinearRampToValueAtTime(0, now+2)

	v := &Voice{kind: Tutorial}
	v.add(osc, gain, panner)
	return v, nil
}

// buildFeedback plays a short chirp after a round: an upward sine sweep on
// success, a sagging sawtooth otherwise.
func buildFeedback(e *Engine, now float64, p Params) (*Voice, error) {
	var osc *graph.Oscillator
	if p.Success {
		osc = e.oscillator(signal.WaveSine, 500)
		_ = osc.Frequency().SetValueAtTime(500, now)
		_ = osc.Frequency().ExponentialRampToValueAtTime(1000, now+0.1)
	} else {
		osc = e.oscillator(signal.WaveSawtooth, 150)
		_ = osc.Frequency().SetValueAtTime(150, now)
		_ = osc.Frequency().LinearRampToValueAtTime(100, now+0.3)
	}
	gain := e.silentGain()
	e.chain(osc, gain)

	_ = osc.Start(now)
	_ = osc.Stop(now + 0.3)

	_ = gain.Gain().SetValueAtTime(0, now)
	_ = gain.Gain().LinearRampToValueAtTime(0.2, now+0.05)
	_ = gain.Gain().ExponentialRampToValueAtTime(silenceFloor, now+0.3)

	v := &Voice{kind: Feedback}
	v.add(osc, gain)
	return v, nil
}

package engine

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/quantum-sounds/dsp/graph"
	"github.com/cwbudde/quantum-sounds/dsp/signal"
	"github.com/cwbudde/quantum-sounds/internal/testutil"
	"github.com/cwbudde/quantum-sounds/measure/tone"
)

func render(e *Engine, seconds float64) (left, right []float64) {
	ctx := e.Context()
	return ctx.RenderFrames(int(seconds * ctx.SampleRate()))
}

func TestBalanceEqualPowerLaw(t *testing.T) {
	for i := 0; i <= 20; i++ {
		bias := float64(i) / 20
		l, r := Balance(bias)
		if math.Abs(l-math.Cos(bias*math.Pi/2)) > 1e-12 || math.Abs(r-math.Sin(bias*math.Pi/2)) > 1e-12 {
			t.Fatalf("Balance(%v) = (%v, %v)", bias, l, r)
		}
		if p := l*l + r*r; math.Abs(p-1) > 1e-12 {
			t.Fatalf("Balance(%v) power = %v, want 1", bias, p)
		}
	}

	if l, r := Balance(0); l != 1 || r != 0 {
		t.Fatalf("Balance(0) = (%v, %v), want (1, 0)", l, r)
	}
	if l, r := Balance(1); math.Abs(l) > 1e-12 || math.Abs(r-1) > 1e-12 {
		t.Fatalf("Balance(1) = (%v, %v), want (0, 1)", l, r)
	}
}

func TestInitIsIdempotent(t *testing.T) {
	e := New()
	e.Init()
	ctx, lim := e.Context(), e.Limiter()
	if ctx == nil || lim == nil {
		t.Fatal("Init() did not create a context and limiter")
	}

	e.Init()
	_ = e.StartVoice(Interference, Params{})

	if e.Context() != ctx || e.Limiter() != lim {
		t.Fatal("second Init() replaced the context or limiter")
	}
	if got := ctx.Destination().InputCount(); got != 1 {
		t.Fatalf("destination inputs = %d, want 1 limiter", got)
	}
	if got := lim.Gain().Value(); got != LimiterGain {
		t.Fatalf("limiter gain = %v, want %v", got, LimiterGain)
	}
}

func TestStartVoiceLeavesOneGroupAfterGrace(t *testing.T) {
	e := New()
	if err := e.StartVoice(Superposition, Params{}); err != nil {
		t.Fatalf("StartVoice() error = %v", err)
	}
	lim := e.Limiter()
	if got := lim.InputCount(); got != 2 {
		t.Fatalf("limiter inputs = %d, want 2 panners", got)
	}

	if err := e.StartVoice(Interference, Params{}); err != nil {
		t.Fatalf("StartVoice() error = %v", err)
	}
	if got := e.Active(); len(got) != 1 || got[0] != Interference {
		t.Fatalf("Active() = %v, want [interference]", got)
	}

	render(e, 0.3)
	if got := lim.InputCount(); got != 1 {
		t.Fatalf("limiter inputs after grace = %d, want 1", got)
	}

	render(e, 1)
	if got := lim.InputCount(); got != 1 {
		t.Fatalf("limiter inputs later = %d, want 1", got)
	}
}

func TestTeardownStopsPreviousSources(t *testing.T) {
	e := New()
	_ = e.StartVoice(Superposition, Params{})
	old := e.registry.Active()[0]
	_ = e.StartVoice(Navigation, Params{})

	render(e, 0.3)
	for _, n := range old.Nodes() {
		if o, ok := n.(*graph.Oscillator); ok && !o.Ended() {
			t.Fatal("torn down oscillator still running")
		}
		if n.Connected() {
			t.Fatal("torn down node still connected")
		}
	}
}

func TestSetBalanceWithoutVoiceIsPickedUpAtStart(t *testing.T) {
	e := New()
	e.SetBalance(0.8)
	if got := e.Bias(); got != 0.8 {
		t.Fatalf("Bias() = %v, want 0.8", got)
	}

	if err := e.StartVoice(Navigation, Params{}); err != nil {
		t.Fatalf("StartVoice() error = %v", err)
	}
	l, r := render(e, 0.7)

	v := e.registry.Active()[0]
	left, right := v.Gains()
	wantL, wantR := Balance(0.8)
	if math.Abs(left.Gain().Value()-wantL) > 1e-9 || math.Abs(right.Gain().Value()-wantR) > 1e-9 {
		t.Fatalf("gains = (%v, %v), want (%v, %v)", left.Gain().Value(), right.Gain().Value(), wantL, wantR)
	}

	from := int(0.55 * e.Context().SampleRate())
	if got := tone.Balance(l[from:], r[from:]); math.Abs(got-0.8) > 0.02 {
		t.Fatalf("measured balance = %v, want 0.8", got)
	}
}

func TestSetBalanceGlidesLiveVoice(t *testing.T) {
	e := New()
	_ = e.StartVoice(Superposition, Params{})
	render(e, 0.6)

	e.SetBalance(1)
	left, right := e.registry.Active()[0].Gains()
	if got := left.Gain().Value(); math.Abs(got-math.Sqrt2/2) > 1e-9 {
		t.Fatalf("left gain right after SetBalance = %v, want held 0.707", got)
	}

	render(e, 0.05)
	mid := left.Gain().Value()
	if mid <= 0.01 || mid >= math.Sqrt2/2 {
		t.Fatalf("left gain mid-glide = %v, want between 0 and 0.707", mid)
	}

	render(e, 0.2)
	if got := left.Gain().Value(); math.Abs(got) > 1e-9 {
		t.Fatalf("left gain = %v, want 0", got)
	}
	if got := right.Gain().Value(); math.Abs(got-1) > 1e-9 {
		t.Fatalf("right gain = %v, want 1", got)
	}
}

func TestSetBalanceFollowsBiasSensitiveKinds(t *testing.T) {
	for _, kind := range []Kind{Superposition, Navigation, Tunneling, Interference} {
		e := New()
		_ = e.StartVoice(kind, Params{})
		render(e, 0.6)

		e.SetBalance(0)
		render(e, 0.2)
		v := e.registry.Active()[0]
		if got := e.registry.biasVoice() == v; got != kind.BiasSensitive() {
			t.Fatalf("%s: biasVoice match = %v, want %v", kind, got, kind.BiasSensitive())
		}
		if !kind.BiasSensitive() {
			continue
		}
		_, right := v.Gains()
		if got := right.Gain().Value(); math.Abs(got) > 1e-9 {
			t.Fatalf("%s: right gain = %v, want 0", kind, got)
		}
	}
}

func TestSetBalanceClamps(t *testing.T) {
	e := New()
	e.SetBalance(3)
	if got := e.Bias(); got != 1 {
		t.Fatalf("Bias() = %v, want 1", got)
	}
	e.SetBalance(math.NaN())
	if got := e.Bias(); got != 0.5 {
		t.Fatalf("Bias() = %v, want 0.5", got)
	}
}

func TestCollapseState(t *testing.T) {
	tests := []struct {
		state  int
		hz     float64
		active func(l, r []float64) []float64
		quiet  func(l, r []float64) []float64
	}{
		{0, 110, func(l, _ []float64) []float64 { return l }, func(_, r []float64) []float64 { return r }},
		{1, 660, func(_, r []float64) []float64 { return r }, func(l, _ []float64) []float64 { return l }},
	}

	for _, tc := range tests {
		e := New()
		if err := e.PlayOneShot(Collapse, Params{State: tc.state}); err != nil {
			t.Fatalf("PlayOneShot() error = %v", err)
		}
		l, r := render(e, 0.5)
		from := int(0.05 * e.Context().SampleRate())

		rep, err := tone.Analyze(tc.active(l, r)[from:], e.Context().SampleRate())
		if err != nil {
			t.Fatalf("Analyze() error = %v", err)
		}
		testutil.RequireNear(t, "collapse peak Hz", rep.PeakHz, tc.hz, 3)
		testutil.RequireSilent(t, "opposite channel", tc.quiet(l, r), 1e-9)
	}
}

func TestCollapseRejectsUnknownState(t *testing.T) {
	e := New()
	if err := e.PlayOneShot(Collapse, Params{State: 2}); !errors.Is(err, ErrInvalidParams) {
		t.Fatalf("error = %v, want ErrInvalidParams", err)
	}
}

func TestTunnelResultVariants(t *testing.T) {
	e := New()
	e.Init()

	hit, err := buildTunnelResult(e, 0, Params{Success: true})
	if err != nil {
		t.Fatalf("buildTunnelResult() error = %v", err)
	}
	miss, err := buildTunnelResult(e, 0, Params{Success: false})
	if err != nil {
		t.Fatalf("buildTunnelResult() error = %v", err)
	}

	up := hit.Nodes()[0].(*graph.Oscillator)
	down := miss.Nodes()[0].(*graph.Oscillator)
	if up.Type() != signal.WaveSine || down.Type() != signal.WaveTriangle {
		t.Fatalf("types = %v, %v, want sine, triangle", up.Type(), down.Type())
	}
	if got := up.Frequency().ValueAt(0); got != 1200 {
		t.Fatalf("success start = %v Hz, want 1200", got)
	}
	if got := down.Frequency().ValueAt(0); got != 100 {
		t.Fatalf("failure start = %v Hz, want 100", got)
	}
	if up.Frequency().ValueAt(0.2) <= 1200 {
		t.Fatal("success tone should rise")
	}
	if down.Frequency().ValueAt(0.4) >= 100 {
		t.Fatal("failure tone should fall")
	}

	for _, v := range []*Voice{hit, miss} {
		g := v.Nodes()[1].(*graph.Gain).Gain()
		if g.ValueAt(0.05) != 0.5 || g.ValueAt(0.9) >= 0.5 {
			t.Fatalf("%s envelope does not decay", v.Kind())
		}
	}
}

func TestOneShotsReleaseThemselves(t *testing.T) {
	e := New()
	_ = e.StartVoice(Superposition, Params{})

	if err := e.PlayOneShot(TunnelResult, Params{Success: true}); err != nil {
		t.Fatalf("PlayOneShot() error = %v", err)
	}
	if err := e.PlayOneShot(Feedback, Params{Success: false}); err != nil {
		t.Fatalf("PlayOneShot() error = %v", err)
	}
	if got := e.Active(); len(got) != 1 || got[0] != Superposition {
		t.Fatalf("Active() = %v, one-shots must not touch the registry", got)
	}
	if got := e.Limiter().InputCount(); got != 4 {
		t.Fatalf("limiter inputs = %d, want 4", got)
	}

	render(e, 1.2)
	if got := e.Limiter().InputCount(); got != 2 {
		t.Fatalf("limiter inputs after one-shots ended = %d, want 2", got)
	}
}

func TestTutorialTearsDownRegisteredVoices(t *testing.T) {
	e := New()
	_ = e.StartVoice(Interference, Params{})
	if err := e.PlayOneShot(Tutorial, Params{Side: Right}); err != nil {
		t.Fatalf("PlayOneShot() error = %v", err)
	}
	if got := e.Active(); len(got) != 0 {
		t.Fatalf("Active() = %v, want none", got)
	}

	l, r := render(e, 1)
	from := int(0.2 * e.Context().SampleRate())
	if got := tone.Balance(l[from:], r[from:]); math.Abs(got-1) > 1e-6 {
		t.Fatalf("tutorial right balance = %v, want 1", got)
	}
	rep, _ := tone.Analyze(r[from:], e.Context().SampleRate())
	if math.Abs(rep.PeakHz-660) > 3 {
		t.Fatalf("tutorial peak = %v Hz, want 660", rep.PeakHz)
	}
}

func TestTunnelingSweep(t *testing.T) {
	e := New(WithSeed(9))
	if err := e.StartVoice(Tunneling, Params{}); err != nil {
		t.Fatalf("StartVoice() error = %v", err)
	}

	v := e.registry.Active()[0]
	src := v.Nodes()[0].(*graph.BufferSource)
	lp := v.Nodes()[1].(*graph.BiquadFilter)
	if got := lp.Frequency().ValueAt(1); math.Abs(got-math.Sqrt(100*1000)) > 1e-6 {
		t.Fatalf("cutoff at 1 s = %v, want geometric midpoint", got)
	}
	if got := lp.Frequency().ValueAt(2); math.Abs(got-1000) > 1e-9 {
		t.Fatalf("cutoff at 2 s = %v, want 1000", got)
	}

	l, _ := render(e, 2.6)
	if tone.RMS(l[:len(l)/2]) == 0 {
		t.Fatal("tunneling voice is silent")
	}
	if !src.Ended() {
		t.Fatal("noise source should end by itself")
	}
}

func TestStopAll(t *testing.T) {
	e := New()
	_ = e.StartVoice(Superposition, Params{})
	e.StopAll()
	if got := e.Active(); len(got) != 0 {
		t.Fatalf("Active() = %v, want none", got)
	}

	render(e, 0.3)
	if got := e.Limiter().InputCount(); got != 0 {
		t.Fatalf("limiter inputs = %d, want 0", got)
	}
}

func maxStep(x []float64) float64 {
	m := 0.0
	for i := 1; i < len(x); i++ {
		m = max(m, math.Abs(x[i]-x[i-1]))
	}
	return m
}

func TestTeardownFadesWithoutClick(t *testing.T) {
	e := New()
	_ = e.StartVoice(Superposition, Params{})
	l, r := render(e, 1)
	half := len(l) / 2
	steadyL, steadyR := maxStep(l[half:]), maxStep(r[half:])

	e.StopAll()
	l, r = render(e, 0.5)
	if got := maxStep(l); got > 1.2*steadyL {
		t.Fatalf("left teardown step = %v, steady %v", got, steadyL)
	}
	if got := maxStep(r); got > 1.2*steadyR {
		t.Fatalf("right teardown step = %v, steady %v", got, steadyR)
	}
	from := int(0.15 * e.Context().SampleRate())
	testutil.RequireSilent(t, "left after teardown", l[from:], 0)
	testutil.RequireSilent(t, "right after teardown", r[from:], 0)
}

func TestTeardownFadesTunnelingEnvelope(t *testing.T) {
	e := New(WithSeed(3))
	_ = e.StartVoice(Tunneling, Params{})
	v := e.registry.Active()[0]
	env := v.Nodes()[2].(*graph.Gain).Gain()
	render(e, 0.5)

	now := e.Context().CurrentTime()
	e.StopAll()
	if got := env.ValueAt(now); got != 1 {
		t.Fatalf("envelope at teardown = %v, want 1 held", got)
	}
	if got := env.ValueAt(now + stopGrace/2); math.Abs(got-0.5) > 1e-9 {
		t.Fatalf("envelope mid-fade = %v, want 0.5", got)
	}
	if got := env.ValueAt(now + stopGrace); got != 0 {
		t.Fatalf("envelope at stop = %v, want 0", got)
	}
}

type fakeOutput struct {
	fail    error
	render  func([]float32)
	started int
	closed  int
}

func (f *fakeOutput) Name() string { return "fake" }

func (f *fakeOutput) Start(render func([]float32)) error {
	if f.fail != nil {
		return f.fail
	}
	f.started++
	f.render = render
	return nil
}

func (f *fakeOutput) Close() error {
	f.closed++
	return nil
}

func TestInitFallsBackToNextOutput(t *testing.T) {
	broken := &fakeOutput{fail: errors.New("no device")}
	spare := &fakeOutput{}
	e := New(WithOutputs(broken, spare))
	e.Init()
	e.Init()

	if spare.started != 1 || e.Silent() {
		t.Fatalf("spare started %d times, silent = %v", spare.started, e.Silent())
	}

	buf := make([]float32, 2*128)
	spare.render(buf)
	if got := e.Context().CurrentTime(); got <= 0 {
		t.Fatalf("CurrentTime() = %v, want clock driven by the output", got)
	}

	if err := e.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if spare.closed != 1 {
		t.Fatalf("closed = %d, want 1", spare.closed)
	}
}

func TestSilentWhenNoOutputStarts(t *testing.T) {
	e := New(WithOutputs(&fakeOutput{fail: errors.New("no device")}))
	e.Init()

	if !e.Silent() || e.Context() != nil {
		t.Fatal("engine should degrade to silent mode")
	}
	if err := e.StartVoice(Superposition, Params{}); err != nil {
		t.Fatalf("StartVoice() error = %v", err)
	}
	if err := e.PlayOneShot(Collapse, Params{State: 1}); err != nil {
		t.Fatalf("PlayOneShot() error = %v", err)
	}
	e.SetBalance(0.3)
	e.StopAll()
	if got := e.Bias(); got != 0.3 {
		t.Fatalf("Bias() = %v, want 0.3", got)
	}
}

func TestParseKind(t *testing.T) {
	for k := Superposition; k <= Feedback; k++ {
		got, err := ParseKind(k.String())
		if err != nil || got != k {
			t.Fatalf("ParseKind(%q) = %v, %v", k, got, err)
		}
	}
	if _, err := ParseKind("entanglement"); !errors.Is(err, ErrUnknownVoice) {
		t.Fatalf("error = %v, want ErrUnknownVoice", err)
	}
	if err := New().StartVoice(Kind(99), Params{}); !errors.Is(err, ErrUnknownVoice) {
		t.Fatalf("StartVoice(99) error = %v, want ErrUnknownVoice", err)
	}
}

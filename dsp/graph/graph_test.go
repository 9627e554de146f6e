package graph

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/quantum-sounds/dsp/core"
	"github.com/cwbudde/quantum-sounds/dsp/signal"
)

func ones(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 1
	}
	return out
}

func rms(x []float64) float64 {
	var sum float64
	for _, v := range x {
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(x)))
}

func TestClockAdvancesPerQuantum(t *testing.T) {
	ctx := newTestContext()
	if got := ctx.CurrentTime(); got != 0 {
		t.Fatalf("CurrentTime() = %v, want 0", got)
	}

	ctx.RenderFrames(10)
	if got := ctx.CurrentTime(); math.Abs(got-0.1) > 1e-12 {
		t.Fatalf("CurrentTime() = %v, want 0.1", got)
	}

	ctx.RenderFrames(118)
	if got := ctx.CurrentTime(); math.Abs(got-0.1) > 1e-12 {
		t.Fatalf("CurrentTime() after finishing quantum = %v, want 0.1", got)
	}
}

func TestRenderInterleavesAndClips(t *testing.T) {
	ctx := newTestContext()
	buf, err := NewMonoBuffer(ones(256), ctx.SampleRate())
	if err != nil {
		t.Fatalf("NewMonoBuffer() error = %v", err)
	}
	src := ctx.NewBufferSource(buf)
	g := ctx.NewGain()
	_ = g.Gain().SetValue(3)
	_ = src.Connect(g)
	_ = g.Connect(ctx.Destination())
	_ = src.Start(0)

	out := make([]float32, 64)
	ctx.Render(out)
	for i, v := range out {
		if v != 1 {
			t.Fatalf("out[%d] = %v, want clipped 1", i, v)
		}
	}
}

func TestAtRunsCallbacksInOrderOutsideLock(t *testing.T) {
	ctx := newTestContext()
	var fired []float64

	ctx.At(0.25, func() { fired = append(fired, ctx.CurrentTime()) })
	ctx.At(0.05, func() { fired = append(fired, ctx.CurrentTime()) })
	if got := ctx.PendingCallbacks(); got != 2 {
		t.Fatalf("PendingCallbacks() = %d, want 2", got)
	}

	ctx.RenderFrames(128 * 4)

	if len(fired) != 2 {
		t.Fatalf("fired %d callbacks, want 2", len(fired))
	}
	if math.Abs(fired[0]-0.1) > 1e-12 || math.Abs(fired[1]-0.3) > 1e-12 {
		t.Fatalf("fired at %v, want [0.1 0.3]", fired)
	}
	if got := ctx.PendingCallbacks(); got != 0 {
		t.Fatalf("PendingCallbacks() = %d, want 0", got)
	}
}

func TestOscillatorScheduleAndEnded(t *testing.T) {
	ctx := newTestContext()
	osc := ctx.NewOscillator(signal.WaveSine)
	_ = osc.Frequency().SetValue(320) // quarter cycle per frame
	_ = osc.Connect(ctx.Destination())

	if err := osc.Stop(1); !errors.Is(err, ErrNotStarted) {
		t.Fatalf("Stop() before Start error = %v, want ErrNotStarted", err)
	}
	if err := osc.Start(0.1); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := osc.Start(0.1); !errors.Is(err, ErrAlreadyStarted) {
		t.Fatalf("second Start() error = %v, want ErrAlreadyStarted", err)
	}
	if err := osc.Stop(0.2); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}

	ended := 0
	osc.OnEnded(func() { ended++ })

	l, r := ctx.RenderFrames(384)
	for i := 0; i < 128; i++ {
		if l[i] != 0 {
			t.Fatalf("l[%d] = %v before start, want 0", i, l[i])
		}
	}
	if math.Abs(l[129]-1) > 1e-12 || math.Abs(r[129]-1) > 1e-12 {
		t.Fatalf("frame 129 = (%v, %v), want (1, 1)", l[129], r[129])
	}
	for i := 256; i < 384; i++ {
		if l[i] != 0 {
			t.Fatalf("l[%d] = %v after stop, want 0", i, l[i])
		}
	}
	if ended != 1 || !osc.Ended() {
		t.Fatalf("ended callbacks = %d, Ended() = %v", ended, osc.Ended())
	}
	if err := osc.Stop(1); !errors.Is(err, ErrAlreadyStopped) {
		t.Fatalf("Stop() after end error = %v, want ErrAlreadyStopped", err)
	}
}

func TestStereoPannerEqualPower(t *testing.T) {
	tests := []struct {
		pan          float64
		wantL, wantR float64
	}{
		{-1, 1, 0},
		{0, math.Sqrt2 / 2, math.Sqrt2 / 2},
		{1, 0, 1},
	}

	for _, tc := range tests {
		ctx := newTestContext()
		buf, _ := NewMonoBuffer(ones(128), ctx.SampleRate())
		src := ctx.NewBufferSource(buf)
		p := ctx.NewStereoPanner()
		_ = p.Pan().SetValue(tc.pan)
		_ = src.Connect(p)
		_ = p.Connect(ctx.Destination())
		_ = src.Start(0)

		l, r := ctx.RenderFrames(128)
		if math.Abs(l[10]-tc.wantL) > 1e-12 || math.Abs(r[10]-tc.wantR) > 1e-12 {
			t.Fatalf("pan %v = (%v, %v), want (%v, %v)", tc.pan, l[10], r[10], tc.wantL, tc.wantR)
		}
		if power := l[10]*l[10] + r[10]*r[10]; math.Abs(power-1) > 1e-12 {
			t.Fatalf("pan %v power = %v, want 1", tc.pan, power)
		}
	}
}

func TestGainAutomationIsSampleAccurate(t *testing.T) {
	ctx := newTestContext()
	buf, _ := NewMonoBuffer(ones(256), ctx.SampleRate())
	src := ctx.NewBufferSource(buf)
	g := ctx.NewGain()
	_ = g.Gain().SetValueAtTime(0, 0)
	_ = g.Gain().LinearRampToValueAtTime(1, 0.1)
	_ = src.Connect(g)
	_ = g.Connect(ctx.Destination())
	_ = src.Start(0)

	l, _ := ctx.RenderFrames(256)
	if math.Abs(l[64]-0.5) > 1e-12 {
		t.Fatalf("l[64] = %v, want 0.5", l[64])
	}
	if l[200] != 1 {
		t.Fatalf("l[200] = %v, want 1", l[200])
	}
}

func TestBufferSourceEndsAfterBuffer(t *testing.T) {
	ctx := newTestContext()
	buf, _ := NewMonoBuffer(ones(100), ctx.SampleRate())
	src := ctx.NewBufferSource(buf)
	_ = src.Connect(ctx.Destination())
	_ = src.Start(0)

	l, _ := ctx.RenderFrames(256)
	if l[99] != 1 || l[100] != 0 {
		t.Fatalf("l[99], l[100] = %v, %v, want 1, 0", l[99], l[100])
	}
	if !src.Ended() {
		t.Fatal("buffer source should have ended")
	}
}

func TestLowpassAttenuatesHighTone(t *testing.T) {
	ctx := NewContext(core.WithSampleRate(44100))
	osc := ctx.NewOscillator(signal.WaveSine)
	_ = osc.Frequency().SetValue(10000)
	f := ctx.NewBiquadFilter(Lowpass)
	_ = f.Frequency().SetValue(200)
	_ = osc.Connect(f)
	_ = f.Connect(ctx.Destination())
	_ = osc.Start(0)

	l, _ := ctx.RenderFrames(4096)
	if got := rms(l[2048:]); got > 0.01 {
		t.Fatalf("filtered rms = %v, want < 0.01", got)
	}
}

func TestParamModulationInput(t *testing.T) {
	ctx := newTestContext()
	buf, _ := NewMonoBuffer(ones(128), ctx.SampleRate())
	src := ctx.NewBufferSource(buf)
	mod, _ := NewMonoBuffer(ones(128), ctx.SampleRate())
	modSrc := ctx.NewBufferSource(mod)
	g := ctx.NewGain()
	_ = g.Gain().SetValue(0.5)

	_ = src.Connect(g)
	_ = modSrc.ConnectParam(g.Gain())
	_ = g.Connect(ctx.Destination())
	_ = src.Start(0)
	_ = modSrc.Start(0)

	l, _ := ctx.RenderFrames(128)
	if l[5] != 1.5 {
		t.Fatalf("l[5] = %v, want 1.5", l[5])
	}
}

func TestConnectDisconnect(t *testing.T) {
	ctx := newTestContext()
	a := ctx.NewGain()
	b := ctx.NewGain()

	_ = a.Connect(b)
	_ = a.Connect(b)
	if got := b.InputCount(); got != 1 {
		t.Fatalf("InputCount() = %d, want 1", got)
	}
	if !a.Connected() {
		t.Fatal("a should be connected")
	}

	a.Disconnect()
	a.Disconnect()
	if got := b.InputCount(); got != 0 {
		t.Fatalf("InputCount() after Disconnect = %d, want 0", got)
	}

	other := newTestContext()
	if err := a.Connect(other.NewGain()); !errors.Is(err, ErrContextMismatch) {
		t.Fatalf("cross-context Connect() error = %v, want ErrContextMismatch", err)
	}
	if err := ctx.Destination().Connect(a); !errors.Is(err, ErrNoOutput) {
		t.Fatalf("Destination.Connect() error = %v, want ErrNoOutput", err)
	}
}

func TestCycleRendersWithoutHanging(t *testing.T) {
	ctx := newTestContext()
	osc := ctx.NewOscillator(signal.WaveSine)
	a := ctx.NewGain()
	b := ctx.NewGain()
	_ = osc.Connect(a)
	_ = a.Connect(b)
	_ = b.Connect(a)
	_ = b.Connect(ctx.Destination())
	_ = osc.Start(0)

	l, _ := ctx.RenderFrames(256)
	if len(l) != 256 {
		t.Fatalf("len = %d, want 256", len(l))
	}
}

//go:build !headless

package device

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

// oto allows a single context per process.
var (
	otoOnce sync.Once
	otoCtx  *oto.Context
	otoErr  error
)

// Oto streams rendered audio to the default sound device.
type Oto struct {
	sampleRate int
	latency    time.Duration

	mu      sync.Mutex
	player  *oto.Player
	render  func([]float32)
	scratch []float32
}

// NewOto prepares an output at sampleRate. The device is opened by Start.
func NewOto(sampleRate int) *Oto {
	return &Oto{sampleRate: sampleRate, latency: 40 * time.Millisecond}
}

// Name implements the engine output contract.
func (o *Oto) Name() string { return "oto" }

// Start opens the device and begins pulling audio from render.
func (o *Oto) Start(render func([]float32)) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.player != nil {
		return ErrStarted
	}

	otoOnce.Do(func() {
		var ready chan struct{}
		otoCtx, ready, otoErr = oto.NewContext(&oto.NewContextOptions{
			SampleRate:   o.sampleRate,
			ChannelCount: 2,
			Format:       oto.FormatFloat32LE,
			BufferSize:   o.latency,
		})
		if otoErr == nil {
			<-ready
		}
	})
	if otoErr != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, otoErr)
	}

	o.render = render
	o.player = otoCtx.NewPlayer(o)
	o.player.Play()
	return nil
}

// Read implements io.Reader for the oto player.
func (o *Oto) Read(p []byte) (int, error) {
	// Whole stereo frames only: 2 channels of 4 bytes.
	n := len(p) / 8 * 8
	samples := n / 4
	if cap(o.scratch) < samples {
		o.scratch = make([]float32, samples)
	}
	buf := o.scratch[:samples]
	o.render(buf)

	for i, v := range buf {
		binary.LittleEndian.PutUint32(p[4*i:], math.Float32bits(v))
	}
	return n, nil
}

// Close stops playback.
func (o *Oto) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.player == nil {
		return nil
	}
	err := o.player.Close()
	o.player = nil
	return err
}

package graph

import (
	"math"
	"sort"
	"sync"

	"github.com/cwbudde/quantum-sounds/dsp/core"
)

type timer struct {
	when float64
	fn   func()
}

// Context owns the audio clock, the destination and every node created
// from it.
type Context struct {
	mu  sync.Mutex
	cfg core.ProcessorConfig

	// frame counts frames rendered so far; quantum identifies the block
	// currently being pulled so each node renders at most once per block.
	frame   int64
	quantum int64

	dest    *Destination
	timers  []timer
	pending []func()
	empty   Block

	renderMu sync.Mutex
	outL     []float64
	outR     []float64
	readPos  int
}

// NewContext creates a rendering context. The channel count of the
// processor config is ignored: the destination is always stereo.
func NewContext(opts ...core.ProcessorOption) *Context {
	cfg := core.ApplyProcessorOptions(opts...)
	c := &Context{
		cfg:     cfg,
		empty:   newBlock(cfg.BlockSize),
		outL:    make([]float64, cfg.BlockSize),
		outR:    make([]float64, cfg.BlockSize),
		readPos: cfg.BlockSize,
	}
	c.dest = &Destination{}
	c.dest.init(c, c.dest)
	return c
}

// Config returns the processor configuration.
func (c *Context) Config() core.ProcessorConfig {
	return c.cfg
}

// SampleRate returns the rendering sample rate in Hz.
func (c *Context) SampleRate() float64 {
	return c.cfg.SampleRate
}

// Destination returns the final stereo sink.
func (c *Context) Destination() *Destination {
	return c.dest
}

// CurrentTime returns the audio clock in seconds: the start time of the
// next quantum to be rendered.
func (c *Context) CurrentTime() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now()
}

func (c *Context) now() float64 {
	return float64(c.frame) / c.cfg.SampleRate
}

// frameAt converts an audio-clock time to a frame index, never earlier
// than the next frame to be rendered.
func (c *Context) frameAt(when float64) int64 {
	if math.IsNaN(when) {
		return c.frame
	}
	f := int64(math.Round(when * c.cfg.SampleRate))
	if f < c.frame {
		return c.frame
	}
	return f
}

// At schedules fn to run on the render goroutine once the audio clock
// reaches when. Callbacks run after the quantum in which they became due
// and outside the graph lock, so they may freely call back into the graph.
func (c *Context) At(when float64, fn func()) {
	if fn == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	i := sort.Search(len(c.timers), func(i int) bool { return c.timers[i].when > when })
	c.timers = append(c.timers, timer{})
	copy(c.timers[i+1:], c.timers[i:])
	c.timers[i] = timer{when: when, fn: fn}
}

// PendingCallbacks returns the number of scheduled callbacks that have not
// fired yet.
func (c *Context) PendingCallbacks() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.timers)
}

// Render fills out with interleaved stereo float32 frames, advancing the
// clock. Samples are hard-clipped to [-1, 1]. Render must not be called
// concurrently with itself or RenderFrames.
func (c *Context) Render(out []float32) {
	c.renderMu.Lock()
	defer c.renderMu.Unlock()

	frames := len(out) / 2
	for i := 0; i < frames; {
		if c.readPos >= c.cfg.BlockSize {
			c.step()
		}
		n := min(frames-i, c.cfg.BlockSize-c.readPos)
		for j := 0; j < n; j++ {
			out[2*(i+j)] = float32(core.Clamp(c.outL[c.readPos+j], -1, 1))
			out[2*(i+j)+1] = float32(core.Clamp(c.outR[c.readPos+j], -1, 1))
		}
		c.readPos += n
		i += n
	}
}

// RenderFrames renders n frames offline and returns the unclipped left and
// right channels.
func (c *Context) RenderFrames(n int) (left, right []float64) {
	c.renderMu.Lock()
	defer c.renderMu.Unlock()

	left = make([]float64, 0, max(n, 0))
	right = make([]float64, 0, max(n, 0))
	for len(left) < n {
		if c.readPos >= c.cfg.BlockSize {
			c.step()
		}
		k := min(n-len(left), c.cfg.BlockSize-c.readPos)
		left = append(left, c.outL[c.readPos:c.readPos+k]...)
		right = append(right, c.outR[c.readPos:c.readPos+k]...)
		c.readPos += k
	}
	return left, right
}

// step renders one quantum and then runs every callback that became due.
func (c *Context) step() {
	c.mu.Lock()
	c.quantum++
	out := c.pull(c.dest)
	copy(c.outL, out.L)
	copy(c.outR, out.R)
	c.frame += int64(c.cfg.BlockSize)

	now := c.now()
	due := 0
	for due < len(c.timers) && c.timers[due].when <= now {
		c.pending = append(c.pending, c.timers[due].fn)
		due++
	}
	c.timers = c.timers[due:]
	callbacks := c.pending
	c.pending = nil
	c.mu.Unlock()

	c.readPos = 0
	for _, fn := range callbacks {
		fn()
	}
}

// pull renders n for the current quantum at most once. Cycles render as
// silence.
func (c *Context) pull(n Node) *Block {
	b := n.base()
	if b.rendered == c.quantum {
		return &b.out
	}
	if b.busy {
		return &c.empty
	}
	b.busy = true
	n.process()
	b.busy = false
	b.rendered = c.quantum
	return &b.out
}

// mixInputs sums all connected inputs of b into dst.
func (c *Context) mixInputs(b *node, dst *Block) {
	dst.silence()
	for _, in := range b.inputs {
		dst.add(c.pull(in))
	}
}

func (c *Context) enqueue(fns []func()) {
	c.pending = append(c.pending, fns...)
}

package graph

import "github.com/cwbudde/quantum-sounds/dsp/core"

// Block is one render quantum of audio. Mono blocks only use L.
type Block struct {
	L, R     []float64
	Channels int
}

func newBlock(frames int) Block {
	return Block{
		L:        make([]float64, frames),
		R:        make([]float64, frames),
		Channels: 1,
	}
}

func (b *Block) silence() {
	core.Zero(b.L)
	core.Zero(b.R)
	b.Channels = 1
}

// upmix converts a mono block to stereo by copying L into R.
func (b *Block) upmix() {
	if b.Channels == 2 {
		return
	}
	copy(b.R, b.L)
	b.Channels = 2
}

// add sums src into b using speaker up-mixing rules.
func (b *Block) add(src *Block) {
	if src.Channels == 2 {
		b.upmix()
		for i := range b.L {
			b.L[i] += src.L[i]
			b.R[i] += src.R[i]
		}
		return
	}

	for i := range b.L {
		b.L[i] += src.L[i]
	}
	if b.Channels == 2 {
		for i := range b.R {
			b.R[i] += src.L[i]
		}
	}
}

// copyFrom replaces the contents of b with src.
func (b *Block) copyFrom(src *Block) {
	copy(b.L, src.L)
	copy(b.R, src.R)
	b.Channels = src.Channels
}

// monoAt returns the down-mixed sample at frame i.
func (b *Block) monoAt(i int) float64 {
	if b.Channels == 2 {
		return 0.5 * (b.L[i] + b.R[i])
	}
	return b.L[i]
}

package main

import (
	"fmt"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const bitDepth = 16

// writeWAV stores a stereo render as 16-bit PCM. Samples are clipped to
// [-1, 1].
func writeWAV(path string, sampleRate int, left, right []float64) (err error) {
	if len(left) != len(right) {
		return fmt.Errorf("channel length mismatch: %d != %d", len(left), len(right))
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	enc := wav.NewEncoder(f, sampleRate, bitDepth, 2, 1)
	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: 2,
			SampleRate:  sampleRate,
		},
		Data:           make([]int, 2*len(left)),
		SourceBitDepth: bitDepth,
	}
	for i := range left {
		buf.Data[2*i] = pcm(left[i])
		buf.Data[2*i+1] = pcm(right[i])
	}

	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

func pcm(x float64) int {
	x = min(max(x, -1), 1)
	return int(x * 32767)
}

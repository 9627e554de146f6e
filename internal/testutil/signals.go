// Package testutil holds signal generators and tolerance assertions shared
// by the audio tests.
package testutil

import (
	"math"
	"math/rand"
)

// Sine returns n samples of a sine at freqHz starting at phase zero.
func Sine(freqHz, sampleRate, amplitude float64, n int) []float64 {
	out := make([]float64, n)
	step := 2 * math.Pi * freqHz / sampleRate
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}
	return out
}

// Noise returns n samples of uniform white noise in [-amplitude, amplitude]
// from a fixed seed.
func Noise(seed int64, amplitude float64, n int) []float64 {
	out := make([]float64, n)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out
}

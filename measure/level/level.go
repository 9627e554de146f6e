// Package level computes time-domain level statistics of rendered audio:
// peak, RMS, DC offset, crest factor and zero-crossing pitch.
package level

import "math"

// Stats holds the level statistics of one channel.
type Stats struct {
	Length int
	DC     float64 // mean
	RMS    float64
	RMSdB  float64
	Peak   float64 // max |x|
	PeakdB float64
	// Crest is peak / RMS, zero for silence.
	Crest         float64
	ZeroCrossings int
}

// ToDB converts an amplitude to decibels. Zero maps to -Inf.
func ToDB(amplitude float64) float64 {
	a := math.Abs(amplitude)
	if a == 0 {
		return math.Inf(-1)
	}
	return 20 * math.Log10(a)
}

// Calculate computes all statistics in one pass.
func Calculate(x []float64) Stats {
	s := Stats{Length: len(x), RMSdB: math.Inf(-1), PeakdB: math.Inf(-1)}
	if len(x) == 0 {
		return s
	}

	// Kahan summation keeps the DC estimate stable on long renders.
	var sum, c, sumSq float64
	for i, v := range x {
		y := v - c
		t := sum + y
		c = (t - sum) - y
		sum = t

		sumSq += v * v
		s.Peak = max(s.Peak, math.Abs(v))
		if i > 0 && x[i-1]*v < 0 {
			s.ZeroCrossings++
		}
	}

	n := float64(len(x))
	s.DC = sum / n
	s.RMS = math.Sqrt(sumSq / n)
	s.RMSdB = ToDB(s.RMS)
	s.PeakdB = ToDB(s.Peak)
	if s.RMS > 0 {
		s.Crest = s.Peak / s.RMS
	}
	return s
}

// RMS returns the root-mean-square of x.
func RMS(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	var sumSq float64
	for _, v := range x {
		sumSq += v * v
	}
	return math.Sqrt(sumSq / float64(len(x)))
}

// Peak returns the largest absolute sample of x.
func Peak(x []float64) float64 {
	var peak float64
	for _, v := range x {
		peak = max(peak, math.Abs(v))
	}
	return peak
}

// ZeroCrossingHz estimates the fundamental of a periodic signal from its
// zero crossings: two per cycle. It is coarse but independent of any
// spectral window, which makes it a cross-check for FFT peaks.
func ZeroCrossingHz(x []float64, sampleRate float64) float64 {
	if len(x) < 2 || sampleRate <= 0 {
		return 0
	}
	zc := Calculate(x).ZeroCrossings
	return float64(zc) / 2 * sampleRate / float64(len(x))
}

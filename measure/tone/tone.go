package tone

import (
	"errors"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"
	vecmath "github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/quantum-sounds/dsp/window"
	"github.com/cwbudde/quantum-sounds/measure/level"
)

var (
	// ErrEmpty is returned for empty input.
	ErrEmpty = errors.New("tone: empty signal")
	// ErrSampleRate is returned for a non-positive sample rate.
	ErrSampleRate = errors.New("tone: sample rate must be > 0")
)

// Report summarizes one analyzed block.
type Report struct {
	// PeakHz is the interpolated frequency of the strongest component.
	// It is zero for silence.
	PeakHz float64
	// PeakDB is the amplitude of that component in dB relative to a
	// full-scale sinusoid.
	PeakDB float64
	// RMS is the root mean square of the raw samples.
	RMS float64
}

// Analyze finds the dominant sinusoid in samples.
func Analyze(samples []float64, sampleRate float64) (Report, error) {
	if len(samples) == 0 {
		return Report{}, ErrEmpty
	}
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return Report{}, ErrSampleRate
	}

	rep := Report{RMS: RMS(samples), PeakDB: math.Inf(-1)}
	if rep.RMS == 0 {
		return rep, nil
	}

	coeffs, err := window.Hann(len(samples))
	if err != nil {
		return Report{}, err
	}
	windowed, err := window.ApplyCoefficients(samples, coeffs)
	if err != nil {
		return Report{}, err
	}

	size := nextPow2(len(samples))
	in := make([]complex128, size)
	for i, v := range windowed {
		in[i] = complex(v, 0)
	}
	out := make([]complex128, size)

	plan, err := algofft.NewPlan64(size)
	if err != nil {
		return Report{}, err
	}
	if err := plan.Forward(out, in); err != nil {
		return Report{}, err
	}

	bins := size/2 + 1
	re := make([]float64, bins)
	im := make([]float64, bins)
	for i := range bins {
		re[i] = real(out[i])
		im[i] = imag(out[i])
	}
	power := make([]float64, bins)
	vecmath.Power(power, re, im)

	peak := 1
	for i := 2; i < bins; i++ {
		if power[i] > power[peak] {
			peak = i
		}
	}

	offset := 0.0
	if peak > 0 && peak < bins-1 {
		a := logPower(power[peak-1])
		b := logPower(power[peak])
		c := logPower(power[peak+1])
		if d := a - 2*b + c; d < 0 {
			offset = 0.5 * (a - c) / d
		}
	}

	binHz := sampleRate / float64(size)
	rep.PeakHz = (float64(peak) + offset) * binHz

	amp := 2 * math.Sqrt(power[peak]) / (float64(len(samples)) * window.CoherentGain(coeffs))
	rep.PeakDB = 20 * math.Log10(amp)
	return rep, nil
}

// RMS returns the root mean square of x.
func RMS(x []float64) float64 {
	return level.RMS(x)
}

// Balance estimates the stereo position of a pair of channels in [0, 1]:
// 0 is fully left, 1 fully right. It inverts the equal-power law
// left = cos(b·π/2), right = sin(b·π/2). Silence measures as 0.5.
func Balance(left, right []float64) float64 {
	l, r := RMS(left), RMS(right)
	if l == 0 && r == 0 {
		return 0.5
	}
	return math.Atan2(r, l) / (math.Pi / 2)
}

func logPower(p float64) float64 {
	if p <= 0 {
		return -300
	}
	return math.Log(p)
}

func nextPow2(n int) int {
	size := 1
	for size < n {
		size <<= 1
	}
	return size
}

package core

import "math"

// Clamp limits value to the inclusive range [min, max].
func Clamp(value, min, max float64) float64 {
	if min > max {
		min, max = max, min
	}

	if value < min {
		return min
	}

	if value > max {
		return max
	}

	return value
}

// EqualPowerGains maps a balance position x in [0,1] onto a pair of
// channel gains following the equal-power law: x=0 is fully left, x=1 is
// fully right and left²+right² is always 1.
// Out-of-range and NaN inputs are clamped (NaN maps to the centre).
func EqualPowerGains(x float64) (left, right float64) {
	if math.IsNaN(x) {
		x = 0.5
	}
	x = Clamp(x, 0, 1)
	theta := x * math.Pi / 2
	return math.Cos(theta), math.Sin(theta)
}

// FlushDenormals converts tiny denormal-like values to exact zero.
func FlushDenormals(x float64) float64 {
	const epsilon = 1e-30
	if x > -epsilon && x < epsilon {
		return 0
	}

	return x
}

// Zero sets all values in buf to 0.
func Zero(buf []float64) {
	for i := range buf {
		buf[i] = 0
	}
}

package testutil

import (
	"fmt"
	"math"
	"testing"
)

// RequireNear fails t if got is farther than eps from want.
func RequireNear(t testing.TB, what string, got, want, eps float64) {
	t.Helper()
	if math.IsNaN(got) || math.Abs(got-want) > eps {
		t.Fatalf("%s = %v, want %v ± %v", what, got, want, eps)
	}
}

// RequireSilent fails t if any sample of x exceeds eps in magnitude.
func RequireSilent(t testing.TB, what string, x []float64, eps float64) {
	t.Helper()
	for i, v := range x {
		if math.IsNaN(v) || math.Abs(v) > eps {
			t.Fatalf("%s[%d] = %v, want silence (|x| <= %v)", what, i, v, eps)
		}
	}
}

// RequireFinite fails t if any element is NaN or Inf.
func RequireFinite(t testing.TB, what string, x []float64) {
	t.Helper()
	for i, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("%s[%d]: non-finite value %v", what, i, v)
		}
	}
}

// MaxAbsDiff returns the largest absolute difference between a and b.
func MaxAbsDiff(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("length mismatch: %d vs %d", len(a), len(b))
	}
	maxDiff := 0.0
	for i := range a {
		maxDiff = max(maxDiff, math.Abs(a[i]-b[i]))
	}
	return maxDiff, nil
}

package compare

import (
	"math"
	"strings"

	"promptlab/domain/core"
	"promptlab/internal/errors"

	"gonum.org/v1/gonum/stat/distuv"
)

// TTestMethod selects how the paired t-test turns t into a p-value
type TTestMethod string

const (
	// NormalApproximation treats t as standard normal: p = 2(1-Φ(|t|)).
	NormalApproximation TTestMethod = "normal"
	// StudentT uses the exact Student's t distribution with n-1 degrees of freedom.
	StudentT TTestMethod = "student"
)

// ParseTTestMethod maps "normal" / "student" (case-insensitive) to a method
func ParseTTestMethod(s string) (TTestMethod, error) {
	switch TTestMethod(strings.ToLower(strings.TrimSpace(s))) {
	case "", NormalApproximation:
		return NormalApproximation, nil
	case StudentT:
		return StudentT, nil
	}
	return "", errors.InvalidInputf(core.ErrInvalidParameter, "unknown t-test method %q", s)
}

// PairedTTest runs a two-tailed paired t-test on after[i]-before[i] with the
// normal approximation for the p-value.
//
// The differences' standard deviation is the population one. When every
// difference is equal the statistic is 0/0 or ±Inf; the result then carries
// NaN or the limiting p-value rather than an error.
func PairedTTest(before, after []float64) (TTestResult, error) {
	return PairedTTestWith(before, after, NormalApproximation)
}

// PairedTTestWith is PairedTTest with an explicit p-value method
func PairedTTestWith(before, after []float64, method TTestMethod) (TTestResult, error) {
	if len(before) != len(after) {
		return TTestResult{}, errors.InvalidInputf(core.ErrLengthMismatch,
			"paired t-test: before has %d values, after has %d", len(before), len(after))
	}
	if len(before) < 2 {
		return TTestResult{}, errors.InvalidInputf(core.ErrInsufficientData,
			"paired t-test needs at least 2 pairs, got %d", len(before))
	}

	diffs := differences(after, before)
	n := float64(len(diffs))
	t := Mean(diffs) / (StandardDeviation(diffs) / math.Sqrt(n))
	df := len(diffs) - 1

	var p float64
	switch method {
	case NormalApproximation:
		p = 2 * (1 - NormalCDF(math.Abs(t)))
	case StudentT:
		dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(df)}
		p = 2 * dist.Survival(math.Abs(t))
	default:
		return TTestResult{}, errors.InvalidInputf(core.ErrInvalidParameter, "unknown t-test method %q", string(method))
	}

	return TTestResult{
		TStatistic:       t,
		DegreesOfFreedom: df,
		PValue:           p,
		Method:           method,
	}, nil
}

// differences returns a[i]-b[i]; callers check the lengths
func differences(a, b []float64) []float64 {
	out := make([]float64, len(a))
	for i := range a {
		out[i] = a[i] - b[i]
	}
	return out
}

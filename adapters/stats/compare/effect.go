package compare

import (
	"math"

	"promptlab/domain/core"
	"promptlab/internal/errors"
)

// EffectSize is the non-parametric effect size r = |z|/√n
func EffectSize(z float64, n int) (float64, error) {
	if n <= 0 {
		return 0, errors.InvalidInputf(core.ErrInvalidParameter, "effect size needs n > 0, got %d", n)
	}
	return math.Abs(z) / math.Sqrt(float64(n)), nil
}

// EffectMagnitude labels r with the usual 0.1 / 0.3 / 0.5 cut-offs
func EffectMagnitude(r float64) string {
	switch {
	case math.IsNaN(r):
		return "undefined"
	case r < 0.1:
		return "negligible"
	case r < 0.3:
		return "small"
	case r < 0.5:
		return "medium"
	}
	return "large"
}

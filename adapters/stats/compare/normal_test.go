package compare

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErf_MatchesMathErfWithinApproximationError(t *testing.T) {
	for _, x := range []float64{-3, -1.5, -0.5, -0.1, 0.1, 0.5, 1, 1.5, 2.5, 4} {
		assert.InDelta(t, math.Erf(x), Erf(x), 2e-7, "x=%v", x)
	}
}

func TestErf_Symmetry(t *testing.T) {
	assert.Equal(t, 0.0, Erf(0))
	for _, x := range []float64{0.3, 1.1, 2.7} {
		assert.Equal(t, -Erf(x), Erf(-x))
	}
	assert.True(t, math.IsNaN(Erf(math.NaN())))
	assert.Equal(t, 1.0, Erf(math.Inf(1)))
}

func TestNormalCDF(t *testing.T) {
	assert.Equal(t, 0.5, NormalCDF(0))
	assert.InDelta(t, 0.975, NormalCDF(1.96), 1e-4)
	assert.InDelta(t, 0.025, NormalCDF(-1.96), 1e-4)
	assert.InDelta(t, 0.8413, NormalCDF(1), 1e-4)
}

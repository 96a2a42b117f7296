package compare

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEffectSize(t *testing.T) {
	r, err := EffectSize(-3, 9)
	require.NoError(t, err)
	assert.Equal(t, 1.0, r)

	_, err = EffectSize(1, 0)
	assert.Error(t, err)
}

func TestEffectSize_Monotonicity(t *testing.T) {
	zs := []float64{0, 0.5, -1, 1.5, -2.2, 3}
	for n := 1; n <= 30; n++ {
		prev := -1.0
		for _, z := range []float64{0, 0.5, 1, 1.5, 2.2, 3} {
			r, err := EffectSize(z, n)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, r, prev)
			prev = r
		}
	}
	for _, z := range zs {
		prev := math.Inf(1)
		for n := 1; n <= 30; n++ {
			r, err := EffectSize(z, n)
			require.NoError(t, err)
			assert.LessOrEqual(t, r, prev)
			prev = r
		}
	}
}

func TestEffectMagnitude(t *testing.T) {
	assert.Equal(t, "negligible", EffectMagnitude(0.05))
	assert.Equal(t, "small", EffectMagnitude(0.2))
	assert.Equal(t, "medium", EffectMagnitude(0.3))
	assert.Equal(t, "large", EffectMagnitude(0.84))
	assert.Equal(t, "undefined", EffectMagnitude(math.NaN()))
}

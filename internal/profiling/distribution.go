package profiling

import (
	"encoding/json"
	"math"

	"promptlab/domain/core"
	"promptlab/internal/errors"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"
)

// minShapeSample is the smallest sample whose kurtosis correction is defined
const minShapeSample = 4

// DistributionShape describes how far a sample departs from a normal shape
type DistributionShape struct {
	N              int     `json:"n"`
	Skewness       float64 `json:"skewness"`        // adjusted Fisher-Pearson
	ExcessKurtosis float64 `json:"excess_kurtosis"` // bias corrected, 0 for a normal sample
	JarqueBera     float64 `json:"jarque_bera"`
	PValue         float64 `json:"p_value"`

	// LooksNormal means Jarque-Bera did not reject normality at alpha. The test
	// is asymptotic and has little power below a few dozen values; for small
	// samples true only rules out gross skew or heavy tails.
	LooksNormal bool `json:"looks_normal"`
	Constant    bool `json:"constant"`
}

// MarshalJSON encodes non-finite moments as null
func (s DistributionShape) MarshalJSON() ([]byte, error) {
	type plain DistributionShape
	return json.Marshal(struct {
		plain
		Skewness       *float64 `json:"skewness"`
		ExcessKurtosis *float64 `json:"excess_kurtosis"`
		JarqueBera     *float64 `json:"jarque_bera"`
		PValue         *float64 `json:"p_value"`
	}{
		plain:          plain(s),
		Skewness:       finite(s.Skewness),
		ExcessKurtosis: finite(s.ExcessKurtosis),
		JarqueBera:     finite(s.JarqueBera),
		PValue:         finite(s.PValue),
	})
}

// DistributionAnalyzer handles distribution shape analysis
type DistributionAnalyzer struct {
	alpha float64
}

// NewDistributionAnalyzer creates an analyzer that rejects normality when the
// Jarque-Bera p-value falls below alpha
func NewDistributionAnalyzer(alpha float64) *DistributionAnalyzer {
	return &DistributionAnalyzer{alpha: alpha}
}

// AnalyzeDistribution computes skewness, kurtosis and a Jarque-Bera test.
// A constant sample is reported as Constant and never looks normal.
func (da *DistributionAnalyzer) AnalyzeDistribution(data []float64) (DistributionShape, error) {
	if len(data) < minShapeSample {
		return DistributionShape{}, errors.InvalidInputf(core.ErrInsufficientData,
			"distribution shape needs at least %d values, got %d", minShapeSample, len(data))
	}

	mean, err := stats.Mean(data)
	if err != nil {
		return DistributionShape{}, errors.InvalidInputf(core.ErrEmptySample, "distribution shape: %v", err)
	}

	shape := DistributionShape{N: len(data)}

	m2, m3, m4 := centralMoments(data, mean)
	if m2 == 0 {
		shape.Constant = true
		shape.PValue = 1
		return shape, nil
	}

	// population (biased) moment ratios feed the Jarque-Bera statistic
	g1 := m3 / math.Pow(m2, 1.5)
	g2 := m4/(m2*m2) - 3

	n := float64(len(data))
	shape.Skewness = g1 * math.Sqrt(n*(n-1)) / (n - 2)
	shape.ExcessKurtosis = ((n+1)*g2 + 6) * (n - 1) / ((n - 2) * (n - 3))
	shape.JarqueBera = n / 6 * (g1*g1 + g2*g2/4)

	chi := distuv.ChiSquared{K: 2}
	shape.PValue = chi.Survival(shape.JarqueBera)
	shape.LooksNormal = shape.PValue >= da.alpha

	return shape, nil
}

// centralMoments returns the second, third and fourth central moments
func centralMoments(data []float64, mean float64) (m2, m3, m4 float64) {
	for _, x := range data {
		d := x - mean
		d2 := d * d
		m2 += d2
		m3 += d2 * d
		m4 += d2 * d2
	}
	n := float64(len(data))
	return m2 / n, m3 / n, m4 / n
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

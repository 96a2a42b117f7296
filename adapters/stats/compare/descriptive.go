package compare

import (
	"math"
	"sort"

	"promptlab/domain/core"
	"promptlab/internal/errors"

	"github.com/montanaflynn/stats"
)

// DefaultZScore is the two-sided 95% normal quantile used for confidence intervals
const DefaultZScore = 1.96

// tukeyFence is the IQR multiplier for outlier fences
const tukeyFence = 1.5

// Mean returns the arithmetic mean. An empty sample yields NaN; callers are
// expected to pass non-empty input.
func Mean(sample []float64) float64 {
	m, err := stats.Mean(sample)
	if err != nil {
		return math.NaN()
	}
	return m
}

// StandardDeviation returns the population standard deviation (divides by n,
// not n-1). An empty sample yields NaN.
func StandardDeviation(sample []float64) float64 {
	sd, err := stats.StandardDeviationPopulation(sample)
	if err != nil {
		return math.NaN()
	}
	return sd
}

// ConfidenceIntervalOf returns mean ± 1.96·sd/√n.
func ConfidenceIntervalOf(sample []float64) ConfidenceInterval {
	return ConfidenceIntervalZ(sample, DefaultZScore)
}

// ConfidenceIntervalZ returns mean ± z·sd/√n using the population standard
// deviation. It is a normal approximation and undercovers for small samples,
// where a Student's t quantile would be wider.
func ConfidenceIntervalZ(sample []float64, z float64) ConfidenceInterval {
	mean := Mean(sample)
	margin := z * (StandardDeviation(sample) / math.Sqrt(float64(len(sample))))
	return ConfidenceInterval{
		LowerBound: mean - margin,
		UpperBound: mean + margin,
	}
}

// Median returns the middle value of a sorted copy, or the mean of the two
// middle values for even lengths. The input is not modified.
func Median(sample []float64) float64 {
	m, err := stats.Median(sample)
	if err != nil {
		return math.NaN()
	}
	return m
}

// InterquartileRange computes Q1 and Q3 by nearest rank on a sorted copy
// (indices floor((n-1)/4) and floor(3(n-1)/4), no interpolation) and the
// Tukey fences Q1-1.5·IQR and Q3+1.5·IQR.
func InterquartileRange(sample []float64) (IQRResult, error) {
	if len(sample) == 0 {
		return IQRResult{}, errors.InvalidInputf(core.ErrEmptySample, "interquartile range needs at least one value")
	}

	sorted := sortedCopy(sample)
	last := float64(len(sorted) - 1)
	q1 := sorted[int(math.Floor(last*0.25))]
	q3 := sorted[int(math.Floor(last*0.75))]
	iqr := q3 - q1

	return IQRResult{
		Q1:         q1,
		Q3:         q3,
		IQR:        iqr,
		LowerBound: q1 - tukeyFence*iqr,
		UpperBound: q3 + tukeyFence*iqr,
	}, nil
}

// Outliers returns the values outside the Tukey fences, in input order
func Outliers(sample []float64) []float64 {
	fences, err := InterquartileRange(sample)
	if err != nil {
		return nil
	}
	var out []float64
	for _, v := range sample {
		if v < fences.LowerBound || v > fences.UpperBound {
			out = append(out, v)
		}
	}
	return out
}

// Frequency counts exact values, ascending by value
func Frequency(sample []float64) []FrequencyBin {
	sorted := sortedCopy(sample)
	bins := make([]FrequencyBin, 0, len(sorted))
	for _, v := range sorted {
		if n := len(bins); n > 0 && bins[n-1].Value == v {
			bins[n-1].Count++
			continue
		}
		bins = append(bins, FrequencyBin{Value: v, Count: 1})
	}
	return bins
}

// Describe computes every descriptive statistic of a non-empty sample
func Describe(sample []float64, z float64) (Summary, error) {
	iqr, err := InterquartileRange(sample)
	if err != nil {
		return Summary{}, err
	}
	return Summary{
		N:                  len(sample),
		Mean:               Mean(sample),
		StandardDeviation:  StandardDeviation(sample),
		ConfidenceInterval: ConfidenceIntervalZ(sample, z),
		Median:             Median(sample),
		IQR:                iqr,
		Outliers:           Outliers(sample),
		Frequency:          Frequency(sample),
	}, nil
}

func sortedCopy(sample []float64) []float64 {
	sorted := make([]float64, len(sample))
	copy(sorted, sample)
	sort.Float64s(sorted)
	return sorted
}

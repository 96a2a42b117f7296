package compare

import (
	"encoding/json"
	"math"
)

// ConfidenceInterval is a symmetric interval around a sample mean
type ConfidenceInterval struct {
	LowerBound float64 `json:"lower_bound"`
	UpperBound float64 `json:"upper_bound"`
}

// MarshalJSON encodes non-finite bounds as null
func (ci ConfidenceInterval) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		LowerBound *float64 `json:"lower_bound"`
		UpperBound *float64 `json:"upper_bound"`
	}{
		LowerBound: Finite(ci.LowerBound),
		UpperBound: Finite(ci.UpperBound),
	})
}

// IQRResult holds nearest-rank quartiles and the Tukey fences derived from them
type IQRResult struct {
	Q1         float64 `json:"q1"`
	Q3         float64 `json:"q3"`
	IQR        float64 `json:"iqr"`
	LowerBound float64 `json:"lower_bound"`
	UpperBound float64 `json:"upper_bound"`
}

// MarshalJSON encodes non-finite quartiles and fences as null
func (r IQRResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Q1         *float64 `json:"q1"`
		Q3         *float64 `json:"q3"`
		IQR        *float64 `json:"iqr"`
		LowerBound *float64 `json:"lower_bound"`
		UpperBound *float64 `json:"upper_bound"`
	}{
		Q1:         Finite(r.Q1),
		Q3:         Finite(r.Q3),
		IQR:        Finite(r.IQR),
		LowerBound: Finite(r.LowerBound),
		UpperBound: Finite(r.UpperBound),
	})
}

// FrequencyBin counts how often an exact value occurs in a sample
type FrequencyBin struct {
	Value float64 `json:"value"`
	Count int     `json:"count"`
}

// TTestResult is the outcome of a paired t-test
type TTestResult struct {
	TStatistic       float64     `json:"t_statistic"`
	DegreesOfFreedom int         `json:"degrees_of_freedom"`
	PValue           float64     `json:"p_value"`
	Method           TTestMethod `json:"method"`
}

// MarshalJSON encodes non-finite statistics as null
func (r TTestResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		TStatistic       *float64    `json:"t_statistic"`
		DegreesOfFreedom int         `json:"degrees_of_freedom"`
		PValue           *float64    `json:"p_value"`
		Method           TTestMethod `json:"method"`
	}{
		TStatistic:       Finite(r.TStatistic),
		DegreesOfFreedom: r.DegreesOfFreedom,
		PValue:           Finite(r.PValue),
		Method:           r.Method,
	})
}

// WilcoxonResult is the outcome of a Wilcoxon signed-rank test.
//
// Degenerate is set when every paired difference is zero; in that case W is 0,
// ZStatistic is NaN, PValue is 1 and the remaining rank fields are zero.
type WilcoxonResult struct {
	W             float64  `json:"w"`
	WPlus         float64  `json:"w_plus"`
	WMinus        float64  `json:"w_minus"`
	N             int      `json:"n"`
	ZStatistic    float64  `json:"z_statistic"`
	PValue        float64  `json:"p_value"`
	IsSignificant bool     `json:"is_significant"`
	Degenerate    bool     `json:"degenerate"`
	Message       string   `json:"message"`
	Advisories    []string `json:"advisories,omitempty"`
}

// MarshalJSON encodes non-finite statistics as null
func (r WilcoxonResult) MarshalJSON() ([]byte, error) {
	type plain WilcoxonResult
	return json.Marshal(struct {
		plain
		ZStatistic *float64 `json:"z_statistic"`
		PValue     *float64 `json:"p_value"`
	}{
		plain:      plain(r),
		ZStatistic: Finite(r.ZStatistic),
		PValue:     Finite(r.PValue),
	})
}

// Summary bundles the descriptive statistics of one sample
type Summary struct {
	N                  int                `json:"n"`
	Mean               float64            `json:"mean"`
	StandardDeviation  float64            `json:"standard_deviation"`
	ConfidenceInterval ConfidenceInterval `json:"confidence_interval"`
	Median             float64            `json:"median"`
	IQR                IQRResult          `json:"iqr"`
	Outliers           []float64          `json:"outliers"`
	Frequency          []FrequencyBin     `json:"frequency"`
}

// MarshalJSON encodes non-finite statistics as null. Sums of large values
// overflow, so an all-finite sample can still have an infinite mean.
func (s Summary) MarshalJSON() ([]byte, error) {
	type plain Summary
	return json.Marshal(struct {
		plain
		Mean              *float64 `json:"mean"`
		StandardDeviation *float64 `json:"standard_deviation"`
		Median            *float64 `json:"median"`
	}{
		plain:             plain(s),
		Mean:              Finite(s.Mean),
		StandardDeviation: Finite(s.StandardDeviation),
		Median:            Finite(s.Median),
	})
}

// rankedItem lives only inside one Wilcoxon computation
type rankedItem struct {
	diff  float64
	abs   float64
	index int
	rank  float64
}

// Finite returns nil for NaN and infinities so they encode as JSON null
func Finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

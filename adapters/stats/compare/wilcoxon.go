package compare

import (
	"math"
	"sort"

	"promptlab/domain/core"
	"promptlab/internal/errors"
)

// DefaultAlpha is the significance threshold for the Wilcoxon verdict
const DefaultAlpha = 0.05

const (
	// wilcoxonMinPairs is the smallest paired sample the test accepts
	wilcoxonMinPairs = 5
	// wilcoxonReliableN is the non-zero pair count below which the normal
	// approximation is flagged
	wilcoxonReliableN = 20
)

// Advisory texts attached to Wilcoxon results
const (
	MessageNoNonZeroDifferences = "No non-zero differences"
	MessageSmallSample          = "Normal approximation may be inaccurate for n < 20."
	AdvisoryManyZeroDifferences = "Many zero differences. Results may be unreliable."
)

// WilcoxonSignedRank tests whether after tends to exceed before, using
// DefaultAlpha for the verdict. See WilcoxonSignedRankAlpha.
func WilcoxonSignedRank(after, before []float64) (WilcoxonResult, error) {
	return WilcoxonSignedRankAlpha(after, before, DefaultAlpha)
}

// WilcoxonSignedRankAlpha runs the Wilcoxon signed-rank test on after[i]-before[i].
//
// Zero differences are dropped. Remaining differences are ranked by absolute
// value with mid-ranks for ties. W is min(W+, W-), but z is computed from W+
// with a continuity correction of 0.5, and the p-value is the upper tail
// 1-Φ(z): the test is one-sided in favour of after > before.
//
// If all differences are zero the degenerate result is returned without error.
func WilcoxonSignedRankAlpha(after, before []float64, alpha float64) (WilcoxonResult, error) {
	if len(after) != len(before) {
		return WilcoxonResult{}, errors.InvalidInputf(core.ErrLengthMismatch,
			"wilcoxon: after has %d values, before has %d", len(after), len(before))
	}
	if len(after) < wilcoxonMinPairs {
		return WilcoxonResult{}, errors.InvalidInputf(core.ErrInsufficientData,
			"wilcoxon needs at least %d pairs, got %d", wilcoxonMinPairs, len(after))
	}

	ranked := make([]rankedItem, 0, len(after))
	for i, d := range differences(after, before) {
		if d == 0 {
			continue
		}
		ranked = append(ranked, rankedItem{diff: d, abs: math.Abs(d), index: i})
	}

	if len(ranked) == 0 {
		return WilcoxonResult{
			W:          0,
			ZStatistic: math.NaN(),
			PValue:     1,
			Degenerate: true,
			Message:    MessageNoNonZeroDifferences,
		}, nil
	}

	var advisories []string
	if float64(len(ranked)) < float64(len(after))/2 {
		advisories = append(advisories, AdvisoryManyZeroDifferences)
	}

	assignRanks(ranked)

	var wPlus, wMinus float64
	for _, item := range ranked {
		if item.diff > 0 {
			wPlus += item.rank
		} else {
			wMinus += item.rank
		}
	}

	n := float64(len(ranked))
	meanW := n * (n + 1) / 4
	stdW := math.Sqrt(n * (n + 1) * (2*n + 1) / 24)
	z := (wPlus - meanW - 0.5) / stdW
	p := 1 - NormalCDF(z)

	message := ""
	if len(ranked) < wilcoxonReliableN {
		message = MessageSmallSample
		advisories = append(advisories, MessageSmallSample)
	}

	return WilcoxonResult{
		W:             math.Min(wPlus, wMinus),
		WPlus:         wPlus,
		WMinus:        wMinus,
		N:             len(ranked),
		ZStatistic:    z,
		PValue:        p,
		IsSignificant: p < alpha,
		Message:       message,
		Advisories:    advisories,
	}, nil
}

// assignRanks sorts items by absolute difference and gives every run of equal
// absolute values the average of the 1-based ranks it spans.
func assignRanks(items []rankedItem) {
	sort.SliceStable(items, func(i, j int) bool { return items[i].abs < items[j].abs })

	for start := 0; start < len(items); {
		end := start + 1
		for end < len(items) && items[end].abs == items[start].abs {
			end++
		}
		// ranks start+1 .. end
		avg := float64(start+1+end) / 2
		for k := start; k < end; k++ {
			items[k].rank = avg
		}
		start = end
	}
}

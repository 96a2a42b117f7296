package app

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"promptlab/adapters/stats/compare"
	"promptlab/domain/core"
	"promptlab/internal/profiling"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// Report is the result of analysing a set of comparisons
type Report struct {
	ID          core.ReportID       `json:"id"`
	GeneratedAt time.Time           `json:"generated_at"`
	Records     int                 `json:"records"`
	Config      compare.Config      `json:"config"`
	Scores      ScoreAnalysis       `json:"scores"`
	Tokens      *TokenAnalysis      `json:"tokens,omitempty"`
	Criteria    []CriterionAnalysis `json:"criteria,omitempty"`
	Techniques  []TechniqueAnalysis `json:"techniques,omitempty"`
	Skipped     []SkippedTest       `json:"skipped,omitempty"`
	RuntimeMs   int64               `json:"runtime_ms"`
}

// ScoreAnalysis compares base and enhanced overall scores
type ScoreAnalysis struct {
	BaseMean        float64                      `json:"base_mean"`
	EnhancedMean    float64                      `json:"enhanced_mean"`
	Differences     compare.Summary              `json:"differences"`
	Shape           *profiling.DistributionShape `json:"shape,omitempty"`
	TTest           *compare.TTestResult         `json:"t_test,omitempty"`
	Wilcoxon        *compare.WilcoxonResult      `json:"wilcoxon,omitempty"`
	EffectSize      *float64                     `json:"effect_size,omitempty"`
	EffectMagnitude string                       `json:"effect_magnitude,omitempty"`
	Verdict         string                       `json:"verdict"`
}

// MarshalJSON encodes non-finite means as null
func (s ScoreAnalysis) MarshalJSON() ([]byte, error) {
	type plain ScoreAnalysis
	return json.Marshal(struct {
		plain
		BaseMean     *float64 `json:"base_mean"`
		EnhancedMean *float64 `json:"enhanced_mean"`
	}{
		plain:        plain(s),
		BaseMean:     compare.Finite(s.BaseMean),
		EnhancedMean: compare.Finite(s.EnhancedMean),
	})
}

// TokenSide summarises total token usage of one prompt variant
type TokenSide struct {
	Mean              float64 `json:"mean"`
	Median            float64 `json:"median"`
	StandardDeviation float64 `json:"standard_deviation"`
}

// MarshalJSON encodes non-finite statistics as null
func (t TokenSide) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Mean              *float64 `json:"mean"`
		Median            *float64 `json:"median"`
		StandardDeviation *float64 `json:"standard_deviation"`
	}{
		Mean:              compare.Finite(t.Mean),
		Median:            compare.Finite(t.Median),
		StandardDeviation: compare.Finite(t.StandardDeviation),
	})
}

// TokenAnalysis compares token usage of the two variants
type TokenAnalysis struct {
	Base         TokenSide            `json:"base"`
	Enhanced     TokenSide            `json:"enhanced"`
	MeanIncrease float64              `json:"mean_increase"`
	TTest        *compare.TTestResult `json:"t_test,omitempty"`
}

// MarshalJSON encodes a non-finite increase as null
func (t TokenAnalysis) MarshalJSON() ([]byte, error) {
	type plain TokenAnalysis
	return json.Marshal(struct {
		plain
		MeanIncrease *float64 `json:"mean_increase"`
	}{
		plain:        plain(t),
		MeanIncrease: compare.Finite(t.MeanIncrease),
	})
}

// CriterionAnalysis is the per-criterion score shift
type CriterionAnalysis struct {
	Name     string                  `json:"name"`
	N        int                     `json:"n"`
	MeanDiff float64                 `json:"mean_diff"`
	Wilcoxon *compare.WilcoxonResult `json:"wilcoxon,omitempty"`
}

// MarshalJSON encodes a non-finite mean difference as null
func (c CriterionAnalysis) MarshalJSON() ([]byte, error) {
	type plain CriterionAnalysis
	return json.Marshal(struct {
		plain
		MeanDiff *float64 `json:"mean_diff"`
	}{
		plain:    plain(c),
		MeanDiff: compare.Finite(c.MeanDiff),
	})
}

// TechniqueAnalysis compares the mean score difference of comparisons that
// enabled a technique against those that did not. A side with no records has
// a NaN mean, encoded as null.
type TechniqueAnalysis struct {
	Name            string  `json:"name"`
	With            int     `json:"with"`
	Without         int     `json:"without"`
	MeanDiffWith    float64 `json:"mean_diff_with"`
	MeanDiffWithout float64 `json:"mean_diff_without"`
	Uplift          float64 `json:"uplift"`
}

// MarshalJSON encodes non-finite means as null
func (t TechniqueAnalysis) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Name            string   `json:"name"`
		With            int      `json:"with"`
		Without         int      `json:"without"`
		MeanDiffWith    *float64 `json:"mean_diff_with"`
		MeanDiffWithout *float64 `json:"mean_diff_without"`
		Uplift          *float64 `json:"uplift"`
	}{
		Name:            t.Name,
		With:            t.With,
		Without:         t.Without,
		MeanDiffWith:    compare.Finite(t.MeanDiffWith),
		MeanDiffWithout: compare.Finite(t.MeanDiffWithout),
		Uplift:          compare.Finite(t.Uplift),
	})
}

// SkippedTest records a test whose preconditions were not met
type SkippedTest struct {
	Section string `json:"section"`
	Test    string `json:"test"`
	Reason  string `json:"reason"`
}

// Markdown renders the report as a markdown document
func (r *Report) Markdown() string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Prompt comparison report\n\n")
	fmt.Fprintf(&b, "Report `%s` generated %s from %d comparisons ", r.ID, r.GeneratedAt.Format(time.RFC3339), r.Records)
	fmt.Fprintf(&b, "(z = %s, alpha = %s, t-test p-values: %s).\n\n", num(r.Config.ZScore), num(r.Config.Alpha), r.Config.TMethod)
	fmt.Fprintf(&b, "**%s**\n\n", r.Scores.Verdict)

	s := r.Scores
	d := s.Differences
	b.WriteString("## Scores\n\n")
	b.WriteString("| Metric | Value |\n|---|---|\n")
	row(&b, "Base mean", num(s.BaseMean))
	row(&b, "Enhanced mean", num(s.EnhancedMean))
	row(&b, "Mean difference", num(d.Mean))
	row(&b, "SD of differences", num(d.StandardDeviation))
	row(&b, "CI of mean difference", fmt.Sprintf("[%s, %s]", num(d.ConfidenceInterval.LowerBound), num(d.ConfidenceInterval.UpperBound)))
	row(&b, "Median difference", num(d.Median))
	row(&b, "IQR of differences", fmt.Sprintf("%s (Q1 %s, Q3 %s)", num(d.IQR.IQR), num(d.IQR.Q1), num(d.IQR.Q3)))
	row(&b, "Outliers", fmt.Sprintf("%d", len(d.Outliers)))
	b.WriteString("\n")

	b.WriteString("### Significance\n\n")
	b.WriteString("| Test | Statistic | p-value | Notes |\n|---|---|---|---|\n")
	if s.TTest != nil {
		fmt.Fprintf(&b, "| Paired t-test | t = %s (df %d) | %s | %s |\n",
			num(s.TTest.TStatistic), s.TTest.DegreesOfFreedom, num(s.TTest.PValue), s.TTest.Method)
	}
	if w := s.Wilcoxon; w != nil {
		notes := strings.Join(w.Advisories, " ")
		if w.Degenerate {
			notes = w.Message
		}
		fmt.Fprintf(&b, "| Wilcoxon signed-rank | W = %s, z = %s (n %d) | %s | %s |\n",
			num(w.W), num(w.ZStatistic), w.N, num(w.PValue), notes)
	}
	if s.EffectSize != nil {
		fmt.Fprintf(&b, "\nEffect size r = %s (%s).\n", num(*s.EffectSize), s.EffectMagnitude)
	}
	if sh := s.Shape; sh != nil {
		switch {
		case sh.Constant:
			b.WriteString("\nEvery score difference is identical.\n")
		case sh.LooksNormal:
			fmt.Fprintf(&b, "\nDifferences are consistent with a normal shape (Jarque-Bera p = %s, skewness %s).\n",
				num(sh.PValue), num(sh.Skewness))
		default:
			fmt.Fprintf(&b, "\nDifferences depart from normality (Jarque-Bera p = %s, skewness %s); prefer the Wilcoxon result.\n",
				num(sh.PValue), num(sh.Skewness))
		}
	}
	b.WriteString("\n")

	if t := r.Tokens; t != nil {
		b.WriteString("## Token usage\n\n")
		b.WriteString("| Variant | Mean | Median | SD |\n|---|---|---|---|\n")
		fmt.Fprintf(&b, "| Base | %s | %s | %s |\n", num(t.Base.Mean), num(t.Base.Median), num(t.Base.StandardDeviation))
		fmt.Fprintf(&b, "| Enhanced | %s | %s | %s |\n", num(t.Enhanced.Mean), num(t.Enhanced.Median), num(t.Enhanced.StandardDeviation))
		fmt.Fprintf(&b, "\nMean increase: %s tokens", num(t.MeanIncrease))
		if t.TTest != nil {
			fmt.Fprintf(&b, " (paired t = %s, p = %s)", num(t.TTest.TStatistic), num(t.TTest.PValue))
		}
		b.WriteString(".\n\n")
	}

	if len(r.Criteria) > 0 {
		b.WriteString("## Criteria\n\n")
		b.WriteString("| Criterion | n | Mean difference | Wilcoxon p | Significant |\n|---|---|---|---|---|\n")
		for _, c := range r.Criteria {
			p, sig := "n/a", "n/a"
			if c.Wilcoxon != nil {
				p = num(c.Wilcoxon.PValue)
				sig = fmt.Sprintf("%t", c.Wilcoxon.IsSignificant)
			}
			fmt.Fprintf(&b, "| %s | %d | %s | %s | %s |\n", c.Name, c.N, num(c.MeanDiff), p, sig)
		}
		b.WriteString("\n")
	}

	if len(r.Techniques) > 0 {
		b.WriteString("## Techniques\n\n")
		b.WriteString("| Technique | With | Without | Mean difference with | Mean difference without | Uplift |\n|---|---|---|---|---|---|\n")
		for _, t := range r.Techniques {
			fmt.Fprintf(&b, "| %s | %d | %d | %s | %s | %s |\n",
				t.Name, t.With, t.Without, num(t.MeanDiffWith), num(t.MeanDiffWithout), num(t.Uplift))
		}
		b.WriteString("\n")
	}

	if len(r.Skipped) > 0 {
		b.WriteString("## Skipped tests\n\n")
		for _, sk := range r.Skipped {
			fmt.Fprintf(&b, "- %s, %s: %s\n", sk.Section, sk.Test, sk.Reason)
		}
		b.WriteString("\n")
	}

	return b.String()
}

// HTML renders the markdown report to an HTML fragment
func (r *Report) HTML() []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return markdown.ToHTML([]byte(r.Markdown()), p, renderer)
}

func row(b *strings.Builder, label, value string) {
	fmt.Fprintf(b, "| %s | %s |\n", label, value)
}

func num(v float64) string {
	switch {
	case math.IsNaN(v):
		return "n/a"
	case math.IsInf(v, 1):
		return "+Inf"
	case math.IsInf(v, -1):
		return "-Inf"
	}
	return fmt.Sprintf("%.4g", v)
}

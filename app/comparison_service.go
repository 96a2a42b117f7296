package app

import (
	"context"
	"time"

	"promptlab/adapters/stats/compare"
	"promptlab/domain/comparison"
	"promptlab/domain/core"
	"promptlab/internal"
	"promptlab/internal/errors"
	"promptlab/internal/profiling"
	"promptlab/ports"

	"golang.org/x/sync/errgroup"
)

// ComparisonService turns stored base-vs-enhanced evaluations into a
// statistical report
type ComparisonService struct {
	engine *compare.Engine
	shapes *profiling.DistributionAnalyzer
	logger *internal.Logger
	now    func() time.Time
}

// NewComparisonService creates a comparison service
func NewComparisonService(engine *compare.Engine, logger *internal.Logger) *ComparisonService {
	if logger != nil {
		logger = logger.WithComponent("comparison")
	}
	return &ComparisonService{
		engine: engine,
		shapes: profiling.NewDistributionAnalyzer(engine.Config().Alpha),
		logger: logger,
		now:    time.Now,
	}
}

// Run loads records from source and analyses them
func (s *ComparisonService) Run(ctx context.Context, source ports.ComparisonSource, filter ports.ComparisonFilter) (*Report, error) {
	records, err := source.ListComparisons(ctx, filter)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load comparisons")
	}
	s.logger.Info("loaded %d comparisons", len(records))
	return s.Analyze(ctx, records)
}

// Analyze builds a report. Sections whose test preconditions are not met
// are listed in Report.Skipped instead of failing the whole report.
func (s *ComparisonService) Analyze(ctx context.Context, records comparison.Records) (*Report, error) {
	if len(records) == 0 {
		return nil, errors.InvalidInputf(core.ErrEmptySample, "no comparisons to analyse")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := s.now()
	report := &Report{
		ID:          core.NewReportID(),
		GeneratedAt: start.UTC(),
		Records:     len(records),
		Config:      s.engine.Config(),
	}

	var scoreSkips, tokenSkips, criterionSkips []SkippedTest
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		report.Scores, scoreSkips, err = s.analyzeScores(records)
		return err
	})

	if records.HasTokenUsage() {
		g.Go(func() error {
			tokens, skips, err := s.analyzeTokens(records)
			report.Tokens, tokenSkips = tokens, skips
			return err
		})
	}

	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		report.Criteria, criterionSkips = s.analyzeCriteria(records)
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report.Techniques = analyzeTechniques(records)
	report.Skipped = append(scoreSkips, tokenSkips...)
	report.Skipped = append(report.Skipped, criterionSkips...)
	report.Scores.Verdict = verdict(report.Scores, report.Config.Alpha)
	report.RuntimeMs = s.now().Sub(start).Milliseconds()

	s.logger.Debug("report %s: %d records, %d skipped tests", report.ID, report.Records, len(report.Skipped))
	return report, nil
}

// analyzeScores describes the score differences and runs the significance
// tests. The effect size is r = |z|/√N with N the total number of pairs,
// zero differences included, while z itself comes from the w.N non-zero
// pairs Wilcoxon ranks. Ties therefore pull r towards zero.
func (s *ComparisonService) analyzeScores(records comparison.Records) (ScoreAnalysis, []SkippedTest, error) {
	base, enhanced := records.BaseScores(), records.EnhancedScores()

	scoreDiffs := records.ScoreDiffs()
	diffs, err := s.engine.Describe(scoreDiffs)
	if err != nil {
		return ScoreAnalysis{}, nil, err
	}

	out := ScoreAnalysis{
		BaseMean:     compare.Mean(base),
		EnhancedMean: compare.Mean(enhanced),
		Differences:  diffs,
	}
	var skipped []SkippedTest

	if shape, err := s.shapes.AnalyzeDistribution(scoreDiffs); err != nil {
		if !core.IsSampleError(err) {
			return out, nil, err
		}
		skipped = append(skipped, SkippedTest{Section: "scores", Test: "normality (Jarque-Bera)", Reason: err.Error()})
	} else {
		out.Shape = &shape
	}

	if tt, err := s.engine.PairedTTest(base, enhanced); err != nil {
		if !core.IsSampleError(err) {
			return out, nil, err
		}
		skipped = append(skipped, SkippedTest{Section: "scores", Test: "paired t-test", Reason: err.Error()})
	} else {
		out.TTest = &tt
	}

	if w, err := s.engine.WilcoxonSignedRank(enhanced, base); err != nil {
		if !core.IsSampleError(err) {
			return out, nil, err
		}
		skipped = append(skipped, SkippedTest{Section: "scores", Test: "wilcoxon signed-rank", Reason: err.Error()})
	} else {
		out.Wilcoxon = &w
		if !w.Degenerate {
			r, err := s.engine.EffectSize(w.ZStatistic, len(records))
			if err != nil {
				return out, nil, err
			}
			out.EffectSize = &r
			out.EffectMagnitude = compare.EffectMagnitude(r)
		}
	}

	return out, skipped, nil
}

func (s *ComparisonService) analyzeTokens(records comparison.Records) (*TokenAnalysis, []SkippedTest, error) {
	base, enhanced := records.BaseTokens(), records.EnhancedTokens()

	out := &TokenAnalysis{
		Base:     tokenSide(base),
		Enhanced: tokenSide(enhanced),
	}
	out.MeanIncrease = out.Enhanced.Mean - out.Base.Mean

	tt, err := s.engine.PairedTTest(base, enhanced)
	if err != nil {
		if !core.IsSampleError(err) {
			return nil, nil, err
		}
		return out, []SkippedTest{{Section: "tokens", Test: "paired t-test", Reason: err.Error()}}, nil
	}
	out.TTest = &tt
	return out, nil, nil
}

func (s *ComparisonService) analyzeCriteria(records comparison.Records) ([]CriterionAnalysis, []SkippedTest) {
	var out []CriterionAnalysis
	var skipped []SkippedTest
	for _, name := range records.CriterionNames() {
		base, enhanced := records.CriterionScores(name)
		ca := CriterionAnalysis{
			Name:     name,
			N:        len(base),
			MeanDiff: compare.Mean(enhanced) - compare.Mean(base),
		}
		if w, err := s.engine.WilcoxonSignedRank(enhanced, base); err != nil {
			skipped = append(skipped, SkippedTest{Section: "criterion " + name, Test: "wilcoxon signed-rank", Reason: err.Error()})
		} else {
			ca.Wilcoxon = &w
		}
		out = append(out, ca)
	}
	return out, skipped
}

// analyzeTechniques splits the score differences on each enhancement option
func analyzeTechniques(records comparison.Records) []TechniqueAnalysis {
	var out []TechniqueAnalysis
	for _, name := range records.TechniqueNames() {
		with, without := records.PartitionByTechnique(name)
		ta := TechniqueAnalysis{
			Name:            name,
			With:            len(with),
			Without:         len(without),
			MeanDiffWith:    compare.Mean(with.ScoreDiffs()),
			MeanDiffWithout: compare.Mean(without.ScoreDiffs()),
		}
		ta.Uplift = ta.MeanDiffWith - ta.MeanDiffWithout
		out = append(out, ta)
	}
	return out
}

func tokenSide(sample []float64) TokenSide {
	return TokenSide{
		Mean:              compare.Mean(sample),
		Median:            compare.Median(sample),
		StandardDeviation: compare.StandardDeviation(sample),
	}
}

// verdict prefers the Wilcoxon outcome and falls back to the t-test
func verdict(s ScoreAnalysis, alpha float64) string {
	switch {
	case s.Wilcoxon != nil && s.Wilcoxon.Degenerate:
		return "No difference: every enhanced score equals its base score."
	case s.Wilcoxon != nil && s.Wilcoxon.IsSignificant:
		return "Enhanced prompt scores significantly higher (one-sided Wilcoxon signed-rank)."
	case s.Wilcoxon != nil:
		return "No significant improvement from the enhanced prompt (one-sided Wilcoxon signed-rank)."
	case s.TTest != nil && s.TTest.PValue < alpha && s.TTest.TStatistic > 0:
		return "Enhanced prompt scores significantly higher (paired t-test; too few pairs for Wilcoxon)."
	case s.TTest != nil && s.TTest.PValue < alpha:
		return "Enhanced prompt scores significantly lower (paired t-test; too few pairs for Wilcoxon)."
	case s.TTest != nil:
		return "No significant difference (paired t-test; too few pairs for Wilcoxon)."
	}
	return "Not enough comparisons for a significance test."
}

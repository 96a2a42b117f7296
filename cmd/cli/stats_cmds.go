package main

import (
	"fmt"
	"strings"

	"promptlab/adapters/stats/compare"
	"promptlab/domain/core"
	"promptlab/internal/errors"

	"github.com/spf13/cobra"
)

func newDescribeCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "describe [values...]",
		Short: "Descriptive statistics of one sample",
		Long: `Mean, population standard deviation, confidence interval, median,
nearest-rank IQR with Tukey fences, outliers and a frequency table.

Example: promptlab describe 1 2 3 4 5
         promptlab describe "1,2,3,4,5" --json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sample, err := parseSample(strings.Join(args, " "))
			if err != nil {
				return err
			}
			engine, err := opts.engine(cmd)
			if err != nil {
				return err
			}
			summary, err := engine.Describe(sample)
			if err != nil {
				return err
			}
			if opts.json {
				return printJSON(cmd.OutOrStdout(), summary)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "📊 n = %d\n", summary.N)
			fmt.Fprintf(out, "Mean:      %.4f\n", summary.Mean)
			fmt.Fprintf(out, "SD:        %.4f\n", summary.StandardDeviation)
			fmt.Fprintf(out, "CI (z=%g): [%.4f, %.4f]\n", engine.Config().ZScore,
				summary.ConfidenceInterval.LowerBound, summary.ConfidenceInterval.UpperBound)
			fmt.Fprintf(out, "Median:    %.4f\n", summary.Median)
			fmt.Fprintf(out, "IQR:       %.4f (Q1 %.4f, Q3 %.4f, fences %.4f / %.4f)\n",
				summary.IQR.IQR, summary.IQR.Q1, summary.IQR.Q3, summary.IQR.LowerBound, summary.IQR.UpperBound)
			fmt.Fprintf(out, "Outliers:  %v\n", summary.Outliers)
			return nil
		},
	}
}

// pairedFlags holds the --before/--after samples of the paired tests
type pairedFlags struct {
	before string
	after  string
}

func (p *pairedFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&p.before, "before", "", "Baseline sample, comma separated")
	cmd.Flags().StringVar(&p.after, "after", "", "Treatment sample, comma separated")
	_ = cmd.MarkFlagRequired("before")
	_ = cmd.MarkFlagRequired("after")
}

func (p *pairedFlags) parse() (before, after []float64, err error) {
	if before, err = parseSample(p.before); err != nil {
		return nil, nil, fmt.Errorf("--before: %w", err)
	}
	if after, err = parseSample(p.after); err != nil {
		return nil, nil, fmt.Errorf("--after: %w", err)
	}
	return before, after, nil
}

func newTTestCmd(opts *cliOptions) *cobra.Command {
	var paired pairedFlags
	var method string

	cmd := &cobra.Command{
		Use:   "ttest",
		Short: "Paired t-test of after against before",
		Long: `Paired t-test on after[i]-before[i]. The default p-value uses the normal
approximation; --method student uses the Student's t distribution.

Example: promptlab ttest --before 1,2,3,4,5 --after 3,4,5,6,8`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			before, after, err := paired.parse()
			if err != nil {
				return err
			}
			engine, err := opts.engine(cmd)
			if err != nil {
				return err
			}

			var res compare.TTestResult
			if method == "" {
				res, err = engine.PairedTTest(before, after)
			} else {
				var m compare.TTestMethod
				if m, err = compare.ParseTTestMethod(method); err == nil {
					res, err = compare.PairedTTestWith(before, after, m)
				}
			}
			if err != nil {
				return err
			}
			if opts.json {
				return printJSON(cmd.OutOrStdout(), res)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "t = %.4f, df = %d, p = %.4g (%s)\n",
				res.TStatistic, res.DegreesOfFreedom, res.PValue, res.Method)
			return nil
		},
	}

	paired.register(cmd)
	cmd.Flags().StringVar(&method, "method", "", "p-value method: normal|student (default from STATS_T_METHOD)")
	return cmd
}

func newWilcoxonCmd(opts *cliOptions) *cobra.Command {
	var paired pairedFlags
	var alpha float64

	cmd := &cobra.Command{
		Use:   "wilcoxon",
		Short: "One-sided Wilcoxon signed-rank test that after exceeds before",
		Long: `Wilcoxon signed-rank test with mid-ranks for ties, a 0.5 continuity
correction and the upper-tail p-value.

Example: promptlab wilcoxon --before 0,0,0,0,0 --after 1,2,3,4,5 --alpha 0.05`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			before, after, err := paired.parse()
			if err != nil {
				return err
			}
			engine, err := opts.engine(cmd)
			if err != nil {
				return err
			}

			var res compare.WilcoxonResult
			switch {
			case !cmd.Flags().Changed("alpha"):
				res, err = engine.WilcoxonSignedRank(after, before)
			case !(alpha > 0 && alpha < 1):
				err = errors.InvalidInputf(core.ErrInvalidParameter, "--alpha must be in (0, 1), got %g", alpha)
			default:
				res, err = compare.WilcoxonSignedRankAlpha(after, before, alpha)
			}
			if err != nil {
				return err
			}
			if opts.json {
				return printJSON(cmd.OutOrStdout(), res)
			}

			out := cmd.OutOrStdout()
			if res.Degenerate {
				fmt.Fprintf(out, "%s (W = 0, p = 1)\n", res.Message)
				return nil
			}
			fmt.Fprintf(out, "W = %g (W+ %g, W- %g), n = %d, z = %.4f, p = %.4g, significant: %t\n",
				res.W, res.WPlus, res.WMinus, res.N, res.ZStatistic, res.PValue, res.IsSignificant)
			for _, advisory := range res.Advisories {
				fmt.Fprintf(out, "⚠️  %s\n", advisory)
			}
			return nil
		},
	}

	paired.register(cmd)
	cmd.Flags().Float64Var(&alpha, "alpha", compare.DefaultAlpha, "Significance threshold (default from STATS_ALPHA)")
	return cmd
}

func newEffectSizeCmd(opts *cliOptions) *cobra.Command {
	var z float64
	var n int

	cmd := &cobra.Command{
		Use:     "effect-size",
		Short:   "Effect size r = |z|/sqrt(n)",
		Example: "  promptlab effect-size --z 2.1 --n 30",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := compare.EffectSize(z, n)
			if err != nil {
				return err
			}
			magnitude := compare.EffectMagnitude(r)
			if opts.json {
				return printJSON(cmd.OutOrStdout(), map[string]interface{}{"effect_size": r, "magnitude": magnitude})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "r = %.4f (%s)\n", r, magnitude)
			return nil
		},
	}

	cmd.Flags().Float64Var(&z, "z", 0, "z statistic")
	cmd.Flags().IntVar(&n, "n", 0, "Sample size")
	_ = cmd.MarkFlagRequired("z")
	_ = cmd.MarkFlagRequired("n")
	return cmd
}

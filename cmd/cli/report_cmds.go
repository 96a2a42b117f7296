package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"promptlab/app"
	"promptlab/domain/comparison"
	"promptlab/internal/container"
	"promptlab/internal/errors"
	"promptlab/internal/testkit"
	"promptlab/ports"

	"github.com/spf13/cobra"
)

// reportOutput holds the --format/--output flags shared by report and demo
type reportOutput struct {
	format string
	output string
}

func (o *reportOutput) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.format, "format", "markdown", "Output format: markdown|json|html")
	cmd.Flags().StringVarP(&o.output, "output", "o", "", "Write the report to a file instead of stdout")
}

func (o *reportOutput) write(cmd *cobra.Command, report *app.Report, asJSON bool) error {
	format := o.format
	if asJSON {
		format = "json"
	}

	var w io.Writer = cmd.OutOrStdout()
	if o.output != "" {
		f, err := os.Create(o.output)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", o.output, err)
		}
		defer f.Close()
		w = f
	}

	switch format {
	case "markdown", "md":
		_, err := io.WriteString(w, report.Markdown())
		return err
	case "html":
		_, err := w.Write(report.HTML())
		return err
	case "json":
		return printJSON(w, report)
	}
	return errors.InvalidInput(fmt.Sprintf("unknown format %q (want markdown, json or html)", format))
}

func newReportCmd(opts *cliOptions) *cobra.Command {
	var (
		file        string
		databaseURL string
		table       string
		since       string
		limit       int
		out         reportOutput
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Analyse stored comparisons and print a report",
		Long: `Load base-vs-enhanced evaluations and report score and token differences.

Records come from --database-url (the comparisons table of the chat app),
or from --file: .json arrays of records, .xlsx (first sheet) or .csv with
base_score and enhanced_score columns. Flags override DATABASE_URL and
COMPARISONS_FILE.

Example: promptlab report --file evaluations.xlsx --format html -o report.html`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := *opts.cfg
			if file != "" {
				cfg.Source.File = file
				cfg.Source.DatabaseURL = ""
			}
			if databaseURL != "" {
				cfg.Source.DatabaseURL = databaseURL
			}
			if table != "" {
				cfg.Source.Table = table
			}

			if !cfg.HasSource() {
				return errors.ConfigInvalid("no comparison source: pass --file or --database-url")
			}

			filter := ports.ComparisonFilter{Limit: limit}
			if since != "" {
				t, err := time.Parse(time.RFC3339, since)
				if err != nil {
					return fmt.Errorf("--since must be RFC3339: %w", err)
				}
				filter.Since = t
			}

			c, err := container.New(&cfg, opts.logger(cmd))
			if err != nil {
				return err
			}
			if err := c.InitSource(cmd.Context()); err != nil {
				return err
			}
			defer c.Shutdown(cmd.Context())

			report, err := c.ComparisonService.Run(cmd.Context(), c.Source, filter)
			if err != nil {
				return err
			}
			return out.write(cmd, report, opts.json)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Comparison file (.json, .xlsx or .csv)")
	cmd.Flags().StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL")
	cmd.Flags().StringVar(&table, "table", "", "Comparisons table (default from COMPARISONS_TABLE)")
	cmd.Flags().StringVar(&since, "since", "", "Only comparisons created at or after this RFC3339 time")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of comparisons (0 = all)")
	out.register(cmd)
	return cmd
}

func newDemoCmd(opts *cliOptions) *cobra.Command {
	var (
		write string
		out   reportOutput
	)
	genCfg := testkit.DefaultComparisonConfig()

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Report on synthetic comparisons",
		Long: `Generate deterministic synthetic evaluations and analyse them.

Example: promptlab demo --count 60 --improvement 0.3 --seed 7
         promptlab demo --write sample.json   # then: promptlab report -f sample.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			gen := testkit.NewComparisonGenerator(genCfg)
			var records comparison.Records
			if write == "" {
				records = gen.GenerateRecords()
			} else {
				var err error
				if records, err = gen.WriteToFile(write); err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d records to %s\n", len(records), write)
			}

			c, err := container.New(opts.cfg, opts.logger(cmd))
			if err != nil {
				return err
			}
			report, err := c.ComparisonService.Analyze(cmd.Context(), records)
			if err != nil {
				return err
			}
			return out.write(cmd, report, opts.json)
		},
	}

	cmd.Flags().IntVar(&genCfg.Count, "count", genCfg.Count, "Number of comparisons")
	cmd.Flags().Int64Var(&genCfg.Seed, "seed", genCfg.Seed, "Random seed for deterministic generation")
	cmd.Flags().Float64Var(&genCfg.Improvement, "improvement", genCfg.Improvement, "Mean score shift of the enhanced prompt")
	cmd.Flags().Float64Var(&genCfg.Noise, "noise", genCfg.Noise, "SD of the per-pair score shift")
	cmd.Flags().Float64Var(&genCfg.TieRate, "tie-rate", genCfg.TieRate, "Share of pairs scored identically")
	cmd.Flags().StringVar(&write, "write", "", "Also write the generated records to this JSON file")
	out.register(cmd)
	return cmd
}

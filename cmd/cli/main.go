package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"promptlab/adapters/stats/compare"
	"promptlab/internal"
	"promptlab/internal/config"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// cliOptions are shared by every subcommand
type cliOptions struct {
	verbose bool
	json    bool
	cfg     *config.Config
}

func main() {
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &cliOptions{}

	rootCmd := &cobra.Command{
		Use:           "promptlab",
		Short:         "Compare base and enhanced prompt evaluations statistically",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			opts.cfg = cfg
			return nil
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log at DEBUG level to stderr")
	rootCmd.PersistentFlags().BoolVar(&opts.json, "json", false, "Print results as JSON")

	rootCmd.AddCommand(
		newDescribeCmd(opts),
		newTTestCmd(opts),
		newWilcoxonCmd(opts),
		newEffectSizeCmd(opts),
		newReportCmd(opts),
		newDemoCmd(opts),
	)

	return rootCmd
}

func (o *cliOptions) logger(cmd *cobra.Command) *internal.Logger {
	level := o.cfg.Log.Level
	if o.verbose {
		level = internal.LogLevelDebug
	}
	return internal.NewLogger(level).WithOutput(log.New(cmd.ErrOrStderr(), "", log.LstdFlags))
}

func (o *cliOptions) engine(cmd *cobra.Command) (*compare.Engine, error) {
	engineCfg, err := compare.ConfigFromStats(o.cfg.Stats)
	if err != nil {
		return nil, err
	}
	return compare.NewEngine(engineCfg, o.logger(cmd)), nil
}

// parseSample accepts numbers separated by commas and/or whitespace
func parseSample(raw string) ([]float64, error) {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
	out := make([]float64, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", f)
		}
		out = append(out, v)
	}
	return out, nil
}

func printJSON(w io.Writer, v interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/GoSim-25-26J-441/contagion-core/internal/contagion"
	"github.com/GoSim-25-26J-441/contagion-core/internal/montecarlo"
	"github.com/GoSim-25-26J-441/contagion-core/internal/report"
	"github.com/GoSim-25-26J-441/contagion-core/internal/config"
	"github.com/GoSim-25-26J-441/contagion-core/pkg/models"
)

type sweepOptions struct {
	configPath string
	format     string
	banks      int
	iterations int
	degrees    []float64
	threshold  float64
	seed       int64
	workers    int
	order      string
	record     bool
	progress   bool
}

func newSweepCmd() *cobra.Command {
	opts := &sweepOptions{}
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Run a contagion probability sweep and print the result",
		Example: `  contagion sweep
  contagion sweep --config config/sweep.yaml --format map > data.json
  contagion sweep --banks 50 --degrees 1,2,4 --seed 42 --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			params, err := opts.params(cmd)
			if err != nil {
				return err
			}
			format, err := report.ParseFormat(opts.format)
			if err != nil {
				return err
			}

			var sweepOpts []montecarlo.SweepOption
			if opts.progress {
				sweepOpts = append(sweepOpts, montecarlo.WithProgress(progressPrinter(cmd.ErrOrStderr())))
			}
			result, err := montecarlo.Sweep(cmd.Context(), params, sweepOpts...)
			if err != nil {
				return err
			}
			return report.Write(cmd.OutOrStdout(), result, format)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.configPath, "config", "c", "", "path to a sweep YAML config (defaults to the reference sweep)")
	f.StringVarP(&opts.format, "format", "f", "table", "output format (table, json, map)")
	f.IntVar(&opts.banks, "banks", 0, "number of banks per network")
	f.IntVar(&opts.iterations, "iterations", 0, "trials per degree value")
	f.Float64SliceVar(&opts.degrees, "degrees", nil, "explicit average degree values to sweep")
	f.Float64Var(&opts.threshold, "threshold", montecarlo.DefaultCascadeThreshold, "default fraction that counts as a cascade")
	f.Int64Var(&opts.seed, "seed", 0, "base seed (0 = time-based)")
	f.IntVar(&opts.workers, "workers", 0, "concurrent trial workers (0 = GOMAXPROCS)")
	f.StringVar(&opts.order, "order", "", "frontier order (fifo, lifo, random)")
	f.BoolVar(&opts.record, "record-trials", false, "include per-trial default-set sizes in the result")
	f.BoolVar(&opts.progress, "progress", false, "print each degree value to stderr as it completes")

	return cmd
}

// params loads the config and applies every flag the user set explicitly.
func (o *sweepOptions) params(cmd *cobra.Command) (montecarlo.Params, error) {
	cfg := config.Default()
	if o.configPath != "" {
		loaded, err := config.LoadConfig(o.configPath)
		if err != nil {
			return montecarlo.Params{}, err
		}
		if err := applyConfigLogging(cmd, loaded); err != nil {
			return montecarlo.Params{}, err
		}
		cfg = loaded
	}

	params, err := cfg.Params()
	if err != nil {
		return montecarlo.Params{}, err
	}

	f := cmd.Flags()
	if f.Changed("banks") {
		params.Banks = o.banks
	}
	if f.Changed("iterations") {
		params.Iterations = o.iterations
	}
	if f.Changed("degrees") {
		params.Degrees = o.degrees
	}
	if f.Changed("threshold") {
		params.CascadeThreshold = o.threshold
	}
	if f.Changed("seed") {
		params.Seed = o.seed
	}
	if f.Changed("workers") {
		params.Workers = o.workers
	}
	if f.Changed("order") {
		order, err := contagion.ParseOrder(o.order)
		if err != nil {
			return montecarlo.Params{}, fmt.Errorf("%w: %v", montecarlo.ErrInvalidParams, err)
		}
		params.Order = order
	}
	if f.Changed("record-trials") {
		params.RecordTrials = o.record
	}
	return params, params.Validate()
}

func progressPrinter(w io.Writer) montecarlo.ProgressFunc {
	return func(_, _ int, point models.SweepPoint) {
		fmt.Fprintf(w, "Average Degree : %v Probability of Contagion : %v\n",
			point.RealizedDegree, point.ContagionProbability)
	}
}

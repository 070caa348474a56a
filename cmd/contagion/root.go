package main

import (
	"github.com/spf13/cobra"

	"github.com/GoSim-25-26J-441/contagion-core/internal/config"
	"github.com/GoSim-25-26J-441/contagion-core/pkg/logger"
)

type rootOptions struct {
	logLevel  string
	logFormat string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "contagion",
		Short: "Monte Carlo interbank contagion simulator",
		Long: `contagion estimates the probability that the default of one bank cascades
through a random interbank lending network, as a function of average degree.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			log, err := logger.NewWithFormat(opts.logFormat, opts.logLevel, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			logger.SetDefault(log)
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&opts.logFormat, "log-format", "text", "log format (text, json)")

	cmd.AddCommand(newSweepCmd(), newServeCmd())
	return cmd
}

// applyConfigLogging rebuilds the default logger from the log_level and
// log_format of cfg. A log flag given on the command line wins over the file.
func applyConfigLogging(cmd *cobra.Command, cfg *config.Config) error {
	level, format := cfg.LogLevel, cfg.LogFormat
	if f := cmd.Flag("log-level"); f != nil && f.Changed {
		level = f.Value.String()
	}
	if f := cmd.Flag("log-format"); f != nil && f.Changed {
		format = f.Value.String()
	}
	log, err := logger.NewWithFormat(format, level, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	logger.SetDefault(log)
	return nil
}

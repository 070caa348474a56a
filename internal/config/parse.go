package config

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/GoSim-25-26J-441/contagion-core/internal/contagion"
	"github.com/GoSim-25-26J-441/contagion-core/internal/montecarlo"
	"github.com/GoSim-25-26J-441/contagion-core/internal/network"
)

// ErrInvalidConfig is wrapped by every parse or validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Default returns the reference configuration.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// ParseConfigYAML parses a Config from YAML bytes, fills defaults and validates it.
// This is used for APIs where config is provided as payload (not via filesystem).
func ParseConfigYAML(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config yaml: %w", ErrInvalidConfig, err)
	}

	applyDefaults(&cfg)
	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	return &cfg, nil
}

// ParseConfigYAMLString parses a Config from a YAML string and validates it.
func ParseConfigYAMLString(yamlText string) (*Config, error) {
	return ParseConfigYAML([]byte(yamlText))
}

// Marshal renders cfg as YAML.
func Marshal(cfg *Config) ([]byte, error) {
	return yaml.Marshal(cfg)
}

func applyDefaults(cfg *Config) {
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.Banks == 0 {
		cfg.Banks = montecarlo.DefaultBanks
	}
	if cfg.Iterations == 0 {
		cfg.Iterations = montecarlo.DefaultIterations
	}
	if cfg.CascadeThreshold == nil {
		threshold := montecarlo.DefaultCascadeThreshold
		cfg.CascadeThreshold = &threshold
	}
	if len(cfg.Degrees) == 0 && cfg.DegreeRange == nil {
		cfg.DegreeRange = &DegreeRange{
			Start: montecarlo.DefaultDegreeStart,
			Stop:  montecarlo.DefaultDegreeStop,
			Step:  montecarlo.DefaultDegreeStep,
		}
	}
	if cfg.FrontierOrder == "" {
		cfg.FrontierOrder = contagion.FIFO.String()
	}
	if cfg.BalanceSheet == nil {
		sheet := network.DefaultBalanceSheet()
		cfg.BalanceSheet = &sheet
	}
}

// Params converts cfg into sweep parameters.
func (c *Config) Params() (montecarlo.Params, error) {
	degrees := c.Degrees
	if len(degrees) == 0 && c.DegreeRange != nil {
		var err error
		degrees, err = montecarlo.DegreeRange(c.DegreeRange.Start, c.DegreeRange.Stop, c.DegreeRange.Step)
		if err != nil {
			return montecarlo.Params{}, err
		}
	}

	order, err := contagion.ParseOrder(c.FrontierOrder)
	if err != nil {
		return montecarlo.Params{}, fmt.Errorf("%w: %v", montecarlo.ErrInvalidParams, err)
	}

	sheet := network.DefaultBalanceSheet()
	if c.BalanceSheet != nil {
		sheet = *c.BalanceSheet
	}
	threshold := montecarlo.DefaultCascadeThreshold
	if c.CascadeThreshold != nil {
		threshold = *c.CascadeThreshold
	}

	return montecarlo.Params{
		Banks:            c.Banks,
		Degrees:          degrees,
		Iterations:       c.Iterations,
		CascadeThreshold: threshold,
		Seed:             c.Seed,
		Workers:          c.Workers,
		Order:            order,
		Sheet:            sheet,
		RecordTrials:     c.RecordTrials,
	}, nil
}

package config

import (
	"github.com/GoSim-25-26J-441/contagion-core/internal/network"
)

// Config represents a contagion sweep configuration
type Config struct {
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format,omitempty"` // text or json

	Banks       int          `yaml:"banks"`
	Degrees     []float64    `yaml:"degrees,omitempty"`
	DegreeRange *DegreeRange `yaml:"degree_range,omitempty"`
	Iterations  int          `yaml:"iterations"`
	// CascadeThreshold is a pointer so an explicit 0 survives defaulting.
	CascadeThreshold *float64 `yaml:"cascade_threshold,omitempty"`

	Seed          int64  `yaml:"seed,omitempty"`    // 0 = time-based
	Workers       int    `yaml:"workers,omitempty"` // 0 = GOMAXPROCS
	FrontierOrder string `yaml:"frontier_order,omitempty"`
	RecordTrials  bool   `yaml:"record_trials,omitempty"`

	BalanceSheet *network.BalanceSheet `yaml:"balance_sheet,omitempty"`
}

// DegreeRange is a half-open range [start, stop) of average degrees
type DegreeRange struct {
	Start float64 `yaml:"start"`
	Stop  float64 `yaml:"stop"`
	Step  float64 `yaml:"step"`
}

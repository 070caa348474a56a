// Package montecarlo runs contagion trials and sweeps them over a sequence of
// average-degree values.
package montecarlo

import (
	"errors"
	"fmt"
	"math"

	"github.com/GoSim-25-26J-441/contagion-core/internal/contagion"
	"github.com/GoSim-25-26J-441/contagion-core/internal/network"
)

// Defaults used by the reference sweep.
const (
	DefaultBanks            = 100
	DefaultIterations       = 100
	DefaultCascadeThreshold = 0.05
	DefaultDegreeStart      = 0.0
	DefaultDegreeStop       = 10.0
	DefaultDegreeStep       = 0.5
)

// Upper bounds accepted by Validate and DegreeRange. A sweep keeps one int
// per trial, so MaxTrials bounds its memory.
const (
	MaxBanks        = 100_000
	MaxDegreeValues = 10_000
	MaxTrials       = 10_000_000
)

// ErrInvalidParams is wrapped by every parameter validation failure.
var ErrInvalidParams = errors.New("invalid sweep parameters")

// Params configures a sweep.
type Params struct {
	Banks            int
	Degrees          []float64
	Iterations       int
	CascadeThreshold float64
	// Seed drives every trial. Zero selects a time-based seed.
	Seed int64
	// Workers bounds concurrent trial blocks. Zero means GOMAXPROCS.
	Workers      int
	Order        contagion.Order
	Sheet        network.BalanceSheet
	RecordTrials bool
}

// DefaultParams returns the reference configuration: 100 banks, degrees
// 0.0..9.5 in steps of 0.5, 100 iterations per degree, 5% threshold.
func DefaultParams() Params {
	degrees, _ := DegreeRange(DefaultDegreeStart, DefaultDegreeStop, DefaultDegreeStep)
	return Params{
		Banks:            DefaultBanks,
		Degrees:          degrees,
		Iterations:       DefaultIterations,
		CascadeThreshold: DefaultCascadeThreshold,
		Order:            contagion.FIFO,
		Sheet:            network.DefaultBalanceSheet(),
	}
}

// DegreeRange returns start, start+step, ... for every value below stop.
// Values are computed as start+i*step so no rounding error accumulates.
func DegreeRange(start, stop, step float64) ([]float64, error) {
	if !finite(start) || !finite(stop) || !finite(step) {
		return nil, fmt.Errorf("%w: degree range values must be finite", ErrInvalidParams)
	}
	if step <= 0 {
		return nil, fmt.Errorf("%w: degree step must be positive, got %g", ErrInvalidParams, step)
	}
	if start < 0 {
		return nil, fmt.Errorf("%w: degree start cannot be negative, got %g", ErrInvalidParams, start)
	}
	count := math.Ceil((stop - start) / step)
	if count > MaxDegreeValues {
		return nil, fmt.Errorf("%w: degree range yields %g values, at most %d allowed",
			ErrInvalidParams, count, MaxDegreeValues)
	}
	// count can be one short when the quotient rounds down; the stop check
	// discards the extra candidate otherwise.
	var out []float64
	for i := 0; i <= int(count); i++ {
		d := start + float64(i)*step
		if d >= stop {
			break
		}
		out = append(out, d)
	}
	return out, nil
}

// Validate checks p before any simulation work starts.
func (p Params) Validate() error {
	if p.Banks <= 0 {
		return fmt.Errorf("%w: banks must be positive, got %d", ErrInvalidParams, p.Banks)
	}
	if p.Banks > MaxBanks {
		return fmt.Errorf("%w: banks must be at most %d, got %d", ErrInvalidParams, MaxBanks, p.Banks)
	}
	if p.Iterations <= 0 {
		return fmt.Errorf("%w: iterations must be positive, got %d", ErrInvalidParams, p.Iterations)
	}
	if len(p.Degrees) == 0 {
		return fmt.Errorf("%w: at least one degree value is required", ErrInvalidParams)
	}
	if len(p.Degrees) > MaxDegreeValues {
		return fmt.Errorf("%w: at most %d degree values allowed, got %d", ErrInvalidParams, MaxDegreeValues, len(p.Degrees))
	}
	if p.Iterations > MaxTrials/len(p.Degrees) {
		return fmt.Errorf("%w: %d iterations over %d degree values exceeds %d trials",
			ErrInvalidParams, p.Iterations, len(p.Degrees), MaxTrials)
	}
	for i, d := range p.Degrees {
		if !finite(d) || d < 0 {
			return fmt.Errorf("%w: degree %d must be a non-negative number, got %g", ErrInvalidParams, i, d)
		}
	}
	if !finite(p.CascadeThreshold) || p.CascadeThreshold < 0 || p.CascadeThreshold > 1 {
		return fmt.Errorf("%w: cascade threshold must be within [0, 1], got %g", ErrInvalidParams, p.CascadeThreshold)
	}
	if p.Workers < 0 {
		return fmt.Errorf("%w: workers cannot be negative, got %d", ErrInvalidParams, p.Workers)
	}
	switch p.Order {
	case contagion.FIFO, contagion.LIFO, contagion.Random:
	default:
		return fmt.Errorf("%w: unknown frontier order %s", ErrInvalidParams, p.Order)
	}
	sheet := []struct {
		name  string
		value float64
	}{
		{"external_assets", p.Sheet.ExternalAssets},
		{"interbank_assets", p.Sheet.InterbankAssets},
		{"liabilities", p.Sheet.Liabilities},
	}
	for _, f := range sheet {
		if !finite(f.value) || f.value < 0 {
			return fmt.Errorf("%w: %s must be a non-negative number, got %g", ErrInvalidParams, f.name, f.value)
		}
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

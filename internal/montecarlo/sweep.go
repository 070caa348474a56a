package montecarlo

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"

	"github.com/GoSim-25-26J-441/contagion-core/pkg/logger"
	"github.com/GoSim-25-26J-441/contagion-core/pkg/models"
	"github.com/GoSim-25-26J-441/contagion-core/pkg/utils"
)

// Observer receives trial and sweep events. Implementations must be safe for
// concurrent use.
type Observer interface {
	ObserveTrial(degree float64, outcome TrialOutcome)
	ObserveSweep(points, trials int, elapsed time.Duration)
}

// ProgressFunc is called after each degree value is aggregated, in sweep order.
type ProgressFunc func(completed, total int, point models.SweepPoint)

// Sweeper runs a validated sweep.
type Sweeper struct {
	params   Params
	observer Observer
	progress ProgressFunc
}

// SweepOption configures a Sweeper.
type SweepOption func(*Sweeper)

// WithObserver attaches an Observer.
func WithObserver(o Observer) SweepOption {
	return func(s *Sweeper) { s.observer = o }
}

// WithProgress attaches a progress callback.
func WithProgress(fn ProgressFunc) SweepOption {
	return func(s *Sweeper) { s.progress = fn }
}

// NewSweeper validates params and resolves the seed and worker count.
func NewSweeper(params Params, opts ...SweepOption) (*Sweeper, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	params.Seed = utils.ResolveSeed(params.Seed)
	if params.Workers == 0 {
		params.Workers = runtime.GOMAXPROCS(0)
	}
	params.Degrees = append([]float64(nil), params.Degrees...)

	s := &Sweeper{params: params}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Params returns the resolved parameters.
func (s *Sweeper) Params() Params {
	return s.params
}

// block is one worker's contiguous range of trials at one degree value.
type block struct {
	degreeIdx int
	from, to  int
	edges     int
	cascades  int
}

// Run executes every trial and aggregates one point per degree value.
// Trial i at degree index d always uses seed DeriveSeed(seed, d, i), so the
// result does not depend on the worker count or scheduling.
func (s *Sweeper) Run(ctx context.Context) (*models.SweepResult, error) {
	p := s.params
	start := time.Now()

	logger.Info("sweep started",
		"banks", p.Banks,
		"degrees", len(p.Degrees),
		"iterations", p.Iterations,
		"workers", p.Workers,
		"seed", p.Seed,
		"order", p.Order.String())

	chunk := (p.Iterations + p.Workers - 1) / p.Workers
	sizes := make([][]int, len(p.Degrees))
	var blocks []*block
	for d := range p.Degrees {
		sizes[d] = make([]int, p.Iterations)
		for from := 0; from < p.Iterations; from += chunk {
			blocks = append(blocks, &block{degreeIdx: d, from: from, to: min(from+chunk, p.Iterations)})
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.Workers)
	for _, b := range blocks {
		g.Go(func() error {
			return s.runBlock(gctx, b, sizes[b.degreeIdx])
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &models.SweepResult{
		Banks:            p.Banks,
		Iterations:       p.Iterations,
		CascadeThreshold: p.CascadeThreshold,
		Seed:             p.Seed,
		Points:           make([]models.SweepPoint, 0, len(p.Degrees)),
	}

	merged := make([]block, len(p.Degrees))
	for _, b := range blocks {
		merged[b.degreeIdx].edges += b.edges
		merged[b.degreeIdx].cascades += b.cascades
	}
	for d, degree := range p.Degrees {
		point := s.aggregate(degree, merged[d].edges, merged[d].cascades, sizes[d])
		result.Points = append(result.Points, point)
		logger.Debug("degree aggregated",
			"nominal_degree", degree,
			"realized_degree", point.RealizedDegree,
			"contagion_probability", point.ContagionProbability)
		if s.progress != nil {
			s.progress(d+1, len(p.Degrees), point)
		}
	}

	elapsed := time.Since(start)
	if s.observer != nil {
		s.observer.ObserveSweep(len(result.Points), result.TotalTrials(), elapsed)
	}
	logger.Info("sweep finished", "points", len(result.Points), "elapsed", elapsed)
	return result, nil
}

func (s *Sweeper) runBlock(ctx context.Context, b *block, sizes []int) error {
	p := s.params
	degree := p.Degrees[b.degreeIdx]
	cfg := TrialConfig{
		Banks:            p.Banks,
		Degree:           degree,
		CascadeThreshold: p.CascadeThreshold,
		Order:            p.Order,
		Sheet:            p.Sheet,
	}
	for i := b.from; i < b.to; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		out, err := RunTrial(cfg, utils.NewRandSource(utils.DeriveSeed(p.Seed, b.degreeIdx, i)))
		if err != nil {
			return fmt.Errorf("trial %d at degree %g: %w", i, degree, err)
		}
		b.edges += out.Edges
		if out.Cascade {
			b.cascades++
		}
		sizes[i] = out.Defaults
		if s.observer != nil {
			s.observer.ObserveTrial(degree, out)
		}
	}
	return nil
}

func (s *Sweeper) aggregate(degree float64, edges, cascades int, sizes []int) models.SweepPoint {
	p := s.params
	trials := len(sizes)
	prob := float64(cascades) / float64(trials)

	samples := make([]float64, trials)
	maxDefaults := 0
	for i, v := range sizes {
		samples[i] = float64(v)
		maxDefaults = max(maxDefaults, v)
	}
	mean, std := stat.Mean(samples, nil), 0.0
	if trials > 1 {
		std = stat.StdDev(samples, nil)
	}

	point := models.SweepPoint{
		NominalDegree:        degree,
		RealizedDegree:       float64(edges) / float64(trials*p.Banks),
		ContagionProbability: prob,
		ProbabilityStdErr:    math.Sqrt(prob * (1 - prob) / float64(trials)),
		Trials:               trials,
		Cascades:             cascades,
		Edges:                edges,
		MeanDefaults:         mean,
		StdDevDefaults:       std,
		MaxDefaults:          maxDefaults,
	}
	if p.RecordTrials {
		point.DefaultSizes = sizes
	}
	return point
}

// Sweep validates params and runs a sweep.
func Sweep(ctx context.Context, params Params, opts ...SweepOption) (*models.SweepResult, error) {
	s, err := NewSweeper(params, opts...)
	if err != nil {
		return nil, err
	}
	return s.Run(ctx)
}

package simd

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/GoSim-25-26J-441/contagion-core/internal/metrics"
	"github.com/GoSim-25-26J-441/contagion-core/internal/montecarlo"
	"github.com/GoSim-25-26J-441/contagion-core/internal/config"
	"github.com/GoSim-25-26J-441/contagion-core/pkg/logger"
	"github.com/GoSim-25-26J-441/contagion-core/pkg/models"
)

// RunExecutor manages asynchronous sweep execution and per-run cancellation.
type RunExecutor struct {
	store    *RunStore
	recorder *metrics.Recorder

	mu      sync.Mutex
	cancels map[string]context.CancelFunc
	done    map[string]chan struct{}
}

func NewRunExecutor(store *RunStore, recorder *metrics.Recorder) *RunExecutor {
	return &RunExecutor{
		store:    store,
		recorder: recorder,
		cancels:  make(map[string]context.CancelFunc),
		done:     make(map[string]chan struct{}),
	}
}

// Store returns the backing run store.
func (e *RunExecutor) Store() *RunStore {
	return e.store
}

// Create parses configYAML and registers a pending run.
func (e *RunExecutor) Create(runID, configYAML string) (RunRecord, error) {
	cfg, err := config.ParseConfigYAMLString(configYAML)
	if err != nil {
		return RunRecord{}, err
	}
	params, err := cfg.Params()
	if err != nil {
		return RunRecord{}, err
	}
	return e.store.Create(runID, configYAML, params)
}

// Start begins executing a run asynchronously.
// Returns the updated run state (running) or an error.
func (e *RunExecutor) Start(runID string) (RunRecord, error) {
	if runID == "" {
		return RunRecord{}, ErrRunIDMissing
	}

	rec, ok := e.store.Get(runID)
	if !ok {
		return RunRecord{}, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if rec.Run.Status == RunStatusRunning {
		return rec, nil
	}
	if rec.Run.Status.Terminal() {
		return RunRecord{}, fmt.Errorf("%w: %s", ErrRunTerminal, runID)
	}

	sweeper, err := montecarlo.NewSweeper(rec.Params,
		montecarlo.WithObserver(e.observer()),
		montecarlo.WithProgress(func(completed, total int, _ models.SweepPoint) {
			if err := e.store.SetProgress(runID, completed, total); err != nil {
				logger.Warn("failed to record progress", "run_id", runID, "error", err)
			}
		}))
	if err != nil {
		if _, setErr := e.store.SetStatus(runID, RunStatusFailed, err.Error()); setErr != nil {
			logger.Error("failed to set failed status", "run_id", runID, "error", setErr)
		}
		return RunRecord{}, err
	}

	// e.mu is held until the cancel func is registered so Stop always finds it.
	e.mu.Lock()
	updated, started, err := e.store.MarkRunning(runID, sweeper.Params().Seed)
	if err != nil {
		e.mu.Unlock()
		return RunRecord{}, err
	}
	if !started {
		e.mu.Unlock()
		return updated, nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	e.cancels[runID] = cancel
	e.done[runID] = make(chan struct{})
	e.mu.Unlock()

	go e.runSweep(ctx, runID, sweeper)
	return updated, nil
}

// Stop cancels a pending or running run and marks it cancelled.
func (e *RunExecutor) Stop(runID string) (RunRecord, error) {
	if runID == "" {
		return RunRecord{}, ErrRunIDMissing
	}

	updated, err := e.store.SetStatus(runID, RunStatusCancelled, "")
	if err != nil {
		return RunRecord{}, err
	}

	e.mu.Lock()
	cancel, ok := e.cancels[runID]
	e.mu.Unlock()
	if ok {
		cancel()
	}
	return updated, nil
}

// Wait blocks until the run's sweep goroutine has exited or ctx is done.
// Runs that were never started return immediately.
func (e *RunExecutor) Wait(ctx context.Context, runID string) (RunRecord, error) {
	e.mu.Lock()
	done, ok := e.done[runID]
	e.mu.Unlock()

	if ok {
		select {
		case <-done:
		case <-ctx.Done():
			return RunRecord{}, ctx.Err()
		}
	}

	rec, found := e.store.Get(runID)
	if !found {
		return RunRecord{}, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return rec, nil
}

func (e *RunExecutor) observer() montecarlo.Observer {
	if e.recorder == nil {
		return nil
	}
	return e.recorder
}

func (e *RunExecutor) cleanup(runID string) {
	e.mu.Lock()
	if cancel, ok := e.cancels[runID]; ok {
		cancel()
		delete(e.cancels, runID)
	}
	if done, ok := e.done[runID]; ok {
		close(done)
		delete(e.done, runID)
	}
	e.mu.Unlock()
}

func (e *RunExecutor) runSweep(ctx context.Context, runID string, sweeper *montecarlo.Sweeper) {
	defer e.cleanup(runID)
	if e.recorder != nil {
		defer e.recorder.SweepStarted()()
	}

	log := logger.With("run_id", runID)
	log.Info("sweep run started", "seed", sweeper.Params().Seed)

	result, err := sweeper.Run(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			log.Info("sweep run cancelled")
			return
		}
		log.Error("sweep run failed", "error", err)
		if _, setErr := e.store.SetStatus(runID, RunStatusFailed, err.Error()); setErr != nil {
			log.Error("failed to set failed status", "error", setErr)
		}
		return
	}

	if _, err := e.store.Complete(runID, result); err != nil {
		log.Warn("discarding sweep result", "error", err)
		return
	}
	log.Info("sweep run completed", "points", len(result.Points), "trials", result.TotalTrials())
}

package simd

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/GoSim-25-26J-441/contagion-core/internal/montecarlo"
	"github.com/GoSim-25-26J-441/contagion-core/pkg/models"
)

// RunStatus is the lifecycle state of a sweep run.
type RunStatus string

const (
	RunStatusPending   RunStatus = "pending"
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
	RunStatusCancelled RunStatus = "cancelled"
)

// Terminal reports whether no further transitions are possible.
func (s RunStatus) Terminal() bool {
	return s == RunStatusCompleted || s == RunStatusFailed || s == RunStatusCancelled
}

var (
	ErrRunNotFound  = errors.New("run not found")
	ErrRunTerminal  = errors.New("run is terminal")
	ErrRunIDMissing = errors.New("run_id is required")
	ErrRunExists    = errors.New("run already exists")
	ErrNoResult     = errors.New("run has no result")
)

// Run is the externally visible state of a sweep run.
type Run struct {
	ID              string    `json:"id"`
	Status          RunStatus `json:"status"`
	CreatedAtUnixMs int64     `json:"created_at_unix_ms"`
	StartedAtUnixMs int64     `json:"started_at_unix_ms,omitempty"`
	EndedAtUnixMs   int64     `json:"ended_at_unix_ms,omitempty"`
	Error           string    `json:"error,omitempty"`
	// PointsCompleted and PointsTotal track aggregated degree values.
	PointsCompleted int   `json:"points_completed"`
	PointsTotal     int   `json:"points_total"`
	Seed            int64 `json:"seed,string,omitempty"`
}

// RunRecord is a snapshot of a stored run.
type RunRecord struct {
	Run        Run
	ConfigYAML string
	Params     montecarlo.Params
	Result     *models.SweepResult
}

// RunStore keeps sweep runs in memory.
type RunStore struct {
	mu   sync.RWMutex
	runs map[string]*RunRecord
}

func NewRunStore() *RunStore {
	return &RunStore{
		runs: make(map[string]*RunRecord),
	}
}

func nowUnixMs() int64 {
	return time.Now().UTC().UnixMilli()
}

// NewRunID returns a fresh run identifier.
func NewRunID() string {
	return "sweep-" + uuid.NewString()
}

func (s *RunStore) Create(runID, configYAML string, params montecarlo.Params) (RunRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if runID == "" {
		runID = NewRunID()
	}
	if _, exists := s.runs[runID]; exists {
		return RunRecord{}, fmt.Errorf("%w: %s", ErrRunExists, runID)
	}

	rec := &RunRecord{
		Run: Run{
			ID:              runID,
			Status:          RunStatusPending,
			CreatedAtUnixMs: nowUnixMs(),
			PointsTotal:     len(params.Degrees),
		},
		ConfigYAML: configYAML,
		Params:     params,
	}
	s.runs[runID] = rec
	return *rec, nil
}

func (s *RunStore) Get(runID string) (RunRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.runs[runID]
	if !ok {
		return RunRecord{}, false
	}
	return *rec, true
}

// List returns up to limit runs, newest first.
func (s *RunStore) List(limit int) []RunRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 50
	}
	out := make([]RunRecord, 0, len(s.runs))
	for _, rec := range s.runs {
		out = append(out, *rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Run.CreatedAtUnixMs != out[j].Run.CreatedAtUnixMs {
			return out[i].Run.CreatedAtUnixMs > out[j].Run.CreatedAtUnixMs
		}
		return out[i].Run.ID < out[j].Run.ID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// SetStatus moves a run to status. Terminal runs cannot change status.
func (s *RunStore) SetStatus(runID string, status RunStatus, errMsg string) (RunRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.runs[runID]
	if !ok {
		return RunRecord{}, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if rec.Run.Status.Terminal() {
		return *rec, fmt.Errorf("%w: %s is %s", ErrRunTerminal, runID, rec.Run.Status)
	}

	rec.Run.Status = status
	if errMsg != "" {
		rec.Run.Error = errMsg
	}

	switch {
	case status == RunStatusRunning:
		if rec.Run.StartedAtUnixMs == 0 {
			rec.Run.StartedAtUnixMs = nowUnixMs()
		}
	case status.Terminal():
		rec.Run.EndedAtUnixMs = nowUnixMs()
	}

	return *rec, nil
}

// MarkRunning moves a pending run to running and records its resolved seed.
// It reports started=false with the current record when the run is already
// running, so exactly one caller wins a pending run.
func (s *RunStore) MarkRunning(runID string, seed int64) (rec RunRecord, started bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.runs[runID]
	if !ok {
		return RunRecord{}, false, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	switch {
	case r.Run.Status == RunStatusRunning:
		return *r, false, nil
	case r.Run.Status.Terminal():
		return *r, false, fmt.Errorf("%w: %s is %s", ErrRunTerminal, runID, r.Run.Status)
	}

	r.Run.Status = RunStatusRunning
	r.Run.StartedAtUnixMs = nowUnixMs()
	r.Run.Seed = seed
	return *r, true, nil
}

// SetProgress records how many degree values have been aggregated.
func (s *RunStore) SetProgress(runID string, completed, total int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.runs[runID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	rec.Run.PointsCompleted = completed
	rec.Run.PointsTotal = total
	return nil
}

// Complete stores result and marks a running run completed.
func (s *RunStore) Complete(runID string, result *models.SweepResult) (RunRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.runs[runID]
	if !ok {
		return RunRecord{}, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if rec.Run.Status.Terminal() {
		return *rec, fmt.Errorf("%w: %s is %s", ErrRunTerminal, runID, rec.Run.Status)
	}
	rec.Result = result
	rec.Run.Status = RunStatusCompleted
	rec.Run.EndedAtUnixMs = nowUnixMs()
	rec.Run.Seed = result.Seed
	return *rec, nil
}

// Result returns the result of a completed run.
func (s *RunStore) Result(runID string) (*models.SweepResult, error) {
	rec, ok := s.Get(runID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if rec.Result == nil {
		return nil, fmt.Errorf("%w: %s is %s", ErrNoResult, runID, rec.Run.Status)
	}
	return rec.Result, nil
}

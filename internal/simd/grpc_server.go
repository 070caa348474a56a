package simd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/GoSim-25-26J-441/contagion-core/internal/montecarlo"
	"github.com/GoSim-25-26J-441/contagion-core/internal/config"
	"github.com/GoSim-25-26J-441/contagion-core/pkg/logger"
)

// ContagionGRPCServer implements ContagionServiceServer on top of a RunExecutor.
type ContagionGRPCServer struct {
	Executor *RunExecutor
}

var _ ContagionServiceServer = (*ContagionGRPCServer)(nil)

func NewContagionGRPCServer(executor *RunExecutor) *ContagionGRPCServer {
	return &ContagionGRPCServer{Executor: executor}
}

// RunSweep runs a sweep to completion and returns its result. Cancelling the
// call cancels the sweep.
func (s *ContagionGRPCServer) RunSweep(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	created, err := s.Executor.Create(stringField(req, "run_id"), stringField(req, "config_yaml"))
	if err != nil {
		return nil, toStatus(err)
	}
	runID := created.Run.ID
	if _, err := s.Executor.Start(runID); err != nil {
		return nil, toStatus(err)
	}

	rec, err := s.Executor.Wait(ctx, runID)
	if err != nil {
		if _, stopErr := s.Executor.Stop(runID); stopErr != nil && !errors.Is(stopErr, ErrRunTerminal) {
			logger.Warn("failed to stop abandoned sweep", "run_id", runID, "error", stopErr)
		}
		return nil, status.FromContextError(err).Err()
	}
	if rec.Run.Status != RunStatusCompleted {
		return nil, status.Errorf(codes.Aborted, "run %s ended %s: %s", rec.Run.ID, rec.Run.Status, rec.Run.Error)
	}
	return toStruct(map[string]any{"run": rec.Run, "result": rec.Result})
}

func (s *ContagionGRPCServer) CreateRun(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	rec, err := s.Executor.Create(stringField(req, "run_id"), stringField(req, "config_yaml"))
	if err != nil {
		return nil, toStatus(err)
	}
	logger.Info("sweep run created", "run_id", rec.Run.ID)

	if start, ok := req.GetFields()["start"]; !ok || start.GetBoolValue() {
		if rec, err = s.Executor.Start(rec.Run.ID); err != nil {
			return nil, toStatus(err)
		}
	}
	return toStruct(map[string]any{"run": rec.Run})
}

func (s *ContagionGRPCServer) GetRun(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	runID := stringField(req, "run_id")
	if runID == "" {
		return nil, status.Error(codes.InvalidArgument, "run_id is required")
	}
	rec, ok := s.Executor.Store().Get(runID)
	if !ok {
		return nil, status.Error(codes.NotFound, "run not found")
	}
	body := map[string]any{"run": rec.Run}
	if rec.Result != nil {
		body["result"] = rec.Result
	}
	return toStruct(body)
}

func (s *ContagionGRPCServer) ListRuns(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	limit := 50
	if v, ok := req.GetFields()["limit"]; ok && v.GetNumberValue() > 0 {
		limit = int(v.GetNumberValue())
	}
	recs := s.Executor.Store().List(limit)
	runs := make([]Run, 0, len(recs))
	for _, rec := range recs {
		runs = append(runs, rec.Run)
	}
	return toStruct(map[string]any{"runs": runs})
}

func (s *ContagionGRPCServer) StopRun(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	rec, err := s.Executor.Stop(stringField(req, "run_id"))
	if err != nil {
		return nil, toStatus(err)
	}
	logger.Info("sweep run cancelled", "run_id", rec.Run.ID)
	return toStruct(map[string]any{"run": rec.Run})
}

func stringField(s *structpb.Struct, name string) string {
	return s.GetFields()[name].GetStringValue()
}

// toStruct converts a JSON-encodable value into a Struct.
func toStruct(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, status.Error(codes.Internal, fmt.Sprintf("encode response: %v", err))
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(data, out); err != nil {
		return nil, status.Error(codes.Internal, fmt.Sprintf("encode response: %v", err))
	}
	return out, nil
}

func toStatus(err error) error {
	switch {
	case errors.Is(err, ErrRunIDMissing),
		errors.Is(err, config.ErrInvalidConfig),
		errors.Is(err, montecarlo.ErrInvalidParams):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, ErrRunNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, ErrRunExists):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, ErrRunTerminal), errors.Is(err, ErrNoResult):
		return status.Error(codes.FailedPrecondition, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

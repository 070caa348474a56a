package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoSim-25-26J-441/contagion-core/internal/contagion"
	"github.com/GoSim-25-26J-441/contagion-core/internal/montecarlo"
	"github.com/GoSim-25-26J-441/contagion-core/internal/config"
	"github.com/GoSim-25-26J-441/contagion-core/pkg/models"
)

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestSweepCommandJSON(t *testing.T) {
	stdout, _, err := runCLI(t, "sweep", "--log-level", "error",
		"--banks", "20", "--degrees", "0,1", "--iterations", "4", "--seed", "5", "--format", "json")
	require.NoError(t, err)

	var result models.SweepResult
	require.NoError(t, json.Unmarshal([]byte(stdout), &result))
	assert.Equal(t, 20, result.Banks)
	assert.Equal(t, 4, result.Iterations)
	assert.Equal(t, int64(5), result.Seed)
	require.Len(t, result.Points, 2)
	assert.Equal(t, 1.0, result.Points[0].ContagionProbability)
	assert.Equal(t, 0.0, result.Points[0].RealizedDegree)
}

func TestSweepCommandIsReproducible(t *testing.T) {
	args := []string{"sweep", "--log-level", "error", "--banks", "30", "--degrees", "2,3",
		"--iterations", "10", "--seed", "99", "--format", "map"}

	first, _, err := runCLI(t, append(args, "--workers", "1")...)
	require.NoError(t, err)
	second, _, err := runCLI(t, append(args, "--workers", "4")...)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	var probs map[string]float64
	require.NoError(t, json.Unmarshal([]byte(first), &probs))
	assert.NotEmpty(t, probs)
}

func TestSweepCommandProgressAndTable(t *testing.T) {
	stdout, stderr, err := runCLI(t, "sweep", "--log-level", "error",
		"--banks", "20", "--degrees", "0", "--iterations", "2", "--seed", "1", "--progress")
	require.NoError(t, err)
	assert.Contains(t, stdout, "probability")
	assert.Contains(t, stderr, "Average Degree : 0 Probability of Contagion : 1")
}

func TestSweepCommandConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sweep.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
banks: 25
degrees: [1.5]
iterations: 3
seed: 8
frontier_order: lifo
`), 0o600))

	cmd := newSweepCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--config", path, "--iterations", "6", "--order", "random"}))
	opts := &sweepOptions{configPath: path, iterations: 6, order: "random"}
	params, err := opts.params(cmd)
	require.NoError(t, err)
	assert.Equal(t, 25, params.Banks)
	assert.Equal(t, []float64{1.5}, params.Degrees)
	assert.Equal(t, 6, params.Iterations)
	assert.Equal(t, int64(8), params.Seed)
	assert.Equal(t, contagion.Random, params.Order)
}

func TestSweepCommandDefaultsToReferenceSweep(t *testing.T) {
	cmd := newSweepCmd()
	require.NoError(t, cmd.ParseFlags(nil))
	params, err := (&sweepOptions{}).params(cmd)
	require.NoError(t, err)

	want, err := config.Default().Params()
	require.NoError(t, err)
	assert.Equal(t, want, params)
	assert.Len(t, params.Degrees, 20)
}

func TestSweepCommandErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want error
	}{
		{name: "negative banks", args: []string{"--banks", "-1"}, want: montecarlo.ErrInvalidParams},
		{name: "bad order", args: []string{"--order", "sideways"}, want: montecarlo.ErrInvalidParams},
		{name: "threshold above one", args: []string{"--threshold", "1.5"}, want: montecarlo.ErrInvalidParams},
		{name: "missing config", args: []string{"--config", filepath.Join(t.TempDir(), "missing.yaml")}},
		{name: "bad format", args: []string{"--banks", "5", "--degrees", "1", "--iterations", "1", "--format", "xml"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"sweep", "--log-level", "error"}, tt.args...)
			_, stderr, err := runCLI(t, args...)
			require.Error(t, err)
			if tt.want != nil {
				assert.True(t, errors.Is(err, tt.want), "expected %v, got %v", tt.want, err)
			}
			assert.True(t, strings.Contains(stderr, "Error:"), "expected cobra to report the error")
		})
	}
}

func TestRootCommandRejectsUnknownLogFormat(t *testing.T) {
	_, _, err := runCLI(t, "sweep", "--log-format", "xml", "--banks", "5", "--degrees", "1", "--iterations", "1")
	require.Error(t, err)
}

func TestSweepCommandAppliesConfigLogging(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sweep.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
log_level: debug
log_format: json
banks: 20
degrees: [1]
iterations: 2
seed: 4
`), 0o600))

	_, stderr, err := runCLI(t, "sweep", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, stderr, `"msg":"degree aggregated"`)

	_, stderr, err = runCLI(t, "sweep", "--config", path, "--log-level", "error")
	require.NoError(t, err)
	assert.NotContains(t, stderr, "degree aggregated")
}

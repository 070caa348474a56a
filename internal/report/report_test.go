package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoSim-25-26J-441/contagion-core/pkg/models"
)

func sample() *models.SweepResult {
	return &models.SweepResult{
		Banks:            100,
		Iterations:       4,
		CascadeThreshold: 0.05,
		Seed:             42,
		Points: []models.SweepPoint{
			{NominalDegree: 1, RealizedDegree: 0.99, ContagionProbability: 0.25, Cascades: 1, Trials: 4, MeanDefaults: 2.5, MaxDefaults: 6},
			{NominalDegree: 0, RealizedDegree: 0, ContagionProbability: 0, Trials: 4, MeanDefaults: 1, MaxDefaults: 1},
		},
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": FormatTable, "table": FormatTable, "JSON": FormatJSON, "map": FormatMap} {
		got, err := ParseFormat(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseFormat("csv")
	assert.Error(t, err)
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sample(), FormatTable))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "probability")
	assert.Contains(t, lines[1], "0.9900")
	assert.Contains(t, lines[1], "1/4")
	assert.Contains(t, lines[3], "seed=42")
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sample(), FormatJSON))

	var decoded models.SweepResult
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, *sample(), decoded)
}

func TestWriteProbabilityMap(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sample(), FormatMap))
	assert.Equal(t, `{"0": 0, "0.99": 0.25}`+"\n", buf.String())

	var decoded map[string]float64
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, 0.25, decoded["0.99"])
}

func TestWriteProbabilityMapDuplicateDegrees(t *testing.T) {
	res := &models.SweepResult{Points: []models.SweepPoint{
		{RealizedDegree: 0, ContagionProbability: 0},
		{RealizedDegree: 0, ContagionProbability: 1},
	}}
	var buf bytes.Buffer
	require.NoError(t, WriteProbabilityMap(&buf, res))
	assert.Equal(t, `{"0": 1}`+"\n", buf.String())
}

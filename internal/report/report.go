// Package report renders sweep results for people and for other tools.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/GoSim-25-26J-441/contagion-core/pkg/models"
)

// Format names an output rendering.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatMap   Format = "map"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatTable, FormatJSON, FormatMap:
		return f, nil
	case "":
		return FormatTable, nil
	default:
		return "", fmt.Errorf("unknown output format %q (must be table, json, or map)", s)
	}
}

// Write renders res in the given format.
func Write(w io.Writer, res *models.SweepResult, format Format) error {
	switch format {
	case FormatJSON:
		return WriteJSON(w, res)
	case FormatMap:
		return WriteProbabilityMap(w, res)
	default:
		return WriteTable(w, res)
	}
}

// WriteTable writes one aligned row per swept degree value.
func WriteTable(w io.Writer, res *models.SweepResult) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "nominal\trealized\tprobability\tstd err\tcascades\tmean defaults\tmax defaults\t\n")
	for _, p := range res.Points {
		fmt.Fprintf(tw, "%.2f\t%.4f\t%.4f\t%.4f\t%d/%d\t%.2f\t%d\t\n",
			p.NominalDegree, p.RealizedDegree, p.ContagionProbability, p.ProbabilityStdErr,
			p.Cascades, p.Trials, p.MeanDefaults, p.MaxDefaults)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "banks=%d iterations=%d threshold=%g seed=%d\n",
		res.Banks, res.Iterations, res.CascadeThreshold, res.Seed)
	return err
}

// WriteJSON writes the full result as indented JSON.
func WriteJSON(w io.Writer, res *models.SweepResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

// WriteProbabilityMap writes a JSON object mapping realized degree to
// contagion probability, ordered by degree. Points that realize the same
// degree keep the last value written.
func WriteProbabilityMap(w io.Writer, res *models.SweepResult) error {
	pairs := res.SortedPairs()
	var sb strings.Builder
	sb.WriteString("{")
	written := 0
	for i, p := range pairs {
		if i+1 < len(pairs) && pairs[i+1].Degree == p.Degree {
			continue
		}
		if written > 0 {
			sb.WriteString(", ")
		}
		key := strconv.FormatFloat(p.Degree, 'f', -1, 64)
		fmt.Fprintf(&sb, "%q: %s", key, strconv.FormatFloat(p.Probability, 'f', -1, 64))
		written++
	}
	sb.WriteString("}\n")
	_, err := io.WriteString(w, sb.String())
	return err
}

package models

import "sort"

// SweepPoint is the aggregate of all trials run at one swept degree value.
type SweepPoint struct {
	NominalDegree        float64 `json:"nominal_degree"`
	RealizedDegree       float64 `json:"realized_degree"`
	ContagionProbability float64 `json:"contagion_probability"`
	// ProbabilityStdErr is the binomial standard error of ContagionProbability.
	ProbabilityStdErr float64 `json:"probability_std_err"`
	Trials            int     `json:"trials"`
	Cascades          int     `json:"cascades"`
	Edges             int     `json:"edges"`
	MeanDefaults      float64 `json:"mean_defaults"`
	StdDevDefaults    float64 `json:"stddev_defaults"`
	MaxDefaults       int     `json:"max_defaults"`
	// DefaultSizes holds the raw default-set size of every trial, in trial
	// order, when trial recording is enabled.
	DefaultSizes []int `json:"default_sizes,omitempty"`
}

// SweepResult is the ordered outcome of a Monte Carlo sweep.
type SweepResult struct {
	Banks            int          `json:"banks"`
	Iterations       int          `json:"iterations"`
	CascadeThreshold float64      `json:"cascade_threshold"`
	Seed             int64        `json:"seed,string"`
	Points           []SweepPoint `json:"points"`
}

// DegreeProbability is a (realized degree, contagion probability) pair.
type DegreeProbability struct {
	Degree      float64 `json:"degree"`
	Probability float64 `json:"probability"`
}

// Pairs returns the result as (realized degree, probability) pairs in sweep order.
func (r *SweepResult) Pairs() []DegreeProbability {
	out := make([]DegreeProbability, len(r.Points))
	for i, p := range r.Points {
		out[i] = DegreeProbability{Degree: p.RealizedDegree, Probability: p.ContagionProbability}
	}
	return out
}

// SortedPairs returns Pairs ordered by realized degree. Points with equal
// degree keep sweep order.
func (r *SweepResult) SortedPairs() []DegreeProbability {
	out := r.Pairs()
	sort.SliceStable(out, func(i, j int) bool { return out[i].Degree < out[j].Degree })
	return out
}

// TotalTrials returns the number of trials across all points.
func (r *SweepResult) TotalTrials() int {
	total := 0
	for _, p := range r.Points {
		total += p.Trials
	}
	return total
}

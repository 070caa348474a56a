// Package metrics exposes Prometheus instrumentation for contagion sweeps.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/GoSim-25-26J-441/contagion-core/internal/montecarlo"
)

// Recorder implements montecarlo.Observer on top of Prometheus collectors.
type Recorder struct {
	TrialsTotal   *prometheus.CounterVec
	CascadesTotal *prometheus.CounterVec
	DefaultSize   *prometheus.HistogramVec
	SweepDuration prometheus.Histogram
	SweepsTotal   prometheus.Counter
	ActiveSweeps  prometheus.Gauge
}

var _ montecarlo.Observer = (*Recorder)(nil)

// NewRecorder creates the collectors and registers them with reg.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		TrialsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "contagion_trials_total",
				Help: "Total contagion trials run, by nominal degree",
			},
			[]string{"degree"},
		),
		CascadesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "contagion_cascades_total",
				Help: "Trials whose default set reached the cascade threshold, by nominal degree",
			},
			[]string{"degree"},
		),
		DefaultSize: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "contagion_default_set_size",
				Help:    "Number of defaulted banks per trial",
				Buckets: []float64{1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
			},
			[]string{"degree"},
		),
		SweepDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "contagion_sweep_duration_seconds",
				Help:    "Wall-clock duration of completed sweeps",
				Buckets: prometheus.ExponentialBuckets(0.01, 4, 8),
			},
		),
		SweepsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "contagion_sweeps_total",
				Help: "Completed sweeps",
			},
		),
		ActiveSweeps: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "contagion_active_sweeps",
				Help: "Sweeps currently running",
			},
		),
	}
	reg.MustRegister(
		r.TrialsTotal, r.CascadesTotal, r.DefaultSize,
		r.SweepDuration, r.SweepsTotal, r.ActiveSweeps,
	)
	return r
}

// ObserveTrial records one trial outcome.
func (r *Recorder) ObserveTrial(degree float64, out montecarlo.TrialOutcome) {
	label := DegreeLabel(degree)
	r.TrialsTotal.WithLabelValues(label).Inc()
	if out.Cascade {
		r.CascadesTotal.WithLabelValues(label).Inc()
	}
	r.DefaultSize.WithLabelValues(label).Observe(float64(out.Defaults))
}

// ObserveSweep records a completed sweep.
func (r *Recorder) ObserveSweep(_, _ int, elapsed time.Duration) {
	r.SweepsTotal.Inc()
	r.SweepDuration.Observe(elapsed.Seconds())
}

// SweepStarted increments the active sweep gauge; call the returned func when
// the sweep ends.
func (r *Recorder) SweepStarted() func() {
	r.ActiveSweeps.Inc()
	return r.ActiveSweeps.Dec
}

// DegreeLabel formats a degree value as a label.
func DegreeLabel(degree float64) string {
	return strconv.FormatFloat(degree, 'f', -1, 64)
}

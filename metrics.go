package cvrp

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics of the cutting-plane loop. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	Candidates     prometheus.Counter
	Cuts           prometheus.Counter
	SeparationTime prometheus.Histogram
	LiveWorkers    prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Candidates: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cvrp_candidates_total", Help: "Integer candidates handed to the separation."}),
		Cuts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cvrp_capacity_cuts_total", Help: "Capacity cuts used to reject candidates."}),
		SeparationTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name: "cvrp_separation_seconds", Help: "Time spent in the separation worker per candidate.", Buckets: prometheus.ExponentialBuckets(1e-5, 4, 10)}),
		LiveWorkers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "cvrp_separation_workers", Help: "Separation workers currently bound to a solver thread."}),
	}
	if reg != nil {
		reg.MustRegister(m.Candidates, m.Cuts, m.SeparationTime, m.LiveWorkers)
	}
	return m
}

func (m *Metrics) candidate() {
	if m != nil {
		m.Candidates.Inc()
	}
}

func (m *Metrics) cut() {
	if m != nil {
		m.Cuts.Inc()
	}
}

func (m *Metrics) separated(seconds float64) {
	if m != nil {
		m.SeparationTime.Observe(seconds)
	}
}

func (m *Metrics) workers(delta int) {
	if m != nil {
		m.LiveWorkers.Add(float64(delta))
	}
}

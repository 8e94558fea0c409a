// Package metrics holds the Prometheus collectors of the search engine.
package metrics

import (
	"fmt"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/common/expfmt"
)

// Status label values.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Metrics groups the collectors registered on one registry.
// A nil *Metrics records nothing.
type Metrics struct {
	// Queries counts store queries by kind (root, relation, count) and status.
	Queries *prometheus.CounterVec
	// QueryDuration is the latency of store queries.
	QueryDuration *prometheus.HistogramVec
	// Searches counts requests by root entity and result code.
	Searches *prometheus.CounterVec
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Queries: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fieldquery_queries_total",
				Help: "Total number of store queries",
			},
			[]string{"kind", "status"},
		),
		QueryDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fieldquery_query_duration_seconds",
				Help:    "Store query latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"kind"},
		),
		Searches: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fieldquery_searches_total",
				Help: "Total number of search and count requests",
			},
			[]string{"entity", "code"},
		),
	}
}

// ObserveQuery records one store query.
func (m *Metrics) ObserveQuery(kind string, d time.Duration, err error) {
	if m == nil {
		return
	}
	status := StatusOK
	if err != nil {
		status = StatusError
	}
	m.Queries.WithLabelValues(kind, status).Inc()
	m.QueryDuration.WithLabelValues(kind).Observe(d.Seconds())
}

// ObserveRequest records one request outcome. code is "OK" or an error code.
func (m *Metrics) ObserveRequest(entity, code string) {
	if m == nil {
		return
	}
	m.Searches.WithLabelValues(entity, code).Inc()
}

// Write renders everything g gathers in the Prometheus text format.
func Write(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("write metric %s: %w", mf.GetName(), err)
		}
	}
	return nil
}

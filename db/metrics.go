package db

import (
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sksmith/fulfilment/core"
)

const (
	outcomeOK       = "ok"
	outcomeNotFound = "not_found"
	outcomeError    = "error"
)

var (
	dbLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fulfilment_db_latency_seconds",
			Help:    "Latency of database requests by repository and function",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
		},
		[]string{"repo", "func"},
	)

	dbRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fulfilment_db_requests_total",
			Help: "Completed database requests by repository, function and outcome",
		},
		[]string{"repo", "func", "outcome"},
	)
)

// Metrics records request metrics for one repository.
type Metrics struct {
	repo string
}

func NewMetrics(repo string) Metrics {
	return Metrics{repo: repo}
}

type Metric struct {
	repo     string
	funcName string
	start    time.Time
}

func (r Metrics) Start(funcName string) *Metric {
	return &Metric{repo: r.repo, funcName: funcName, start: time.Now()}
}

// Complete observes the request latency and counts it under the outcome of
// err. A missing row is counted apart from failures.
func (m *Metric) Complete(err error) {
	dbLatency.WithLabelValues(m.repo, m.funcName).Observe(time.Since(m.start).Seconds())
	dbRequests.WithLabelValues(m.repo, m.funcName, outcome(err)).Inc()
}

func outcome(err error) string {
	switch {
	case err == nil:
		return outcomeOK
	case errors.Is(err, pgx.ErrNoRows), errors.Is(err, core.ErrNotFound):
		return outcomeNotFound
	default:
		return outcomeError
	}
}

func init() {
	prometheus.MustRegister(dbLatency)
	prometheus.MustRegister(dbRequests)
}

package engine

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/lazypower/lineage/internal/graph"
)

var (
	// queryTotal counts read queries.
	// Labels: op (ancestors, path, kinship, ...), status (ok, not_found, error)
	queryTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lineage",
		Name:      "query_total",
		Help:      "Total graph queries by operation and outcome",
	}, []string{"op", "status"})

	// queryDuration measures time spent inside the read lock per query.
	queryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "lineage",
		Name:      "query_duration_seconds",
		Help:      "Graph query latency in seconds",
		Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
	}, []string{"op"})

	// mutationTotal counts structural mutations.
	// Labels: op, status (ok, rejected, not_found, error)
	mutationTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lineage",
		Name:      "mutation_total",
		Help:      "Total graph mutations by operation and outcome",
	}, []string{"op", "status"})
)

// observe records one finished query.
func observe(op string, start time.Time, err error) {
	queryDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	queryTotal.WithLabelValues(op, status(err)).Inc()
}

func mutated(op string, err error) {
	mutationTotal.WithLabelValues(op, status(err)).Inc()
}

func status(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, graph.ErrNotFound), errors.Is(err, graph.ErrInvalidReference):
		return "not_found"
	case errors.Is(err, graph.ErrSelfReference), errors.Is(err, graph.ErrDuplicateEdge),
		errors.Is(err, graph.ErrCycle), errors.Is(err, graph.ErrInvalidAttributes):
		return "rejected"
	default:
		return "error"
	}
}

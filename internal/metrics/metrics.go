// Package metrics exposes Prometheus counters for the scheduling workers.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	GenerationRuns = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bagshot_generation_runs_total",
		Help: "Bulk generation sweeps started.",
	})

	GenerationFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bagshot_generation_failures_total",
		Help: "Bulk generation failures, counted per failing template.",
	})

	AssignmentsGenerated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bagshot_assignments_generated_total",
		Help: "Pending assignments written by generation runs.",
	})

	AssignmentsOverdue = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bagshot_assignments_overdue_total",
		Help: "Assignments transitioned to overdue by the sweep.",
	})

	SweepFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bagshot_overdue_sweep_failures_total",
		Help: "Overdue sweep runs that failed.",
	})
)

// Handler serves the default registry for scraping.
func Handler() http.Handler {
	return promhttp.Handler()
}

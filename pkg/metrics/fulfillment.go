package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	PipelineRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "coursebridge",
			Subsystem: "fulfillment",
			Name:      "pipeline_runs_total",
			Help:      "Total number of fulfillment pipeline runs by result",
		},
		[]string{"result"}, // success | soft_failure | error | duplicate
	)

	PipelineStepDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "coursebridge",
			Subsystem: "fulfillment",
			Name:      "step_duration_seconds",
			Help:      "Fulfillment pipeline step duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"step"},
	)

	EnrollmentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "coursebridge",
			Subsystem: "enrollment",
			Name:      "enrollments_total",
			Help:      "Total number of course enrollments performed",
		},
		[]string{"mode"},
	)
)

func init() {
	Registry.MustRegister(PipelineRunsTotal, PipelineStepDuration, EnrollmentsTotal)
}

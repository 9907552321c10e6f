// Package metrics exposes Prometheus collectors for env-file operations.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Operations counts env-file operations by action.
	Operations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "envkeep_operations_total",
		Help: "Env-file operations performed, by action.",
	}, []string{"action"})

	// ValidationFindings counts findings produced by the last validation,
	// by severity.
	ValidationFindings = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "envkeep_validation_findings",
		Help: "Findings from the most recent validation, by severity.",
	}, []string{"severity"})

	// SSEClients tracks connected event-stream clients.
	SSEClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "envkeep_sse_clients",
		Help: "Currently connected SSE clients.",
	})
)

// Package metrics exposes Prometheus instrumentation for the provisioning
// and validation subsystems.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ProvisionTotal counts provisioning attempts by outcome
	// (ok, partial, failed).
	ProvisionTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "conductor",
		Subsystem: "provisioner",
		Name:      "provision_total",
		Help:      "Tenant provisioning attempts by outcome.",
	}, []string{"outcome"})

	// ProvisionWarnings counts non-fatal step failures collected during
	// provisioning, labelled by step (table, index, seed).
	ProvisionWarnings = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "conductor",
		Subsystem: "provisioner",
		Name:      "warnings_total",
		Help:      "Non-fatal provisioning step failures.",
	}, []string{"step"})

	// ProvisionDuration observes wall time per provisioning call.
	ProvisionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "conductor",
		Subsystem: "provisioner",
		Name:      "duration_seconds",
		Help:      "Duration of tenant provisioning calls.",
		Buckets:   prometheus.DefBuckets,
	})

	// ValidationTotal counts validator runs by result (valid, invalid).
	ValidationTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "conductor",
		Subsystem: "validator",
		Name:      "runs_total",
		Help:      "Schema validation runs by result.",
	}, []string{"result"})
)

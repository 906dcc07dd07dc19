// Package metrics instruments the pipeline for observability (SPEC_FULL.md
// EXP-4): per-channel depth gauges and pipeline-event counters, exported via
// github.com/prometheus/client_golang. The teacher repo carries no metrics
// concern of its own; this is adopted from nmxmxh-inos_v1's dependency
// stack, which is the only example repo in this corpus built as a
// long-running service rather than a one-shot CLI experiment.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// ChannelDepth tracks the number of creatures currently queued on each
	// named pipeline edge.
	ChannelDepth = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "roper",
		Name:      "channel_depth",
		Help:      "Number of creatures currently queued on a pipeline channel.",
	}, []string{"channel"})

	// HatchesTotal counts emulator runs actually performed by the hatchery.
	HatchesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "roper",
		Name:      "hatches_total",
		Help:      "Total number of emulator runs performed by the hatchery.",
	})

	// HatchShortCircuitsTotal counts creatures forwarded without emulation
	// because they had already hatched.
	HatchShortCircuitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "roper",
		Name:      "hatch_short_circuits_total",
		Help:      "Total number of creatures forwarded by the hatchery without emulation.",
	})

	// TournamentsTotal counts breeder tournaments run.
	TournamentsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "roper",
		Name:      "tournaments_total",
		Help:      "Total number of breeder tournaments run.",
	})

	// CrossoversTotal counts homologous crossovers performed.
	CrossoversTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "roper",
		Name:      "crossovers_total",
		Help:      "Total number of homologous crossovers performed.",
	})

	// PipelineIntegrityFailuresTotal counts fatal primary-channel send
	// failures (spec.md section 4.1).
	PipelineIntegrityFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "roper",
		Name:      "pipeline_integrity_failures_total",
		Help:      "Total number of fatal primary-channel pipeline send failures.",
	})

	// PipelineObservationalFailuresTotal counts non-fatal fanout-channel
	// send failures (e.g. to the logger).
	PipelineObservationalFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "roper",
		Name:      "pipeline_observational_failures_total",
		Help:      "Total number of non-fatal fanout-channel pipeline send failures.",
	})
)

// Registry is the registry cmd/roper serves via promhttp. Tests that don't
// care about metrics can ignore it entirely.
var Registry = prometheus.NewRegistry()

func init() {
	Registry.MustRegister(
		ChannelDepth,
		HatchesTotal,
		HatchShortCircuitsTotal,
		TournamentsTotal,
		CrossoversTotal,
		PipelineIntegrityFailuresTotal,
		PipelineObservationalFailuresTotal,
	)
}

/*
Package observability provides Prometheus instrumentation for the Automator builder.

A single Metrics value is shared by every store and adapter in a process. It
counts mutations by operation and outcome, tracks the number of live actions
and editor sessions, and counts change-event deliveries per publisher.

	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(reg)
	store, _ := builder.New(builder.WithMetrics(metrics))
*/
package observability

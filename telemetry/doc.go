// SPDX-License-Identifier: MIT

// Package telemetry collects everything a run makes observable: the round
// trail, per-round statistics, Prometheus metrics, a CSV log and a snapshot
// of the machine the run executed on.
//
// Library code never logs directly. It records Entry values into a Sink,
// and the binary decides where they go:
//
//   - SlogSink forwards to a *slog.Logger (the default).
//   - MemorySink keeps entries for assertions in tests.
//   - Discard drops everything; Multi fans out to several sinks.
//
// Metrics exposes its own prometheus.Registry so several coordinators can
// coexist in one process (tests) without colliding on the default registry.
package telemetry

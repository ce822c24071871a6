// SPDX-License-Identifier: MIT

// Package coordinator drives the round protocol of a cooperative search.
//
// A Coordinator owns one Record per connected stakeholder. Each round it
//
//   - broadcasts Init (round 0) or Continue with the previous leaderboard,
//   - lets the stakeholders search for RoundWait,
//   - broadcasts RequestResult and collects the replies,
//   - ranks every stakeholder's latest tour under its own weighted matrix.
//
// All waiting is done in blocking selects over a single event channel fed by
// one reader goroutine per stakeholder, so a slow, silent or misbehaving
// stakeholder never costs CPU. With ResultTimeout > 0 a stakeholder that has
// not answered in time is marked stalled for that round and its previous
// result is ranked instead; with ResultTimeout == 0 the round waits for every
// active stakeholder. A stakeholder that withdraws, disconnects or whose
// sends fail drops out of later rounds without blocking them.
//
// Every round leaves a trail in the configured telemetry.Sink: one entry per
// stakeholder with its distance, time and fitness totals, a round summary with
// cost statistics, and, optionally, a CSV row and Prometheus metrics.
//
// RunRounds is the one-call form used by the command line and the tests:
//
//	sol, name, err := coordinator.RunRounds(ctx, ln, inst, 3, 5, time.Second, problem.DefaultWeights())
package coordinator

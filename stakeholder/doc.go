// SPDX-License-Identifier: MIT

// Package stakeholder is the client side of the round protocol.
//
// A running stakeholder has two units that share one ga.Flag:
//
//   - the communicator reads the coordinator's messages in order. Init makes
//     it build the stakeholder's own fitness matrix from its weights, Continue
//     hands the leaderboard seeds to the worker, RequestResult raises the
//     flag and answers with the worker's best tour, Stop ends the run;
//   - the worker runs engine searches back to back while the flag is clear
//     and parks while it is raised. Problems, seeds and result requests are
//     only handed over between searches, so the population is never touched
//     by two goroutines at once.
//
// If the engine fails, the communicator sends Withdraw before both units
// exit, so the coordinator never waits on a stakeholder that is gone.
package stakeholder

// SPDX-License-Identifier: MIT

package coordinator

import (
	"errors"
	"fmt"
	"time"

	"github.com/katalvlaran/stakesearch/leaderboard"
	"github.com/katalvlaran/stakesearch/problem"
	"github.com/katalvlaran/stakesearch/telemetry"
	"github.com/katalvlaran/stakesearch/tsp"
	"github.com/katalvlaran/stakesearch/wire"
)

var (
	// ErrInvalidOptions signals an Options value rejected by Validate.
	ErrInvalidOptions = errors.New("coordinator: invalid options")

	// ErrNotReady is returned by Run before Accept has gathered every stakeholder.
	ErrNotReady = errors.New("coordinator: stakeholders not accepted")

	// ErrNoResults means no stakeholder produced a tour in any round.
	ErrNoResults = errors.New("coordinator: no results")

	// ErrStalled marks a stakeholder that did not answer RequestResult within
	// ResultTimeout. It is reported in the trail and never returned by Run.
	ErrStalled = errors.New("coordinator: stakeholder stalled")
)

// Options configures a Coordinator.
type Options struct {
	// Stakeholders is the number of connections Accept waits for.
	Stakeholders int

	// Rounds is the number of rounds Run plays.
	Rounds int

	// RoundWait is the search budget between the round's opening broadcast
	// and RequestResult.
	RoundWait time.Duration

	// Weights builds the coordinator's own fitness matrix.
	Weights problem.Weights

	// TopK is the leaderboard size; ShareAll overrides it with Stakeholders.
	TopK     int
	ShareAll bool

	// ResultTimeout bounds the wait for results; 0 waits forever.
	ResultTimeout time.Duration

	// RoundPause is slept after each round but the last.
	RoundPause time.Duration

	// HelloTimeout bounds the wait for a new connection's Hello; 0 disables it.
	HelloTimeout time.Duration

	Sink    telemetry.Sink
	Metrics *telemetry.Metrics
	CSV     *telemetry.CSVLog
}

// DefaultOptions: 3 stakeholders, 5 rounds of 5s, balanced weights, top 3.
func DefaultOptions() Options {
	return Options{
		Stakeholders: 3,
		Rounds:       5,
		RoundWait:    5 * time.Second,
		Weights:      problem.DefaultWeights(),
		TopK:         leaderboard.DefaultK,
		HelloTimeout: 10 * time.Second,
	}
}

// Validate rejects options no run can use.
func (o Options) Validate() error {
	switch {
	case o.Stakeholders < 1:
		return fmt.Errorf("stakeholders %d: %w", o.Stakeholders, ErrInvalidOptions)
	case o.Rounds < 1:
		return fmt.Errorf("rounds %d: %w", o.Rounds, ErrInvalidOptions)
	case o.RoundWait < 0, o.ResultTimeout < 0, o.RoundPause < 0, o.HelloTimeout < 0:
		return fmt.Errorf("negative duration: %w", ErrInvalidOptions)
	case o.TopK < 1 && !o.ShareAll:
		return fmt.Errorf("top k %d: %w", o.TopK, ErrInvalidOptions)
	}
	if err := o.Weights.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidOptions, err)
	}

	return nil
}

func (o Options) topK() int {
	if o.ShareAll {
		return o.Stakeholders
	}

	return o.TopK
}

// State is a stakeholder's standing in the protocol.
type State int

const (
	// Active stakeholders receive broadcasts and are waited for.
	Active State = iota
	// Stalled stakeholders missed ResultTimeout this round. They are active
	// again at the next round.
	Stalled
	// Withdrawn stakeholders sent Withdraw.
	Withdrawn
	// Closed stakeholders disconnected or could not be written to.
	Closed
)

func (s State) String() string {
	switch s {
	case Active:
		return "active"
	case Stalled:
		return "stalled"
	case Withdrawn:
		return "withdrawn"
	case Closed:
		return "closed"
	}

	return fmt.Sprintf("State(%d)", int(s))
}

// participating reports whether broadcasts still go to a stakeholder in s.
func (s State) participating() bool { return s == Active || s == Stalled }

// Record is the coordinator's view of one stakeholder. Names are reported by
// the stakeholders and need not be unique; Index is.
type Record struct {
	Index int
	Name  string
	State State

	// LastResult is nil until the first Result arrives. resultRound is the
	// round it answered, so a late reply never overwrites a newer one.
	LastResult  tsp.Solution
	resultRound int

	conn *wire.Conn
}

// Score is a stakeholder's latest tour costed under the raw distance and time
// tables and under the coordinator's fitness matrix.
type Score struct {
	Name     string       `json:"name"`
	State    string       `json:"state"`
	Reported bool         `json:"reported"`
	Distance float64      `json:"distance"`
	Time     float64      `json:"time"`
	Fitness  float64      `json:"fitness"`
	Solution tsp.Solution `json:"solution,omitempty"`
}

// Snapshot is the state published after each round.
type Snapshot struct {
	// Round is the last completed round, -1 before the first.
	Round        int                    `json:"round"`
	Rounds       int                    `json:"rounds"`
	Done         bool                   `json:"done"`
	Standings    []leaderboard.Standing `json:"standings"`
	Stakeholders []Score                `json:"stakeholders"`
}

// Report is the outcome of Run.
type Report struct {
	Winner       leaderboard.Standing
	Standings    []leaderboard.Standing
	Stakeholders []Score
	Rounds       int
	Elapsed      time.Duration
	SysInfo      telemetry.SysInfo
}

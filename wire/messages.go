// SPDX-License-Identifier: MIT

package wire

import (
	"github.com/katalvlaran/stakesearch/matrix"
	"github.com/katalvlaran/stakesearch/tsp"
)

// Kind is the wire tag of a message.
type Kind string

const (
	KindHello         Kind = "hello"
	KindInit          Kind = "init"
	KindContinue      Kind = "continue"
	KindRequestResult Kind = "req_result"
	KindResult        Kind = "result"
	KindStop          Kind = "stop"
	KindWithdraw      Kind = "withdraw"
)

// Message is implemented only by the types of this package.
type Message interface {
	Kind() Kind
	sealed()
}

// Hello announces a stakeholder's name right after it connects.
type Hello struct {
	Name string `json:"name"`
}

// Init ships the problem at round 0: the raw and row-normalised tables plus
// the coordinator's own weighted matrix.
type Init struct {
	NormDistance *matrix.Dense `json:"norm_distance"`
	NormTime     *matrix.Dense `json:"norm_time"`
	Distance     *matrix.Dense `json:"distance"`
	Time         *matrix.Dense `json:"time"`
	Coordinator  *matrix.Dense `json:"coordinator"`
}

// Continue starts round Round > 0 with the previous leaderboard as seeds.
type Continue struct {
	Round int            `json:"round"`
	Seeds []tsp.Solution `json:"seeds"`
}

// RequestResult asks for the stakeholder's current best tour. Exactly one
// Result with the same Round is expected back.
type RequestResult struct {
	Round int `json:"round"`
}

// Result answers RequestResult.
type Result struct {
	Round    int          `json:"round"`
	Solution tsp.Solution `json:"solution"`
}

// Stop ends the run. No reply is expected.
type Stop struct{}

// Withdraw tells the coordinator the stakeholder is leaving for good, e.g.
// after its search failed.
type Withdraw struct {
	Reason string `json:"reason"`
}

func (Hello) Kind() Kind         { return KindHello }
func (Init) Kind() Kind          { return KindInit }
func (Continue) Kind() Kind      { return KindContinue }
func (RequestResult) Kind() Kind { return KindRequestResult }
func (Result) Kind() Kind        { return KindResult }
func (Stop) Kind() Kind          { return KindStop }
func (Withdraw) Kind() Kind      { return KindWithdraw }

func (Hello) sealed()         {}
func (Init) sealed()          {}
func (Continue) sealed()      {}
func (RequestResult) sealed() {}
func (Result) sealed()        {}
func (Stop) sealed()          {}
func (Withdraw) sealed()      {}

// ToStakeholder reports whether m travels coordinator → stakeholder.
func ToStakeholder(m Message) bool {
	switch m.(type) {
	case Init, Continue, RequestResult, Stop:
		return true
	}

	return false
}

// ToCoordinator reports whether m travels stakeholder → coordinator.
func ToCoordinator(m Message) bool {
	switch m.(type) {
	case Hello, Result, Withdraw:
		return true
	}

	return false
}

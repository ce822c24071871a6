// SPDX-License-Identifier: MIT

package coordinator

import (
	"context"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/katalvlaran/stakesearch/problem"
	"github.com/katalvlaran/stakesearch/tsp"
)

// RunRounds accepts stakeholders stakeholders on ln, plays rounds rounds of
// roundWait each with the coordinator weighting weights, and returns the
// winning tour and the name of the stakeholder that reported it. Every other
// option keeps its DefaultOptions value.
func RunRounds(
	ctx context.Context,
	ln net.Listener,
	inst *problem.Instance,
	stakeholders, rounds int,
	roundWait time.Duration,
	weights problem.Weights,
) (tsp.Solution, string, error) {
	opts := DefaultOptions()
	opts.Stakeholders = stakeholders
	opts.Rounds = rounds
	opts.RoundWait = roundWait
	opts.Weights = weights

	c, err := New(inst, opts)
	if err != nil {
		return nil, "", err
	}
	if err = c.Accept(ctx, ln); err != nil {
		return nil, "", err
	}
	rep, err := c.Run(ctx)
	if err != nil {
		return nil, "", err
	}

	return rep.Winner.Solution, rep.Winner.Name, nil
}

// WriteTable prints one line per stakeholder, "name | D | T | F", followed by
// the winner.
func (rep Report) WriteTable(w io.Writer) error {
	for _, s := range rep.Stakeholders {
		var err error
		if s.Reported {
			_, err = fmt.Fprintf(w, "%s | %.4f | %.4f | %.6f\n", s.Name, s.Distance, s.Time, s.Fitness)
		} else {
			_, err = fmt.Fprintf(w, "%s | - | - | - (%s)\n", s.Name, s.State)
		}
		if err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "winner: %s cost %.6f tour %s\n", rep.Winner.Name, rep.Winner.Cost, rep.Winner.Solution)

	return err
}

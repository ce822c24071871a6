// SPDX-License-Identifier: MIT

package stakeholder

import (
	"errors"
	"fmt"

	"github.com/katalvlaran/stakesearch/backoff"
	"github.com/katalvlaran/stakesearch/ga"
	"github.com/katalvlaran/stakesearch/problem"
	"github.com/katalvlaran/stakesearch/telemetry"
)

var (
	// ErrConnect wraps a failed dial. Connect retries it until ctx ends.
	ErrConnect = errors.New("stakeholder: cannot reach coordinator")

	// ErrInvalidOptions signals an Options value rejected by Validate.
	ErrInvalidOptions = errors.New("stakeholder: invalid options")

	// ErrWithdrawn is returned by Run after the stakeholder withdrew because
	// its search failed.
	ErrWithdrawn = errors.New("stakeholder: withdrawn")
)

// Options configures a Stakeholder.
type Options struct {
	// Name is announced in Hello. The coordinator substitutes a positional
	// name when it is empty.
	Name string

	// Weights builds the stakeholder's fitness matrix from the normalised
	// tables received in Init.
	Weights problem.Weights

	// AcceptSeeds merges the leaderboard tours of each Continue into the
	// population. When false the stakeholder evolves on its own.
	AcceptSeeds bool

	// Engine runs the searches; nil selects a ga.Evolver with
	// ga.DefaultOptions.
	Engine ga.Engine

	Sink telemetry.Sink

	// Dial controls the backoff between connection attempts.
	Dial backoff.Config
}

// DefaultOptions returns balanced weights with seed sharing enabled.
func DefaultOptions() Options {
	return Options{
		Weights:     problem.DefaultWeights(),
		AcceptSeeds: true,
	}
}

// Validate rejects options no stakeholder can run with.
func (o Options) Validate() error {
	if err := o.Weights.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidOptions, err)
	}
	if o.Dial.Initial < 0 || o.Dial.MaxWait < 0 {
		return fmt.Errorf("negative dial backoff: %w", ErrInvalidOptions)
	}

	return nil
}

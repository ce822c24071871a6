// SPDX-License-Identifier: MIT

package problem

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/katalvlaran/stakesearch/matrix"
)

var (
	// ErrNoCities is returned when an instance is built from an empty city list.
	ErrNoCities = errors.New("problem: no cities")

	// ErrInvalidCity indicates a non-finite coordinate or a negative/non-finite terrain.
	ErrInvalidCity = errors.New("problem: invalid city")

	// ErrInvalidWeights indicates a weight outside [0,1] or NaN.
	ErrInvalidWeights = errors.New("problem: weights must lie in [0,1]")

	// ErrInvalidSize is returned by Generate for n < 1.
	ErrInvalidSize = errors.New("problem: city count must be positive")
)

// City is one stop of the tour. Terrain scales travel time on every edge
// touching the city; 1 means neutral.
type City struct {
	ID      int     `json:"id"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Terrain float64 `json:"terrain"`
}

func (c City) validate() error {
	if math.IsNaN(c.X) || math.IsInf(c.X, 0) || math.IsNaN(c.Y) || math.IsInf(c.Y, 0) {
		return fmt.Errorf("city %d: %w", c.ID, ErrInvalidCity)
	}
	if math.IsNaN(c.Terrain) || math.IsInf(c.Terrain, 0) || c.Terrain < 0 {
		return fmt.Errorf("city %d: terrain %v: %w", c.ID, c.Terrain, ErrInvalidCity)
	}

	return nil
}

// Weights is a party's objective blend. The two weights need not sum to 1.
type Weights struct {
	Distance float64 `json:"distance"`
	Time     float64 `json:"time"`
}

// DefaultWeights is the coordinator's even blend.
func DefaultWeights() Weights { return Weights{Distance: 0.5, Time: 0.5} }

// Validate checks that both weights lie in [0,1].
func (w Weights) Validate() error {
	if !inUnit(w.Distance) || !inUnit(w.Time) {
		return fmt.Errorf("(%v, %v): %w", w.Distance, w.Time, ErrInvalidWeights)
	}

	return nil
}

// String renders the pair as "d:t", the form accepted on the command line.
func (w Weights) String() string {
	return fmt.Sprintf("%g:%g", w.Distance, w.Time)
}

// ParseWeights reads the "d:t" form produced by String, e.g. "0.7:0.3".
func ParseWeights(s string) (Weights, error) {
	d, t, ok := strings.Cut(s, ":")
	if !ok {
		return Weights{}, fmt.Errorf("%q: want d:t: %w", s, ErrInvalidWeights)
	}
	var (
		w   Weights
		err error
	)
	if w.Distance, err = strconv.ParseFloat(strings.TrimSpace(d), 64); err != nil {
		return Weights{}, fmt.Errorf("%q: %w: %v", s, ErrInvalidWeights, err)
	}
	if w.Time, err = strconv.ParseFloat(strings.TrimSpace(t), 64); err != nil {
		return Weights{}, fmt.Errorf("%q: %w: %v", s, ErrInvalidWeights, err)
	}

	return w, w.Validate()
}

func inUnit(x float64) bool { return !math.IsNaN(x) && x >= 0 && x <= 1 }

// Tables bundles the four derived matrices shipped to stakeholders at round 0.
type Tables struct {
	Distance     *matrix.Dense `json:"distance"`
	Time         *matrix.Dense `json:"time"`
	NormDistance *matrix.Dense `json:"norm_distance"`
	NormTime     *matrix.Dense `json:"norm_time"`
}

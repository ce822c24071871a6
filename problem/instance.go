// SPDX-License-Identifier: MIT

package problem

import (
	"fmt"
	"math"

	"github.com/katalvlaran/stakesearch/matrix"
)

// Instance is an immutable problem: the cities and the tables derived from them.
// Accessors hand out shared matrices; callers must treat them as read-only.
type Instance struct {
	cities []City
	tables Tables
}

// NewInstance validates cities and derives all four lookup tables.
//
// Complexity: O(n²) time and memory.
func NewInstance(cities []City) (*Instance, error) {
	n := len(cities)
	if n == 0 {
		return nil, ErrNoCities
	}
	var i, j int
	for i = range cities {
		if err := cities[i].validate(); err != nil {
			return nil, err
		}
	}

	dist, err := matrix.NewDense(n, n)
	if err != nil {
		return nil, fmt.Errorf("problem: distance table: %w", err)
	}
	tm, err := matrix.NewDense(n, n)
	if err != nil {
		return nil, fmt.Errorf("problem: time table: %w", err)
	}

	// Fill the upper triangle and mirror it so both tables are exactly symmetric.
	var d, t float64
	for i = 0; i < n; i++ {
		for j = i + 1; j < n; j++ {
			d = math.Hypot(cities[i].X-cities[j].X, cities[i].Y-cities[j].Y)
			t = d * cities[i].Terrain * cities[j].Terrain
			if err = setPair(dist, i, j, d); err != nil {
				return nil, err
			}
			if err = setPair(tm, i, j, t); err != nil {
				return nil, err
			}
		}
	}

	normD, _, err := matrix.NormalizeRowsL2(dist)
	if err != nil {
		return nil, fmt.Errorf("problem: normalise distance: %w", err)
	}
	normT, _, err := matrix.NormalizeRowsL2(tm)
	if err != nil {
		return nil, fmt.Errorf("problem: normalise time: %w", err)
	}

	own := make([]City, n)
	copy(own, cities)

	return &Instance{
		cities: own,
		tables: Tables{Distance: dist, Time: tm, NormDistance: normD, NormTime: normT},
	}, nil
}

func setPair(m *matrix.Dense, i, j int, v float64) error {
	if err := m.Set(i, j, v); err != nil {
		return fmt.Errorf("problem: set (%d,%d): %w", i, j, err)
	}
	if err := m.Set(j, i, v); err != nil {
		return fmt.Errorf("problem: set (%d,%d): %w", j, i, err)
	}

	return nil
}

// Size returns the number of cities.
func (in *Instance) Size() int { return len(in.cities) }

// Cities returns a copy of the city list.
func (in *Instance) Cities() []City {
	out := make([]City, len(in.cities))
	copy(out, in.cities)

	return out
}

// Distance returns the Euclidean distance table.
func (in *Instance) Distance() *matrix.Dense { return in.tables.Distance }

// Time returns the terrain-scaled time table.
func (in *Instance) Time() *matrix.Dense { return in.tables.Time }

// NormDistance returns the row-normalised distance table.
func (in *Instance) NormDistance() *matrix.Dense { return in.tables.NormDistance }

// NormTime returns the row-normalised time table.
func (in *Instance) NormTime() *matrix.Dense { return in.tables.NormTime }

// Tables returns the four derived tables.
func (in *Instance) Tables() Tables { return in.tables }

// Weighted blends the instance's normalised tables with w.
func (in *Instance) Weighted(w Weights) (*matrix.Dense, error) {
	return Weighted(in.tables.NormDistance, in.tables.NormTime, w)
}

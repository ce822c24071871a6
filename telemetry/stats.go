// SPDX-License-Identifier: MIT

package telemetry

import (
	"log/slog"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Stats summarises the costs reported in one round.
type Stats struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// Summarize computes Stats over costs. StdDev is the sample standard
// deviation and is 0 for fewer than two values; an empty input yields the
// zero Stats.
func Summarize(costs []float64) Stats {
	if len(costs) == 0 {
		return Stats{}
	}
	s := Stats{
		Count: len(costs),
		Mean:  stat.Mean(costs, nil),
		Min:   floats.Min(costs),
		Max:   floats.Max(costs),
	}
	if len(costs) > 1 {
		s.StdDev = stat.StdDev(costs, nil)
	}

	return s
}

// Attrs renders s as log attributes.
func (s Stats) Attrs() []slog.Attr {
	return []slog.Attr{
		slog.Int("count", s.Count),
		slog.Float64("mean", s.Mean),
		slog.Float64("std_dev", s.StdDev),
		slog.Float64("min", s.Min),
		slog.Float64("max", s.Max),
	}
}

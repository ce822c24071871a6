// SPDX-License-Identifier: MIT

package problem

import (
	"encoding/csv"
	"io"
	"math/rand"
	"strconv"
)

// Terrain range used by Generate.
const (
	MinTerrain = 0.5
	MaxTerrain = 2.0
)

// Generate returns n random cities with integer coordinates in [1,n] and
// terrain uniform in [MinTerrain, MaxTerrain). IDs run 1..n.
func Generate(n int, rng *rand.Rand) ([]City, error) {
	if n < 1 {
		return nil, ErrInvalidSize
	}
	cities := make([]City, n)
	var i int
	for i = range cities {
		cities[i] = City{
			ID:      i + 1,
			X:       float64(1 + rng.Intn(n)),
			Y:       float64(1 + rng.Intn(n)),
			Terrain: MinTerrain + (MaxTerrain-MinTerrain)*rng.Float64(),
		}
	}

	return cities, nil
}

// WriteCSV writes cities as "city,x,y,terrain" rows with a header line.
func WriteCSV(w io.Writer, cities []City) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"city", "x", "y", "terrain"}); err != nil {
		return err
	}
	for _, c := range cities {
		rec := []string{
			strconv.Itoa(c.ID),
			strconv.FormatFloat(c.X, 'g', -1, 64),
			strconv.FormatFloat(c.Y, 'g', -1, 64),
			strconv.FormatFloat(c.Terrain, 'g', -1, 64),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()

	return cw.Error()
}

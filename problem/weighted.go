// SPDX-License-Identifier: MIT

package problem

import (
	"fmt"

	"github.com/katalvlaran/stakesearch/matrix"
)

// Weighted returns w.Distance·normDistance + w.Time·normTime element-wise.
//
// Stakeholders call this with the tables received in Init, so it works on
// bare matrices rather than on an Instance.
//
// Complexity: O(n²).
func Weighted(normDistance, normTime matrix.Matrix, w Weights) (*matrix.Dense, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	if err := matrix.ValidateSquare(normDistance); err != nil {
		return nil, fmt.Errorf("problem: weighted: %w", err)
	}
	if err := matrix.ValidateNotNil(normTime); err != nil {
		return nil, fmt.Errorf("problem: weighted: %w", err)
	}
	if err := matrix.ValidateSameShape(normDistance, normTime); err != nil {
		return nil, fmt.Errorf("problem: weighted: %w", err)
	}

	d, err := matrix.Scale(normDistance, w.Distance)
	if err != nil {
		return nil, fmt.Errorf("problem: weighted: %w", err)
	}
	t, err := matrix.Scale(normTime, w.Time)
	if err != nil {
		return nil, fmt.Errorf("problem: weighted: %w", err)
	}
	out, err := matrix.Add(d, t)
	if err != nil {
		return nil, fmt.Errorf("problem: weighted: %w", err)
	}

	return out, nil
}

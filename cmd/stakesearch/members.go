// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"strings"

	"github.com/katalvlaran/stakesearch/problem"
)

// noSeeds is the suffix that makes a stakeholder ignore the leaderboard.
const noSeeds = ":noseed"

// member describes one stakeholder of an in-process committee.
type member struct {
	name        string
	weights     problem.Weights
	acceptSeeds bool
}

// parseMember reads "[name=]d:t[:noseed]". Without a name the weights are
// used as the name.
func parseMember(s string) (member, error) {
	m := member{acceptSeeds: true}
	if name, rest, ok := strings.Cut(s, "="); ok {
		m.name, s = strings.TrimSpace(name), rest
	}
	if strings.HasSuffix(s, noSeeds) {
		m.acceptSeeds = false
		s = strings.TrimSuffix(s, noSeeds)
	}
	w, err := problem.ParseWeights(s)
	if err != nil {
		return member{}, err
	}
	m.weights = w
	if m.name == "" {
		m.name = w.String()
	}

	return m, nil
}

// expand repeats every member multiplier times, naming copy i "name - i".
func expand(members []member, multiplier int) ([]member, error) {
	if multiplier < 1 {
		return nil, fmt.Errorf("multiplier %d: must be positive", multiplier)
	}
	out := make([]member, 0, len(members)*multiplier)
	for _, m := range members {
		for i := 0; i < multiplier; i++ {
			cp := m
			cp.name = fmt.Sprintf("%s - %d", m.name, i)
			out = append(out, cp)
		}
	}

	return out, nil
}

package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/katalvlaran/stakesearch/problem"
	"github.com/stretchr/testify/require"
)

func TestParseMember(t *testing.T) {
	m, err := parseMember("fast=0:1:noseed")
	require.NoError(t, err)
	require.Equal(t, member{name: "fast", weights: problem.Weights{Time: 1}}, m)

	m, err = parseMember("0.25:0.75")
	require.NoError(t, err)
	require.Equal(t, member{name: "0.25:0.75", weights: problem.Weights{Distance: 0.25, Time: 0.75}, acceptSeeds: true}, m)

	for _, bad := range []string{"", "x=1", "1:2", "a=b:c:noseed"} {
		_, err = parseMember(bad)
		require.ErrorIs(t, err, problem.ErrInvalidWeights, bad)
	}
}

func TestExpand(t *testing.T) {
	in := []member{{name: "d"}, {name: "t"}}
	out, err := expand(in, 2)
	require.NoError(t, err)
	names := make([]string, len(out))
	for i := range out {
		names[i] = out[i].name
	}
	require.Equal(t, []string{"d - 0", "d - 1", "t - 0", "t - 1"}, names)

	_, err = expand(in, 0)
	require.Error(t, err)
}

func TestSetupLogging(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, setupLogging(&buf, "warn", "json"))
	require.Error(t, setupLogging(&buf, "loud", "json"))
	require.Error(t, setupLogging(&buf, "info", "xml"))
	require.NoError(t, setupLogging(io.Discard, "info", "text"))
}

func run(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = io.Discard
	require.NoError(t, app.Run(append([]string{"stakesearch", "--log-level", "error"}, args...)))

	return out.String()
}

func TestGenerateCommand(t *testing.T) {
	out := run(t, "generate", "--cities", "4", "--seed", "3")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 5)
	require.Equal(t, "city,x,y,terrain", lines[0])
	require.Equal(t, out, run(t, "generate", "--cities", "4", "--seed", "3"))
}

func TestRunCommand(t *testing.T) {
	csvPath := filepath.Join(t.TempDir(), "server.csv")
	out := run(t, "run",
		"--cities", "6",
		"--rounds", "2",
		"--wait", "20ms",
		"--population", "20",
		"--generations", "10",
		"--workers", "1",
		"--weights", "d=1:0",
		"--weights", "t=0:1:noseed",
		"--multiplier", "2",
		"--csv", csvPath,
		"--exact",
	)
	require.Contains(t, out, "winner: ")
	require.Contains(t, out, "exact: cost ")
	for _, name := range []string{"d - 0", "d - 1", "t - 0", "t - 1"} {
		require.Contains(t, out, name+" | ")
	}

	b, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	require.Len(t, strings.Split(strings.TrimSpace(string(b)), "\n"), 3)
}

package telemetry_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"math"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/katalvlaran/stakesearch/telemetry"
	"github.com/stretchr/testify/require"
)

func TestSlogSink(t *testing.T) {
	var buf bytes.Buffer
	sink := telemetry.NewSlogSink(slog.New(slog.NewJSONHandler(&buf, nil)))
	sink.Record(telemetry.Info(2, "round started", slog.String("stakeholder", "a")))
	sink.Record(telemetry.Debug(2, "hidden")) // below the default info level
	sink.Record(telemetry.Warn(telemetry.NoRound, "no round"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var first map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	require.Equal(t, "round started", first["msg"])
	require.Equal(t, float64(2), first["round"])
	require.Equal(t, "a", first["stakeholder"])

	var second map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))
	require.NotContains(t, second, "round")
	require.Equal(t, "WARN", second["level"])
}

func TestMemoryAndMulti(t *testing.T) {
	a, b := &telemetry.MemorySink{}, &telemetry.MemorySink{}
	s := telemetry.Multi(a, nil, b, telemetry.Discard)
	s.Record(telemetry.Info(0, "x", slog.Float64("cost", 1.5)))
	s.Record(telemetry.Info(1, "y"))

	require.Equal(t, []string{"x", "y"}, a.Messages())
	require.Equal(t, a.Messages(), b.Messages())

	found := a.Find("x")
	require.Len(t, found, 1)
	v, ok := found[0].Attr("cost")
	require.True(t, ok)
	require.Equal(t, 1.5, v.Float64())
	_, ok = found[0].Attr("missing")
	require.False(t, ok)
}

func TestCSVLog(t *testing.T) {
	var buf bytes.Buffer
	l := telemetry.NewCSVLog(&buf)
	require.NoError(t, l.Header([]string{"d - 0", "t - 0"}))
	c := 2.5
	at := time.Date(2022, 4, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, l.Row(1, at, "d - 0", 2.5, []*float64{&c, nil}))
	require.NoError(t, l.Close())

	require.Equal(t,
		"Round,Time,Best Stakeholder,Best Fitness,d - 0,t - 0\n"+
			"1,2022-04-01T12:00:00Z,d - 0,2.5,2.5,\n",
		buf.String())
}

func TestCreateCSVLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.csv")
	l, err := telemetry.CreateCSVLog(path)
	require.NoError(t, err)
	require.NoError(t, l.Header([]string{"a"}))
	require.NoError(t, l.Close())

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "Round,Time,Best Stakeholder,Best Fitness,a\n", string(b))
}

func TestSummarize(t *testing.T) {
	s := telemetry.Summarize([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	require.Equal(t, 8, s.Count)
	require.Equal(t, 5.0, s.Mean)
	require.InDelta(t, math.Sqrt(32.0/7.0), s.StdDev, 1e-12)
	require.Equal(t, 2.0, s.Min)
	require.Equal(t, 9.0, s.Max)

	one := telemetry.Summarize([]float64{3})
	require.Equal(t, telemetry.Stats{Count: 1, Mean: 3, Min: 3, Max: 3}, one)
	require.Equal(t, telemetry.Stats{}, telemetry.Summarize(nil))
	require.Len(t, s.Attrs(), 5)
}

func TestMetrics(t *testing.T) {
	m := telemetry.NewMetrics()
	m.RoundCompleted(150*time.Millisecond, 1.25)
	m.StakeholderCost("alpha", 1.25)
	m.Stalled("beta")
	m.ProtocolViolation("beta")
	m.Withdrawn()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	text := string(body)
	require.Contains(t, text, "stakesearch_rounds_completed_total 1")
	require.Contains(t, text, "stakesearch_best_cost 1.25")
	require.Contains(t, text, `stakesearch_stakeholder_cost{stakeholder="alpha"} 1.25`)
	require.Contains(t, text, `stakesearch_stalled_total{stakeholder="beta"} 1`)
	require.Contains(t, text, `stakesearch_protocol_violations_total{stakeholder="beta"} 1`)
	require.Contains(t, text, "stakesearch_withdrawn_total 1")

	// nil receiver is a no-op.
	var none *telemetry.Metrics
	none.RoundCompleted(time.Second, 1)
	none.Stalled("x")
	require.NotNil(t, none.Handler())
}

func TestCollectSysInfo(t *testing.T) {
	info, _ := telemetry.CollectSysInfo()
	require.NotEmpty(t, info.Platform)
	require.Positive(t, info.Cores)
	require.Len(t, info.Attrs(), 4)
}

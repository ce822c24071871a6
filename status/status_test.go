package status_test

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/katalvlaran/stakesearch/coordinator"
	"github.com/katalvlaran/stakesearch/leaderboard"
	"github.com/katalvlaran/stakesearch/status"
	"github.com/katalvlaran/stakesearch/telemetry"
	"github.com/katalvlaran/stakesearch/tsp"
	"github.com/stretchr/testify/require"
)

type fixed coordinator.Snapshot

func (f fixed) Snapshot() coordinator.Snapshot { return coordinator.Snapshot(f) }

func snapshot() fixed {
	return fixed{
		Round:  1,
		Rounds: 4,
		Standings: []leaderboard.Standing{
			{Candidate: leaderboard.Candidate{Name: "d - 0", Solution: tsp.Solution{0, 2, 1}}, Cost: 1.5},
		},
		Stakeholders: []coordinator.Score{
			{Name: "d - 0", State: "active", Reported: true, Fitness: 1.5, Solution: tsp.Solution{0, 2, 1}},
			{Name: "t - 0", State: "stalled"},
		},
	}
}

func get(t *testing.T, h http.Handler, path string) (int, []byte) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)

	return rec.Code, body
}

func TestRouter_Healthz(t *testing.T) {
	code, body := get(t, status.Router(snapshot(), nil), "/healthz")
	require.Equal(t, http.StatusOK, code)
	require.JSONEq(t, `{"status":"ok","round":1,"rounds":4,"done":false}`, string(body))
}

func TestRouter_Leaderboard(t *testing.T) {
	code, body := get(t, status.Router(snapshot(), nil), "/leaderboard")
	require.Equal(t, http.StatusOK, code)

	var got coordinator.Snapshot
	require.NoError(t, json.Unmarshal(body, &got))
	require.Equal(t, coordinator.Snapshot(snapshot()), got)
}

func TestRouter_Metrics(t *testing.T) {
	m := telemetry.NewMetrics()
	m.RoundCompleted(time.Second, 0.75)
	code, body := get(t, status.Router(snapshot(), m), "/metrics")
	require.Equal(t, http.StatusOK, code)
	require.Contains(t, string(body), "stakesearch_best_cost 0.75")

	code, _ = get(t, status.Router(snapshot(), nil), "/metrics")
	require.Equal(t, http.StatusOK, code)
	code, _ = get(t, status.Router(snapshot(), nil), "/nope")
	require.Equal(t, http.StatusNotFound, code)
}

func TestServeListener_Shutdown(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- status.ServeListener(ctx, ln, snapshot(), nil) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, resp.Body.Close())

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not shut down")
	}
}

// SPDX-License-Identifier: MIT

// Package status exposes a running coordinator over HTTP.
//
//	GET /healthz      liveness and round progress
//	GET /leaderboard  the latest coordinator.Snapshot
//	GET /metrics      Prometheus exposition of telemetry.Metrics
package status

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/katalvlaran/stakesearch/coordinator"
	"github.com/katalvlaran/stakesearch/telemetry"
)

// shutdownGrace bounds the graceful shutdown once ctx ends.
const shutdownGrace = 5 * time.Second

// Source provides the state to serve; *coordinator.Coordinator implements it.
type Source interface {
	Snapshot() coordinator.Snapshot
}

// Router builds the gin engine. metrics may be nil.
func Router(src Source, metrics *telemetry.Metrics) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		s := src.Snapshot()
		c.JSON(http.StatusOK, gin.H{"status": "ok", "round": s.Round, "rounds": s.Rounds, "done": s.Done})
	})
	r.GET("/leaderboard", func(c *gin.Context) {
		c.JSON(http.StatusOK, src.Snapshot())
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	return r
}

// Serve listens on addr and serves until ctx ends.
func Serve(ctx context.Context, addr string, src Source, metrics *telemetry.Metrics) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	return ServeListener(ctx, ln, src, metrics)
}

// ServeListener serves on ln until ctx ends, then shuts down gracefully.
// It returns nil after a shutdown caused by ctx.
func ServeListener(ctx context.Context, ln net.Listener, src Source, metrics *telemetry.Metrics) error {
	srv := &http.Server{Handler: Router(src, metrics), ReadHeaderTimeout: 5 * time.Second}

	failed := make(chan error, 1)
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			failed <- err
		}
		close(failed)
	}()

	select {
	case err := <-failed:
		return err
	case <-ctx.Done():
	}
	shutCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()

	return srv.Shutdown(shutCtx)
}

// SPDX-License-Identifier: MIT

package coordinator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/katalvlaran/stakesearch/leaderboard"
	"github.com/katalvlaran/stakesearch/matrix"
	"github.com/katalvlaran/stakesearch/problem"
	"github.com/katalvlaran/stakesearch/telemetry"
	"github.com/katalvlaran/stakesearch/wire"
)

// linger bounds how long shutdown waits for stakeholders to hang up after Stop.
const linger = 2 * time.Second

// event is one frame, or one read failure, from a stakeholder.
type event struct {
	idx int
	msg wire.Message
	err error
}

// Coordinator runs rounds over a fixed set of stakeholders.
//
// Accept and Run must be called once each, in that order, from one
// goroutine. Snapshot may be called concurrently at any time.
type Coordinator struct {
	opts    Options
	inst    *problem.Instance
	fitness *matrix.Dense
	sink    telemetry.Sink

	records   []*Record
	standings []leaderboard.Standing
	scores    []Score
	ran       bool

	events  chan event
	done    chan struct{}
	readers sync.WaitGroup

	mu   sync.RWMutex
	snap Snapshot
}

// New validates opts and prepares a Coordinator for inst.
func New(inst *problem.Instance, opts Options) (*Coordinator, error) {
	if inst == nil {
		return nil, fmt.Errorf("nil instance: %w", ErrInvalidOptions)
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	fitness, err := inst.Weighted(opts.Weights)
	if err != nil {
		return nil, fmt.Errorf("coordinator: fitness: %w", err)
	}
	sink := opts.Sink
	if sink == nil {
		sink = telemetry.NewSlogSink(nil)
	}

	return &Coordinator{
		opts:    opts,
		inst:    inst,
		fitness: fitness,
		sink:    sink,
		snap:    Snapshot{Round: -1, Rounds: opts.Rounds},
	}, nil
}

// Fitness returns the coordinator's weighted matrix.
func (c *Coordinator) Fitness() *matrix.Dense { return c.fitness }

// Accept takes connections from ln until Options.Stakeholders have sent
// Hello. A connection whose first frame is not a Hello is closed and does not
// count. Cancelling ctx closes ln and aborts.
func (c *Coordinator) Accept(ctx context.Context, ln net.Listener) error {
	stop := context.AfterFunc(ctx, func() { _ = ln.Close() })
	defer stop()

	for len(c.records) < c.opts.Stakeholders {
		raw, err := ln.Accept()
		if err != nil {
			c.closeAll()
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("coordinator: accept: %w", err)
		}
		rec, err := c.handshake(raw)
		if err != nil {
			addr := raw.RemoteAddr().String()
			c.sink.Record(telemetry.Warn(telemetry.NoRound, "handshake rejected",
				slog.String("addr", addr), slog.Any("err", err)))
			c.opts.Metrics.ProtocolViolation(addr)
			_ = raw.Close()
			continue
		}
		c.records = append(c.records, rec)
		c.sink.Record(telemetry.Info(telemetry.NoRound, "stakeholder joined",
			slog.Int("index", rec.Index), slog.String("stakeholder", rec.Name),
			slog.String("addr", raw.RemoteAddr().String())))
	}

	if c.opts.CSV != nil {
		names := make([]string, len(c.records))
		for i, rec := range c.records {
			names[i] = rec.Name
		}
		if err := c.opts.CSV.Header(names); err != nil {
			c.sink.Record(telemetry.Warn(telemetry.NoRound, "csv header", slog.Any("err", err)))
		}
	}
	c.publish(-1, false)

	return nil
}

func (c *Coordinator) handshake(raw net.Conn) (*Record, error) {
	conn := wire.NewConn(raw)
	if c.opts.HelloTimeout > 0 {
		if err := conn.SetReadDeadline(time.Now().Add(c.opts.HelloTimeout)); err != nil {
			return nil, err
		}
	}
	msg, err := conn.Receive()
	if err != nil {
		return nil, err
	}
	if err = conn.SetReadDeadline(time.Time{}); err != nil {
		return nil, err
	}
	hello, ok := msg.(wire.Hello)
	if !ok {
		return nil, fmt.Errorf("%w: expected hello, got %s", wire.ErrProtocolViolation, msg.Kind())
	}

	idx := len(c.records)
	name := hello.Name
	if name == "" {
		name = fmt.Sprintf("stakeholder %d", idx)
	}

	return &Record{Index: idx, Name: name, State: Active, resultRound: -1, conn: conn}, nil
}

// Run plays Options.Rounds rounds and stops every stakeholder.
//
// It returns ctx.Err() if ctx is cancelled, ErrNoResults if no stakeholder
// ever reported a tour, and otherwise the final leaderboard. Stakeholders
// that stall, withdraw or disconnect never make Run fail.
func (c *Coordinator) Run(ctx context.Context) (Report, error) {
	if c.ran || len(c.records) < c.opts.Stakeholders {
		return Report{}, ErrNotReady
	}
	c.ran = true
	start := time.Now()

	info, err := telemetry.CollectSysInfo()
	if err != nil {
		c.sink.Record(telemetry.Debug(telemetry.NoRound, "system info incomplete", slog.Any("err", err)))
	}
	c.sink.Record(telemetry.Info(telemetry.NoRound, "run started", append(info.Attrs(),
		slog.Int("stakeholders", len(c.records)),
		slog.Int("rounds", c.opts.Rounds),
		slog.Int("cities", c.inst.Size()),
		slog.String("weights", c.opts.Weights.String()))...))

	c.startReaders()
	defer c.shutdown()

	for r := 0; r < c.opts.Rounds; r++ {
		if err = c.round(ctx, r); err != nil {
			return Report{}, err
		}
		if r+1 < c.opts.Rounds && c.opts.RoundPause > 0 {
			if err = c.sleep(ctx, r, c.opts.RoundPause); err != nil {
				return Report{}, err
			}
		}
	}
	c.publish(c.opts.Rounds-1, true)

	if len(c.standings) == 0 {
		c.sink.Record(telemetry.Warn(telemetry.NoRound, "run finished without results"))
		return Report{}, ErrNoResults
	}
	rep := Report{
		Winner:       c.standings[0],
		Standings:    c.standings,
		Stakeholders: c.scores,
		Rounds:       c.opts.Rounds,
		Elapsed:      time.Since(start),
		SysInfo:      info,
	}
	c.sink.Record(telemetry.Info(telemetry.NoRound, "run finished",
		slog.String("winner", rep.Winner.Name),
		slog.Float64("cost", rep.Winner.Cost),
		slog.String("solution", rep.Winner.Solution.String()),
		slog.Duration("elapsed", rep.Elapsed)))

	return rep, nil
}

// Snapshot returns a copy of the state after the last completed round.
func (c *Coordinator) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s := c.snap
	s.Standings = append([]leaderboard.Standing(nil), c.snap.Standings...)
	s.Stakeholders = append([]Score(nil), c.snap.Stakeholders...)

	return s
}

func (c *Coordinator) publish(round int, done bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snap = Snapshot{
		Round:        round,
		Rounds:       c.opts.Rounds,
		Done:         done,
		Standings:    append([]leaderboard.Standing(nil), c.standings...),
		Stakeholders: append([]Score(nil), c.scores...),
	}
	if c.scores == nil {
		c.snap.Stakeholders = make([]Score, len(c.records))
		for i, rec := range c.records {
			c.snap.Stakeholders[i] = Score{Name: rec.Name, State: rec.State.String()}
		}
	}
}

func (c *Coordinator) startReaders() {
	c.events = make(chan event, len(c.records))
	c.done = make(chan struct{})
	for _, rec := range c.records {
		c.readers.Add(1)
		go c.read(rec)
	}
}

// read forwards every frame of rec to the event channel until the stream
// fails or the run is over. Malformed frames are forwarded and reading goes on.
func (c *Coordinator) read(rec *Record) {
	defer c.readers.Done()
	for {
		msg, err := rec.conn.Receive()
		select {
		case c.events <- event{idx: rec.Index, msg: msg, err: err}:
		case <-c.done:
			return
		}
		if err != nil && !isViolation(err) {
			return
		}
	}
}

func isViolation(err error) bool {
	return errors.Is(err, wire.ErrProtocolViolation) && !errors.Is(err, wire.ErrChannelClosed)
}

// shutdown sends Stop, lets the stakeholders hang up and closes every stream.
func (c *Coordinator) shutdown() {
	c.broadcast(telemetry.NoRound, wire.Stop{})
	close(c.done)
	for _, rec := range c.records {
		_ = rec.conn.CloseWrite()
	}

	finished := make(chan struct{})
	go func() {
		c.readers.Wait()
		close(finished)
	}()
	t := time.NewTimer(linger)
	select {
	case <-finished:
	case <-t.C:
	}
	t.Stop()
	c.closeAll()
	<-finished
}

func (c *Coordinator) closeAll() {
	for _, rec := range c.records {
		_ = rec.conn.Close()
	}
}

// SPDX-License-Identifier: MIT

package coordinator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/katalvlaran/stakesearch/leaderboard"
	"github.com/katalvlaran/stakesearch/telemetry"
	"github.com/katalvlaran/stakesearch/tsp"
	"github.com/katalvlaran/stakesearch/wire"
)

// round plays round r. Only ctx cancellation and ranking failures are errors.
func (c *Coordinator) round(ctx context.Context, r int) error {
	start := time.Now()
	for _, rec := range c.records {
		if rec.State == Stalled {
			rec.State = Active
		}
	}
	c.sink.Record(telemetry.Info(r, "round started", slog.Int("active", c.participating())))

	var open wire.Message
	if r == 0 {
		t := c.inst.Tables()
		open = wire.Init{
			NormDistance: t.NormDistance,
			NormTime:     t.NormTime,
			Distance:     t.Distance,
			Time:         t.Time,
			Coordinator:  c.fitness,
		}
	} else {
		open = wire.Continue{Round: r, Seeds: leaderboard.Solutions(c.standings)}
	}
	c.broadcast(r, open)

	if err := c.sleep(ctx, r, c.opts.RoundWait); err != nil {
		return err
	}
	if err := c.collect(ctx, r, c.broadcast(r, wire.RequestResult{Round: r})); err != nil {
		return err
	}

	return c.rank(r, start)
}

func (c *Coordinator) participating() int {
	n := 0
	for _, rec := range c.records {
		if rec.State.participating() {
			n++
		}
	}

	return n
}

// broadcast sends msg to every participating stakeholder concurrently and
// returns the indices it reached. A stakeholder that cannot be written to is
// closed.
func (c *Coordinator) broadcast(r int, msg wire.Message) map[int]struct{} {
	targets := make([]*Record, 0, len(c.records))
	for _, rec := range c.records {
		if rec.State.participating() {
			targets = append(targets, rec)
		}
	}
	sent := make(map[int]struct{}, len(targets))
	if len(targets) == 0 {
		return sent
	}

	errs := make([]error, len(targets))
	p := pool.New().WithMaxGoroutines(len(targets))
	for i, rec := range targets {
		p.Go(func() { errs[i] = rec.conn.Send(msg) })
	}
	p.Wait()

	for i, rec := range targets {
		if errs[i] != nil {
			c.drop(r, rec, Closed, "send failed", slog.String("message", string(msg.Kind())), slog.Any("err", errs[i]))
			_ = rec.conn.Close()
			continue
		}
		sent[rec.Index] = struct{}{}
	}

	return sent
}

// sleep waits for d while still handling incoming events.
func (c *Coordinator) sleep(ctx context.Context, r int, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	_, err := c.await(ctx, r, t.C, nil)

	return err
}

// collect waits for a Result of round r from every stakeholder in pending,
// for at most ResultTimeout when it is set. Stakeholders still pending at the
// deadline are marked stalled and keep their previous result.
func (c *Coordinator) collect(ctx context.Context, r int, pending map[int]struct{}) error {
	var deadline <-chan time.Time
	if c.opts.ResultTimeout > 0 {
		t := time.NewTimer(c.opts.ResultTimeout)
		defer t.Stop()
		deadline = t.C
	}
	timedOut, err := c.await(ctx, r, deadline, pending)
	if err != nil || !timedOut {
		return err
	}

	for idx := range pending {
		rec := c.records[idx]
		if !rec.State.participating() {
			continue
		}
		rec.State = Stalled
		c.sink.Record(telemetry.Warn(r, "no result received",
			slog.String("stakeholder", rec.Name),
			slog.Int("index", rec.Index),
			slog.Duration("timeout", c.opts.ResultTimeout),
			slog.Any("err", ErrStalled)))
		c.opts.Metrics.Stalled(rec.Name)
	}

	return nil
}

// await handles events until timer fires or, when pending is non-nil, until
// pending is empty. A nil timer never fires.
func (c *Coordinator) await(ctx context.Context, r int, timer <-chan time.Time, pending map[int]struct{}) (timedOut bool, err error) {
	for pending == nil || len(pending) > 0 {
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-timer:
			return true, nil
		case ev := <-c.events:
			c.handle(r, ev, pending)
		}
	}

	return false, nil
}

func (c *Coordinator) handle(r int, ev event, pending map[int]struct{}) {
	rec := c.records[ev.idx]
	if !rec.State.participating() {
		return
	}
	if ev.err != nil {
		if isViolation(ev.err) {
			c.violation(r, rec, ev.err, pending)
			return
		}
		c.drop(r, rec, Closed, "stakeholder disconnected", slog.Any("err", ev.err))
		delete(pending, rec.Index)
		return
	}

	switch m := ev.msg.(type) {
	case wire.Result:
		c.result(r, rec, m, pending)
	case wire.Withdraw:
		c.drop(r, rec, Withdrawn, "stakeholder withdrew", slog.String("reason", m.Reason))
		delete(pending, rec.Index)
	default:
		c.violation(r, rec, fmt.Errorf("%w: unexpected %s", wire.ErrProtocolViolation, ev.msg.Kind()), pending)
	}
}

func (c *Coordinator) result(r int, rec *Record, m wire.Result, pending map[int]struct{}) {
	if m.Round > r || m.Round < 0 {
		c.violation(r, rec, fmt.Errorf("%w: result for round %d", wire.ErrProtocolViolation, m.Round), pending)
		return
	}
	if err := m.Solution.Validate(c.inst.Size()); err != nil {
		c.violation(r, rec, fmt.Errorf("%w: %w", wire.ErrProtocolViolation, err), pending)
		return
	}
	if m.Round >= rec.resultRound {
		rec.LastResult = m.Solution.Clone()
		rec.resultRound = m.Round
	}
	if m.Round < r {
		c.sink.Record(telemetry.Debug(r, "late result",
			slog.String("stakeholder", rec.Name), slog.Int("for_round", m.Round)))
		return
	}
	delete(pending, rec.Index)
}

// violation logs a bad frame and stops waiting for its sender this round.
func (c *Coordinator) violation(r int, rec *Record, err error, pending map[int]struct{}) {
	c.sink.Record(telemetry.Warn(r, "protocol violation",
		slog.String("stakeholder", rec.Name), slog.Int("index", rec.Index), slog.Any("err", err)))
	c.opts.Metrics.ProtocolViolation(rec.Name)
	delete(pending, rec.Index)
}

func (c *Coordinator) drop(r int, rec *Record, state State, msg string, attrs ...slog.Attr) {
	rec.State = state
	c.sink.Record(telemetry.Warn(r, msg, append([]slog.Attr{
		slog.String("stakeholder", rec.Name), slog.Int("index", rec.Index)}, attrs...)...))
	c.opts.Metrics.Withdrawn()
}

// rank rebuilds the leaderboard from every stakeholder's latest tour and
// records the round in the trail.
func (c *Coordinator) rank(r int, start time.Time) error {
	tables := c.inst.Tables()
	candidates := make([]leaderboard.Candidate, len(c.records))
	scores := make([]Score, len(c.records))
	cells := make([]*float64, len(c.records))
	fitnesses := make([]float64, 0, len(c.records))

	var err error
	for i, rec := range c.records {
		candidates[i] = leaderboard.Candidate{Name: rec.Name, Solution: rec.LastResult}
		s := Score{Name: rec.Name, State: rec.State.String()}
		if rec.LastResult == nil {
			scores[i] = s
			continue
		}
		s.Reported = true
		s.Solution = rec.LastResult.Clone()
		if s.Distance, err = tsp.Cost(tables.Distance, rec.LastResult); err != nil {
			return fmt.Errorf("coordinator: round %d: %w", r, err)
		}
		if s.Time, err = tsp.Cost(tables.Time, rec.LastResult); err != nil {
			return fmt.Errorf("coordinator: round %d: %w", r, err)
		}
		if s.Fitness, err = tsp.Cost(c.fitness, rec.LastResult); err != nil {
			return fmt.Errorf("coordinator: round %d: %w", r, err)
		}
		scores[i] = s
		f := s.Fitness
		cells[i] = &f
		fitnesses = append(fitnesses, f)

		c.sink.Record(telemetry.Info(r, "stakeholder result",
			slog.String("stakeholder", s.Name),
			slog.String("state", s.State),
			slog.Float64("distance", s.Distance),
			slog.Float64("time", s.Time),
			slog.Float64("fitness", s.Fitness),
			slog.String("solution", s.Solution.String())))
		c.opts.Metrics.StakeholderCost(s.Name, s.Fitness)
	}

	top, err := leaderboard.TopK(candidates, c.fitness, c.opts.topK())
	if err != nil {
		return fmt.Errorf("coordinator: round %d: %w", r, err)
	}
	c.standings = top
	c.scores = scores

	elapsed := time.Since(start)
	attrs := []slog.Attr{slog.Int("reported", len(fitnesses)), slog.Duration("elapsed", elapsed)}
	bestName, bestCost := "", 0.0
	if len(top) > 0 {
		bestName, bestCost = top[0].Name, top[0].Cost
		attrs = append(attrs, slog.String("best", bestName), slog.Float64("best_cost", bestCost))
		c.opts.Metrics.RoundCompleted(elapsed, bestCost)
	}
	attrs = append(attrs, telemetry.Summarize(fitnesses).Attrs()...)
	c.sink.Record(telemetry.Info(r, "round completed", attrs...))

	if c.opts.CSV != nil {
		if err = c.opts.CSV.Row(r, time.Now(), bestName, bestCost, cells); err != nil {
			c.sink.Record(telemetry.Warn(r, "csv row", slog.Any("err", err)))
		}
	}
	c.publish(r, false)

	return nil
}

// SPDX-License-Identifier: MIT

package stakeholder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sourcegraph/conc"

	"github.com/katalvlaran/stakesearch/ga"
	"github.com/katalvlaran/stakesearch/matrix"
	"github.com/katalvlaran/stakesearch/problem"
	"github.com/katalvlaran/stakesearch/telemetry"
	"github.com/katalvlaran/stakesearch/tsp"
	"github.com/katalvlaran/stakesearch/wire"
)

// Stakeholder is one search agent. It can Run a single connection at a time.
type Stakeholder struct {
	opts   Options
	engine ga.Engine
	sink   telemetry.Sink
}

// New validates opts and fills in the default engine and sink.
func New(opts Options) (*Stakeholder, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	engine := opts.Engine
	if engine == nil {
		ev, err := ga.NewEvolver(ga.DefaultOptions())
		if err != nil {
			return nil, err
		}
		engine = ev
	}
	sink := opts.Sink
	if sink == nil {
		sink = telemetry.NewSlogSink(nil)
	}

	return &Stakeholder{opts: opts, engine: engine, sink: sink}, nil
}

// Connect dials addr until it succeeds or ctx ends, then announces the
// stakeholder with Hello.
func (s *Stakeholder) Connect(ctx context.Context, addr string) (*wire.Conn, error) {
	dial := s.opts.Dial
	if dial.Report == nil {
		dial.Report = func(err error) error {
			s.sink.Record(telemetry.Debug(telemetry.NoRound, "dial failed",
				slog.String("stakeholder", s.opts.Name), slog.Any("err", err)))
			return nil
		}
	}

	var conn *wire.Conn
	err := dial.Retry(ctx, func() error {
		c, err := wire.Dial(addr)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrConnect, err)
		}
		conn = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err = conn.Send(wire.Hello{Name: s.opts.Name}); err != nil {
		_ = conn.Close()
		return nil, err
	}
	s.sink.Record(telemetry.Info(telemetry.NoRound, "connected",
		slog.String("stakeholder", s.opts.Name), slog.String("addr", addr)))

	return conn, nil
}

// Spawn is Connect followed by Run.
func Spawn(ctx context.Context, addr string, opts Options) error {
	s, err := New(opts)
	if err != nil {
		return err
	}
	conn, err := s.Connect(ctx, addr)
	if err != nil {
		return err
	}

	return s.Run(ctx, conn)
}

type inbound struct {
	msg wire.Message
	err error
}

// Run serves conn until Stop (nil), a read failure (wire.ErrChannelClosed),
// a failed search (ErrWithdrawn) or ctx cancellation. conn is closed on
// return.
func (s *Stakeholder) Run(ctx context.Context, conn *wire.Conn) error {
	ctx, cancel := context.WithCancel(ctx)
	var wg conc.WaitGroup
	defer wg.Wait()
	defer func() { _ = conn.Close() }()
	defer cancel()

	flag := ga.NewFlag()
	flag.Set()
	cmds := make(chan command)
	reqs := make(chan chan tsp.Solution)
	in := make(chan inbound)
	workerDone := make(chan struct{})
	var workerErr error

	w := &worker{engine: s.engine, flag: flag, cmds: cmds, reqs: reqs}
	wg.Go(func() {
		defer close(workerDone)
		workerErr = w.loop(ctx)
	})
	wg.Go(func() {
		for {
			msg, err := conn.Receive()
			select {
			case in <- inbound{msg: msg, err: err}:
			case <-ctx.Done():
				return
			}
			if err != nil && !errors.Is(err, wire.ErrProtocolViolation) {
				return
			}
		}
	})

	c := &communicator{
		Stakeholder: s,
		conn:        conn,
		flag:        flag,
		cmds:        cmds,
		reqs:        reqs,
		workerDone:  workerDone,
		workerErr:   func() error { return workerErr },
		ctx:         ctx,
	}

	return c.loop(in)
}

// communicator talks to the coordinator and hands work to the worker.
type communicator struct {
	*Stakeholder
	conn       *wire.Conn
	flag       *ga.Flag
	cmds       chan<- command
	reqs       chan<- chan tsp.Solution
	workerDone <-chan struct{}
	workerErr  func() error
	ctx        context.Context

	fitness *matrix.Dense
	round   int
}

func (c *communicator) loop(in <-chan inbound) error {
	for {
		select {
		case <-c.ctx.Done():
			c.flag.Set()
			return c.ctx.Err()
		case <-c.workerDone:
			return c.withdraw()
		case ev := <-in:
			if ev.err != nil {
				if errors.Is(ev.err, wire.ErrProtocolViolation) && !errors.Is(ev.err, wire.ErrChannelClosed) {
					c.warn("protocol violation", slog.Any("err", ev.err))
					continue
				}
				c.flag.Set()
				return fmt.Errorf("stakeholder %s: %w", c.opts.Name, ev.err)
			}
			stop, err := c.handle(ev.msg)
			if err != nil || stop {
				return err
			}
		}
	}
}

// handle processes one message; stop reports a clean end of the run.
func (c *communicator) handle(msg wire.Message) (stop bool, err error) {
	switch m := msg.(type) {
	case wire.Init:
		fitness, err := problem.Weighted(m.NormDistance, m.NormTime, c.opts.Weights)
		if err != nil {
			return false, c.fail(fmt.Errorf("%w: fitness: %w", ga.ErrSearchFailed, err))
		}
		c.fitness, c.round = fitness, 0
		c.sink.Record(telemetry.Info(0, "problem received",
			slog.String("stakeholder", c.opts.Name),
			slog.Int("cities", fitness.Rows()),
			slog.String("weights", c.opts.Weights.String())))
		return false, c.hand(command{fitness: fitness})

	case wire.Continue:
		c.round = m.Round
		var seeds ga.Population
		if c.opts.AcceptSeeds {
			seeds = ga.Population(m.Seeds)
		}
		c.sink.Record(telemetry.Debug(m.Round, "round continued",
			slog.String("stakeholder", c.opts.Name), slog.Int("seeds", len(seeds))))
		return false, c.hand(command{seeds: seeds})

	case wire.RequestResult:
		if c.fitness == nil {
			c.warn("result requested before init", slog.Int("for_round", m.Round))
			return false, nil
		}
		return false, c.reply(m.Round)

	case wire.Stop:
		c.flag.Set()
		c.sink.Record(telemetry.Info(c.round, "stopped", slog.String("stakeholder", c.opts.Name)))
		return true, nil
	}
	c.warn("protocol violation", slog.String("message", string(msg.Kind())))

	return false, nil
}

// hand raises the flag so the worker is between searches, delivers cmd and
// lets the worker resume.
func (c *communicator) hand(cmd command) error {
	c.flag.Set()
	select {
	case c.cmds <- cmd:
	case <-c.workerDone:
		return c.withdraw()
	}
	c.flag.Clear()

	return nil
}

func (c *communicator) reply(round int) error {
	c.flag.Set()
	answer := make(chan tsp.Solution, 1)
	select {
	case c.reqs <- answer:
	case <-c.workerDone:
		return c.withdraw()
	}
	var best tsp.Solution
	select {
	case best = <-answer:
	case <-c.workerDone:
		return c.withdraw()
	}

	attrs := []slog.Attr{slog.String("stakeholder", c.opts.Name), slog.String("solution", best.String())}
	if cost, err := tsp.Cost(c.fitness, best); err == nil {
		attrs = append(attrs, slog.Float64("cost", cost))
	}
	if err := c.conn.Send(wire.Result{Round: round, Solution: best}); err != nil {
		return fmt.Errorf("stakeholder %s: %w", c.opts.Name, err)
	}
	c.sink.Record(telemetry.Info(round, "result sent", attrs...))

	return nil
}

// withdraw reports the worker's failure to the coordinator. The worker only
// exits without an error once ctx is done, and then there is nothing to report.
func (c *communicator) withdraw() error {
	err := c.workerErr()
	if err == nil {
		c.flag.Set()
		return c.ctx.Err()
	}

	return c.fail(err)
}

func (c *communicator) fail(cause error) error {
	c.flag.Set()
	c.sink.Record(telemetry.Warn(c.round, "withdrawing",
		slog.String("stakeholder", c.opts.Name), slog.Any("err", cause)))
	if err := c.conn.Send(wire.Withdraw{Reason: cause.Error()}); err != nil {
		return fmt.Errorf("%w: %w: %w", ErrWithdrawn, cause, err)
	}

	return fmt.Errorf("%w: %w", ErrWithdrawn, cause)
}

func (c *communicator) warn(msg string, attrs ...slog.Attr) {
	c.sink.Record(telemetry.Warn(c.round, msg,
		append([]slog.Attr{slog.String("stakeholder", c.opts.Name)}, attrs...)...))
}

// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sourcegraph/conc"
	"github.com/urfave/cli"

	"github.com/katalvlaran/stakesearch/coordinator"
	"github.com/katalvlaran/stakesearch/ga"
	"github.com/katalvlaran/stakesearch/problem"
	"github.com/katalvlaran/stakesearch/stakeholder"
	"github.com/katalvlaran/stakesearch/status"
	"github.com/katalvlaran/stakesearch/telemetry"
	"github.com/katalvlaran/stakesearch/tsp"
)

// exactLimit is the largest instance run solves exactly for comparison.
const exactLimit = 12

func instanceFlags() []cli.Flag {
	return []cli.Flag{
		cli.IntFlag{Name: "cities", Value: 20, Usage: "number of generated cities"},
		cli.Int64Flag{Name: "seed", Value: 1, Usage: "instance generator seed"},
	}
}

func coordinatorFlags() []cli.Flag {
	d := coordinator.DefaultOptions()
	return []cli.Flag{
		cli.IntFlag{Name: "rounds", Value: d.Rounds, Usage: "number of rounds"},
		cli.DurationFlag{Name: "wait", Value: d.RoundWait, Usage: "search time per round"},
		cli.DurationFlag{Name: "result-timeout", Value: d.ResultTimeout, Usage: "stall timeout for results, 0 waits forever"},
		cli.DurationFlag{Name: "pause", Value: d.RoundPause, Usage: "pause between rounds"},
		cli.IntFlag{Name: "top-k", Value: d.TopK, Usage: "leaderboard size"},
		cli.BoolFlag{Name: "share-all", Usage: "share every stakeholder's tour instead of the top k"},
		cli.StringFlag{Name: "coordinator-weights", Value: d.Weights.String(), Usage: "coordinator weights d:t"},
		cli.StringFlag{Name: "status-addr", Usage: "serve /healthz, /leaderboard and /metrics on this address"},
		cli.StringFlag{Name: "csv", Usage: "write the per-round summary to this CSV file"},
	}
}

func engineFlags() []cli.Flag {
	d := ga.DefaultOptions()
	return []cli.Flag{
		cli.IntFlag{Name: "population", Value: d.PopulationSize, Usage: "individuals per generation"},
		cli.IntFlag{Name: "generations", Value: d.Generations, Usage: "generations per search, 0 for 10 per city"},
		cli.IntFlag{Name: "parents", Value: d.ParentsMating, Usage: "parents mating, 0 for half the cities"},
		cli.IntFlag{Name: "keep", Value: d.KeepParents, Usage: "parents kept per generation"},
		cli.StringFlag{Name: "selection", Value: d.Selection.String(), Usage: "sss, tournament, rank or random"},
		cli.StringFlag{Name: "mutation", Value: d.Mutation.String(), Usage: "inversion, swap, scramble or random"},
		cli.Float64Flag{Name: "mutation-probability", Value: d.MutationProbability},
		cli.BoolFlag{Name: "polish", Usage: "finish every search with 2-opt"},
		cli.IntFlag{Name: "workers", Value: d.Workers, Usage: "fitness workers per stakeholder, 0 for all CPUs"},
		cli.Int64Flag{Name: "engine-seed", Value: 1, Usage: "engine seed, offset per stakeholder"},
	}
}

func concat(groups ...[]cli.Flag) []cli.Flag {
	var out []cli.Flag
	for _, g := range groups {
		out = append(out, g...)
	}

	return out
}

func generateCommand() cli.Command {
	return cli.Command{
		Name:  "generate",
		Usage: "print a random instance as CSV",
		Flags: instanceFlags(),
		Action: func(c *cli.Context) error {
			cities, err := problem.Generate(c.Int("cities"), tsp.NewRNG(c.Int64("seed")))
			if err != nil {
				return err
			}
			return problem.WriteCSV(c.App.Writer, cities)
		},
	}
}

func runCommand() cli.Command {
	return cli.Command{
		Name:  "run",
		Usage: "run a coordinator and its stakeholders in one process",
		Flags: concat(instanceFlags(), coordinatorFlags(), engineFlags(), []cli.Flag{
			cli.StringSliceFlag{Name: "weights", Usage: "stakeholder [name=]d:t[:noseed], repeatable (default distance=1:0 and time=0:1)"},
			cli.IntFlag{Name: "multiplier", Value: 1, Usage: "copies of each stakeholder"},
			cli.BoolFlag{Name: "exact", Usage: fmt.Sprintf("also print the exact optimum for up to %d cities", exactLimit)},
		}),
		Action: runAction,
	}
}

func coordinatorCommand() cli.Command {
	return cli.Command{
		Name:  "coordinator",
		Usage: "serve the round protocol to remote stakeholders",
		Flags: concat(instanceFlags(), coordinatorFlags(), []cli.Flag{
			cli.StringFlag{Name: "listen", Value: ":6000", Usage: "TCP listen address"},
			cli.IntFlag{Name: "stakeholders", Value: coordinator.DefaultOptions().Stakeholders, Usage: "stakeholders to wait for"},
		}),
		Action: func(c *cli.Context) error {
			ctx, stop := signalContext()
			defer stop()
			inst, err := instance(c)
			if err != nil {
				return err
			}
			ln, err := net.Listen("tcp", c.String("listen"))
			if err != nil {
				return err
			}
			defer ln.Close()
			slog.Info("listening", "addr", ln.Addr().String())
			_, err = coordinate(ctx, c, ln, inst, c.Int("stakeholders"))

			return err
		},
	}
}

func stakeholderCommand() cli.Command {
	return cli.Command{
		Name:  "stakeholder",
		Usage: "join a coordinator as one stakeholder",
		Flags: concat(engineFlags(), []cli.Flag{
			cli.StringFlag{Name: "addr", Value: "localhost:6000", Usage: "coordinator address"},
			cli.StringFlag{Name: "name", Usage: "name reported to the coordinator"},
			cli.StringFlag{Name: "weights", Value: "1:0", Usage: "stakeholder weights d:t[:noseed]"},
		}),
		Action: func(c *cli.Context) error {
			ctx, stop := signalContext()
			defer stop()
			m, err := parseMember(c.String("weights"))
			if err != nil {
				return err
			}
			if name := c.String("name"); name != "" {
				m.name = name
			}
			opts, err := stakeholderOptions(c, m, 0)
			if err != nil {
				return err
			}
			err = stakeholder.Spawn(ctx, c.String("addr"), opts)
			if errors.Is(err, context.Canceled) {
				return nil
			}

			return err
		},
	}
}

func runAction(c *cli.Context) error {
	sigCtx, stop := signalContext()
	defer stop()
	ctx, cancel := context.WithCancel(sigCtx)
	defer cancel()

	specs := c.StringSlice("weights")
	if len(specs) == 0 {
		specs = []string{"distance=1:0", "time=0:1"}
	}
	members := make([]member, 0, len(specs))
	for _, s := range specs {
		m, err := parseMember(s)
		if err != nil {
			return err
		}
		members = append(members, m)
	}
	members, err := expand(members, c.Int("multiplier"))
	if err != nil {
		return err
	}

	inst, err := instance(c)
	if err != nil {
		return err
	}
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return err
	}
	defer ln.Close()

	committee := make([]stakeholder.Options, len(members))
	for i, m := range members {
		if committee[i], err = stakeholderOptions(c, m, i); err != nil {
			return err
		}
	}

	var wg conc.WaitGroup
	for _, opts := range committee {
		wg.Go(func() {
			if err := stakeholder.Spawn(ctx, ln.Addr().String(), opts); err != nil {
				slog.Warn("stakeholder ended", "stakeholder", opts.Name, "err", err)
			}
		})
	}
	rep, err := coordinate(ctx, c, ln, inst, len(members))
	if err != nil {
		cancel()
		wg.Wait()
		return err
	}
	wg.Wait()

	if c.Bool("exact") && inst.Size() <= exactLimit {
		fitness, err := inst.Weighted(rep.fitnessWeights)
		if err != nil {
			return err
		}
		sol, cost, err := tsp.Exact(fitness)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.App.Writer, "exact: cost %.6f tour %s\n", cost, sol)
	}

	return nil
}

// outcome is a finished run plus the weights its fitness was scored under.
type outcome struct {
	coordinator.Report
	fitnessWeights problem.Weights
}

// coordinate runs the coordinator side on ln and prints the final table.
func coordinate(ctx context.Context, c *cli.Context, ln net.Listener, inst *problem.Instance, stakeholders int) (outcome, error) {
	weights, err := problem.ParseWeights(c.String("coordinator-weights"))
	if err != nil {
		return outcome{}, err
	}
	opts := coordinator.DefaultOptions()
	opts.Stakeholders = stakeholders
	opts.Rounds = c.Int("rounds")
	opts.RoundWait = c.Duration("wait")
	opts.ResultTimeout = c.Duration("result-timeout")
	opts.RoundPause = c.Duration("pause")
	opts.TopK = c.Int("top-k")
	opts.ShareAll = c.Bool("share-all")
	opts.Weights = weights
	opts.Sink = telemetry.NewSlogSink(slog.Default())
	opts.Metrics = telemetry.NewMetrics()
	if path := c.String("csv"); path != "" {
		csvLog, err := telemetry.CreateCSVLog(path)
		if err != nil {
			return outcome{}, err
		}
		defer func() {
			if err := csvLog.Close(); err != nil {
				slog.Warn("closing csv", "path", path, "err", err)
			}
		}()
		opts.CSV = csvLog
	}

	co, err := coordinator.New(inst, opts)
	if err != nil {
		return outcome{}, err
	}
	if addr := c.String("status-addr"); addr != "" {
		statusCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		go func() {
			if err := status.Serve(statusCtx, addr, co, opts.Metrics); err != nil {
				slog.Warn("status server", "addr", addr, "err", err)
			}
		}()
	}

	if err = co.Accept(ctx, ln); err != nil {
		return outcome{}, err
	}
	rep, err := co.Run(ctx)
	if err != nil {
		return outcome{}, err
	}
	if err = rep.WriteTable(c.App.Writer); err != nil {
		return outcome{}, err
	}

	return outcome{Report: rep, fitnessWeights: weights}, nil
}

func instance(c *cli.Context) (*problem.Instance, error) {
	cities, err := problem.Generate(c.Int("cities"), tsp.NewRNG(c.Int64("seed")))
	if err != nil {
		return nil, err
	}

	return problem.NewInstance(cities)
}

// stakeholderOptions builds the options of the i-th stakeholder, each with
// its own engine.
func stakeholderOptions(c *cli.Context, m member, i int) (stakeholder.Options, error) {
	sel, err := ga.ParseSelection(c.String("selection"))
	if err != nil {
		return stakeholder.Options{}, err
	}
	mut, err := ga.ParseMutation(c.String("mutation"))
	if err != nil {
		return stakeholder.Options{}, err
	}
	eo := ga.DefaultOptions()
	eo.PopulationSize = c.Int("population")
	eo.Generations = c.Int("generations")
	eo.ParentsMating = c.Int("parents")
	eo.KeepParents = c.Int("keep")
	eo.Selection = sel
	eo.Mutation = mut
	eo.MutationProbability = c.Float64("mutation-probability")
	eo.PolishTwoOpt = c.Bool("polish")
	eo.Workers = c.Int("workers")
	eo.Seed = c.Int64("engine-seed") + int64(i)
	engine, err := ga.NewEvolver(eo)
	if err != nil {
		return stakeholder.Options{}, err
	}

	opts := stakeholder.DefaultOptions()
	opts.Name = m.name
	opts.Weights = m.weights
	opts.AcceptSeeds = m.acceptSeeds
	opts.Engine = engine
	opts.Sink = telemetry.NewSlogSink(slog.Default())
	opts.Dial.MaxWait = time.Second

	return opts, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

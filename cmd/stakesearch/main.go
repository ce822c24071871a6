// SPDX-License-Identifier: MIT

// Command stakesearch runs a stakeholder-weighted cooperative TSP search.
//
//	stakesearch generate --cities 20 --seed 7 > tsp20.csv
//	stakesearch run --cities 20 --weights distance=1:0 --weights time=0:1 --multiplier 2
//	stakesearch coordinator --listen :6000 --stakeholders 4
//	stakesearch stakeholder --addr localhost:6000 --name fast --weights 0:1
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/urfave/cli"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		slog.Error("stakesearch failed", "err", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "stakesearch"
	app.Usage = "stakeholder-weighted cooperative TSP search"
	app.Flags = []cli.Flag{
		cli.StringFlag{Name: "log-level", Value: "info", Usage: "debug, info, warn or error"},
		cli.StringFlag{Name: "log-format", Value: "text", Usage: "text or json"},
	}
	app.Before = func(c *cli.Context) error {
		return setupLogging(c.App.ErrWriter, c.GlobalString("log-level"), c.GlobalString("log-format"))
	}
	app.Commands = []cli.Command{
		generateCommand(),
		runCommand(),
		coordinatorCommand(),
		stakeholderCommand(),
	}

	return app
}

// setupLogging installs the default slog logger.
func setupLogging(w io.Writer, level, format string) error {
	if w == nil {
		w = os.Stderr
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return fmt.Errorf("log level %q: %w", level, err)
	}
	opts := &slog.HandlerOptions{Level: lvl}

	var h slog.Handler
	switch format {
	case "text":
		h = slog.NewTextHandler(w, opts)
	case "json":
		h = slog.NewJSONHandler(w, opts)
	default:
		return fmt.Errorf("log format %q: want text or json", format)
	}
	slog.SetDefault(slog.New(h))

	return nil
}

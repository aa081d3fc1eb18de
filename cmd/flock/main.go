// Package main runs a flocking simulation from the command line.
package main

import (
	"log"
	"math/rand"
	"os"
	"os/signal"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/janreitz/garden/flocking"
	"github.com/janreitz/garden/logging"
	"github.com/janreitz/garden/simulation"
	"github.com/janreitz/garden/spatialmath"
	"github.com/janreitz/garden/world"
)

const (
	// Flags.
	flagConfig   = "config"
	flagAgents   = "agents"
	flagScale    = "scale"
	flagTicks    = "ticks"
	flagInterval = "interval"
	flagSeed     = "seed"
	flagFocus    = "focus"
	flagMode     = "mode"
	flagSpeed    = "walk-speed"
	flagDebug    = "debug"

	modeFlock = "flock"
	modeWalk  = "walk"
)

func main() {
	app := &cli.App{
		Name:  "flock",
		Usage: "run a flocking simulation",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    flagConfig,
				Aliases: []string{"c"},
				Usage:   "load flocking configuration from `FILE`",
			},
			&cli.IntFlag{
				Name:  flagAgents,
				Value: 80,
				Usage: "number of agents to spawn",
			},
			&cli.Float64Flag{
				Name:  flagScale,
				Value: 8,
				Usage: "agents spawn inside a cube with this side length",
			},
			&cli.IntFlag{
				Name:  flagTicks,
				Value: 600,
				Usage: "number of ticks to run, 0 runs until interrupted",
			},
			&cli.DurationFlag{
				Name:  flagInterval,
				Value: time.Second / 60,
				Usage: "time between ticks",
			},
			&cli.Int64Flag{
				Name:  flagSeed,
				Value: 1,
				Usage: "random seed for spawning agents",
			},
			&cli.StringFlag{
				Name:  flagFocus,
				Value: "0 0 0",
				Usage: "report the agent closest to this `POINT` when done",
			},
			&cli.StringFlag{
				Name:  flagMode,
				Value: modeFlock,
				Usage: "how agents move each tick, one of " + modeFlock + " or " + modeWalk,
			},
			&cli.Float64Flag{
				Name:  flagSpeed,
				Value: flocking.DefaultWalkSpeed,
				Usage: "random offset per second in " + modeWalk + " mode",
			},
			&cli.BoolFlag{
				Name:    flagDebug,
				Aliases: []string{"vvv"},
				Usage:   "enable debug logging",
			},
		},
		Action: runFlock,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func runFlock(c *cli.Context) error {
	logger := logging.NewLogger("flock")
	if c.Bool(flagDebug) {
		logging.GlobalLogLevel.SetLevel(zap.DebugLevel)
		logger = logging.NewDebugLogger("flock")
	}
	//nolint:errcheck
	defer logger.Sync()

	cfg, err := loadConfig(c.String(flagConfig))
	if err != nil {
		return err
	}
	focus, err := spatialmath.ParseVector(c.String(flagFocus))
	if err != nil {
		return errors.Wrapf(err, "parsing --%s", flagFocus)
	}

	flock, err := flocking.NewFlock(cfg, logger.Sublogger("flocking"))
	if err != nil {
		return err
	}
	registry := world.NewRegistry()
	rng := rand.New(rand.NewSource(c.Int64(flagSeed)))
	ids := registry.SpawnRandom(c.Int(flagAgents), c.Float64(flagScale), rng)
	logger.Infow("spawned agents", "agents", registry.Len(), "config", cfg)

	var (
		updater    simulation.Updater
		halfExtent float64
	)
	switch mode := c.String(flagMode); mode {
	case modeFlock:
		updater, halfExtent = flock, cfg.HalfExtent
	case modeWalk:
		walk, err := flocking.NewRandomWalk(c.Float64(flagSpeed), rng, logger.Sublogger("walk"))
		if err != nil {
			return err
		}
		updater, halfExtent = walk, flocking.FocusHalfExtent
	default:
		return errors.Errorf("unknown --%s %q, expected %s or %s", flagMode, mode, modeFlock, modeWalk)
	}

	runner, err := simulation.NewRunner(updater, registry, clock.New(), c.Duration(flagInterval), logger.Sublogger("runner"))
	if err != nil {
		return err
	}
	if len(ids) > 1 {
		// the last spawned agent is the focus
		runner.Track(ids[len(ids)-1], halfExtent)
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt)
	defer stop()
	if err := runner.Run(ctx, c.Int(flagTicks)); err != nil && !errors.Is(err, ctx.Err()) {
		return err
	}

	if registry.Len() == 0 {
		return nil
	}
	closest, err := flock.ClosestAgent(registry, focus)
	if err != nil {
		return err
	}
	agent, _ := registry.Get(closest)
	logger.Infow("closest agent", "focus", focus, "id", closest, "position", agent.Position, "ticks", runner.Ticks())
	return nil
}

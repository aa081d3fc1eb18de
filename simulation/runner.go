// Package simulation drives agent updates from a frame clock.
package simulation

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/janreitz/garden/flocking"
	"github.com/janreitz/garden/logging"
	"github.com/janreitz/garden/utils"
)

const (
	tickTimeSamples = 60
	// slowTickAfter is how long an update may run before warnings are logged.
	slowTickAfter = time.Second
)

// Updater advances every agent in a store by dt seconds. *flocking.Flock and *flocking.RandomWalk implement it.
type Updater interface {
	Update(ctx context.Context, store flocking.Store, dt float64) (flocking.TickStats, error)
}

// StepResult reports one call to Step.
type StepResult struct {
	// Ran is false when no clock time had elapsed and the update was skipped.
	Ran   bool
	Stats flocking.TickStats
	// Closest is the agent nearest the tracked focus agent after the update, or uuid.Nil when nothing is tracked
	// or the lookup failed.
	Closest uuid.UUID
}

// Runner advances a store once per frame. The step time handed to each update is the clock time elapsed since
// the previous tick, so a slow tick lengthens the next step instead of slowing the agents down. Ticks never
// overlap.
type Runner struct {
	updater  Updater
	store    flocking.Store
	clock    clock.Clock
	interval time.Duration
	logger   logging.Logger

	// mu serializes ticks.
	mu        sync.Mutex
	last      time.Time
	ticks     int
	tickTimes *utils.RollingAverage

	// focus is looked up after every tick when tracking is set.
	tracking        bool
	focus           uuid.UUID
	focusHalfExtent float64

	workersMu sync.Mutex
	workers   *utils.StoppableWorkers
}

// NewRunner returns a Runner that ticks every interval on clk.
func NewRunner(
	updater Updater,
	store flocking.Store,
	clk clock.Clock,
	interval time.Duration,
	logger logging.Logger,
) (*Runner, error) {
	if interval <= 0 {
		return nil, errors.Errorf("tick interval must be positive, got %s", interval)
	}
	return &Runner{
		updater:   updater,
		store:     store,
		clock:     clk,
		interval:  interval,
		logger:    logger,
		tickTimes: utils.NewRollingAverage(tickTimeSamples),
	}, nil
}

// Track makes every following step look up the agent closest to focus, indexing the other agents with boxes
// of the given half extent.
func (r *Runner) Track(focus uuid.UUID, halfExtent float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.focus = focus
	r.focusHalfExtent = halfExtent
	r.tracking = true
}

// Ticks returns the number of updates run so far.
func (r *Runner) Ticks() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ticks
}

// AverageTickTime returns how long recent updates took to compute.
func (r *Runner) AverageTickTime() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tickTimes.Average()
}

// Step runs one update. The first step uses the tick interval as its step time. A step with no elapsed clock
// time does nothing and reports Ran as false.
func (r *Runner) Step(ctx context.Context) (StepResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.clock.Now()
	dt := r.interval
	if !r.last.IsZero() {
		dt = now.Sub(r.last)
	}
	if dt <= 0 {
		r.logger.CDebugw(ctx, "no time elapsed since the last tick, skipping", "now", now)
		return StepResult{}, nil
	}
	r.last = now

	r.ticks++
	stopSlowLogger := utils.SlowLogger(ctx, r.clock, slowTickAfter, "tick is taking a long time", r.logger, "tick", r.ticks)
	stats, err := r.updater.Update(ctx, r.store, dt.Seconds())
	stopSlowLogger()
	r.tickTimes.Add(r.clock.Since(now))
	res := StepResult{Ran: true, Stats: stats}
	if err != nil {
		return res, errors.Wrapf(err, "tick %d", r.ticks)
	}

	if r.tracking {
		closest, err := flocking.ClosestAgentTo(r.store, r.focus, r.focusHalfExtent)
		if err != nil {
			r.logger.Warnw("cannot find the agent closest to the focus", "focus", r.focus, "error", err)
		} else {
			res.Closest = closest
		}
	}
	return res, nil
}

// Run ticks on the clock until ticks updates have run, or forever if ticks is not positive. Skipped steps do
// not count. It stops at the first failed update or when ctx is done.
func (r *Runner) Run(ctx context.Context, ticks int) error {
	ticker := r.clock.Ticker(r.interval)
	defer ticker.Stop()

	for done := 0; ticks <= 0 || done < ticks; {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		res, err := r.Step(ctx)
		if err != nil {
			return err
		}
		if !res.Ran {
			continue
		}
		done++
		keysAndValues := []interface{}{
			"tick", done,
			"agents", res.Stats.Agents,
			"steered", res.Stats.Steered,
			"mean_neighbors", res.Stats.MeanNeighbors,
			"max_turn_rate_deg", utils.RadToDeg(res.Stats.MaxTurnRate),
			"avg_tick_time", r.AverageTickTime(),
		}
		if res.Closest != uuid.Nil {
			keysAndValues = append(keysAndValues, "closest_to_focus", res.Closest)
		}
		r.logger.Infow("tick", keysAndValues...)
	}
	return nil
}

// Start runs the simulation in the background until Stop is called or an update fails.
func (r *Runner) Start() error {
	r.workersMu.Lock()
	defer r.workersMu.Unlock()
	if r.workers != nil {
		return errors.New("runner already started")
	}
	r.workers = utils.NewStoppableWorkers(context.Background(), func(ctx context.Context) {
		if err := r.Run(ctx, 0); err != nil && !errors.Is(err, context.Canceled) {
			r.logger.Errorw("simulation stopped", "error", err)
		}
	})
	return nil
}

// Stop halts a background run and waits for the current tick to finish.
func (r *Runner) Stop() {
	r.workersMu.Lock()
	defer r.workersMu.Unlock()
	if r.workers == nil {
		return
	}
	r.workers.Stop()
	r.workers = nil
}

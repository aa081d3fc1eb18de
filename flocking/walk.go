package flocking

import (
	"context"
	"math"
	"math/rand"
	"sync"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/janreitz/garden/logging"
	"github.com/janreitz/garden/spatialmath"
)

const (
	// DefaultWalkSpeed scales the random offset applied to each agent per second.
	DefaultWalkSpeed = 5.0
	// FocusHalfExtent is the half extent of the boxes indexed when tracking the agent closest to a focus agent
	// during a random walk.
	FocusHalfExtent = 2.5
)

// RandomWalk moves every agent by a random offset each tick without touching its orientation. Each coordinate
// of the offset is drawn uniformly from [-speed*dt/2, speed*dt/2).
type RandomWalk struct {
	speed  float64
	logger logging.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomWalk returns a RandomWalk drawing its offsets from rng.
func NewRandomWalk(speed float64, rng *rand.Rand, logger logging.Logger) (*RandomWalk, error) {
	if speed < 0 || math.IsInf(speed, 0) || math.IsNaN(speed) {
		return nil, errors.Errorf("walk speed must be non-negative and finite, got %v", speed)
	}
	if rng == nil {
		return nil, errors.New("random walk needs a random source")
	}
	return &RandomWalk{speed: speed, logger: logger, rng: rng}, nil
}

// Update moves every agent in store by one random step of dt seconds. Like Flock.Update, agents with non-finite
// state are reported in an error wrapping ErrNonFinite and commits for agents that left the store are skipped.
func (w *RandomWalk) Update(ctx context.Context, store Store, dt float64) (TickStats, error) {
	if dt <= 0 || math.IsInf(dt, 0) || math.IsNaN(dt) {
		return TickStats{}, errors.Errorf("step time must be positive and finite, got %v", dt)
	}

	snapshot := store.Agents()
	stats := TickStats{Agents: len(snapshot), Skipped: len(snapshot)}

	w.mu.Lock()
	defer w.mu.Unlock()
	var errs error
	for _, agent := range snapshot {
		offset := r3.Vector{X: w.rng.Float64() - 0.5, Y: w.rng.Float64() - 0.5, Z: w.rng.Float64() - 0.5}
		position := agent.Position.Add(offset.Mul(dt * w.speed))
		if !spatialmath.R3VectorIsFinite(position) || !spatialmath.QuatIsFinite(agent.Orientation) {
			errs = multierr.Append(errs, errors.Wrapf(ErrNonFinite, "agent %s", agent.ID))
			stats.Dropped++
			continue
		}
		err := store.Commit(agent.ID, position, agent.Orientation)
		switch {
		case errors.Is(err, ErrAgentNotFound):
			w.logger.Warnw("agent left the store during the tick, dropping its update", "id", agent.ID, "error", err)
			stats.Dropped++
		case err != nil:
			errs = multierr.Append(errs, errors.Wrapf(err, "committing agent %s", agent.ID))
			stats.Dropped++
		}
	}
	w.logger.CDebugw(ctx, "random walk tick", "agents", stats.Agents, "dropped", stats.Dropped)
	return stats, errs
}

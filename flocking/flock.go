// Package flocking steers agents toward their neighbors. Every tick a bounding volume hierarchy is built over a
// snapshot of all agents, each agent queries it for the neighbors within its vision radius, and the resulting
// separation, alignment and cohesion rotations are integrated before the new states are committed together.
package flocking

import (
	"context"
	"math"

	"github.com/golang/geo/r3"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/multierr"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/stat"

	"github.com/janreitz/garden/bvh"
	"github.com/janreitz/garden/logging"
	"github.com/janreitz/garden/spatialmath"
)

// minNeighbors is the smallest neighbor set that steers an agent.
const minNeighbors = 2

var (
	// ErrNoAgents is returned by queries against an empty store.
	ErrNoAgents = errors.New("no agents")
	// ErrNonFinite marks an agent whose position or orientation is not a finite number. Its state is never
	// committed.
	ErrNonFinite = errors.New("non-finite agent state")
)

// TickStats summarizes one call to Update.
type TickStats struct {
	// Agents is the number of agents in the snapshot.
	Agents int
	// Steered counts agents that had enough neighbors to steer, Skipped those that only moved forward.
	Steered int
	Skipped int
	// Dropped counts agents whose new state was not committed.
	Dropped       int
	MeanNeighbors float64
	MaxNeighbors  int
	TreeDepth     int
	// MaxTurnRate is the fastest rotation applied this tick, in rad/s.
	MaxTurnRate float64
}

// Flock runs the flocking update over a Store.
type Flock struct {
	cfg    Config
	logger logging.Logger
}

// NewFlock validates cfg and returns a Flock that uses it.
func NewFlock(cfg Config, logger logging.Logger) (*Flock, error) {
	if err := cfg.Validate("flocking"); err != nil {
		return nil, err
	}
	return &Flock{cfg: cfg, logger: logger}, nil
}

// Config returns the tuning the flock was created with.
func (f *Flock) Config() Config {
	return f.cfg
}

type update struct {
	id          uuid.UUID
	position    r3.Vector
	orientation quat.Number
}

// Update advances every agent in store by one step of dt seconds. New states are computed from a single
// snapshot and only committed once every agent has been processed, so no agent sees another's state from the
// same tick. Agents with non-finite state are dropped and reported in the returned error, which wraps
// ErrNonFinite; the remaining agents are still committed. A commit for an agent that has left the store is
// logged and skipped.
func (f *Flock) Update(ctx context.Context, store Store, dt float64) (TickStats, error) {
	if dt <= 0 || math.IsInf(dt, 0) || math.IsNaN(dt) {
		return TickStats{}, errors.Errorf("step time must be positive and finite, got %v", dt)
	}

	snapshot := store.Agents()
	stats := TickStats{Agents: len(snapshot)}
	if len(snapshot) == 0 {
		return stats, nil
	}

	tree, agents, errs := index(snapshot, f.cfg.HalfExtent)
	stats.Dropped = len(snapshot) - len(agents)
	if tree == nil {
		return stats, errs
	}
	stats.TreeDepth = tree.Depth()

	updates := make([]update, 0, len(agents))
	counts := make([]float64, len(agents))
	var neighbors []int
	for i, agent := range agents {
		neighbors = neighbors[:0]
		tree.VisitInRadius(agent.Position, f.cfg.VisionRadius, func(e bvh.Entry[int]) bool {
			if agents[e.Payload].ID != agent.ID {
				neighbors = append(neighbors, e.Payload)
			}
			return true
		})
		counts[i] = float64(len(neighbors))

		orientation := agent.Orientation
		if len(neighbors) >= minNeighbors {
			orientation = f.steer(agent, agents, neighbors, dt)
			stats.Steered++
		} else {
			stats.Skipped++
		}
		position := agent.Position.Add(spatialmath.Forward(orientation).Mul(dt))

		if !spatialmath.QuatIsFinite(orientation) || !spatialmath.R3VectorIsFinite(position) {
			errs = multierr.Append(errs, errors.Wrapf(ErrNonFinite, "agent %s after integration", agent.ID))
			stats.Dropped++
			continue
		}
		turnRate := spatialmath.OrientationToAngularVel(agent.Orientation, orientation, dt).Speed()
		stats.MaxTurnRate = math.Max(stats.MaxTurnRate, turnRate)
		updates = append(updates, update{agent.ID, position, orientation})
	}

	for _, u := range updates {
		err := store.Commit(u.id, u.position, u.orientation)
		switch {
		case errors.Is(err, ErrAgentNotFound):
			f.logger.Warnw("agent left the store during the tick, dropping its update", "id", u.id, "error", err)
			stats.Dropped++
		case err != nil:
			errs = multierr.Append(errs, errors.Wrapf(err, "committing agent %s", u.id))
			stats.Dropped++
		}
	}

	stats.MeanNeighbors = stat.Mean(counts, nil)
	stats.MaxNeighbors = int(lo.Max(counts))
	f.logger.CDebugw(ctx, "flock tick",
		"agents", stats.Agents,
		"steered", stats.Steered,
		"skipped", stats.Skipped,
		"dropped", stats.Dropped,
		"mean_neighbors", stats.MeanNeighbors,
		"tree_depth", stats.TreeDepth,
	)
	return stats, errs
}

// ClosestAgent returns the identity of the agent whose indexed box is nearest to point.
func (f *Flock) ClosestAgent(store Store, point r3.Vector) (uuid.UUID, error) {
	if !spatialmath.R3VectorIsFinite(point) {
		return uuid.Nil, errors.Errorf("cannot find the agent closest to %v", point)
	}
	snapshot := store.Agents()
	if len(snapshot) == 0 {
		return uuid.Nil, ErrNoAgents
	}
	tree, agents, err := index(snapshot, f.cfg.HalfExtent)
	if tree == nil {
		return uuid.Nil, multierr.Append(ErrNoAgents, err)
	}
	if err != nil {
		f.logger.Debugw("closest agent lookup skipped agents", "error", err)
	}
	return agents[tree.Nearest(point).Payload].ID, nil
}

// ClosestAgentTo is ClosestAgent measured from the focus agent's position, with the focus itself left out of
// the candidates.
func (f *Flock) ClosestAgentTo(store Store, focus uuid.UUID) (uuid.UUID, error) {
	return ClosestAgentTo(store, focus, f.cfg.HalfExtent)
}

// ClosestAgentTo indexes every agent other than focus with boxes of the given half extent and returns the one
// nearest to the focus agent's position. It returns an error wrapping ErrAgentNotFound when focus is not in
// store, ErrNoAgents when focus is alone, and ErrNonFinite when the focus position is not finite. Other agents
// with non-finite state are skipped.
func ClosestAgentTo(store Store, focus uuid.UUID, halfExtent float64) (uuid.UUID, error) {
	if halfExtent < 0 || math.IsInf(halfExtent, 0) || math.IsNaN(halfExtent) {
		return uuid.Nil, errors.Errorf("half extent must be non-negative and finite, got %v", halfExtent)
	}
	snapshot := store.Agents()
	others := make([]Agent, 0, len(snapshot))
	var origin *Agent
	for i, agent := range snapshot {
		if agent.ID == focus {
			origin = &snapshot[i]
			continue
		}
		others = append(others, agent)
	}
	if origin == nil {
		return uuid.Nil, errors.Wrapf(ErrAgentNotFound, "focus agent %s", focus)
	}
	if !spatialmath.R3VectorIsFinite(origin.Position) {
		return uuid.Nil, errors.Wrapf(ErrNonFinite, "focus agent %s position %v", focus, origin.Position)
	}
	if len(others) == 0 {
		return uuid.Nil, ErrNoAgents
	}
	tree, agents, err := index(others, halfExtent)
	if tree == nil {
		return uuid.Nil, multierr.Append(ErrNoAgents, err)
	}
	return agents[tree.Nearest(origin.Position).Payload].ID, nil
}

// index builds a hierarchy over the agents whose state is finite, with each payload being the position in the
// returned slice. Agents left out are reported in the error. The tree is nil when no agent could be indexed.
func index(snapshot []Agent, halfExtent float64) (*bvh.Tree[int], []Agent, error) {
	var errs error
	agents := make([]Agent, 0, len(snapshot))
	entries := make([]bvh.Entry[int], 0, len(snapshot))
	for _, agent := range snapshot {
		if !spatialmath.QuatIsFinite(agent.Orientation) {
			errs = multierr.Append(errs, errors.Wrapf(ErrNonFinite, "agent %s orientation %v", agent.ID, agent.Orientation))
			continue
		}
		box, err := spatialmath.NewAABBFromCenter(agent.Position, halfExtent)
		if err != nil {
			errs = multierr.Append(errs, errors.Wrapf(ErrNonFinite, "agent %s: %v", agent.ID, err))
			continue
		}
		entries = append(entries, bvh.Entry[int]{Payload: len(agents), Box: box})
		agents = append(agents, agent)
	}
	if len(entries) == 0 {
		return nil, nil, errs
	}

	tree, err := bvh.New(entries)
	if err != nil {
		return nil, nil, multierr.Append(errs, errors.Wrap(err, "indexing agents"))
	}
	return tree, agents, errs
}

// steer applies alignment, cohesion and separation in that order. Each rotation sees the heading left by the
// previous one.
func (f *Flock) steer(agent Agent, agents []Agent, neighbors []int, dt float64) quat.Number {
	var sumHeading, sumPosition r3.Vector
	closest, closestDist := -1, math.Inf(1)
	for _, n := range neighbors {
		other := agents[n]
		sumHeading = sumHeading.Add(other.Forward())
		sumPosition = sumPosition.Add(other.Position)
		// coincident neighbors give no direction to steer away from
		if d := other.Position.Distance(agent.Position); d > 0 && d < closestDist {
			closest, closestDist = n, d
		}
	}
	count := float64(len(neighbors))

	orientation := agent.Orientation
	orientation = turnToward(orientation, sumHeading.Mul(1/count), f.cfg.AlignmentGain, dt)
	orientation = turnToward(orientation, sumPosition.Mul(1/count).Sub(agent.Position), f.cfg.CohesionGain, dt)
	if closest >= 0 {
		away := agent.Position.Sub(agents[closest].Position)
		orientation = turnToward(orientation, away, f.cfg.SeparationGain, dt)
	}
	return orientation
}

// turnToward rotates q about forward x target by |forward x target| * gain * dt radians, which turns the heading
// toward target. A degenerate axis leaves q unchanged.
func turnToward(q quat.Number, target r3.Vector, gain, dt float64) quat.Number {
	axis := spatialmath.Forward(q).Cross(target)
	angle := axis.Norm() * gain * dt
	if angle == 0 || math.IsNaN(angle) || math.IsInf(angle, 0) {
		return q
	}
	r, err := spatialmath.NewR4AA(axis, angle).ToQuat()
	if err != nil {
		return q
	}
	return spatialmath.RotateWorld(q, r)
}

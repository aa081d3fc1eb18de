// Package world holds the agents of a running simulation.
package world

import (
	"math"
	"math/rand"
	"sync"

	"github.com/golang/geo/r3"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/num/quat"

	"github.com/janreitz/garden/flocking"
	"github.com/janreitz/garden/spatialmath"
)

// ErrAgentNotFound is returned when an identity is not in the registry.
var ErrAgentNotFound = flocking.ErrAgentNotFound

// Registry is an in-memory flocking.Store keyed by agent identity. Agents are listed in the order they were
// spawned. It is safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	agents map[uuid.UUID]*flocking.Agent
	order  []uuid.UUID
}

var _ flocking.Store = (*Registry)(nil)

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{agents: map[uuid.UUID]*flocking.Agent{}}
}

// Spawn adds an agent and returns its new identity. The orientation is normalized.
func (r *Registry) Spawn(position r3.Vector, orientation quat.Number) uuid.UUID {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := uuid.New()
	r.agents[id] = &flocking.Agent{ID: id, Position: position, Orientation: spatialmath.NormalizeQuat(orientation)}
	r.order = append(r.order, id)
	return id
}

// Despawn removes an agent.
func (r *Registry) Despawn(id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.agents[id]; !ok {
		return errors.Wrapf(ErrAgentNotFound, "despawning %s", id)
	}
	delete(r.agents, id)
	for i, other := range r.order {
		if other == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// Get returns a copy of one agent.
func (r *Registry) Get(id uuid.UUID) (flocking.Agent, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	agent, ok := r.agents[id]
	if !ok {
		return flocking.Agent{}, false
	}
	return *agent, true
}

// Len returns the number of agents.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Agents returns a copy of every agent in spawn order.
func (r *Registry) Agents() []flocking.Agent {
	r.mu.RLock()
	defer r.mu.RUnlock()
	agents := make([]flocking.Agent, 0, len(r.order))
	for _, id := range r.order {
		agents = append(agents, *r.agents[id])
	}
	return agents
}

// Commit replaces the state of an existing agent.
func (r *Registry) Commit(id uuid.UUID, position r3.Vector, orientation quat.Number) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	agent, ok := r.agents[id]
	if !ok {
		return errors.Wrapf(ErrAgentNotFound, "committing %s", id)
	}
	agent.Position = position
	agent.Orientation = orientation
	return nil
}

// SpawnRandom adds n agents at uniformly random positions in [0, scale) on every axis, each with a uniformly
// random orientation, and returns their identities.
func (r *Registry) SpawnRandom(n int, scale float64, rng *rand.Rand) []uuid.UUID {
	ids := make([]uuid.UUID, 0, n)
	for i := 0; i < n; i++ {
		position := r3.Vector{X: rng.Float64() * scale, Y: rng.Float64() * scale, Z: rng.Float64() * scale}
		ids = append(ids, r.Spawn(position, randomOrientation(rng)))
	}
	return ids
}

// randomOrientation samples a rotation uniformly using Shoemake's method.
func randomOrientation(rng *rand.Rand) quat.Number {
	u1, u2, u3 := rng.Float64(), rng.Float64(), rng.Float64()
	a, b := math.Sqrt(1-u1), math.Sqrt(u1)
	return quat.Number{
		Real: a * math.Sin(2*math.Pi*u2),
		Imag: a * math.Cos(2*math.Pi*u2),
		Jmag: b * math.Sin(2*math.Pi*u3),
		Kmag: b * math.Cos(2*math.Pi*u3),
	}
}

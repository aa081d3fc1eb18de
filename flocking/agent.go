package flocking

import (
	"github.com/golang/geo/r3"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/num/quat"

	"github.com/janreitz/garden/spatialmath"
)

// ErrAgentNotFound is returned by a Store asked to commit state for an identity it does not hold.
var ErrAgentNotFound = errors.New("agent not found")

// Agent is a snapshot of one flocking agent.
type Agent struct {
	ID          uuid.UUID
	Position    r3.Vector
	Orientation quat.Number
}

// Forward returns the direction the agent is heading.
func (a Agent) Forward() r3.Vector {
	return spatialmath.Forward(a.Orientation)
}

// Store holds the agents a Flock updates. Agents returns a snapshot that the caller owns; its order need not be
// stable between calls. Commit writes back one agent's new state and returns an error wrapping ErrAgentNotFound
// when the identity is unknown.
type Store interface {
	Agents() []Agent
	Commit(id uuid.UUID, position r3.Vector, orientation quat.Number) error
}

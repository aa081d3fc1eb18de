package world

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.viam.com/test"
	"gonum.org/v1/gonum/num/quat"

	"github.com/janreitz/garden/flocking"
	"github.com/janreitz/garden/logging"
	"github.com/janreitz/garden/spatialmath"
)

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	test.That(t, r.Len(), test.ShouldEqual, 0)
	test.That(t, r.Agents(), test.ShouldBeEmpty)

	a := r.Spawn(r3.Vector{X: 1}, quat.Number{Real: 2})
	b := r.Spawn(r3.Vector{X: 2}, spatialmath.NewZeroOrientation())
	c := r.Spawn(r3.Vector{X: 3}, spatialmath.NewZeroOrientation())
	test.That(t, r.Len(), test.ShouldEqual, 3)

	got, ok := r.Get(a)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, got.Orientation, test.ShouldResemble, spatialmath.NewZeroOrientation())

	t.Run("agents are listed in spawn order", func(t *testing.T) {
		agents := r.Agents()
		test.That(t, len(agents), test.ShouldEqual, 3)
		for i, id := range []uuid.UUID{a, b, c} {
			test.That(t, agents[i].ID, test.ShouldEqual, id)
		}
	})

	t.Run("snapshots are copies", func(t *testing.T) {
		agents := r.Agents()
		agents[0].Position = r3.Vector{X: 100}
		got, _ := r.Get(a)
		test.That(t, got.Position, test.ShouldResemble, r3.Vector{X: 1})
	})

	t.Run("commit", func(t *testing.T) {
		orientation, err := spatialmath.Facing(r3.Vector{Y: 1})
		test.That(t, err, test.ShouldBeNil)
		test.That(t, r.Commit(b, r3.Vector{Z: 5}, orientation), test.ShouldBeNil)
		got, _ := r.Get(b)
		test.That(t, got.Position, test.ShouldResemble, r3.Vector{Z: 5})
		test.That(t, got.Orientation, test.ShouldResemble, orientation)

		err = r.Commit(uuid.New(), r3.Vector{}, orientation)
		test.That(t, errors.Is(err, ErrAgentNotFound), test.ShouldBeTrue)
		test.That(t, errors.Is(err, flocking.ErrAgentNotFound), test.ShouldBeTrue)
	})

	t.Run("despawn", func(t *testing.T) {
		test.That(t, r.Despawn(b), test.ShouldBeNil)
		test.That(t, r.Len(), test.ShouldEqual, 2)
		_, ok := r.Get(b)
		test.That(t, ok, test.ShouldBeFalse)
		agents := r.Agents()
		test.That(t, agents[0].ID, test.ShouldEqual, a)
		test.That(t, agents[1].ID, test.ShouldEqual, c)

		err := r.Despawn(b)
		test.That(t, errors.Is(err, ErrAgentNotFound), test.ShouldBeTrue)
	})
}

func TestSpawnRandom(t *testing.T) {
	r := NewRegistry()
	ids := r.SpawnRandom(80, 8, rand.New(rand.NewSource(7)))
	test.That(t, len(ids), test.ShouldEqual, 80)
	test.That(t, r.Len(), test.ShouldEqual, 80)

	for _, agent := range r.Agents() {
		for _, v := range []float64{agent.Position.X, agent.Position.Y, agent.Position.Z} {
			test.That(t, v, test.ShouldBeGreaterThanOrEqualTo, 0)
			test.That(t, v, test.ShouldBeLessThan, 8)
		}
		test.That(t, quat.Abs(agent.Orientation), test.ShouldAlmostEqual, 1, 1e-12)
	}

	// same seed, same world
	other := NewRegistry()
	other.SpawnRandom(80, 8, rand.New(rand.NewSource(7)))
	for i, agent := range other.Agents() {
		test.That(t, agent.Position, test.ShouldResemble, r.Agents()[i].Position)
	}
}

func TestRegistryDrivesFlock(t *testing.T) {
	logger, logs := logging.NewObservedTestLogger(t)
	f, err := flocking.NewFlock(flocking.DefaultConfig(), logger)
	test.That(t, err, test.ShouldBeNil)

	r := NewRegistry()
	r.SpawnRandom(80, 8, rand.New(rand.NewSource(1)))
	before := r.Agents()

	stats, err := f.Update(context.Background(), r, 1.0/60)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, stats.Agents, test.ShouldEqual, 80)
	test.That(t, stats.Steered+stats.Skipped, test.ShouldEqual, 80)
	test.That(t, stats.Dropped, test.ShouldEqual, 0)
	test.That(t, logs.FilterMessage("flock tick").Len(), test.ShouldEqual, 1)

	for i, agent := range r.Agents() {
		moved := agent.Position.Sub(before[i].Position).Norm()
		test.That(t, moved, test.ShouldAlmostEqual, 1.0/60, 1e-9)
		test.That(t, math.Abs(quat.Abs(agent.Orientation)-1), test.ShouldBeLessThan, 1e-9)
	}
}

func TestRegistryConcurrentAccess(t *testing.T) {
	r := NewRegistry()
	ids := r.SpawnRandom(10, 1, rand.New(rand.NewSource(3)))

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for _, id := range ids {
				test.That(t, r.Commit(id, r3.Vector{X: 1}, spatialmath.NewZeroOrientation()), test.ShouldBeNil)
			}
		}()
		go func() {
			defer wg.Done()
			test.That(t, len(r.Agents()), test.ShouldEqual, 10)
		}()
	}
	wg.Wait()
}

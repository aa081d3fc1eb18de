package flocking

import (
	"context"
	"math"
	"math/rand"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap/zapcore"
	"go.viam.com/test"

	"github.com/janreitz/garden/logging"
	"github.com/janreitz/garden/spatialmath"
)

func newTestWalk(t *testing.T, speed float64, seed int64) *RandomWalk {
	t.Helper()
	w, err := NewRandomWalk(speed, rand.New(rand.NewSource(seed)), logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	return w
}

func TestNewRandomWalk(t *testing.T) {
	logger := logging.NewTestLogger(t)
	_, err := NewRandomWalk(-1, rand.New(rand.NewSource(1)), logger)
	test.That(t, err, test.ShouldNotBeNil)
	_, err = NewRandomWalk(math.Inf(1), rand.New(rand.NewSource(1)), logger)
	test.That(t, err, test.ShouldNotBeNil)
	_, err = NewRandomWalk(DefaultWalkSpeed, nil, logger)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestRandomWalkUpdate(t *testing.T) {
	var agents []Agent
	for i := 0; i < 20; i++ {
		agents = append(agents, newAgent(t, r3.Vector{X: float64(i), Y: -float64(i)}, r3.Vector{Z: 1}))
	}

	t.Run("offsets stay within the step", func(t *testing.T) {
		store := newFakeStore(agents...)
		stats, err := newTestWalk(t, DefaultWalkSpeed, 3).Update(context.Background(), store, 0.1)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, stats.Agents, test.ShouldEqual, len(agents))
		test.That(t, stats.Steered, test.ShouldEqual, 0)
		test.That(t, stats.Dropped, test.ShouldEqual, 0)
		test.That(t, len(store.commits), test.ShouldEqual, len(agents))

		moved := 0
		for _, agent := range agents {
			next := store.commits[agent.ID]
			offset := next.Position.Sub(agent.Position)
			for _, c := range []float64{offset.X, offset.Y, offset.Z} {
				test.That(t, math.Abs(c), test.ShouldBeLessThanOrEqualTo, 0.25+1e-9)
			}
			if offset.Norm() > 0 {
				moved++
			}
			test.That(t, next.Orientation, test.ShouldResemble, agent.Orientation)
		}
		test.That(t, moved, test.ShouldEqual, len(agents))
	})

	t.Run("seeded walks repeat", func(t *testing.T) {
		a, b := newFakeStore(agents...), newFakeStore(agents...)
		_, err := newTestWalk(t, DefaultWalkSpeed, 9).Update(context.Background(), a, 0.5)
		test.That(t, err, test.ShouldBeNil)
		_, err = newTestWalk(t, DefaultWalkSpeed, 9).Update(context.Background(), b, 0.5)
		test.That(t, err, test.ShouldBeNil)
		for _, agent := range agents {
			test.That(t, a.commits[agent.ID], test.ShouldResemble, b.commits[agent.ID])
		}
	})

	t.Run("zero speed stands still", func(t *testing.T) {
		store := newFakeStore(agents...)
		_, err := newTestWalk(t, 0, 1).Update(context.Background(), store, 1)
		test.That(t, err, test.ShouldBeNil)
		for _, agent := range agents {
			test.That(t, store.commits[agent.ID].Position, test.ShouldResemble, agent.Position)
		}
	})

	t.Run("bad step", func(t *testing.T) {
		w := newTestWalk(t, DefaultWalkSpeed, 1)
		for _, dt := range []float64{0, -1, math.NaN()} {
			_, err := w.Update(context.Background(), newFakeStore(agents...), dt)
			test.That(t, err, test.ShouldNotBeNil)
		}
	})
}

func TestRandomWalkDropsAgents(t *testing.T) {
	logger, logs := logging.NewObservedTestLogger(t)
	w, err := NewRandomWalk(DefaultWalkSpeed, rand.New(rand.NewSource(1)), logger)
	test.That(t, err, test.ShouldBeNil)

	gone := newAgent(t, r3.Vector{X: 1}, r3.Vector{Y: 1})
	broken := Agent{ID: uuid.New(), Position: r3.Vector{Z: math.Inf(-1)}, Orientation: spatialmath.NewZeroOrientation()}
	kept := newAgent(t, r3.Vector{}, r3.Vector{Y: 1})
	store := newFakeStore(gone, broken, kept)
	store.missing[gone.ID] = true

	stats, err := w.Update(context.Background(), store, 0.1)
	test.That(t, errors.Is(err, ErrNonFinite), test.ShouldBeTrue)
	test.That(t, stats.Dropped, test.ShouldEqual, 2)
	test.That(t, len(store.commits), test.ShouldEqual, 1)
	_, ok := store.commits[kept.ID]
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, len(logs.FilterLevelExact(zapcore.WarnLevel).All()), test.ShouldEqual, 1)
}

package utils

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"go.viam.com/test"

	"github.com/janreitz/garden/logging"
)

func TestRollingAverage(t *testing.T) {
	ra := NewRollingAverage(3)
	test.That(t, ra.NumSamples(), test.ShouldEqual, 3)
	test.That(t, ra.Average(), test.ShouldEqual, time.Duration(0))

	ra.Add(3 * time.Millisecond)
	test.That(t, ra.Average(), test.ShouldEqual, 3*time.Millisecond)
	ra.Add(5 * time.Millisecond)
	test.That(t, ra.Average(), test.ShouldEqual, 4*time.Millisecond)
	ra.Add(7 * time.Millisecond)
	test.That(t, ra.Average(), test.ShouldEqual, 5*time.Millisecond)

	// the oldest sample is replaced
	ra.Add(10 * time.Millisecond)
	test.That(t, ra.Average(), test.ShouldEqual, 22*time.Millisecond/3)
}

func TestSlowLogger(t *testing.T) {
	logger, logs := logging.NewObservedTestLogger(t)
	mock := clock.NewMock()

	stop := SlowLogger(context.Background(), mock, time.Second, "slow", logger, "tick", 4)
	mock.Add(500 * time.Millisecond)
	test.That(t, logs.FilterMessage("slow").Len(), test.ShouldEqual, 0)

	mock.Add(500 * time.Millisecond)
	for logs.FilterMessage("slow").Len() < 1 {
		time.Sleep(time.Millisecond)
	}
	entry := logs.FilterMessage("slow").All()[0]
	test.That(t, entry.ContextMap()["tick"], test.ShouldEqual, int64(4))
	test.That(t, entry.ContextMap()["time_elapsed"], test.ShouldEqual, "1s")

	stop()
	mock.Add(time.Hour)
	test.That(t, logs.FilterMessage("slow").Len(), test.ShouldEqual, 1)
}

func TestMath(t *testing.T) {
	test.That(t, DegToRad(180), test.ShouldAlmostEqual, math.Pi)
	test.That(t, RadToDeg(math.Pi/2), test.ShouldAlmostEqual, 90.0)
	test.That(t, Float64AlmostEqual(1, 1.05, 0.1), test.ShouldBeTrue)
	test.That(t, Float64AlmostEqual(1, 1.2, 0.1), test.ShouldBeFalse)
	test.That(t, Float64AlmostEqual(math.NaN(), math.NaN(), 1), test.ShouldBeFalse)
}

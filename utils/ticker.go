package utils

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/janreitz/garden/logging"
)

// SlowLogger starts a goroutine that warns periodically until the returned function is called or ctx is
// done. The first warning is logged once the after duration has passed, later ones at growing intervals.
func SlowLogger(
	ctx context.Context,
	clk clock.Clock,
	after time.Duration,
	msg string,
	logger logging.Logger,
	keysAndValues ...interface{},
) func() {
	wait := after
	slowTicker := clk.Ticker(wait)
	startTime := clk.Now()

	ctxWithCancel, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case <-slowTicker.C:
				elapsed := clk.Since(startTime).String()
				logger.Warnw(msg, append(keysAndValues, "time_elapsed", elapsed)...)
				wait *= 2
				slowTicker.Reset(wait)
			case <-ctxWithCancel.Done():
				return
			}
		}
	}()
	return func() {
		slowTicker.Stop()
		cancel()
		<-done
	}
}

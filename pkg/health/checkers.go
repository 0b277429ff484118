package health

import (
	"context"
	"runtime"
	"runtime/debug"
	"time"

	"github.com/go-faster/errors"
)

// GoroutineCountCheck fails once the process runs more than limit
// goroutines. Intended as a liveness probe for goroutine leaks.
func GoroutineCountCheck(limit int) CheckFunc {
	return func(context.Context) error {
		if n := runtime.NumGoroutine(); n > limit {
			return errors.Errorf("goroutine count %d exceeds threshold %d", n, limit)
		}
		return nil
	}
}

// GCMaxPauseCheck fails when any recorded stop-the-world pause was longer
// than max. Long pauses usually mean the heap has grown past what the
// instance can collect in time.
func GCMaxPauseCheck(max time.Duration) CheckFunc {
	return func(context.Context) error {
		var stats debug.GCStats
		debug.ReadGCStats(&stats)
		for _, pause := range stats.Pause {
			if pause > max {
				return errors.Errorf("GC pause %s exceeds threshold %s", pause, max)
			}
		}
		return nil
	}
}

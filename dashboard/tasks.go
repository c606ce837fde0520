package dashboard

import (
	"context"
	"log"
	"time"
)

// PeriodicTask represents a task that runs periodically with an optional initial delay
type PeriodicTask struct {
	name         string
	initialDelay time.Duration
	interval     time.Duration
	runFunc      func()
}

// run executes the task until the context is canceled or stopChan is closed
func (pt *PeriodicTask) run(ctx context.Context, stopChan <-chan struct{}, logger *log.Logger) {
	if pt.initialDelay > 0 {
		logger.Printf("[%s] Waiting for initial delay: %v", pt.name, pt.initialDelay)
		select {
		case <-time.After(pt.initialDelay):
			pt.runFunc()
		case <-ctx.Done():
			logger.Printf("[%s] Stopped during initial delay due to context cancellation", pt.name)
			return
		case <-stopChan:
			logger.Printf("[%s] Stopped during initial delay due to stop signal", pt.name)
			return
		}
	} else {
		pt.runFunc()
	}

	ticker := time.NewTicker(pt.interval)
	defer ticker.Stop()

	logger.Printf("[%s] Started with interval: %v", pt.name, pt.interval)

	for {
		select {
		case <-ticker.C:
			pt.runFunc()
		case <-ctx.Done():
			logger.Printf("[%s] Stopped due to context cancellation", pt.name)
			return
		case <-stopChan:
			logger.Printf("[%s] Stopped due to stop signal", pt.name)
			return
		}
	}
}

// alignedDelay returns the time until the next multiple of interval past
// the top of the hour, so hourly refreshes land on the hour.
func alignedDelay(now time.Time, interval time.Duration) time.Duration {
	if interval <= 0 {
		return 0
	}
	top := time.Date(now.Year(), now.Month(), now.Day(), now.Hour(), 0, 0, 0, now.Location())
	delay := now.Sub(top)
	for delay > 0 {
		delay -= interval
	}
	return -delay
}

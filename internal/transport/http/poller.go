package http

import (
	"context"
	"fmt"
	"time"

	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/mehdiazizian/cluster-rag-agent/internal/transport"
)

// ReadinessPoller pings an upstream a fixed number of times until it answers.
type ReadinessPoller struct {
	name     string
	target   transport.Upstream
	attempts int
	interval time.Duration
}

// NewReadinessPoller creates a poller for target. attempts below 1 are raised to 1.
func NewReadinessPoller(name string, target transport.Upstream, attempts int, interval time.Duration) *ReadinessPoller {
	if attempts < 1 {
		attempts = 1
	}
	return &ReadinessPoller{
		name:     name,
		target:   target,
		attempts: attempts,
		interval: interval,
	}
}

// Wait returns nil as soon as a ping succeeds, or the last ping error once
// every attempt has failed.
func (p *ReadinessPoller) Wait(ctx context.Context) error {
	logger := log.FromContext(ctx).WithName("readiness-poller")

	var lastErr error
	for attempt := 1; attempt <= p.attempts; attempt++ {
		if lastErr = p.target.Ping(ctx); lastErr == nil {
			logger.Info("Upstream is ready", "upstream", p.name, "attempt", attempt)
			return nil
		}

		if attempt == p.attempts {
			break
		}
		logger.Info("Waiting for upstream",
			"upstream", p.name, "attempt", attempt, "maxAttempts", p.attempts, "error", lastErr.Error())

		timer := time.NewTimer(p.interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	return fmt.Errorf("%s not ready after %d attempts: %w", p.name, p.attempts, lastErr)
}

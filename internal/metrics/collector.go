package metrics

import (
	"context"
	"fmt"

	"grimm.is/wingwifi/internal/logging"
)

// SessionSweeper removes expired sessions and reports how many remain.
type SessionSweeper interface {
	Sweep(ctx context.Context) (int, error)
}

// Collector sweeps expired sessions and updates the session gauge.
// The server schedules Collect periodically.
type Collector struct {
	registry *Registry
	sweeper  SessionSweeper
	logger   *logging.Logger
}

// NewCollector creates a collector. A nil logger uses the default logger.
func NewCollector(registry *Registry, sweeper SessionSweeper, logger *logging.Logger) *Collector {
	if logger == nil {
		logger = logging.WithComponent("metrics")
	}
	return &Collector{
		registry: registry,
		sweeper:  sweeper,
		logger:   logger,
	}
}

// Collect runs one sweep. On failure the gauge keeps its last value.
func (c *Collector) Collect(ctx context.Context) error {
	n, err := c.sweeper.Sweep(ctx)
	if err != nil {
		return fmt.Errorf("session sweep: %w", err)
	}
	c.registry.SetSessions(n)
	c.logger.Debug("sessions swept", "active", n)
	return nil
}

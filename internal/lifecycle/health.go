package lifecycle

import (
	"context"
	"log/slog"

	"github.com/avrorra/storebot/internal/health"
)

// HealthChecker exposes liveness and readiness probes.
type HealthChecker interface {
	Liveness(ctx context.Context) error
	Readiness(ctx context.Context) error
}

// Probes implements HealthChecker on top of the component checker.
// Liveness only confirms the process is responsive; readiness requires
// every registered dependency to answer.
type Probes struct {
	checker *health.Checker
	log     *slog.Logger
}

// NewProbes creates a new Probes instance.
func NewProbes(checker *health.Checker, log *slog.Logger) *Probes {
	if log == nil {
		log = slog.Default()
	}
	return &Probes{checker: checker, log: log}
}

// Liveness reports success as long as the process can answer.
func (p *Probes) Liveness(ctx context.Context) error {
	p.log.Debug("liveness probe called")
	return nil
}

// Readiness fails when any dependency check fails.
func (p *Probes) Readiness(ctx context.Context) error {
	p.log.Debug("readiness probe called")

	if p.checker == nil {
		return nil
	}

	if err := p.checker.Healthy(ctx); err != nil {
		p.log.Warn("readiness probe failed", slog.Any("error", err))
		return err
	}

	return nil
}

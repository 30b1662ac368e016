package usecase

import (
	"context"
	"sync/atomic"
	"time"
)

// Probe checks one dependency. Optional probes are reported but never fail
// readiness.
type Probe struct {
	Name     string
	Check    func(ctx context.Context) error
	Optional bool
}

type HealthUsecase interface {
	Check(ctx context.Context) map[string]string
	Ready(ctx context.Context) (map[string]string, bool)
	Started() bool
	MarkStarted()
}

type healthUsecase struct {
	probes  []Probe
	timeout time.Duration
	started atomic.Bool
}

func NewHealthUsecase(timeout time.Duration, probes ...Probe) HealthUsecase {
	return &healthUsecase{probes: probes, timeout: timeout}
}

func (u *healthUsecase) Check(ctx context.Context) map[string]string {
	return map[string]string{
		"status": "ok",
	}
}

func (u *healthUsecase) Ready(ctx context.Context) (map[string]string, bool) {
	status := map[string]string{"status": "ok"}
	ready := true

	for _, p := range u.probes {
		probeCtx, cancel := context.WithTimeout(ctx, u.timeout)
		err := p.Check(probeCtx)
		cancel()

		switch {
		case err == nil:
			status[p.Name] = "ok"
		case p.Optional:
			status[p.Name] = "degraded"
		default:
			status[p.Name] = "unavailable"
			ready = false
		}
	}

	if !ready {
		status["status"] = "unavailable"
	}
	return status, ready
}

func (u *healthUsecase) Started() bool {
	return u.started.Load()
}

func (u *healthUsecase) MarkStarted() {
	u.started.Store(true)
}

package usecase

import (
	"context"
	"sort"
	"time"

	"obsidiana-backend/pkg/logger"
)

// HealthCheck checks one dependency. It should honour ctx.
type HealthCheck func(ctx context.Context) error

type HealthUsecase interface {
	// Check runs every check and reports each component. healthy is false
	// when any check fails.
	Check(ctx context.Context) (components map[string]string, healthy bool)
}

type healthUsecase struct {
	checks  map[string]HealthCheck
	timeout time.Duration
}

func NewHealthUsecase(checks map[string]HealthCheck) HealthUsecase {
	return &healthUsecase{checks: checks, timeout: 2 * time.Second}
}

func (u *healthUsecase) Check(ctx context.Context) (map[string]string, bool) {
	names := make([]string, 0, len(u.checks))
	for name := range u.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	out := map[string]string{"status": "ok"}
	healthy := true
	for _, name := range names {
		pctx, cancel := context.WithTimeout(ctx, u.timeout)
		err := u.checks[name](pctx)
		cancel()
		if err != nil {
			logger.Log.Warn("Health check failed", "component", name, "error", err)
			out[name] = "unavailable"
			healthy = false
			continue
		}
		out[name] = "ok"
	}
	if !healthy {
		out["status"] = "degraded"
	}
	return out, healthy
}

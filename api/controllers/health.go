package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/angelmondragon/cartvault/api/responses"
	"github.com/angelmondragon/cartvault/pkg/config"
	pkgerrors "github.com/angelmondragon/cartvault/pkg/errors"
	"github.com/angelmondragon/cartvault/pkg/logger"
)

// Pinger is the minimal health surface a dependency exposes.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthLive reports process liveness.
func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-CartVault-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "ok"})
	}
}

// HealthReady verifies the wired dependencies respond. Nil pingers are
// skipped so each binary only checks what it actually uses.
func HealthReady(cfg *config.Config, logg *logger.Logger, deps map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		status := map[string]string{}
		healthy := true
		for name, dep := range deps {
			if dep == nil {
				continue
			}
			if err := dep.Ping(ctx); err != nil {
				healthy = false
				status[name] = "unreachable"
				if logg != nil {
					lctx := logg.WithField(ctx, "dependency", name)
					logg.Warn(lctx, "health.dependency_unreachable")
				}
				continue
			}
			status[name] = "ok"
		}

		if !healthy {
			responses.WriteError(ctx, logg, w,
				pkgerrors.New(pkgerrors.CodeDependency, "dependency unavailable").WithDetails(status))
			return
		}
		responses.WriteSuccess(w, status)
	}
}

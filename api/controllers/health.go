package controllers

import (
	"net/http"

	"github.com/andresfq/registry-backend/api/responses"
	"github.com/andresfq/registry-backend/pkg/config"
	"github.com/andresfq/registry-backend/pkg/db"
	pkgerrors "github.com/andresfq/registry-backend/pkg/errors"
	"github.com/andresfq/registry-backend/pkg/logger"
	pkgredis "github.com/andresfq/registry-backend/pkg/redis"
)

const envHeader = "X-Registry-Env"

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports readiness only when the database answers. Redis is
// optional infrastructure, so a failed ping degrades the payload without
// failing the check.
func HealthReady(cfg *config.Config, logg *logger.Logger, database db.Pinger, cache pkgredis.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)

		checks := map[string]string{"database": "ok"}
		if database == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeDependency, "database not configured"))
			return
		}
		if err := database.Ping(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "database ping"))
			return
		}

		if cache != nil {
			if err := cache.Ping(r.Context()); err != nil {
				checks["redis"] = "unavailable"
				if logg != nil {
					logg.Warn(r.Context(), "redis ping failed")
				}
			} else {
				checks["redis"] = "ok"
			}
		}

		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}

package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/andresfq/registry-backend/api/routes"
	"github.com/andresfq/registry-backend/internal/catalog"
	"github.com/andresfq/registry-backend/internal/users"
	"github.com/andresfq/registry-backend/pkg/config"
	"github.com/andresfq/registry-backend/pkg/db"
	"github.com/andresfq/registry-backend/pkg/logger"
	"github.com/andresfq/registry-backend/pkg/metrics"
	"github.com/andresfq/registry-backend/pkg/migrate"
	"github.com/andresfq/registry-backend/pkg/redis"
	"github.com/andresfq/registry-backend/pkg/storage/photos"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "registry-api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "registry-api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(context.Background(), cfg.Redis, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
	} else {
		logg.Warn(context.Background(), "redis not configured, idempotency disabled")
	}

	photoStore, err := photos.NewStore(cfg.Storage)
	if err != nil {
		logg.Error(context.Background(), "failed to prepare photo storage", err)
		os.Exit(1)
	}

	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := metrics.NewHTTPMetrics(promRegistry)

	database := dbClient.DB()
	svcs := routes.Services{
		Institutions:  catalog.NewInstitutionService(database, logg),
		Programs:      catalog.NewProgramService(database, logg),
		DocumentTypes: catalog.NewDocumentTypeService(database, logg),
		Genders:       catalog.NewGenderService(database, logg),
		UserTypes:     catalog.NewUserTypeService(database, logg),
		Users:         users.NewService(database, photoStore, cfg.Password, logg),
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting registry api")

	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, promRegistry, httpMetrics, svcs),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "registry api stopped unexpectedly", err)
		os.Exit(1)
	}
}

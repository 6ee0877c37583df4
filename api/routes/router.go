package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/andresfq/registry-backend/api/controllers"
	"github.com/andresfq/registry-backend/api/middleware"
	"github.com/andresfq/registry-backend/internal/catalog"
	"github.com/andresfq/registry-backend/internal/users"
	"github.com/andresfq/registry-backend/pkg/config"
	"github.com/andresfq/registry-backend/pkg/db"
	"github.com/andresfq/registry-backend/pkg/logger"
	"github.com/andresfq/registry-backend/pkg/metrics"
	pkgredis "github.com/andresfq/registry-backend/pkg/redis"
)

// Services groups everything the router serves.
type Services struct {
	Institutions  catalog.InstitutionService
	Programs      catalog.ProgramService
	DocumentTypes catalog.DocumentTypeService
	Genders       catalog.GenderService
	UserTypes     catalog.UserTypeService
	Users         users.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	database db.Pinger,
	cache *pkgredis.Client,
	promRegistry *prometheus.Registry,
	httpMetrics *metrics.HTTPMetrics,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(httpMetrics),
		middleware.CORS(cfg.App.CORSOrigins...),
	)

	// Assign through a nil check so a nil *Client never becomes a
	// non-nil interface value downstream.
	var idemStore pkgredis.IdempotencyStore
	var cachePinger pkgredis.Pinger
	if cache != nil {
		idemStore = cache
		cachePinger = cache
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, database, cachePinger))
	})

	if promRegistry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(promRegistry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/institutions", func(r chi.Router) {
			r.Get("/", controllers.InstitutionList(svcs.Institutions, logg))
			r.Post("/", controllers.InstitutionCreate(svcs.Institutions, logg))
			r.Get("/country/{country}", controllers.InstitutionsByCountry(svcs.Institutions, logg))
			r.Get("/{id}", controllers.InstitutionGet(svcs.Institutions, logg))
			r.Put("/{id}", controllers.InstitutionUpdate(svcs.Institutions, logg))
			r.Patch("/{id}", controllers.InstitutionUpdate(svcs.Institutions, logg))
			r.Delete("/{id}", controllers.InstitutionDelete(svcs.Institutions, logg))
		})
		r.Get("/institutions-select", controllers.InstitutionOptions(svcs.Institutions, logg))
		r.Get("/institutions-stats", controllers.InstitutionStats(svcs.Institutions, logg))

		r.Route("/academic-programs", func(r chi.Router) {
			r.Get("/", controllers.ProgramList(svcs.Programs, logg))
			r.Post("/", controllers.ProgramCreate(svcs.Programs, logg))
			r.Get("/{id}", controllers.ProgramGet(svcs.Programs, logg))
			r.Put("/{id}", controllers.ProgramUpdate(svcs.Programs, logg))
			r.Patch("/{id}", controllers.ProgramUpdate(svcs.Programs, logg))
			r.Delete("/{id}", controllers.ProgramDelete(svcs.Programs, logg))
		})
		r.Get("/academic-programs-select", controllers.ProgramOptions(svcs.Programs, logg))

		r.Route("/document-types", func(r chi.Router) {
			r.Get("/", controllers.DocumentTypeList(svcs.DocumentTypes, logg))
			r.Post("/", controllers.DocumentTypeCreate(svcs.DocumentTypes, logg))
			r.Get("/{id}", controllers.DocumentTypeGet(svcs.DocumentTypes, logg))
			r.Put("/{id}", controllers.DocumentTypeUpdate(svcs.DocumentTypes, logg))
			r.Patch("/{id}", controllers.DocumentTypeUpdate(svcs.DocumentTypes, logg))
			r.Delete("/{id}", controllers.DocumentTypeDelete(svcs.DocumentTypes, logg))
		})
		r.Get("/document-types-select", controllers.DocumentTypeOptions(svcs.DocumentTypes, logg))

		r.Route("/genders", func(r chi.Router) {
			r.Get("/", controllers.GenderList(svcs.Genders, logg))
			r.Post("/", controllers.GenderCreate(svcs.Genders, logg))
			r.Get("/{id}", controllers.GenderGet(svcs.Genders, logg))
			r.Put("/{id}", controllers.GenderUpdate(svcs.Genders, logg))
			r.Patch("/{id}", controllers.GenderUpdate(svcs.Genders, logg))
			r.Delete("/{id}", controllers.GenderDelete(svcs.Genders, logg))
		})
		r.Get("/genders-select", controllers.GenderOptions(svcs.Genders, logg))

		r.Route("/user-types", func(r chi.Router) {
			r.Get("/", controllers.UserTypeList(svcs.UserTypes, logg))
			r.Post("/", controllers.UserTypeCreate(svcs.UserTypes, logg))
			r.Get("/{id}", controllers.UserTypeGet(svcs.UserTypes, logg))
			r.Put("/{id}", controllers.UserTypeUpdate(svcs.UserTypes, logg))
			r.Patch("/{id}", controllers.UserTypeUpdate(svcs.UserTypes, logg))
			r.Delete("/{id}", controllers.UserTypeDelete(svcs.UserTypes, logg))
		})
		r.Get("/user-types-select", controllers.UserTypeOptions(svcs.UserTypes, logg))

		r.Route("/users", func(r chi.Router) {
			r.Use(middleware.Idempotency(idemStore, logg))
			r.Get("/", controllers.UserList(svcs.Users, logg))
			r.Post("/", controllers.UserCreate(svcs.Users, logg))
			r.Get("/statistics", controllers.UserStatistics(svcs.Users, logg))
			r.Get("/academic-programs", controllers.ProgramsByInstitution(svcs.Programs, logg))
			r.Post("/bulk-action", controllers.UserBulkAction(svcs.Users, logg))
			r.Get("/{id}", controllers.UserGet(svcs.Users, logg))
			r.Put("/{id}", controllers.UserUpdate(svcs.Users, logg))
			r.Patch("/{id}", controllers.UserUpdate(svcs.Users, logg))
			r.Delete("/{id}", controllers.UserDelete(svcs.Users, logg))
			r.Patch("/{id}/toggle-status", controllers.UserToggleStatus(svcs.Users, logg))
		})
	})

	return r
}

package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/uaepulse/pulse-backend/api/controllers"
	"github.com/uaepulse/pulse-backend/api/middleware"
	"github.com/uaepulse/pulse-backend/internal/cleaning"
	"github.com/uaepulse/pulse-backend/internal/kpi"
	"github.com/uaepulse/pulse-backend/internal/session"
	"github.com/uaepulse/pulse-backend/internal/simulation"
	"github.com/uaepulse/pulse-backend/pkg/config"
	"github.com/uaepulse/pulse-backend/pkg/logger"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	store *session.Store,
	pipeline *cleaning.Pipeline,
	kpiService *kpi.Service,
	simulationService *simulation.Service,
	registry *prometheus.Registry,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/datasets", func(r chi.Router) {
			r.Get("/", controllers.DatasetSummary(store, logg))
			r.Post("/sample", controllers.DatasetSample(store, cfg.Dataset, logg))
			r.Delete("/", controllers.DatasetReset(store, logg))
			r.Post("/{table}", controllers.DatasetUpload(store, cfg.Dataset, logg))
			r.Get("/{table}/cleaned.csv", controllers.DatasetCleanedCSV(store, logg))
		})

		r.Route("/cleaning", func(r chi.Router) {
			r.Post("/run", controllers.CleaningRun(pipeline, store, logg))
			r.Get("/issues", controllers.CleaningIssues(store, logg))
			r.Get("/issues.csv", controllers.CleaningIssuesCSV(store, logg))
			r.Get("/stats", controllers.CleaningStats(store, logg))
		})

		r.Route("/kpis", func(r chi.Router) {
			r.Get("/overall", controllers.KPIOverall(kpiService, store, logg))
			r.Get("/by/{dimension}", controllers.KPIByDimension(kpiService, store, logg))
			r.Get("/daily", controllers.KPIDaily(kpiService, store, logg))
			r.Get("/stockout", controllers.KPIStockout(kpiService, store, logg))
		})

		r.Post("/simulations", controllers.SimulationRun(simulationService, store, logg))
	})

	return r
}

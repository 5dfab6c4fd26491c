package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/cartvault/api/controllers"
	"github.com/angelmondragon/cartvault/api/middleware"
	"github.com/angelmondragon/cartvault/internal/catalog"
	"github.com/angelmondragon/cartvault/pkg/config"
	"github.com/angelmondragon/cartvault/pkg/logger"
)

// NewOracleRouter assembles the reference price oracle's HTTP surface.
func NewOracleRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbPinger controllers.Pinger,
	catalogService catalog.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]controllers.Pinger{
			"db": dbPinger,
		}))
	})

	r.Post("/api/v1/prices", controllers.PriceLookup(catalogService, logg))

	return r
}

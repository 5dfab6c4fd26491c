package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/cartvault/api/controllers"
	cartcontrollers "github.com/angelmondragon/cartvault/api/controllers/cart"
	"github.com/angelmondragon/cartvault/api/middleware"
	"github.com/angelmondragon/cartvault/pkg/config"
	"github.com/angelmondragon/cartvault/pkg/logger"
)

// NewRouter assembles the cart session service's HTTP surface.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	redisPinger controllers.Pinger,
	sessions cartcontrollers.Sessions,
	metricsHandler http.Handler,
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
		r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]controllers.Pinger{
			"redis": redisPinger,
		}))
	})

	if metricsHandler != nil {
		r.Handle("/metrics", metricsHandler)
	}

	r.Route("/api/v1/cart", func(r chi.Router) {
		r.Use(middleware.SessionContext(logg))
		r.Get("/", cartcontrollers.Fetch(sessions, logg))
		r.Post("/lines", cartcontrollers.AddLine(sessions, logg))
		r.Delete("/lines/{lineId}", cartcontrollers.RemoveLine(sessions, logg))
		r.Put("/lines/{lineId}/quantity", cartcontrollers.SetQuantity(sessions, logg))
		r.Post("/clear", cartcontrollers.Clear(sessions, logg))
		r.Post("/open", cartcontrollers.ToggleOpen(sessions, logg))
		r.Post("/close", cartcontrollers.Close(sessions, logg))
		r.Get("/checkout-snapshot", cartcontrollers.CheckoutSnapshot(sessions, logg))
	})

	return r
}

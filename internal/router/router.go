package router

import (
	"net/http"

	"supply-cart/internal/handler"
	"supply-cart/internal/middleware"
	"supply-cart/internal/service"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// Handlers groups the HTTP handlers mounted by New.
type Handlers struct {
	Auth    *handler.AuthHandler
	Cart    *handler.CartHandler
	History *handler.HistoryHandler
	Export  *handler.ExportHandler
}

// New creates a new HTTP router with all routes and middleware configured.
func New(h Handlers, auth service.AuthService, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	// Applied in order: RequestID -> Recovery -> Logging -> CORS
	r.Use(chimw.RequestID)
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS)

	// Health check endpoint (no authentication required)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.BasicAuth(auth, logger))

		r.Post("/login", h.Auth.Login)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", h.Cart.Get)
			r.Delete("/", h.Cart.Clear)
			r.Post("/items", h.Cart.AddItem)
			r.Delete("/items/{index}", h.Cart.RemoveItem)
			r.Post("/submit", h.Cart.Submit)
		})

		r.Get("/history", h.History.Mine)

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireAdmin(auth, logger))

			r.Get("/history", h.History.All)
			r.Post("/exports", h.Export.Create)
		})
	})

	return r
}

package api

import (
	"crypto/subtle"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/techmoncton/hive/internal/pkg/httputil"
)

// SetupRoutes configures all routes. siteOrigin scopes CORS to the website
// that embeds the subscribe form; adminKey gates the broadcast trigger.
func SetupRoutes(h *Handlers, siteOrigin, adminKey string) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{siteOrigin},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "x-admin-key"},
		MaxAge:         300,
	}))

	r.Get("/health", h.HealthCheck)

	r.Post("/subscribe", h.Subscribe)
	r.Get("/verify", h.Verify)
	r.Get("/unsubscribe", h.Unsubscribe)

	r.Get("/events", h.AllEvents)
	r.Get("/events/upcoming", h.UpcomingEvents)
	r.Get("/events/past", h.PastEvents)

	r.Group(func(r chi.Router) {
		r.Use(requireAdminKey(adminKey))
		r.Post("/send-update", h.SendUpdate)
	})

	return r
}

// requireAdminKey rejects requests whose x-admin-key header does not match.
// The check runs before anything else on the route; an empty configured key
// disables the endpoint outright.
func requireAdminKey(key string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			got := req.Header.Get("x-admin-key")
			if key == "" || subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
				httputil.Unauthorized(w)
				return
			}
			next.ServeHTTP(w, req)
		})
	}
}

package rest

import (
	"net/http"

	"github.com/gorilla/mux"

	"lastlap/internal/config"
	"lastlap/internal/game"
	"lastlap/internal/transport/rest/handler"
	"lastlap/internal/transport/ws"
)

// Container holds all dependencies for the router
type Container struct {
	Config    *config.Config
	Registry  *game.Registry
	WSHandler *ws.Handler
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	sessionHandler := handler.NewSessionHandler(c.Registry, c.Config.PublicURL)

	// CORS middleware (apply first)
	r.Use(corsMiddleware(c.Config))

	// Realtime routes. A connection without a game code is upgraded and
	// closed with a policy violation rather than 404ing, so clients get
	// a readable close reason.
	r.HandleFunc("/ws/{code}/{room}", c.WSHandler.ServeSession).Methods("GET")
	r.HandleFunc("/ws/{code}", c.WSHandler.ServeSession).Methods("GET")
	r.HandleFunc("/ws", c.WSHandler.ServeMissingCode).Methods("GET")
	r.HandleFunc("/ws/", c.WSHandler.ServeMissingCode).Methods("GET")

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()
	v1.HandleFunc("/sessions/{code}", sessionHandler.Info).Methods("GET", "OPTIONS")
	v1.HandleFunc("/sessions/{code}/qr", sessionHandler.QR).Methods("GET", "OPTIONS")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	return r
}

func corsMiddleware(cfg *config.Config) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", cfg.CORSAllowedOrigins)
			w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

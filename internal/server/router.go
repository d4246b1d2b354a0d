package server

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

// NewRouter creates the HTTP router with all endpoints
func NewRouter(h *Handler) http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/health", h.HealthCheck).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()

	// Words
	api.HandleFunc("/words", h.AddWord).Methods("POST")
	api.HandleFunc("/words/list", h.ListWords).Methods("GET")
	api.HandleFunc("/words/{id}", h.DeleteWord).Methods("DELETE")

	// Statistics
	api.HandleFunc("/stats", h.GetStats).Methods("GET")
	api.HandleFunc("/quiz/answer", h.SubmitAnswer).Methods("POST")

	// The mini-app is served from another origin
	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	})

	return c.Handler(r)
}

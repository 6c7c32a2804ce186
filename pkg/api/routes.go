package api

import (
	"net/http"

	"github.com/gorilla/mux"
)

// SetupRoutes registers the RESTful routes on router
func SetupRoutes(router *mux.Router, handlers *Handlers) {
	api := router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/rank", handlers.SubmitRank).Methods("POST")

	jobs := api.PathPrefix("/jobs").Subrouter()
	jobs.HandleFunc("", handlers.ListJobs).Methods("GET")
	jobs.HandleFunc("/{jobId}", handlers.GetJob).Methods("GET")
	jobs.HandleFunc("/{jobId}", handlers.CancelJob).Methods("DELETE")
	jobs.HandleFunc("/{jobId}/result", handlers.GetJobResult).Methods("GET")

	api.HandleFunc("/health", handlers.HealthCheck).Methods("GET")
}

// NewRouter builds the full handler with the middleware stack
func NewRouter(handlers *Handlers, allowedOrigins []string) http.Handler {
	router := mux.NewRouter()
	SetupRoutes(router, handlers)

	router.Use(LoggingMiddleware)
	router.Use(RecoveryMiddleware)

	return CORSMiddleware(allowedOrigins)(router)
}

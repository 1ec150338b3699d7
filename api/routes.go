package api

import (
	"net"
	"net/http"
	"net/http/pprof"

	"idacast/handlers"

	"github.com/gorilla/mux"
)

// localhostOnlyMiddleware restricts access to localhost requests only
func localhostOnlyMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		host := r.Host
		if h, _, err := net.SplitHostPort(host); err == nil {
			host = h
		}
		if host != "localhost" && host != "127.0.0.1" && host != "::1" {
			http.Error(w, "Debug endpoints only accessible from localhost", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// corsMiddleware handles CORS for API routes
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "*")
		w.Header().Set("Access-Control-Expose-Headers", "ETag")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// handleOptions handles OPTIONS requests for CORS preflight
func handleOptions(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// Register mounts API endpoints onto the provided router.
func Register(r *mux.Router, schedulesHandler *handlers.SchedulesHandler, eventsHandler *handlers.EventsHandler) {
	api := r.PathPrefix("/api").Subrouter()
	api.Use(corsMiddleware)

	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods(http.MethodGet)

	api.HandleFunc("/schedules", schedulesHandler.GetSchedules).Methods(http.MethodGet)
	api.HandleFunc("/schedules", handleOptions).Methods(http.MethodOptions)
	api.HandleFunc("/status", schedulesHandler.GetStatus).Methods(http.MethodGet)
	api.HandleFunc("/status", handleOptions).Methods(http.MethodOptions)
	api.HandleFunc("/windows/{category}", schedulesHandler.GetWindow).Methods(http.MethodGet)
	api.HandleFunc("/windows/{category}", handleOptions).Methods(http.MethodOptions)
	api.HandleFunc("/refresh", schedulesHandler.Refresh).Methods(http.MethodPost)
	api.HandleFunc("/refresh", handleOptions).Methods(http.MethodOptions)
	api.HandleFunc("/locale", schedulesHandler.SetLocale).Methods(http.MethodPut)
	api.HandleFunc("/locale", handleOptions).Methods(http.MethodOptions)
	api.HandleFunc("/events", eventsHandler.Stream).Methods(http.MethodGet)

	// Pprof debug endpoints (localhost only)
	pprofRouter := api.PathPrefix("/debug/pprof").Subrouter()
	pprofRouter.Use(localhostOnlyMiddleware)
	pprofRouter.HandleFunc("/", pprof.Index)
	pprofRouter.HandleFunc("/cmdline", pprof.Cmdline)
	pprofRouter.HandleFunc("/profile", pprof.Profile)
	pprofRouter.HandleFunc("/symbol", pprof.Symbol)
	pprofRouter.HandleFunc("/trace", pprof.Trace)
	pprofRouter.HandleFunc("/goroutine", pprof.Handler("goroutine").ServeHTTP)
	pprofRouter.HandleFunc("/heap", pprof.Handler("heap").ServeHTTP)
}

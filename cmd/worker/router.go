package main

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/amirasaad/ledger/pkg/config"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// pinger reports whether the database is reachable.
type pinger interface {
	PingContext(ctx context.Context) error
}

func newRouter(deps *config.Deps) *mux.Router {
	var db pinger
	if deps.DB != nil {
		if sqlDB, err := deps.DB.DB(); err == nil {
			db = sqlDB
		}
	}
	r := mux.NewRouter()
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/healthz", healthHandler(db)).Methods(http.MethodGet)
	return r
}

func healthHandler(db pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status, code := "ok", http.StatusOK
		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := db.PingContext(ctx); err != nil {
				status, code = "database unavailable", http.StatusServiceUnavailable
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": status})
	}
}

package main

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/urshort/urshort/internal/handler"
	"github.com/urshort/urshort/internal/metrics"
)

func setupRouter(redirectHandler *handler.RedirectHandler, metricsCollector *metrics.Collector) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/metrics", metricsCollector.Handler())
	r.HandleFunc("/healthz", healthz)
	r.PathPrefix("/").Handler(redirectHandler)

	return r
}

func healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/ganiszulfa/okblog/search/cmd/internal/metrics"
)

// NewRouter wires the search API. OPTIONS is registered on every API route
// so preflight requests reach the CORS middleware.
func NewRouter(h *SearchHandler, logger *zap.Logger, m *metrics.Metrics, gatherer prometheus.Gatherer) *mux.Router {
	r := mux.NewRouter()
	r.Use(CorsMiddleware(), LoggingMiddleware(logger), MetricsMiddleware(m))

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", h.Health).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/search", h.Search).Methods(http.MethodPost, http.MethodOptions)

	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	return r
}

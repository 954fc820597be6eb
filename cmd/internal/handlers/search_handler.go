package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/ganiszulfa/okblog/search/cmd/internal/models"
	"github.com/ganiszulfa/okblog/search/cmd/internal/search"
)

// HealthMessage is the body of GET /api/health.
const HealthMessage = "Search service is healthy!"

// MaxRequestBytes bounds the size of a search request body.
const MaxRequestBytes = 1 << 20

// SearchService resolves one search request.
type SearchService interface {
	Search(ctx context.Context, req models.SearchRequest) search.Outcome
}

type SearchHandler struct {
	search        SearchService
	logger        *zap.Logger
	surfaceErrors bool
}

// NewSearchHandler creates the handler. With surfaceErrors false a failed
// search is answered with an empty 200 response; with true it gets a 502.
func NewSearchHandler(svc SearchService, logger *zap.Logger, surfaceErrors bool) *SearchHandler {
	return &SearchHandler{
		search:        svc,
		logger:        logger,
		surfaceErrors: surfaceErrors,
	}
}

// Health handles GET /api/health
func (h *SearchHandler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(HealthMessage))
}

// Search handles POST /api/search
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxRequestBytes)

	var req models.SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	h.logger.Info("Search request received", zap.String("query", req.Query))

	outcome := h.search.Search(r.Context(), req)
	if outcome.Empty() {
		h.logger.Error("Search failed", zap.String("query", req.Query), zap.Error(outcome.Err))
		if h.surfaceErrors {
			writeJSON(w, http.StatusBadGateway, map[string]string{"error": "search backend unavailable"})
			return
		}
	} else {
		h.logger.Info("Search completed",
			zap.Int64("total", outcome.Response.Total),
			zap.Int64("took_ms", outcome.Response.TookMs),
			zap.Bool("cached", outcome.Cached),
		)
	}

	writeJSON(w, http.StatusOK, outcome.Response)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

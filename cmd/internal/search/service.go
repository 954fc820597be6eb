package search

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/ganiszulfa/okblog/search/cmd/internal/metrics"
	"github.com/ganiszulfa/okblog/search/cmd/internal/models"
)

// Searcher runs one search against the engine.
type Searcher interface {
	SearchPosts(ctx context.Context, req models.SearchRequest) (*models.SearchResponse, error)
}

// Cache stores search responses. Get returns nil, nil on a miss.
type Cache interface {
	Get(ctx context.Context, req models.SearchRequest) (*models.SearchResponse, error)
	Set(ctx context.Context, req models.SearchRequest, resp *models.SearchResponse) error
}

// Outcome is the result of one search. Response is never nil; when Err is
// set it is the empty response the caller may serve in place of an error.
type Outcome struct {
	Response *models.SearchResponse
	Err      error
	Cached   bool
}

// Empty reports whether the response is empty because the search failed.
func (o Outcome) Empty() bool {
	return o.Err != nil
}

// Service resolves search requests, consulting the cache when one is set.
type Service struct {
	searcher Searcher
	cache    Cache
	logger   *zap.Logger
	metrics  *metrics.Metrics
}

// NewService creates a Service. cache can be nil.
func NewService(searcher Searcher, cache Cache, logger *zap.Logger, m *metrics.Metrics) *Service {
	return &Service{
		searcher: searcher,
		cache:    cache,
		logger:   logger,
		metrics:  m,
	}
}

// Search answers req. A blank query matches nothing and never reaches the
// engine.
func (s *Service) Search(ctx context.Context, req models.SearchRequest) Outcome {
	if strings.TrimSpace(req.Query) == "" {
		return Outcome{Response: models.EmptySearchResponse()}
	}

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, req)
		switch {
		case err != nil:
			s.metrics.CacheLookups.WithLabelValues("error").Inc()
			s.logger.Warn("Cache lookup failed", zap.Error(err))
		case cached != nil:
			s.metrics.CacheLookups.WithLabelValues("hit").Inc()
			cached.TookMs = 0
			return Outcome{Response: cached, Cached: true}
		default:
			s.metrics.CacheLookups.WithLabelValues("miss").Inc()
		}
	}

	resp, err := s.searcher.SearchPosts(ctx, req)
	if err != nil {
		return Outcome{Response: models.EmptySearchResponse(), Err: err}
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, req, resp); err != nil {
			s.logger.Warn("Failed to cache search response", zap.Error(err))
		}
	}

	return Outcome{Response: resp}
}

package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/elastic/go-elasticsearch/v8"

	"github.com/ganiszulfa/okblog/search/cmd/internal/metrics"
	"github.com/ganiszulfa/okblog/search/cmd/internal/models"
)

// ElasticSearch executes translated queries against one posts index.
type ElasticSearch struct {
	client  *elasticsearch.Client
	index   string
	mode    QueryMode
	timeout time.Duration
	metrics *metrics.Metrics
}

// NewElasticSearch binds client to index. A zero timeout leaves engine calls
// bounded only by the caller's context.
func NewElasticSearch(client *elasticsearch.Client, index string, mode QueryMode, timeout time.Duration, m *metrics.Metrics) *ElasticSearch {
	return &ElasticSearch{
		client:  client,
		index:   index,
		mode:    mode,
		timeout: timeout,
		metrics: m,
	}
}

// SearchPosts performs full-text search on published posts
func (es *ElasticSearch) SearchPosts(ctx context.Context, req models.SearchRequest) (*models.SearchResponse, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(BuildQuery(req, es.mode)); err != nil {
		return nil, fmt.Errorf("failed to encode query: %w", err)
	}

	if es.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, es.timeout)
		defer cancel()
	}

	start := time.Now()
	res, err := es.client.Search(
		es.client.Search.WithContext(ctx),
		es.client.Search.WithIndex(es.index),
		es.client.Search.WithBody(&buf),
		es.client.Search.WithTrackTotalHits(true),
	)
	if err != nil {
		es.metrics.ESRequests.WithLabelValues("search", "error").Inc()
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		es.metrics.ESRequests.WithLabelValues("search", "error").Inc()
		return nil, fmt.Errorf("%w: search returned %s", ErrTransport, res.String())
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		es.metrics.ESRequests.WithLabelValues("search", "error").Inc()
		return nil, fmt.Errorf("%w: failed to read response: %w", ErrTransport, err)
	}
	elapsed := time.Since(start)
	es.metrics.SearchDuration.Observe(elapsed.Seconds())

	resp, err := Normalize(bytes.NewReader(body), elapsed.Milliseconds())
	if err != nil {
		es.metrics.ESRequests.WithLabelValues("search", "malformed").Inc()
		return nil, err
	}

	es.metrics.ESRequests.WithLabelValues("search", "success").Inc()
	return resp, nil
}

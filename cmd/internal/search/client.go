package search

import (
	"context"
	"fmt"

	"github.com/elastic/go-elasticsearch/v8"

	"github.com/ganiszulfa/okblog/search/cmd/internal/config"
)

// Connect creates the Elasticsearch client and probes it once. The service
// must not start against an unreachable engine, so any failure is wrapped in
// ErrConnection. The returned client is safe for concurrent use.
func Connect(ctx context.Context, cfg config.Config) (*elasticsearch.Client, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses:    []string{cfg.ElasticsearchURL},
		Username:     cfg.ElasticsearchUsername,
		Password:     cfg.ElasticsearchPassword,
		DisableRetry: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create client: %w", ErrConnection, err)
	}

	res, err := client.Ping(client.Ping.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnection, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("%w: ping returned %s", ErrConnection, res.Status())
	}

	return client, nil
}

package search

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/ganiszulfa/okblog/search/cmd/internal/models"
)

// PublishedAtLayout renders decoded publication timestamps in UTC with
// microsecond precision, e.g. 2024-05-01T12:30:45.123456Z.
const PublishedAtLayout = "2006-01-02T15:04:05.000000Z07:00"

// Normalize reshapes a raw Elasticsearch search response into the public
// response contract. Hits keep the engine's order. elapsedMs is the
// round-trip time measured by the caller.
func Normalize(body io.Reader, elapsedMs int64) (*models.SearchResponse, error) {
	decoder := json.NewDecoder(body)
	decoder.UseNumber()

	var result map[string]interface{}
	if err := decoder.Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}

	hits, _ := result["hits"].(map[string]interface{})
	hitsArray, ok := hits["hits"].([]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: hits.hits is not an array", ErrMalformedResponse)
	}

	posts := make([]models.Post, 0, len(hitsArray))
	for _, hit := range hitsArray {
		hitMap, _ := hit.(map[string]interface{})
		source, _ := hitMap["_source"].(map[string]interface{})
		posts = append(posts, postFromSource(source))
	}

	return &models.SearchResponse{
		Hits:   posts,
		Total:  totalHits(hits),
		TookMs: elapsedMs,
	}, nil
}

func postFromSource(source map[string]interface{}) models.Post {
	return models.Post{
		Title:       stringField(source, "title"),
		PostType:    stringField(source, "post_type"),
		Content:     stringField(source, "content"),
		Excerpt:     stringField(source, "excerpt"),
		Slug:        stringField(source, "slug"),
		PublishedAt: DecodePublishedAt(source["published_at"]),
	}
}

func stringField(source map[string]interface{}, key string) string {
	s, _ := source[key].(string)
	return s
}

// DecodePublishedAt converts a stored published_at value. Integers are
// microseconds since the Unix epoch; strings pass through unchanged; any
// other value yields nil.
func DecodePublishedAt(value interface{}) *string {
	switch v := value.(type) {
	case string:
		return &v
	case json.Number:
		micros, err := v.Int64()
		if err != nil {
			return nil
		}
		formatted := time.UnixMicro(micros).UTC().Format(PublishedAtLayout)
		return &formatted
	default:
		return nil
	}
}

func totalHits(hits map[string]interface{}) int64 {
	total, _ := hits["total"].(map[string]interface{})
	value, ok := total["value"].(json.Number)
	if !ok {
		return 0
	}
	n, err := value.Int64()
	if err != nil || n < 0 {
		return 0
	}
	return n
}

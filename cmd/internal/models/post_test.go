package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchRequestDefaults(t *testing.T) {
	var req SearchRequest
	require.NoError(t, json.Unmarshal([]byte(`{"query":"hello"}`), &req))

	assert.Equal(t, "hello", req.Query)
	assert.Equal(t, []string{"title", "content"}, req.MatchFields())
	assert.Equal(t, 0, req.Offset())
	assert.Equal(t, 10, req.Limit())
}

func TestSearchRequestExplicitValues(t *testing.T) {
	var req SearchRequest
	body := `{"query":"go","fields":["excerpt"],"from":20,"size":0}`
	require.NoError(t, json.Unmarshal([]byte(body), &req))

	assert.Equal(t, []string{"excerpt"}, req.MatchFields())
	assert.Equal(t, 20, req.Offset())
	assert.Equal(t, 0, req.Limit())
}

func TestSearchRequestNegativePagination(t *testing.T) {
	from, size := -1, -5
	req := SearchRequest{From: &from, Size: &size}

	assert.Equal(t, DefaultFrom, req.Offset())
	assert.Equal(t, DefaultSize, req.Limit())
}

func TestEmptySearchResponseEncoding(t *testing.T) {
	data, err := json.Marshal(EmptySearchResponse())
	require.NoError(t, err)

	assert.JSONEq(t, `{"hits":[],"total":0,"took_ms":0}`, string(data))
}

func TestPostEncodesMissingPublishedAtAsNull(t *testing.T) {
	data, err := json.Marshal(Post{Title: "t"})
	require.NoError(t, err)

	assert.JSONEq(t, `{"title":"t","post_type":"","content":"","excerpt":"","slug":"","published_at":null}`, string(data))
}

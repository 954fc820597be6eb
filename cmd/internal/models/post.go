package models

// Default pagination and match fields applied to a SearchRequest.
const (
	DefaultFrom = 0
	DefaultSize = 10
)

// DefaultFields are matched when a request does not name any.
var DefaultFields = []string{"title", "content"}

// Post represents a published blog post as stored in the search index
type Post struct {
	Title       string  `json:"title"`
	PostType    string  `json:"post_type"`
	Content     string  `json:"content"`
	Excerpt     string  `json:"excerpt"`
	Slug        string  `json:"slug"`
	PublishedAt *string `json:"published_at"`
}

// SearchRequest represents the request body for POST /api/search
type SearchRequest struct {
	Query  string   `json:"query"`
	Fields []string `json:"fields,omitempty"`
	From   *int     `json:"from,omitempty"`
	Size   *int     `json:"size,omitempty"`
}

// MatchFields returns the requested fields or DefaultFields when absent.
func (r SearchRequest) MatchFields() []string {
	if r.Fields == nil {
		return DefaultFields
	}
	return r.Fields
}

// Offset returns the pagination offset, DefaultFrom when absent or negative.
func (r SearchRequest) Offset() int {
	if r.From == nil || *r.From < 0 {
		return DefaultFrom
	}
	return *r.From
}

// Limit returns the page size, DefaultSize when absent or negative.
func (r SearchRequest) Limit() int {
	if r.Size == nil || *r.Size < 0 {
		return DefaultSize
	}
	return *r.Size
}

// SearchResponse represents search results
type SearchResponse struct {
	Hits   []Post `json:"hits"`
	Total  int64  `json:"total"`
	TookMs int64  `json:"took_ms"`
}

// EmptySearchResponse is returned when a search yields nothing to show.
func EmptySearchResponse() *SearchResponse {
	return &SearchResponse{Hits: []Post{}}
}

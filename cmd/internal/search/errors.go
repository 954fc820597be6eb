package search

import "errors"

var (
	// ErrConnection is returned when Elasticsearch cannot be reached at startup.
	ErrConnection = errors.New("elasticsearch unreachable")

	// ErrTransport is returned when a search call fails on the network or the
	// engine answers with a non-2xx status.
	ErrTransport = errors.New("elasticsearch transport error")

	// ErrMalformedResponse is returned when the engine response has no
	// hits.hits array.
	ErrMalformedResponse = errors.New("malformed elasticsearch response")
)

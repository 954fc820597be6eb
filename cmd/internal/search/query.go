package search

import (
	"strings"

	"github.com/ganiszulfa/okblog/search/cmd/internal/config"
	"github.com/ganiszulfa/okblog/search/cmd/internal/models"
)

// QueryMode selects how the free-text query is matched.
type QueryMode string

const (
	// QueryModeHybrid combines a fuzzy AND match on content with a wildcard
	// substring match on title and content.
	QueryModeHybrid QueryMode = config.QueryModeHybrid

	// QueryModeMultiMatch matches the query against the requested fields
	// with a fuzzy best_fields multi_match.
	QueryModeMultiMatch QueryMode = config.QueryModeMultiMatch
)

// wildcardFields are searched by the substring clause regardless of the
// fields named in the request.
var wildcardFields = []string{"title", "content"}

// queryStringReserved are escaped inside wildcard terms so user input cannot
// change the structure of the query_string expression.
var queryStringReserved = strings.NewReplacer(
	`\`, `\\`,
	`+`, `\+`,
	`-`, `\-`,
	`=`, `\=`,
	`&`, `\&`,
	`|`, `\|`,
	`>`, `\>`,
	`<`, `\<`,
	`!`, `\!`,
	`(`, `\(`,
	`)`, `\)`,
	`{`, `\{`,
	`}`, `\}`,
	`[`, `\[`,
	`]`, `\]`,
	`^`, `\^`,
	`"`, `\"`,
	`~`, `\~`,
	`*`, `\*`,
	`?`, `\?`,
	`:`, `\:`,
	`/`, `\/`,
)

// BuildQuery translates a search request into an Elasticsearch query DSL
// document. Only published posts are ever matched.
func BuildQuery(req models.SearchRequest, mode QueryMode) map[string]interface{} {
	var should []interface{}
	switch mode {
	case QueryModeMultiMatch:
		should = []interface{}{multiMatchClause(req.Query, req.MatchFields())}
	default:
		should = []interface{}{
			fuzzyContentClause(req.Query),
			wildcardClause(req.Query),
		}
	}

	return map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must": []interface{}{
					map[string]interface{}{
						"bool": map[string]interface{}{
							"should":               should,
							"minimum_should_match": 1,
						},
					},
				},
				"filter": []interface{}{
					map[string]interface{}{
						"term": map[string]interface{}{
							"is_published": true,
						},
					},
				},
			},
		},
		"from": req.Offset(),
		"size": req.Limit(),
		"highlight": map[string]interface{}{
			"fields": map[string]interface{}{
				"title":   map[string]interface{}{},
				"content": map[string]interface{}{},
			},
		},
	}
}

// WildcardQuery wraps every whitespace-delimited term as *term* and joins
// them with single spaces. A blank query yields "**".
func WildcardQuery(query string) string {
	terms := strings.Fields(query)
	if len(terms) == 0 {
		return "**"
	}

	wrapped := make([]string, len(terms))
	for i, term := range terms {
		wrapped[i] = "*" + queryStringReserved.Replace(term) + "*"
	}
	return strings.Join(wrapped, " ")
}

// fuzzyContentClause requires every term to appear in content, in any order,
// with engine-computed edit distance.
func fuzzyContentClause(query string) map[string]interface{} {
	return map[string]interface{}{
		"match": map[string]interface{}{
			"content": map[string]interface{}{
				"query":     query,
				"operator":  "and",
				"fuzziness": "AUTO",
			},
		},
	}
}

func wildcardClause(query string) map[string]interface{} {
	return map[string]interface{}{
		"query_string": map[string]interface{}{
			"query":            WildcardQuery(query),
			"fields":           wildcardFields,
			"analyze_wildcard": true,
		},
	}
}

func multiMatchClause(query string, fields []string) map[string]interface{} {
	return map[string]interface{}{
		"multi_match": map[string]interface{}{
			"query":     query,
			"fields":    fields,
			"type":      "best_fields",
			"fuzziness": "AUTO",
		},
	}
}

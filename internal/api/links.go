package api

import (
	"github.com/danielgtaylor/huma/v2"
)

// links maps operation paths to their RFC 8288 Link header values.
// Enables restish hypermedia navigation via `restish links <url>`.
var links = map[string][]string{
	"/health": {
		`</api/v1/info>; rel="info"`,
		`</api/v1/styles>; rel="styles"`,
		`</api/v1/sources>; rel="sources"`,
		`</api/v1/tables>; rel="tables"`,
	},
	"/api/v1/info": {
		`</health>; rel="health"`,
		`</metrics>; rel="metrics"`,
	},
	"/api/v1/styles": {
		`</api/v1/map>; rel="map"`,
	},
	"/api/v1/sources": {
		`</api/v1/dataset>; rel="item"`,
	},
	"/api/v1/dataset": {
		`</api/v1/map>; rel="map"`,
		`</api/v1/neighborhoods>; rel="neighborhoods"`,
	},
	"/api/v1/map": {
		`</api/v1/styles>; rel="styles"`,
		`</api/v1/neighborhoods>; rel="neighborhoods"`,
	},
	"/api/v1/neighborhoods": {
		`</api/v1/map>; rel="map"`,
	},
	"/api/v1/tables": {
		`</api/v1/query>; rel="query"`,
	},
}

// LinkTransformer returns a Huma Transformer that injects RFC 8288 Link headers.
func LinkTransformer() huma.Transformer {
	return func(ctx huma.Context, status string, v any) (any, error) {
		op := ctx.Operation()
		if op == nil {
			return v, nil
		}
		for _, link := range links[op.Path] {
			ctx.AppendHeader("Link", link)
		}
		return v, nil
	}
}

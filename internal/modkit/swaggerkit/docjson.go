package swaggerkit

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"scandesk/internal/core/version"
)

const apiBase = "/api/v1"

// SpecMutator lets a module annotate the generated spec.
type SpecMutator func(spec map[string]any)

var mutators []SpecMutator

// Register adds m to every spec served from now on.
func Register(m SpecMutator) {
	if m != nil {
		mutators = append(mutators, m)
	}
}

var errorRef = map[string]any{"$ref": "#/components/schemas/ErrorResponse"}

func errorResponse(desc string) map[string]any {
	return map[string]any{
		"description": desc,
		"content":     map[string]any{"application/json": map[string]any{"schema": errorRef}},
	}
}

// skeleton is an OAS 3.0 document with the error envelope schema and no paths.
func skeleton(title string) map[string]any {
	prop := func(typ string) map[string]any { return map[string]any{"type": typ} }
	return map[string]any{
		"openapi": "3.0.3",
		"info": map[string]any{
			"title":       title,
			"version":     version.Info().Version,
			"description": "Scan stations, manual scan requests and shipment lookups",
		},
		"servers": []any{map[string]any{"url": apiBase}},
		"paths":   map[string]any{},
		"components": map[string]any{"schemas": map[string]any{
			"ErrorResponse": map[string]any{
				"type":     "object",
				"required": []any{"status_code", "status"},
				"properties": map[string]any{
					"status_code": prop("integer"),
					"status":      prop("string"),
					"code":        prop("integer"),
					"error":       prop("string"),
					"request_id":  prop("string"),
				},
			},
		}},
	}
}

// serveDocJSON walks mux on every request so routes mounted after the docs
// still show up.
func serveDocJSON(mux http.Handler, title string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		spec := skeleton(title)
		if routes, ok := mux.(chi.Routes); ok {
			addRoutes(spec, routes)
		}
		for _, m := range mutators {
			m(spec)
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		_ = json.NewEncoder(w).Encode(spec)
	}
}

// addRoutes adds an operation per concrete /api/v1 route, tagged by its first
// path segment.
func addRoutes(spec map[string]any, routes chi.Routes) {
	paths := spec["paths"].(map[string]any)
	_ = chi.Walk(routes, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		rest, ok := strings.CutPrefix(route, apiBase+"/")
		if !ok || strings.Contains(rest, "*") {
			return nil
		}
		p := "/" + strings.TrimSuffix(rest, "/")
		tag, _, _ := strings.Cut(rest, "/")

		op := map[string]any{
			"tags": []any{tag},
			"responses": map[string]any{
				"200": map[string]any{"description": "OK"},
				"400": errorResponse("Bad Request"),
				"500": errorResponse("Internal Server Error"),
			},
		}
		if params := pathParams(p); len(params) > 0 {
			op["parameters"] = params
		}
		node, ok := paths[p].(map[string]any)
		if !ok {
			node = map[string]any{}
			paths[p] = node
		}
		node[strings.ToLower(method)] = op
		return nil
	})
}

// pathParams declares each {name} segment as a required string.
func pathParams(p string) []any {
	var out []any
	for _, seg := range strings.Split(p, "/") {
		name, ok := strings.CutPrefix(seg, "{")
		if !ok {
			continue
		}
		out = append(out, map[string]any{
			"name":     strings.TrimSuffix(name, "}"),
			"in":       "path",
			"required": true,
			"schema":   map[string]any{"type": "string"},
		})
	}
	return out
}

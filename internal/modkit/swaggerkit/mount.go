// Package swaggerkit serves Swagger UI and an OpenAPI document generated from
// the mounted routes.
package swaggerkit

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"scandesk/internal/platform/config"
	phttp "scandesk/internal/platform/net/http"
)

// Mount serves the UI at /api/docs/ and the spec at /api/docs/doc.json.
// CORE_API_DOCS_TITLE_SUFFIX is appended to the spec title.
func Mount(r phttp.Router, enabled bool) {
	if !enabled {
		return
	}
	title := "Scandesk API"
	if s := config.New().Prefix("CORE_API_").MayString("DOCS_TITLE_SUFFIX", ""); s != "" {
		title += " " + s
	}
	r.Get("/api/docs", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/api/docs/", http.StatusPermanentRedirect)
	})
	r.Get("/api/docs/doc.json", serveDocJSON(r.Mux(), title))
	r.Handle("/api/docs/*", httpSwagger.Handler(
		httpSwagger.InstanceName("api"),
		httpSwagger.URL("/api/docs/doc.json"),
	))
}

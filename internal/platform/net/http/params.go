package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	perr "scandesk/internal/platform/errors"
)

// Param returns a chi URL parameter, empty when absent
func Param(r *http.Request, name string) string { return chi.URLParam(r, name) }

// QueryInt parses an optional integer query parameter, def when absent
func QueryInt(r *http.Request, name string, def int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, perr.WithField(perr.InvalidArgf("%s must be an integer", name), name)
	}
	return n, nil
}

// QueryUint64 parses an optional unsigned query parameter, def when absent
func QueryUint64(r *http.Request, name string, def uint64) (uint64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, perr.WithField(perr.InvalidArgf("%s must be a non negative integer", name), name)
	}
	return n, nil
}

// Package middleware holds the HTTP middleware the API stack is built from:
// chi's stock handlers behind chi-free signatures plus the access log,
// panic recovery and bearer auth.
package middleware

import (
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	pstrings "scandesk/internal/platform/strings"
)

func RequestID() func(http.Handler) http.Handler       { return chimw.RequestID }
func RealIP() func(http.Handler) http.Handler          { return chimw.RealIP }
func NoCache() func(http.Handler) http.Handler         { return chimw.NoCache }
func RedirectSlashes() func(http.Handler) http.Handler { return chimw.RedirectSlashes }
func StripSlashes() func(http.Handler) http.Handler    { return chimw.StripSlashes }

// Heartbeat answers GET path with 200 before routing.
func Heartbeat(path string) func(http.Handler) http.Handler { return chimw.Heartbeat(path) }

// Timeout cancels the request context after d.
func Timeout(d time.Duration) func(http.Handler) http.Handler { return chimw.Timeout(d) }

// Compress negotiates gzip or deflate at level.
func Compress(level int) func(http.Handler) http.Handler {
	return chimw.NewCompressor(level).Handler
}

// CORSOptions leaves methods and headers to the station client defaults when empty.
type CORSOptions struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

func CORS(o CORSOptions) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins: o.AllowedOrigins,
		AllowedMethods: pstrings.IfEmpty(o.AllowedMethods, []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		AllowedHeaders: pstrings.IfEmpty(o.AllowedHeaders, []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"}),
	})
}

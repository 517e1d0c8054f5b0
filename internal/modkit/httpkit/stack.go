package httpkit

import (
	"compress/flate"
	"net/http"
	"time"

	"scandesk/internal/platform/net/middleware"
)

const (
	apiV1 = "/api/v1"

	slowRequest = 500 * time.Millisecond
	// longer than the default manual scan wait
	requestTimeout = 30 * time.Second
)

// CommonStack is the middleware every /api/v1 route runs behind.
func CommonStack() []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		middleware.RequestID(),
		middleware.RealIP(),
		middleware.RecoverJSON,
		middleware.NoCache(),
		middleware.AccessLogZerolog(middleware.AccessLogOptions{Slow: slowRequest}),
		middleware.CORS(middleware.CORSOptions{}),
		middleware.Compress(flate.BestSpeed),
		middleware.Heartbeat(apiV1 + "/health"),
		middleware.RedirectSlashes(),
		middleware.StripSlashes(),
		middleware.Timeout(requestTimeout),
	}
}

// MountAPIV1 scopes mount under /api/v1 with mw applied.
func MountAPIV1(r Router, mw []func(http.Handler) http.Handler, mount func(Router)) {
	r.Route(apiV1, func(api Router) {
		api.Use(mw...)
		mount(api)
	})
}

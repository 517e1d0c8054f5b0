package middleware

import (
	"net/http"
	"runtime/debug"

	perr "scandesk/internal/platform/errors"
	"scandesk/internal/platform/logger"
	pnet "scandesk/internal/platform/net"
	phttp "scandesk/internal/platform/net/http"
)

// RecoverJSON turns a handler panic into the JSON 500 envelope and logs the
// stack against the request.
func RecoverJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			v := recover()
			if v == nil {
				return
			}
			if v == http.ErrAbortHandler {
				panic(v)
			}
			reqID := pnet.RequestID(r.Context())
			logger.C(logger.WithRequest(r.Context(), reqID, "")).Error().
				Interface("panic", v).
				Bytes("stack", debug.Stack()).
				Msg("panic recovered")

			status, body := pnet.Error(perr.PanicErrf("panic recovered"), reqID)
			phttp.JSON(w, status, body)
		}()
		next.ServeHTTP(w, r)
	})
}

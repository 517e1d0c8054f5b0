package middleware

import (
	"context"
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"

	"scandesk/internal/platform/logger"
	pnet "scandesk/internal/platform/net"
)

// AccessLogOptions: requests at or over Slow log at warn. Zero disables it.
type AccessLogOptions struct {
	Slow time.Duration
}

// operatorSlot lets Auth, which runs inside the access log, report who the
// request belonged to.
type operatorSlot struct{}

func noteOperator(ctx context.Context, operator string) {
	if p, ok := ctx.Value(operatorSlot{}).(*string); ok {
		*p = operator
	}
}

// AccessLogZerolog logs one line per request with status, size, latency,
// request id and the authenticated operator.
func AccessLogZerolog(opt AccessLogOptions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var operator string
			ctx := context.WithValue(r.Context(), operatorSlot{}, &operator)
			ctx = logger.WithRequest(ctx, pnet.RequestID(ctx), "")
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r.WithContext(ctx))

			elapsed := time.Since(start)
			log := logger.C(logger.WithRequest(ctx, "", operator))
			evt := log.Info()
			if opt.Slow > 0 && elapsed >= opt.Slow {
				evt = log.Warn()
			}
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			evt.Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", status).
				Int("bytes", ww.BytesWritten()).
				Dur("elapsed", elapsed).
				Msg("request done")
		})
	}
}

package middleware

import (
	"net/http"

	"scandesk/internal/platform/logger"
	pnet "scandesk/internal/platform/net"
)

// AuthPort identifies the caller of a request
type AuthPort interface {
	// Parse returns the operator name or an error
	Parse(r *http.Request) (operator string, err error)
}

// Auth rejects requests the port cannot identify and puts the operator on ctx
// a nil port passes everything through
func Auth(p AuthPort, write func(w http.ResponseWriter, status int, body any)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if p == nil {
				next.ServeHTTP(w, r)
				return
			}
			operator, err := p.Parse(r)
			if err != nil {
				status, body := pnet.Error(err, pnet.RequestID(r.Context()))
				write(w, status, body)
				return
			}
			noteOperator(r.Context(), operator)
			ctx := pnet.WithUser(r.Context(), operator)
			ctx = logger.WithRequest(ctx, pnet.RequestID(ctx), operator)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

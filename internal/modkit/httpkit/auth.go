package httpkit

import (
	"net/http"

	perrs "scandesk/internal/platform/errors"
	pnet "scandesk/internal/platform/net"
	phttp "scandesk/internal/platform/net/http"
	"scandesk/internal/platform/net/middleware"
)

// Protected mounts fn's routes behind bearer auth. A nil port leaves them open.
func Protected(r Router, p middleware.AuthPort, fn func(Router)) {
	r.Group(func(g Router) {
		g.Use(middleware.Auth(p, phttp.JSON))
		fn(g)
	})
}

// User returns the operator the auth middleware identified.
func User(r *http.Request) (string, error) {
	if op := pnet.UserID(r.Context()); op != "" {
		return op, nil
	}
	return "", perrs.Unauthorizedf("missing bearer token")
}

// Package http provides http transport for lookups
package http

import (
	stdhttp "net/http"

	"scandesk/internal/modkit/httpkit"
	"scandesk/internal/services/lookup/domain"
)

// Register mounts lookup endpoints on the given router
func Register(r httpkit.Router, s domain.ServicePort) {
	h := &handlers{svc: s}
	httpkit.Get(r, "/shipments/{token}", h.shipment)
	httpkit.Get(r, "/manifests/{token}", h.manifest)
	httpkit.PostJSON[domain.ResolveInput](r, "/resolve", h.resolve)
}

type handlers struct{ svc domain.ServicePort }

// @Summary Shipment preview
// @Tags Lookup
// @Produce json
// @Param token path string true "Tracking number"
// @Success 200 {object} domain.Shipment "ok"
// @Failure 404 {object} httpkit.Envelope "not found"
// @Router /lookup/shipments/{token} [get]
func (h *handlers) shipment(r *stdhttp.Request) (any, error) {
	return h.svc.Shipment(r.Context(), httpkit.Param(r, "token"))
}

// @Summary Manifest preview
// @Tags Lookup
// @Produce json
// @Param token path string true "Manifest number"
// @Success 200 {object} domain.Manifest "ok"
// @Failure 404 {object} httpkit.Envelope "not found"
// @Router /lookup/manifests/{token} [get]
func (h *handlers) manifest(r *stdhttp.Request) (any, error) {
	return h.svc.Manifest(r.Context(), httpkit.Param(r, "token"))
}

// @Summary Classify a token and fetch its preview
// @Description Unknown tokens come back with class unknown and no record
// @Tags Lookup
// @Accept json
// @Produce json
// @Param payload body domain.ResolveInput true "Token"
// @Success 200 {object} domain.Preview "ok"
// @Router /lookup/resolve [post]
func (h *handlers) resolve(r *stdhttp.Request, in domain.ResolveInput) (any, error) {
	return h.svc.Resolve(r.Context(), in)
}

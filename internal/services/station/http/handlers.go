// Package http provides http transport for stations
package http

import (
	"context"
	stdhttp "net/http"
	"time"

	"scandesk/internal/modkit/httpkit"
	perr "scandesk/internal/platform/errors"
	"scandesk/internal/services/station/domain"
)

// Register mounts station endpoints on the given router
func Register(r httpkit.Router, s domain.ServicePort) {
	h := &handlers{svc: s}

	httpkit.PostJSON[domain.CreateInput](r, "/", h.create)
	httpkit.Get(r, "/", h.list)
	httpkit.Get(r, "/{id}", h.get)
	httpkit.Delete(r, "/{id}", h.close)

	httpkit.PostJSON[domain.KeyInput](r, "/{id}/keys", h.key)
	httpkit.PutJSON[domain.RouteInput](r, "/{id}/route", h.route)
	httpkit.PutJSON[domain.OwnershipInput](r, "/{id}/ownership", h.ownership)

	httpkit.Post(r, "/{id}/manual-scan", h.manualScan)
	httpkit.PostJSON[domain.ManualInput](r, "/{id}/manual-scan/submit", h.submitManual)
	httpkit.Delete(r, "/{id}/manual-scan", h.cancelManual)

	httpkit.PostJSON[domain.InjectInput](r, "/{id}/inject", h.inject)
	httpkit.Get(r, "/{id}/events", h.events)
}

type handlers struct{ svc domain.ServicePort }

// swagger:route POST /stations Stations stationCreate
// @Summary Open a scanning station
// @Tags Stations
// @Accept json
// @Produce json
// @Param payload body domain.CreateInput true "Station"
// @Success 201 {object} domain.StationView "created"
// @Failure 429 {object} httpkit.Envelope "station limit reached"
// @Router /stations [post]
func (h *handlers) create(r *stdhttp.Request, in domain.CreateInput) (any, error) {
	if uid, err := httpkit.User(r); err == nil {
		in.Operator = uid
	}
	v, err := h.svc.Create(r.Context(), in)
	if err != nil {
		return nil, err
	}
	return httpkit.Created(v), nil
}

// @Summary List open stations
// @Tags Stations
// @Produce json
// @Success 200 {array} domain.StationView "ok"
// @Router /stations [get]
func (h *handlers) list(r *stdhttp.Request) (any, error) {
	return h.svc.List(r.Context())
}

// @Summary Get a station
// @Tags Stations
// @Produce json
// @Param id path string true "Station id"
// @Success 200 {object} domain.StationView "ok"
// @Failure 404 {object} httpkit.Envelope "unknown station"
// @Router /stations/{id} [get]
func (h *handlers) get(r *stdhttp.Request) (any, error) {
	return h.svc.Get(r.Context(), httpkit.Param(r, "id"))
}

// @Summary Close a station
// @Description Cancels a pending manual scan and releases the classifier
// @Tags Stations
// @Param id path string true "Station id"
// @Success 204 "closed"
// @Router /stations/{id} [delete]
func (h *handlers) close(r *stdhttp.Request) (any, error) {
	if err := h.svc.Close(r.Context(), httpkit.Param(r, "id")); err != nil {
		return nil, err
	}
	return httpkit.NoContent(), nil
}

// @Summary Feed one key-down
// @Description Returns what the client should do with the original key event
// @Tags Stations
// @Accept json
// @Produce json
// @Param id path string true "Station id"
// @Param payload body domain.KeyInput true "Key event"
// @Success 200 {object} domain.VerdictView "ok"
// @Router /stations/{id}/keys [post]
func (h *handlers) key(r *stdhttp.Request, in domain.KeyInput) (any, error) {
	return h.svc.Key(r.Context(), httpkit.Param(r, "id"), in)
}

// @Summary Set the current route
// @Tags Stations
// @Accept json
// @Produce json
// @Param id path string true "Station id"
// @Param payload body domain.RouteInput true "Route"
// @Success 200 {object} domain.StationView "ok"
// @Router /stations/{id}/route [put]
func (h *handlers) route(r *stdhttp.Request, in domain.RouteInput) (any, error) {
	return h.svc.SetRoute(r.Context(), httpkit.Param(r, "id"), in)
}

// @Summary Set the scan owner
// @Tags Stations
// @Accept json
// @Produce json
// @Param id path string true "Station id"
// @Param payload body domain.OwnershipInput true "Ownership context"
// @Success 200 {object} domain.OwnershipView "ok"
// @Router /stations/{id}/ownership [put]
func (h *handlers) ownership(r *stdhttp.Request, in domain.OwnershipInput) (any, error) {
	return h.svc.SetOwnership(r.Context(), httpkit.Param(r, "id"), in)
}

// @Summary Wait for the next scan
// @Description Long poll; settles on a hardware scan, submitted text, cancel or timeout
// @Tags Manual scan
// @Produce json
// @Param id path string true "Station id"
// @Param timeout_ms query int false "Wait at most this long"
// @Success 200 {object} domain.ManualScanView "ok"
// @Failure 409 {object} httpkit.Envelope "a manual scan is already pending"
// @Failure 499 {object} httpkit.Envelope "canceled"
// @Failure 503 {object} httpkit.Envelope "timed out"
// @Router /stations/{id}/manual-scan [post]
func (h *handlers) manualScan(r *stdhttp.Request) (any, error) {
	ms, err := httpkit.QueryInt(r, "timeout_ms", 0)
	if err != nil {
		return nil, err
	}
	if ms < 0 {
		return nil, perr.WithField(perr.InvalidArgf("timeout_ms must not be negative"), "timeout_ms")
	}
	ctx := r.Context()
	if ms > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(ms)*time.Millisecond)
		defer cancel()
	}
	return h.svc.ManualScan(ctx, httpkit.Param(r, "id"))
}

// @Summary Submit operator text to the pending manual scan
// @Tags Manual scan
// @Accept json
// @Param id path string true "Station id"
// @Param payload body domain.ManualInput true "Text"
// @Success 204 "submitted"
// @Failure 404 {object} httpkit.Envelope "nothing pending"
// @Router /stations/{id}/manual-scan/submit [post]
func (h *handlers) submitManual(r *stdhttp.Request, in domain.ManualInput) (any, error) {
	if err := h.svc.SubmitManual(r.Context(), httpkit.Param(r, "id"), in); err != nil {
		return nil, err
	}
	return httpkit.NoContent(), nil
}

// @Summary Cancel the pending manual scan
// @Tags Manual scan
// @Produce json
// @Param id path string true "Station id"
// @Success 200 {object} domain.CancelView "ok"
// @Router /stations/{id}/manual-scan [delete]
func (h *handlers) cancelManual(r *stdhttp.Request) (any, error) {
	return h.svc.CancelManual(r.Context(), httpkit.Param(r, "id"))
}

// @Summary Broadcast a token
// @Tags Stations
// @Accept json
// @Produce json
// @Param id path string true "Station id"
// @Param payload body domain.InjectInput true "Token"
// @Success 200 {object} domain.InjectView "ok"
// @Router /stations/{id}/inject [post]
func (h *handlers) inject(r *stdhttp.Request, in domain.InjectInput) (any, error) {
	return h.svc.Inject(r.Context(), httpkit.Param(r, "id"), in)
}

// @Summary Poll station events
// @Tags Stations
// @Produce json
// @Param id path string true "Station id"
// @Param after query int false "Return events after this sequence number"
// @Param limit query int false "Page size, 100 by default"
// @Success 200 {object} domain.FeedPage "ok"
// @Router /stations/{id}/events [get]
func (h *handlers) events(r *stdhttp.Request) (any, error) {
	after, err := httpkit.QueryUint64(r, "after", 0)
	if err != nil {
		return nil, err
	}
	limit, err := httpkit.QueryInt(r, "limit", 0)
	if err != nil {
		return nil, err
	}
	return h.svc.Events(r.Context(), httpkit.Param(r, "id"), domain.FeedQuery{After: after, Limit: limit})
}

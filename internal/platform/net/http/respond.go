// Package http is the transport seam modules mount on: a chi backed Router,
// return-style handlers and the JSON envelope around every response.
package http

import (
	"encoding/json"
	"net/http"

	perr "scandesk/internal/platform/errors"
	pnet "scandesk/internal/platform/net"
)

// Envelope wraps every JSON response. Data is set on success, Code and Error
// on failure.
type Envelope struct {
	StatusCode int            `json:"status_code"`
	Status     string         `json:"status"`
	Code       perr.ErrorCode `json:"code,omitempty"`
	Error      string         `json:"error,omitempty"`
	RequestID  string         `json:"request_id,omitempty"`
	Data       any            `json:"data,omitempty"`
}

// JSON writes v as the response body.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Response is the result of a return-style handler. An error Body picks its
// own status.
type Response struct {
	Status int
	Body   any
}

func OK(data any) Response      { return Response{Status: http.StatusOK, Body: data} }
func Created(data any) Response { return Response{Status: http.StatusCreated, Body: data} }
func NoContent() Response       { return Response{Status: http.StatusNoContent} }
func Error(err error) Response  { return Response{Body: err} }

// Handle adapts a return-style handler.
func Handle(h func(*http.Request) Response) Handler {
	return func(w http.ResponseWriter, r *http.Request) { h(r).writeTo(w, r) }
}

func (resp Response) writeTo(w http.ResponseWriter, r *http.Request) {
	if resp.Status == http.StatusNoContent {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	env := Envelope{StatusCode: resp.Status, RequestID: pnet.RequestID(r.Context())}
	if err, ok := resp.Body.(error); ok && err != nil {
		wire := perr.WireFrom(err)
		env.StatusCode, env.Code, env.Error = perr.HTTPStatus(err), wire.Code, wire.Message
	} else {
		env.Data = resp.Body
	}
	if env.StatusCode == 0 {
		env.StatusCode = http.StatusOK
	}
	env.Status = http.StatusText(env.StatusCode)
	JSON(w, env.StatusCode, env)
}

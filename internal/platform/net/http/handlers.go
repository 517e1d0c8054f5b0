package http

import (
	"net/http"

	"scandesk/internal/platform/net/http/bind"
)

// Bind adapts fn to a handler that decodes and validates a JSON body into T
// before calling it.
func Bind[T any](fn func(*http.Request, T) (any, error)) Handler {
	return Handle(func(r *http.Request) Response {
		in, err := bind.ParseJSON[T](r)
		if err != nil {
			return Error(err)
		}
		return reply(fn(r, in))
	})
}

// Call adapts fn to a handler that never reads the request body.
func Call(fn func(*http.Request) (any, error)) Handler {
	return Handle(func(r *http.Request) Response { return reply(fn(r)) })
}

// reply passes a ready Response through so handlers can choose 201 or 204.
func reply(out any, err error) Response {
	if err != nil {
		return Error(err)
	}
	if resp, ok := out.(Response); ok {
		return resp
	}
	return OK(out)
}

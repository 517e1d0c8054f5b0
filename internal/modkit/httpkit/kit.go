// Package httpkit is what service modules import to mount routes. It keeps
// them off the platform http package.
package httpkit

import (
	"net/http"

	phttp "scandesk/internal/platform/net/http"
)

type (
	Router   = phttp.Router
	Envelope = phttp.Envelope
)

// Get, Post and Delete mount handlers that take no body.
func Get(r Router, path string, h func(*http.Request) (any, error)) {
	r.Get(path, phttp.Call(h))
}

func Post(r Router, path string, h func(*http.Request) (any, error)) {
	r.Post(path, phttp.Call(h))
}

func Delete(r Router, path string, h func(*http.Request) (any, error)) {
	r.Delete(path, phttp.Call(h))
}

// PostJSON and PutJSON decode and validate a T body before calling h.
func PostJSON[T any](r Router, path string, h func(*http.Request, T) (any, error)) {
	r.Post(path, phttp.Bind(h))
}

func PutJSON[T any](r Router, path string, h func(*http.Request, T) (any, error)) {
	r.Put(path, phttp.Bind(h))
}

// Created and NoContent let a handler pick its success status.
func Created(data any) phttp.Response { return phttp.Created(data) }
func NoContent() phttp.Response       { return phttp.NoContent() }

func Param(r *http.Request, name string) string { return phttp.Param(r, name) }

func QueryInt(r *http.Request, name string, def int) (int, error) {
	return phttp.QueryInt(r, name, def)
}

func QueryUint64(r *http.Request, name string, def uint64) (uint64, error) {
	return phttp.QueryUint64(r, name, def)
}

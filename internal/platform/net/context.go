// Package net provides utilities for working with request contexts
package net

import (
	"context"

	chimw "github.com/go-chi/chi/v5/middleware"
)

type ctxKey string

const keyOperator ctxKey = "operator"

// WithRequest sets the chi request id so chimw.GetReqID can find it
func WithRequest(ctx context.Context, reqID string) context.Context {
	if reqID == "" {
		return ctx
	}
	return context.WithValue(ctx, chimw.RequestIDKey, reqID)
}

// WithUser annotates context with the authenticated operator
func WithUser(ctx context.Context, operator string) context.Context {
	if operator != "" {
		ctx = context.WithValue(ctx, keyOperator, operator)
	}
	return ctx
}

// RequestID returns the request id on the context if present
func RequestID(ctx context.Context) string {
	return chimw.GetReqID(ctx)
}

// UserID returns the authenticated operator on the context if present
func UserID(ctx context.Context) string {
	if v, ok := ctx.Value(keyOperator).(string); ok {
		return v
	}
	return ""
}

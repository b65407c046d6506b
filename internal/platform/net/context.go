// Package net holds shared request-scoped context helpers for the transport layer
package net

import "context"

type ctxKey uint8

const requestIDKey ctxKey = iota

// WithRequestID stashes the request id on the context
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestID returns the request id from ctx or empty
func RequestID(ctx context.Context) string {
	if v := ctx.Value(requestIDKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

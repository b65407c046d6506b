// Package middleware holds adapters and in house middlewares
package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"tubewatch/internal/platform/logger"
	lumnet "tubewatch/internal/platform/net"
)

// RequestIDHeader is the inbound/outbound header carrying the request id
const RequestIDHeader = "X-Request-Id"

// RequestID assigns a request id (honoring an inbound header) and stashes it
// on the context for the logger and response envelope
func RequestID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(RequestIDHeader)
			if id == "" {
				id = uuid.NewString()
			}
			ctx := lumnet.WithRequestID(r.Context(), id)
			ctx = logger.WithRequest(ctx, id)
			w.Header().Set(RequestIDHeader, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

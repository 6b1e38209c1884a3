// Package requesttime pins one "now" per HTTP request so the enrollment date,
// audit timestamps and log lines of a request agree.
package requesttime

import (
	"net/http"
	"time"

	"benefits-bff/pkg/requestcontext"
)

// Clock is the time source; tests override it.
type Clock func() time.Time

// Middleware stores the request time in the context using time.Now.
func Middleware(next http.Handler) http.Handler {
	return WithClock(time.Now)(next)
}

// WithClock is Middleware with an explicit clock.
func WithClock(clock Clock) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := requestcontext.WithTime(r.Context(), clock().UTC())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

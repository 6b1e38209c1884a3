package httpserver

import (
	"net/http"
	"time"
)

// New builds an HTTP server with timeouts suitable for a JSON BFF.
// The per-request deadline is enforced by middleware; WriteTimeout sits above it.
func New(addr string, handler http.Handler, requestTimeout time.Duration) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      requestTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

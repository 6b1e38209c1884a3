// Package metadata records who is calling: client IP, User-Agent and the
// calling application label used by the status endpoint.
package metadata

import (
	"net/http"
	"strings"

	"github.com/mssola/useragent"

	"benefits-bff/pkg/requestcontext"
)

// ClientAppHeader names the calling front end (web portal, mobile app, ...).
const ClientAppHeader = "X-Client-App"

// ClientMetadata extracts client IP, User-Agent and client app from the
// request and stores them in the context. Apply it early in the chain.
func ClientMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userAgent := r.Header.Get("User-Agent")

		ctx := requestcontext.WithClientMetadata(r.Context(), ClientIPFromRequest(r), userAgent)
		ctx = requestcontext.WithClientApp(ctx, ClientAppFromRequest(r))

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ClientAppFromRequest returns X-Client-App when present. Otherwise it derives
// a label from the User-Agent ("Chrome/Linux", "Bot:Googlebot"), or "" when
// there is nothing to go on.
func ClientAppFromRequest(r *http.Request) string {
	if app := strings.TrimSpace(r.Header.Get(ClientAppHeader)); app != "" {
		return app
	}
	raw := strings.TrimSpace(r.Header.Get("User-Agent"))
	if raw == "" {
		return ""
	}
	ua := useragent.New(raw)
	name, _ := ua.Browser()
	if ua.Bot() {
		return "Bot:" + name
	}
	if os := ua.OS(); os != "" && name != "" {
		return name + "/" + os
	}
	if name != "" {
		return name
	}
	return raw
}

// ClientIPFromRequest extracts the real client IP, honouring proxy headers.
func ClientIPFromRequest(r *http.Request) string {
	// first entry of X-Forwarded-For is the original client
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	// RemoteAddr is ip:port, or [::1]:port for IPv6
	if addr := r.RemoteAddr; addr != "" {
		if idx := strings.LastIndex(addr, ":"); idx != -1 {
			return addr[:idx]
		}
		return addr
	}
	return "unknown"
}

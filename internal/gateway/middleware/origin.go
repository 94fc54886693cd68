package middleware

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"issuescout/internal/apperr"
	"issuescout/internal/gateway/respond"
)

func isLocalHost(host string) bool {
	return strings.HasPrefix(host, "localhost") || strings.HasPrefix(host, "127.0.0.1")
}

// OriginAllowed reports whether r may call a browser-facing endpoint.
// Requests to a local development host always pass. Otherwise the Origin
// header is required and must either name the host that was called or equal
// webOrigin.
func OriginAllowed(r *http.Request, webOrigin string) bool {
	if isLocalHost(r.Host) {
		return true
	}
	origin := strings.TrimSpace(r.Header.Get("Origin"))
	if origin == "" {
		return false
	}
	if webOrigin != "" && strings.TrimRight(origin, "/") == strings.TrimRight(webOrigin, "/") {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return false
	}
	return strings.EqualFold(u.Host, r.Host)
}

// SameOrigin rejects requests that fail OriginAllowed with 403.
func SameOrigin(webOrigin string, logger *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !OriginAllowed(r, webOrigin) {
				respond.Error(w, r, logger, &apperr.ForbiddenError{})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

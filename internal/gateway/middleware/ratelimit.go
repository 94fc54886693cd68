package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"strings"

	"issuescout/internal/apperr"
	"issuescout/internal/gateway/respond"
	"issuescout/internal/logging"
	"issuescout/internal/ratelimit"
)

// ClientIP identifies the caller: X-Real-IP, then the first X-Forwarded-For
// entry, then the connection's remote address.
func ClientIP(r *http.Request) string {
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// RateLimit counts each request against l by client IP and answers 429 with
// Retry-After once the window is exhausted. A store failure lets the request
// through.
func RateLimit(l *ratelimit.Limiter, logger *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			d, err := l.Allow(r.Context(), ClientIP(r))
			if err != nil {
				logging.FromContext(r.Context(), logger).Warn("rate limit check failed", "error", err)
				next.ServeHTTP(w, r)
				return
			}
			if !d.Allowed {
				respond.Error(w, r, logger, &apperr.RateLimitedError{RetryAfter: d.RetryAfter})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

package server

import (
	"log/slog"
	"net/http"

	"issuescout/internal/gateway/handler"
	"issuescout/internal/gateway/middleware"
	"issuescout/internal/logging"
	"issuescout/internal/ratelimit"
)

// Routes carries the per-route policy for NewMux.
type Routes struct {
	WebOrigin      string
	SummaryLimiter *ratelimit.Limiter
	SearchLimiter  *ratelimit.Limiter
	Logger         *slog.Logger
}

func NewMux(h *handler.Handler, rt Routes) http.Handler {
	if rt.Logger == nil {
		rt.Logger = logging.Discard()
	}
	mux := http.NewServeMux()

	browser := func(l *ratelimit.Limiter, fn http.HandlerFunc) http.Handler {
		mws := []middleware.Middleware{middleware.SameOrigin(rt.WebOrigin, rt.Logger)}
		if l != nil {
			mws = append(mws, middleware.RateLimit(l, rt.Logger))
		}
		return middleware.Chain(fn, mws...)
	}

	mux.HandleFunc("GET /issues", h.Issues)
	mux.Handle("GET /issues-summary", browser(rt.SummaryLimiter, h.Summary))
	mux.Handle("GET /search-repos", browser(rt.SearchLimiter, h.Search))
	mux.HandleFunc("GET /healthz", h.Health)

	return middleware.Chain(mux, middleware.RequestLog(rt.Logger), middleware.CORS)
}

package llmclient

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"issuescout/internal/logging"
)

// Middleware decorates a Completer with a cross-cutting concern.
type Middleware func(Completer) Completer

// Wrap applies middlewares in left-to-right order.
// Example: Wrap(inner, A, B) => A(B(inner))
func Wrap(inner Completer, mws ...Middleware) Completer {
	out := inner
	for i := len(mws) - 1; i >= 0; i-- {
		out = mws[i](out)
	}
	return out
}

// WithLogging logs prompt size, latency and failures. A nil logger falls
// back to the request logger carried by the context.
func WithLogging(logger *slog.Logger) Middleware {
	return func(next Completer) Completer {
		return &loggingCompleter{next: next, log: logger}
	}
}

type loggingCompleter struct {
	next Completer
	log  *slog.Logger
}

func (l *loggingCompleter) Name() string { return l.next.Name() }
func (l *loggingCompleter) Ready() error { return l.next.Ready() }

func (l *loggingCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	log := logging.FromContext(ctx, l.log)
	start := time.Now()
	log.Debug("completion request", "model", l.next.Name(), "prompt_bytes", len(prompt))
	out, err := l.next.Complete(ctx, prompt)
	if err != nil {
		log.Warn("completion failed", "model", l.next.Name(), "duration", time.Since(start), "context_too_large", IsContextTooLarge(err), "error", err)
		return out, err
	}
	log.Info("completion done", "model", l.next.Name(), "duration", time.Since(start), "summary_bytes", len(out))
	return out, nil
}

// WithRateLimit paces completion calls to rps per second across all
// requests sharing the returned Completer. rps <= 0 disables pacing.
func WithRateLimit(rps float64, burst int) Middleware {
	return func(next Completer) Completer {
		if rps <= 0 {
			return next
		}
		if burst <= 0 {
			burst = 1
		}
		return &pacedCompleter{next: next, lim: rate.NewLimiter(rate.Limit(rps), burst)}
	}
}

type pacedCompleter struct {
	next Completer
	lim  *rate.Limiter
}

func (p *pacedCompleter) Name() string { return p.next.Name() }
func (p *pacedCompleter) Ready() error { return p.next.Ready() }

func (p *pacedCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	if err := p.lim.Wait(ctx); err != nil {
		return "", err
	}
	return p.next.Complete(ctx, prompt)
}

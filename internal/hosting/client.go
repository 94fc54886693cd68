// Package hosting talks to the GitHub REST API: open issues, their recent
// comments, repository file snippets and repository search.
package hosting

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v72/github"

	"issuescout/internal/apperr"
	"issuescout/internal/logging"
)

const serviceName = "GitHub"

// Options configures a Client. Zero values select public GitHub without a
// token, no pacing, a 30s per-call deadline and 10 comment workers.
type Options struct {
	Token              string
	BaseURL            string
	RPS                float64
	Timeout            time.Duration
	CommentConcurrency int
	HTTPClient         *http.Client
	Logger             *slog.Logger
}

type Client struct {
	gh             *github.Client
	logger         *slog.Logger
	timeout        time.Duration
	commentWorkers int
}

func NewClient(opts Options) (*Client, error) {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	paced := *httpClient
	paced.Transport = newPacedTransport(httpClient.Transport, opts.RPS, 1)

	gh := github.NewClient(&paced)
	if token := strings.TrimSpace(opts.Token); token != "" {
		gh = gh.WithAuthToken(token)
	}
	if base := strings.TrimSpace(opts.BaseURL); base != "" {
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		u, err := url.Parse(base)
		if err != nil {
			return nil, fmt.Errorf("parse github base url %q: %w", base, err)
		}
		gh.BaseURL = u
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	workers := opts.CommentConcurrency
	if workers <= 0 {
		workers = 10
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	return &Client{
		gh:             gh,
		logger:         logger,
		timeout:        timeout,
		commentWorkers: workers,
	}, nil
}

// callContext bounds a single upstream call.
func (c *Client) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, c.timeout)
}

// upstreamError converts a go-github failure into an apperr.UpstreamError
// carrying the HTTP status when one was received.
func upstreamError(resp *github.Response, err error) error {
	status := 0
	if resp != nil && resp.Response != nil {
		status = resp.StatusCode
	}
	if status == 0 {
		var errResp *github.ErrorResponse
		if errors.As(err, &errResp) && errResp.Response != nil {
			status = errResp.Response.StatusCode
		}
	}
	if status == 0 {
		msg := "request failed"
		if errors.Is(err, context.DeadlineExceeded) {
			status = http.StatusGatewayTimeout
			msg = "request timed out"
		}
		return &apperr.UpstreamError{Service: serviceName, Status: status, Message: msg, Err: err}
	}
	return &apperr.UpstreamError{Service: serviceName, Status: status, Err: err}
}

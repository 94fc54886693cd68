package hosting

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"issuescout/internal/apperr"
)

// ProxyLister lists issues through a gateway's /issues endpoint instead of
// calling GitHub directly. BaseURL comes from configuration, never from a
// request.
type ProxyLister struct {
	HTTP    *http.Client
	BaseURL string
	Timeout time.Duration
}

// NewProxyLister targets the /issues endpoint under baseURL, which must be an
// absolute http or https URL.
func NewProxyLister(baseURL string, httpClient *http.Client, timeout time.Duration) (*ProxyLister, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, fmt.Errorf("invalid issues proxy url %q", baseURL)
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &ProxyLister{HTTP: httpClient, BaseURL: strings.TrimRight(u.String(), "/"), Timeout: timeout}, nil
}

type issuesEnvelope struct {
	Issues []Issue `json:"issues"`
	Error  string  `json:"error"`
}

func (p *ProxyLister) ListOpenIssues(ctx context.Context, owner, repo string) ([]Issue, error) {
	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}
	q := url.Values{}
	q.Set("owner", owner)
	q.Set("repo", repo)
	endpoint := strings.TrimRight(p.BaseURL, "/") + "/issues?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build issues request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.HTTP.Do(req)
	if err != nil {
		return nil, &apperr.UpstreamError{Service: serviceName, Message: "request failed", Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &apperr.UpstreamError{Service: serviceName, Status: resp.StatusCode}
	}
	var env issuesEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("decode issues response: %w", err)
	}
	for i := range env.Issues {
		if env.Issues[i].Comments == nil {
			env.Issues[i].Comments = []Comment{}
		}
	}
	return env.Issues, nil
}

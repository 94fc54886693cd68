package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"issuescout/internal/gateway/handler"
	"issuescout/internal/hosting"
	"issuescout/internal/hosting/hostingtest"
	llmclient "issuescout/internal/llmClient"
	"issuescout/internal/logging"
	"issuescout/internal/ratelimit"
	"issuescout/internal/summary"
)

type gateway struct {
	mux    http.Handler
	github *hostingtest.GitHub

	mu     sync.Mutex
	prompt string
}

func (g *gateway) lastPrompt() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.prompt
}

func helloWorld() *hostingtest.GitHub {
	return &hostingtest.GitHub{
		IssuePages: [][]hostingtest.Issue{{
			{ID: 1, Number: 1, Title: "Add dark mode", Body: "Please", State: "open", HTMLURL: "https://github.com/octocat/hello-world/issues/1", User: hostingtest.User{Login: "mona"}},
			{ID: 2, Number: 2, Title: "Crash", Body: "Trace", State: "open", HTMLURL: "https://github.com/octocat/hello-world/issues/2", User: hostingtest.User{Login: "hubot"}},
			hostingtest.PullRequest(3),
		}},
		Comments: map[int][]hostingtest.Comment{
			1: {{Body: "+1", HTMLURL: "https://github.com/octocat/hello-world/issues/1#c", User: hostingtest.User{Login: "octocat"}}},
		},
		Files:       []hostingtest.File{{Path: "README.md", Content: "Hello World!"}},
		SearchPages: [][]hostingtest.Repo{hostingtest.RepoPage(1, 3)},
	}
}

// newGateway wires the real hosting, summary and completion clients against
// in-process fakes. completionStatus/completionBody describe the model reply.
func newGateway(t *testing.T, gh *hostingtest.GitHub, completionStatus int, completionBody string, summaryLimit int) *gateway {
	t.Helper()
	g := &gateway{github: hostingtest.Start(t, gh)}

	model := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Messages []struct {
				Content string `json:"content"`
			} `json:"messages"`
		}
		if assert.NoError(t, json.NewDecoder(r.Body).Decode(&req)) && len(req.Messages) > 0 {
			g.mu.Lock()
			g.prompt = req.Messages[0].Content
			g.mu.Unlock()
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(completionStatus)
		_, _ = w.Write([]byte(completionBody))
	}))
	t.Cleanup(model.Close)

	client, err := hosting.NewClient(hosting.Options{BaseURL: g.github.URL(), Timeout: 5 * time.Second})
	require.NoError(t, err)
	completer, err := llmclient.New(llmclient.Config{Provider: "openai", OpenAIKey: "sk-test", OpenAIBaseURL: model.URL, Temperature: 0.7}, logging.Discard())
	require.NoError(t, err)
	svc := summary.New(summary.Deps{Issues: client, Comments: client, Snippets: client, Completer: completer})

	store := ratelimit.NewMemoryStore(100, time.Hour)
	g.mux = NewMux(handler.New(client, client, svc, logging.Discard()), Routes{
		SummaryLimiter: ratelimit.NewLimiter("summary", store, summaryLimit, time.Hour),
		SearchLimiter:  ratelimit.NewLimiter("search", store, 30, time.Minute),
		Logger:         logging.Discard(),
	})
	return g
}

func (g *gateway) get(t *testing.T, target, host string, header map[string]string) (*httptest.ResponseRecorder, map[string]json.RawMessage) {
	t.Helper()
	r := httptest.NewRequest(http.MethodGet, target, nil)
	r.Host = host
	for k, v := range header {
		r.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	g.mux.ServeHTTP(rec, r)
	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return rec, body
}

func errorText(t *testing.T, body map[string]json.RawMessage) string {
	t.Helper()
	var s string
	require.NoError(t, json.Unmarshal(body["error"], &s))
	return s
}

const okCompletion = `{"choices":[{"message":{"role":"assistant","content":"Start with issue 2."}}]}`

func TestIssuesSummaryEndToEnd(t *testing.T) {
	g := newGateway(t, helloWorld(), http.StatusOK, okCompletion, 60)

	rec, body := g.get(t, "/issues-summary?owner=octocat&repo=hello-world", "localhost:8081", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var text string
	require.NoError(t, json.Unmarshal(body["summary"], &text))
	assert.Equal(t, "Start with issue 2.", text)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	prompt := g.lastPrompt()
	assert.Contains(t, prompt, "Add dark mode")
	assert.Contains(t, prompt, "--- FILE: README.md ---")
	assert.NotContains(t, prompt, "PR 3")
}

func TestIssuesSummaryContextTooLarge(t *testing.T) {
	g := newGateway(t, helloWorld(), http.StatusBadRequest,
		`{"error":{"message":"This model's maximum context length is 4097 tokens.","type":"invalid_request_error"}}`, 60)

	rec, body := g.get(t, "/issues-summary?owner=octocat&repo=hello-world", "localhost:8081", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.True(t, strings.HasPrefix(errorText(t, body), "The repository is too large or complex"))
}

func TestIssuesSummaryUpstreamPassthrough(t *testing.T) {
	g := newGateway(t, helloWorld(), http.StatusUnauthorized, `{"error":{"message":"Incorrect API key provided"}}`, 60)

	rec, body := g.get(t, "/issues-summary?owner=octocat&repo=hello-world", "localhost:8081", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "OpenAI API error: Incorrect API key provided", errorText(t, body))
}

func TestIssuesSummaryPolicies(t *testing.T) {
	g := newGateway(t, helloWorld(), http.StatusOK, okCompletion, 1)

	rec, body := g.get(t, "/issues-summary?owner=octocat&repo=hello-world", "api.example.com", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Forbidden", errorText(t, body))

	same := map[string]string{"Origin": "https://api.example.com", "X-Real-IP": "203.0.113.5"}
	rec, body = g.get(t, "/issues-summary?owner=octocat", "api.example.com", same)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "owner and repo are required", errorText(t, body))

	rec, _ = g.get(t, "/issues-summary?owner=octocat&repo=hello-world", "api.example.com", same)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "3600", rec.Header().Get("Retry-After"))
}

func TestIssuesEndpoint(t *testing.T) {
	g := newGateway(t, helloWorld(), http.StatusOK, okCompletion, 60)

	rec, body := g.get(t, "/issues?owner=octocat&repo=hello-world", "api.example.com", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var issues []hosting.Issue
	require.NoError(t, json.Unmarshal(body["issues"], &issues))
	require.Len(t, issues, 2)
	assert.Equal(t, "mona", issues[0].Author)
	assert.Empty(t, issues[0].Comments)
	assert.Zero(t, g.github.Hits("comments"))
}

func TestIssuesEndpointUpstreamStatus(t *testing.T) {
	gh := helloWorld()
	gh.IssueStatus = http.StatusNotFound
	g := newGateway(t, gh, http.StatusOK, okCompletion, 60)

	rec, body := g.get(t, "/issues?owner=octocat&repo=missing", "localhost", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "GitHub API error: 404", errorText(t, body))
}

func TestSearchReposEndpoint(t *testing.T) {
	g := newGateway(t, helloWorld(), http.StatusOK, okCompletion, 60)

	rec, body := g.get(t, "/search-repos?terms=hello+world", "localhost:8081", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var repos []hosting.Repo
	require.NoError(t, json.Unmarshal(body["repos"], &repos))
	require.Len(t, repos, 3)
	assert.Equal(t, "octocat/repo-1", repos[0].Name)
	assert.Equal(t, 1, g.github.Hits("search"))

	rec, body = g.get(t, "/search-repos?terms=", "localhost:8081", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "terms query param required", errorText(t, body))
}

func TestHealthz(t *testing.T) {
	g := newGateway(t, helloWorld(), http.StatusOK, okCompletion, 60)
	rec, _ := g.get(t, "/healthz", "api.example.com", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

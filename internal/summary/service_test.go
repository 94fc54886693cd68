package summary

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"issuescout/internal/apperr"
	"issuescout/internal/hosting"
	"issuescout/internal/hosting/hostingtest"
)

type fakeCompleter struct {
	mu      sync.Mutex
	out     string
	err     error
	ready   error
	prompts []string
}

func (f *fakeCompleter) Name() string { return "fake" }
func (f *fakeCompleter) Ready() error { return f.ready }
func (f *fakeCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	return f.out, f.err
}

type stubIssues struct {
	issues []hosting.Issue
	err    error
	calls  int
}

func (s *stubIssues) ListOpenIssues(ctx context.Context, owner, repo string) ([]hosting.Issue, error) {
	s.calls++
	return s.issues, s.err
}

type stubComments struct{}

func (stubComments) EnrichComments(ctx context.Context, owner, repo string, issues []hosting.Issue) {
	for i := range issues {
		issues[i].Comments = []hosting.Comment{{Author: "hubot", Body: "+1", URL: "c"}}
	}
}

type stubSnippets struct{ out []hosting.FileSnippet }

func (s stubSnippets) CollectSnippets(ctx context.Context, owner, repo string) []hosting.FileSnippet {
	return s.out
}

func newStubService(issues *stubIssues, completer *fakeCompleter) *Service {
	return New(Deps{
		Issues:    issues,
		Comments:  stubComments{},
		Snippets:  stubSnippets{out: []hosting.FileSnippet{{Path: "README.md", Content: "readme"}}},
		Completer: completer,
	})
}

func TestSummarize(t *testing.T) {
	completer := &fakeCompleter{out: "fixed summary"}
	issues := &stubIssues{issues: makeIssues(2, "b", "")}
	out, err := newStubService(issues, completer).Summarize(context.Background(), Request{Owner: "octocat", Repo: "hello-world"})
	require.NoError(t, err)
	assert.Equal(t, "fixed summary", out)
	require.Len(t, completer.prompts, 1)
	assert.Contains(t, completer.prompts[0], `"author": "hubot"`)
	assert.Contains(t, completer.prompts[0], "--- FILE: README.md ---")
}

func TestSummarize_Validation(t *testing.T) {
	issues := &stubIssues{}
	_, err := newStubService(issues, &fakeCompleter{}).Summarize(context.Background(), Request{Owner: "octocat"})
	assert.Equal(t, http.StatusBadRequest, apperr.Status(err))
	assert.Zero(t, issues.calls)
}

func TestSummarize_MissingCredentialBeforeFetching(t *testing.T) {
	issues := &stubIssues{}
	completer := &fakeCompleter{ready: &apperr.ConfigurationError{Setting: "OPENAI_API_KEY"}}
	_, err := newStubService(issues, completer).Summarize(context.Background(), Request{Owner: "o", Repo: "r"})
	assert.Equal(t, http.StatusInternalServerError, apperr.Status(err))
	assert.Equal(t, "Missing OPENAI_API_KEY env var", apperr.PublicMessage(err))
	assert.Zero(t, issues.calls)
}

func TestSummarize_IssueFailurePropagates(t *testing.T) {
	issues := &stubIssues{err: &apperr.UpstreamError{Service: "GitHub", Status: http.StatusNotFound}}
	completer := &fakeCompleter{}
	_, err := newStubService(issues, completer).Summarize(context.Background(), Request{Owner: "o", Repo: "r"})
	assert.Equal(t, http.StatusNotFound, apperr.Status(err))
	assert.Empty(t, completer.prompts)
}

func TestSummarize_CompletionErrorPassesThrough(t *testing.T) {
	tooLarge := &apperr.ContextTooLargeError{Upstream: &apperr.UpstreamError{Service: "OpenAI", Status: 400, Message: "maximum context length"}}
	completer := &fakeCompleter{err: tooLarge}
	_, err := newStubService(&stubIssues{}, completer).Summarize(context.Background(), Request{Owner: "o", Repo: "r"})
	assert.True(t, errors.Is(err, tooLarge))
}

func TestBuildPrompt_EndToEndAgainstFakeGitHub(t *testing.T) {
	readme := strings.Repeat("Hello World! ", 16)[:200]
	fake := hostingtest.Start(t, &hostingtest.GitHub{
		IssuePages: [][]hostingtest.Issue{{
			{ID: 1, Number: 1, Title: "Add dark mode", Body: "Please add dark mode", State: "open", HTMLURL: "https://github.com/octocat/hello-world/issues/1", User: hostingtest.User{Login: "mona"}},
			{ID: 2, Number: 2, Title: "Crash on empty input", Body: "Stack trace attached", State: "open", HTMLURL: "https://github.com/octocat/hello-world/issues/2", User: hostingtest.User{Login: "hubot"}},
		}},
		Comments: map[int][]hostingtest.Comment{
			2: {{Body: "Confirmed on main", HTMLURL: "https://github.com/octocat/hello-world/issues/2#c1", User: hostingtest.User{Login: "octocat"}}},
		},
		Files: []hostingtest.File{
			{Path: ".gitignore", Content: "bin/"},
			{Path: "main.go", Content: "package main"},
			{Path: "README.md", Content: readme},
			{Path: "src/app.go", Content: "package app"},
			{Path: "LICENSE", Content: "MIT"},
		},
	})
	gh, err := hosting.NewClient(hosting.Options{BaseURL: fake.URL()})
	require.NoError(t, err)

	svc := New(Deps{Issues: gh, Comments: gh, Snippets: gh, Completer: &fakeCompleter{out: "ok"}})
	prompt, bundle, err := svc.BuildPrompt(context.Background(), Request{Owner: "octocat", Repo: "hello-world"})
	require.NoError(t, err)

	assert.Contains(t, prompt, "Add dark mode")
	assert.Contains(t, prompt, "Crash on empty input")
	assert.Contains(t, prompt, "Confirmed on main")
	assert.Contains(t, prompt, "--- FILE: README.md ---\n"+readme+"\n")
	assert.True(t, strings.Index(prompt, "README.md") < strings.Index(prompt, "src/app.go"))
	require.Len(t, bundle.Issues, 2)
	assert.Empty(t, bundle.Issues[0].Comments)
	assert.Len(t, bundle.Issues[1].Comments, 1)
}

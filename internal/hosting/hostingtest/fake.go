// Package hostingtest provides an in-process stand-in for the GitHub REST
// endpoints the hosting client uses.
package hostingtest

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
)

type Issue struct {
	ID          int64  `json:"id"`
	Number      int    `json:"number"`
	Title       string `json:"title"`
	Body        string `json:"body"`
	State       string `json:"state"`
	HTMLURL     string `json:"html_url"`
	User        User   `json:"user"`
	PullRequest *struct {
		URL string `json:"url"`
	} `json:"pull_request,omitempty"`
}

type User struct {
	Login string `json:"login"`
}

type Comment struct {
	Body    string `json:"body"`
	HTMLURL string `json:"html_url"`
	User    User   `json:"user"`
}

type File struct {
	Path    string
	Type    string // "blob" when empty
	Size    int    // len(Content) when zero
	Content string
}

type Repo struct {
	ID              int64  `json:"id"`
	FullName        string `json:"full_name"`
	HTMLURL         string `json:"html_url"`
	Description     string `json:"description"`
	StargazersCount int    `json:"stargazers_count"`
	Language        string `json:"language"`
}

// GitHub serves canned issue, comment, tree, blob and search responses and
// counts the requests it receives per endpoint.
type GitHub struct {
	// IssuePages[i] is served for page=i+1; later pages are empty.
	IssuePages [][]Issue
	// IssueStatus, when set, fails every issue listing request.
	IssueStatus int
	Comments    map[int][]Comment
	// FailComments makes the comment listing of these issue numbers fail.
	FailComments map[int]bool
	Files        []File
	FailTree     bool
	FailBlobs    map[string]bool
	SearchPages  [][]Repo
	SearchStatus int

	mu      sync.Mutex
	hits    map[string]int
	queries map[string][]string

	srv *httptest.Server
}

// Start serves g until the test ends.
func Start(t testing.TB, g *GitHub) *GitHub {
	t.Helper()
	g.hits = map[string]int{}
	g.queries = map[string][]string{}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/{owner}/{repo}/issues", g.handleIssues)
	mux.HandleFunc("GET /repos/{owner}/{repo}/issues/{number}/comments", g.handleComments)
	mux.HandleFunc("GET /repos/{owner}/{repo}/git/trees/{sha}", g.handleTree)
	mux.HandleFunc("GET /repos/{owner}/{repo}/git/blobs/{sha}", g.handleBlob)
	mux.HandleFunc("GET /search/repositories", g.handleSearch)
	g.srv = httptest.NewServer(mux)
	t.Cleanup(g.srv.Close)
	return g
}

func (g *GitHub) URL() string { return g.srv.URL + "/" }

// Hits returns how many requests an endpoint received: "issues", "comments",
// "tree", "blob" or "search".
func (g *GitHub) Hits(endpoint string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.hits[endpoint]
}

// Queries returns the raw query strings an endpoint received, in order.
func (g *GitHub) Queries(endpoint string) []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.queries[endpoint]...)
}

func (g *GitHub) record(endpoint string, r *http.Request) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.hits[endpoint]++
	g.queries[endpoint] = append(g.queries[endpoint], r.URL.RawQuery)
}

func (g *GitHub) handleIssues(w http.ResponseWriter, r *http.Request) {
	g.record("issues", r)
	if g.IssueStatus != 0 {
		writeError(w, g.IssueStatus)
		return
	}
	page := pageParam(r)
	out := []Issue{}
	if page-1 < len(g.IssuePages) {
		out = g.IssuePages[page-1]
	}
	writeJSON(w, out)
}

func (g *GitHub) handleComments(w http.ResponseWriter, r *http.Request) {
	g.record("comments", r)
	number, _ := strconv.Atoi(r.PathValue("number"))
	if g.FailComments[number] {
		writeError(w, http.StatusInternalServerError)
		return
	}
	out := g.Comments[number]
	if out == nil {
		out = []Comment{}
	}
	writeJSON(w, out)
}

func (g *GitHub) handleTree(w http.ResponseWriter, r *http.Request) {
	g.record("tree", r)
	if g.FailTree {
		writeError(w, http.StatusNotFound)
		return
	}
	type entry struct {
		Path string `json:"path"`
		Type string `json:"type"`
		Size int    `json:"size"`
		SHA  string `json:"sha"`
	}
	entries := make([]entry, 0, len(g.Files))
	for i, f := range g.Files {
		typ := f.Type
		if typ == "" {
			typ = "blob"
		}
		size := f.Size
		if size == 0 {
			size = len(f.Content)
		}
		entries = append(entries, entry{Path: f.Path, Type: typ, Size: size, SHA: BlobSHA(i)})
	}
	writeJSON(w, map[string]any{"sha": r.PathValue("sha"), "tree": entries, "truncated": false})
}

func (g *GitHub) handleBlob(w http.ResponseWriter, r *http.Request) {
	g.record("blob", r)
	sha := r.PathValue("sha")
	if g.FailBlobs[sha] {
		writeError(w, http.StatusInternalServerError)
		return
	}
	for i, f := range g.Files {
		if BlobSHA(i) != sha {
			continue
		}
		writeJSON(w, map[string]any{
			"sha":      sha,
			"encoding": "base64",
			"content":  base64.StdEncoding.EncodeToString([]byte(f.Content)),
		})
		return
	}
	writeError(w, http.StatusNotFound)
}

func (g *GitHub) handleSearch(w http.ResponseWriter, r *http.Request) {
	g.record("search", r)
	if g.SearchStatus != 0 {
		writeError(w, g.SearchStatus)
		return
	}
	page := pageParam(r)
	items := []Repo{}
	if page-1 < len(g.SearchPages) {
		items = g.SearchPages[page-1]
	}
	writeJSON(w, map[string]any{"total_count": len(items), "items": items})
}

// BlobSHA is the sha the fake assigns to Files[i].
func BlobSHA(i int) string { return fmt.Sprintf("sha%03d", i) }

// IssuePage builds n open issues numbered from first.
func IssuePage(first, n int) []Issue {
	out := make([]Issue, 0, n)
	for i := 0; i < n; i++ {
		num := first + i
		out = append(out, Issue{
			ID:      int64(1000 + num),
			Number:  num,
			Title:   fmt.Sprintf("Issue %d", num),
			Body:    fmt.Sprintf("Body of issue %d", num),
			State:   "open",
			HTMLURL: fmt.Sprintf("https://github.com/octocat/hello-world/issues/%d", num),
			User:    User{Login: "octocat"},
		})
	}
	return out
}

// PullRequest returns an open pull request as the issues endpoint lists it.
func PullRequest(number int) Issue {
	is := IssuePage(number, 1)[0]
	is.Title = fmt.Sprintf("PR %d", number)
	is.PullRequest = &struct {
		URL string `json:"url"`
	}{URL: fmt.Sprintf("https://api.github.com/repos/octocat/hello-world/pulls/%d", number)}
	return is
}

// RepoPage builds n search hits numbered from first.
func RepoPage(first, n int) []Repo {
	out := make([]Repo, 0, n)
	for i := 0; i < n; i++ {
		id := first + i
		out = append(out, Repo{
			ID:              int64(id),
			FullName:        fmt.Sprintf("octocat/repo-%d", id),
			HTMLURL:         fmt.Sprintf("https://github.com/octocat/repo-%d", id),
			Description:     "demo",
			StargazersCount: id * 10,
			Language:        "Go",
		})
	}
	return out
}

func pageParam(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": http.StatusText(status)})
}

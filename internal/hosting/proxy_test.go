package hosting

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"issuescout/internal/apperr"
)

func TestProxyLister(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/issues" || r.URL.Query().Get("owner") != "octocat" || r.URL.Query().Get("repo") != "hello-world" {
			http.Error(w, `{"error":"bad request"}`, http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"issues":[{"id":1,"url":"u","title":"t","body":"b","number":7,"author":"a"}]}`))
	}))
	defer srv.Close()

	p := &ProxyLister{HTTP: srv.Client(), BaseURL: srv.URL}
	issues, err := p.ListOpenIssues(context.Background(), "octocat", "hello-world")
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, 7, issues[0].Number)
	assert.Equal(t, []Comment{}, issues[0].Comments)
}

func TestProxyLister_NonSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	p := &ProxyLister{HTTP: srv.Client(), BaseURL: srv.URL}
	_, err := p.ListOpenIssues(context.Background(), "octocat", "hello-world")
	var upstream *apperr.UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, http.StatusForbidden, upstream.Status)
}

func TestNewProxyLister(t *testing.T) {
	p, err := NewProxyLister("http://127.0.0.1:8081/", nil, 0)
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:8081", p.BaseURL)

	p, err = NewProxyLister("https://scout.example.com/api", nil, 0)
	require.NoError(t, err)
	assert.Equal(t, "https://scout.example.com/api", p.BaseURL)

	for _, bad := range []string{"", "scout.example.com", "ftp://scout.example.com", "http://"} {
		_, err := NewProxyLister(bad, nil, 0)
		assert.Error(t, err, bad)
	}
}

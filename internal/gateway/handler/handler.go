// Package handler serves the gateway's JSON endpoints.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"issuescout/internal/apperr"
	"issuescout/internal/gateway/respond"
	"issuescout/internal/hosting"
	"issuescout/internal/logging"
	"issuescout/internal/summary"
)

type IssueLister interface {
	ListOpenIssues(ctx context.Context, owner, repo string) ([]hosting.Issue, error)
}

type RepoSearcher interface {
	SearchRepos(ctx context.Context, terms string) ([]hosting.Repo, error)
}

type Summarizer interface {
	Summarize(ctx context.Context, req summary.Request) (string, error)
}

// Handler holds the collaborators behind every endpoint.
type Handler struct {
	issues    IssueLister
	search    RepoSearcher
	summaries Summarizer
	logger    *slog.Logger
}

func New(issues IssueLister, search RepoSearcher, summaries Summarizer, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Handler{issues: issues, search: search, summaries: summaries, logger: logger}
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	respond.Error(w, r, h.logger, err)
}

func ownerRepo(r *http.Request) (string, string, error) {
	q := r.URL.Query()
	owner := strings.TrimSpace(q.Get("owner"))
	repo := strings.TrimSpace(q.Get("repo"))
	if owner == "" || repo == "" {
		return "", "", apperr.Validation("owner and repo are required")
	}
	return owner, repo, nil
}

// Health answers liveness probes.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

package handler

import (
	"net/http"

	"issuescout/internal/gateway/respond"
	"issuescout/internal/hosting"
)

type issuesResponse struct {
	Issues []hosting.Issue `json:"issues"`
}

// Issues lists a repository's open issues without comments.
func (h *Handler) Issues(w http.ResponseWriter, r *http.Request) {
	owner, repo, err := ownerRepo(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	issues, err := h.issues.ListOpenIssues(r.Context(), owner, repo)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if issues == nil {
		issues = []hosting.Issue{}
	}
	respond.JSON(w, http.StatusOK, issuesResponse{Issues: issues})
}

package handler

import (
	"net/http"

	"issuescout/internal/gateway/respond"
	"issuescout/internal/summary"
)

type summaryResponse struct {
	Summary string `json:"summary"`
}

// Summary returns the model-written digest of a repository's open issues.
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	owner, repo, err := ownerRepo(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	text, err := h.summaries.Summarize(r.Context(), summary.Request{Owner: owner, Repo: repo})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, summaryResponse{Summary: text})
}

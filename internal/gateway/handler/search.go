package handler

import (
	"net/http"

	"issuescout/internal/gateway/respond"
	"issuescout/internal/hosting"
)

type searchResponse struct {
	Repos []hosting.Repo `json:"repos"`
}

// Search finds repositories whose README mentions the given terms.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	repos, err := h.search.SearchRepos(r.Context(), r.URL.Query().Get("terms"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if repos == nil {
		repos = []hosting.Repo{}
	}
	respond.JSON(w, http.StatusOK, searchResponse{Repos: repos})
}

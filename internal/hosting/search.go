package hosting

import (
	"context"
	"strings"

	"github.com/google/go-github/v72/github"

	"issuescout/internal/apperr"
)

const (
	// SearchPageSize matches the UI's page size.
	SearchPageSize = 10
	// MaxSearchPages caps search results at SearchPageSize*MaxSearchPages.
	MaxSearchPages = 10
)

// SearchQuery joins whitespace-separated terms and restricts matches to the
// README. It returns "" when terms holds no words.
func SearchQuery(terms string) string {
	words := strings.Fields(terms)
	if len(words) == 0 {
		return ""
	}
	return strings.Join(words, " ") + " in:readme"
}

// SearchRepos pages through repository search results, stopping at the first
// short page. Any failed page aborts the search.
func (c *Client) SearchRepos(ctx context.Context, terms string) ([]Repo, error) {
	query := SearchQuery(terms)
	if query == "" {
		return nil, apperr.Validation("terms query param required")
	}
	out := []Repo{}
	for page := 1; page <= MaxSearchPages; page++ {
		batch, err := c.searchPage(ctx, query, page)
		if err != nil {
			return nil, err
		}
		for _, r := range batch {
			if r == nil {
				continue
			}
			out = append(out, Repo{
				ID:          r.GetID(),
				Name:        r.GetFullName(),
				URL:         r.GetHTMLURL(),
				Description: r.GetDescription(),
				Stars:       r.GetStargazersCount(),
				Language:    r.GetLanguage(),
			})
		}
		if len(batch) < SearchPageSize {
			break
		}
	}
	return out, nil
}

func (c *Client) searchPage(ctx context.Context, query string, page int) ([]*github.Repository, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()
	res, resp, err := c.gh.Search.Repositories(callCtx, query, &github.SearchOptions{
		ListOptions: github.ListOptions{
			Page:    page,
			PerPage: SearchPageSize,
		},
	})
	if err != nil {
		return nil, upstreamError(resp, err)
	}
	if res == nil {
		return nil, nil
	}
	return res.Repositories, nil
}

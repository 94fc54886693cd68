package hosting

import (
	"context"

	"github.com/google/go-github/v72/github"
)

const (
	// IssuePageSize is the per-page size requested from the issue listing.
	IssuePageSize = 100
	// MaxIssuePages caps the number of issue pages fetched per repository.
	MaxIssuePages = 10
)

// ListOpenIssues returns the repository's open issues, pull requests
// excluded, in upstream listing order. Paging stops at the first short page
// or after MaxIssuePages. Any failed page aborts the whole listing.
func (c *Client) ListOpenIssues(ctx context.Context, owner, repo string) ([]Issue, error) {
	out := []Issue{}
	for page := 1; page <= MaxIssuePages; page++ {
		batch, err := c.listIssuePage(ctx, owner, repo, page)
		if err != nil {
			return nil, err
		}
		for _, is := range batch {
			if is == nil || is.IsPullRequest() {
				continue
			}
			if state := is.GetState(); state != "" && state != "open" {
				continue
			}
			out = append(out, normalizeIssue(is))
		}
		if len(batch) < IssuePageSize {
			break
		}
	}
	c.logger.Debug("listed open issues", "owner", owner, "repo", repo, "count", len(out))
	return out, nil
}

func (c *Client) listIssuePage(ctx context.Context, owner, repo string, page int) ([]*github.Issue, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()
	batch, resp, err := c.gh.Issues.ListByRepo(callCtx, owner, repo, &github.IssueListByRepoOptions{
		State: "open",
		ListOptions: github.ListOptions{
			Page:    page,
			PerPage: IssuePageSize,
		},
	})
	if err != nil {
		return nil, upstreamError(resp, err)
	}
	return batch, nil
}

func normalizeIssue(is *github.Issue) Issue {
	return Issue{
		ID:       is.GetID(),
		URL:      is.GetHTMLURL(),
		Title:    is.GetTitle(),
		Body:     is.GetBody(),
		Number:   is.GetNumber(),
		Author:   is.GetUser().GetLogin(),
		Comments: []Comment{},
	}
}

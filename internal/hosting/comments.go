package hosting

import (
	"context"

	"github.com/google/go-github/v72/github"
	"golang.org/x/sync/errgroup"
)

// MaxCommentsPerIssue is how many of the most recent comments are kept.
const MaxCommentsPerIssue = 5

// EnrichComments fills in the most recent comments of every issue in place.
// Fetches run concurrently on a bounded worker pool. A failed fetch leaves
// that issue with no comments and never fails the batch.
func (c *Client) EnrichComments(ctx context.Context, owner, repo string, issues []Issue) {
	var g errgroup.Group
	g.SetLimit(c.commentWorkers)
	for i := range issues {
		g.Go(func() error {
			issues[i].Comments = c.recentComments(ctx, owner, repo, issues[i].Number)
			return nil
		})
	}
	_ = g.Wait()
}

func (c *Client) recentComments(ctx context.Context, owner, repo string, number int) []Comment {
	if ctx.Err() != nil {
		return []Comment{}
	}
	callCtx, cancel := c.callContext(ctx)
	defer cancel()
	raw, resp, err := c.gh.Issues.ListComments(callCtx, owner, repo, number, &github.IssueListCommentsOptions{
		Sort:      github.Ptr("created"),
		Direction: github.Ptr("desc"),
		ListOptions: github.ListOptions{
			PerPage: MaxCommentsPerIssue,
		},
	})
	if err != nil {
		c.logger.Debug("comment fetch failed", "owner", owner, "repo", repo, "issue", number, "error", upstreamError(resp, err))
		return []Comment{}
	}
	out := make([]Comment, 0, len(raw))
	for _, cm := range raw {
		if cm == nil {
			continue
		}
		out = append(out, Comment{
			Author: cm.GetUser().GetLogin(),
			Body:   cm.GetBody(),
			URL:    cm.GetHTMLURL(),
		})
		if len(out) == MaxCommentsPerIssue {
			break
		}
	}
	return out
}

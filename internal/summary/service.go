// Package summary runs the issue summary pipeline: collect snippets and
// issues, bound them, compose the prompt and ask the completion model.
package summary

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"issuescout/internal/apperr"
	"issuescout/internal/hosting"
	llmclient "issuescout/internal/llmClient"
	"issuescout/internal/logging"
)

type IssueLister interface {
	ListOpenIssues(ctx context.Context, owner, repo string) ([]hosting.Issue, error)
}

type CommentEnricher interface {
	EnrichComments(ctx context.Context, owner, repo string, issues []hosting.Issue)
}

type SnippetCollector interface {
	CollectSnippets(ctx context.Context, owner, repo string) []hosting.FileSnippet
}

// Deps wires a Service. Issues is either the GitHub client or a
// hosting.ProxyLister aimed at a configured gateway.
type Deps struct {
	Issues    IssueLister
	Comments  CommentEnricher
	Snippets  SnippetCollector
	Completer llmclient.Completer
	Budget    Budget
	Timeout   time.Duration
	Logger    *slog.Logger
}

type Service struct {
	deps Deps
}

func New(d Deps) *Service {
	d.Budget = d.Budget.withDefaults()
	if d.Logger == nil {
		d.Logger = logging.Discard()
	}
	return &Service{deps: d}
}

// Request identifies the repository to summarize.
type Request struct {
	Owner string
	Repo  string
}

func (r Request) validate() error {
	if strings.TrimSpace(r.Owner) == "" || strings.TrimSpace(r.Repo) == "" {
		return apperr.Validation("owner and repo are required")
	}
	return nil
}

// BuildPrompt gathers and bounds the repository data and returns the prompt
// that Summarize would send.
func (s *Service) BuildPrompt(ctx context.Context, req Request) (string, PromptBundle, error) {
	if err := req.validate(); err != nil {
		return "", PromptBundle{}, err
	}
	log := logging.FromContext(ctx, s.deps.Logger).With("owner", req.Owner, "repo", req.Repo)

	var (
		snippets []hosting.FileSnippet
		issues   []hosting.Issue
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Debug("summary stage", "stage", "collecting")
		snippets = s.deps.Snippets.CollectSnippets(gctx, req.Owner, req.Repo)
		return nil
	})
	g.Go(func() error {
		log.Debug("summary stage", "stage", "fetching-issues")
		list, err := s.deps.Issues.ListOpenIssues(gctx, req.Owner, req.Repo)
		if err != nil {
			return fmt.Errorf("list issues for %s/%s: %w", req.Owner, req.Repo, err)
		}
		log.Debug("summary stage", "stage", "enriching", "issues", len(list))
		s.deps.Comments.EnrichComments(gctx, req.Owner, req.Repo, list)
		issues = list
		return nil
	})
	if err := g.Wait(); err != nil {
		return "", PromptBundle{}, err
	}

	log.Debug("summary stage", "stage", "budgeting", "issues", len(issues), "snippets", len(snippets))
	bundle, err := s.deps.Budget.Apply(snippets, issues)
	if err != nil {
		return "", PromptBundle{}, err
	}
	log.Debug("summary stage", "stage", "composing-prompt")
	return ComposePrompt(bundle), bundle, nil
}

// Summarize returns the model's summary of the repository's open issues.
func (s *Service) Summarize(ctx context.Context, req Request) (string, error) {
	if s.deps.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.deps.Timeout)
		defer cancel()
	}
	if err := req.validate(); err != nil {
		return "", err
	}
	if err := s.deps.Completer.Ready(); err != nil {
		return "", err
	}
	prompt, _, err := s.BuildPrompt(ctx, req)
	if err != nil {
		return "", err
	}
	logging.FromContext(ctx, s.deps.Logger).Debug("summary stage", "stage", "calling-model", "owner", req.Owner, "repo", req.Repo)
	summary, err := s.deps.Completer.Complete(ctx, prompt)
	if err != nil {
		return "", err
	}
	return summary, nil
}

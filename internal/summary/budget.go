package summary

import (
	"encoding/json"
	"fmt"

	"issuescout/internal/hosting"
	"issuescout/internal/utils"
)

// SnippetTruncationMarker is appended when the snippet block was clipped.
const SnippetTruncationMarker = "\n..."

// Budget holds the size ceilings that keep a prompt inside the model's
// context window. Lengths count characters (runes).
type Budget struct {
	MaxIssues       int
	MaxIssueBody    int
	MaxCommentBody  int
	MaxSnippetChars int
}

func DefaultBudget() Budget {
	return Budget{
		MaxIssues:       30,
		MaxIssueBody:    400,
		MaxCommentBody:  200,
		MaxSnippetChars: 4000,
	}
}

// withDefaults fills non-positive ceilings from DefaultBudget.
func (b Budget) withDefaults() Budget {
	d := DefaultBudget()
	if b.MaxIssues <= 0 {
		b.MaxIssues = d.MaxIssues
	}
	if b.MaxIssueBody <= 0 {
		b.MaxIssueBody = d.MaxIssueBody
	}
	if b.MaxCommentBody <= 0 {
		b.MaxCommentBody = d.MaxCommentBody
	}
	if b.MaxSnippetChars <= 0 {
		b.MaxSnippetChars = d.MaxSnippetChars
	}
	return b
}

// ClipSnippets bounds the rendered snippet block.
func (b Budget) ClipSnippets(text string) string {
	b = b.withDefaults()
	return utils.Clip(text, b.MaxSnippetChars, SnippetTruncationMarker)
}

// LimitIssues keeps the first MaxIssues issues and clips every body. The
// input is left untouched.
func (b Budget) LimitIssues(issues []hosting.Issue) []hosting.Issue {
	b = b.withDefaults()
	n := len(issues)
	if n > b.MaxIssues {
		n = b.MaxIssues
	}
	out := make([]hosting.Issue, 0, n)
	for _, is := range issues[:n] {
		trimmed := is
		trimmed.Body = utils.Truncate(is.Body, b.MaxIssueBody)
		trimmed.Comments = make([]hosting.Comment, 0, len(is.Comments))
		for _, c := range is.Comments {
			c.Body = utils.Truncate(c.Body, b.MaxCommentBody)
			trimmed.Comments = append(trimmed.Comments, c)
		}
		out = append(out, trimmed)
	}
	return out
}

// PromptBundle is what the prompt template embeds.
type PromptBundle struct {
	RepoSnippets string
	Issues       []hosting.Issue
	IssuesJSON   string
}

// Apply clips both collected inputs and renders the issue list as indented JSON.
func (b Budget) Apply(snippets []hosting.FileSnippet, issues []hosting.Issue) (PromptBundle, error) {
	limited := b.LimitIssues(issues)
	raw, err := json.MarshalIndent(limited, "", "  ")
	if err != nil {
		return PromptBundle{}, fmt.Errorf("encode issues: %w", err)
	}
	return PromptBundle{
		RepoSnippets: b.ClipSnippets(hosting.RenderSnippets(snippets)),
		Issues:       limited,
		IssuesJSON:   string(raw),
	}, nil
}

package summary

import (
	"strings"
)

const promptPreamble = `You are an expert open-source mentor. Analyse the following GitHub issues and provide:
1. A concise project overview.
2. A bullet list of the most important issues (include title and URL).
3. A selection of issues a beginner should start with, explaining why each one matters.
4. Only recommend issues you are highly confident are genuine, actionable feature requests or bug reports, not questions or speculative problems.
5. It is fine to recommend no issues if none of them are good starting points.
`

// ComposePrompt renders the single user message sent to the model. The
// output depends only on the bundle.
func ComposePrompt(b PromptBundle) string {
	var sb strings.Builder
	sb.WriteString(promptPreamble)
	sb.WriteString("\nRepository key file snippets:\n")
	sb.WriteString(b.RepoSnippets)
	sb.WriteString("\n\nHere are the issues in JSON format:\n")
	sb.WriteString(b.IssuesJSON)
	sb.WriteString("\n")
	return sb.String()
}

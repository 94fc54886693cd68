package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"issuescout/internal/apperr"
	"issuescout/internal/gateway/app"
	"issuescout/internal/summary"
)

func newSummarizeCommand() *cobra.Command {
	var printPrompt bool
	cmd := &cobra.Command{
		Use:   "summarize owner/repo",
		Short: "Summarize a repository's open issues",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, repo, err := splitRepo(args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			svc, err := app.NewServices(configFromContext(ctx), loggerFromContext(ctx))
			if err != nil {
				return err
			}
			req := summary.Request{Owner: owner, Repo: repo}
			if printPrompt {
				prompt, _, err := svc.Summaries.BuildPrompt(ctx, req)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), prompt)
				return err
			}
			text, err := svc.Summaries.Summarize(ctx, req)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), text)
			return err
		},
	}
	cmd.Flags().BoolVar(&printPrompt, "print-prompt", false, "Print the composed prompt instead of calling the model")
	return cmd
}

func splitRepo(arg string) (string, string, error) {
	owner, repo, ok := strings.Cut(strings.TrimSpace(arg), "/")
	owner, repo = strings.TrimSpace(owner), strings.TrimSpace(repo)
	if !ok || owner == "" || repo == "" || strings.Contains(repo, "/") {
		return "", "", apperr.Validation("expected owner/repo, got %q", arg)
	}
	return owner, repo, nil
}

package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"issuescout/internal/gateway/app"
)

func newSearchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "search <terms...>",
		Short: "Find repositories whose README mentions the terms",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, err := app.NewServices(configFromContext(ctx), loggerFromContext(ctx))
			if err != nil {
				return err
			}
			repos, err := svc.GitHub.SearchRepos(ctx, strings.Join(args, " "))
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tSTARS\tLANGUAGE\tURL")
			for _, r := range repos {
				fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", r.Name, r.Stars, r.Language, r.URL)
			}
			return tw.Flush()
		},
	}
}

package main

import (
	"github.com/spf13/cobra"

	"github.com/hyperifyio/dataminer/internal/source"
)

func newSocialCmd(c *cli) *cobra.Command {
	var (
		platform string
		kind     string
		steps    []string
	)
	cmd := &cobra.Command{
		Use:   "social --platform NAME --kind KIND [QUERY]",
		Short: "Collect posts or comments from Twitter/X, Reddit, YouTube, Instagram or HackerNews.",
		Example: `  dataminer social --platform reddit --kind subreddit golang
  dataminer social --platform hn --kind top-stories --limit 20 --format markdown`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireArg("platform", platform); err != nil {
				return err
			}
			p, err := source.ParsePlatform(platform)
			if err != nil {
				return err
			}
			k, err := source.ParseQueryKind(p, kind)
			if err != nil {
				return err
			}
			st, err := parseSteps(steps)
			if err != nil {
				return err
			}
			var query string
			if len(args) == 1 {
				query = args[0]
			}
			a, err := c.newApp(cmd)
			if err != nil {
				return err
			}
			res, err := a.Social(cmd.Context(), source.Social(p, k, query), a.Options())
			if err != nil {
				return err
			}
			if res, err = a.Process(res, st); err != nil {
				return err
			}
			return emit(cmd, a, res, string(p)+" data")
		},
	}
	cmd.Flags().StringVarP(&platform, "platform", "p", "", "Platform: twitter, reddit, youtube, instagram or hn")
	cmd.Flags().StringVarP(&kind, "kind", "k", "", "Query kind, e.g. username, hashtag, subreddit, search-term, top-stories")
	cmd.Flags().StringArrayVar(&steps, "step", nil, "Processing step applied in order")
	return cmd
}

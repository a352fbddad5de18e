package main

import (
	"github.com/spf13/cobra"

	"github.com/hyperifyio/dataminer/internal/source"
)

func newWebCmd(c *cli) *cobra.Command {
	var (
		method   string
		selector string
		steps    []string
	)
	cmd := &cobra.Command{
		Use:   "web [flags] URL",
		Short: "Extract content, tables, links, images or selected elements from a web page.",
		Example: `  dataminer web --method tables --format csv https://example.com/stats
  dataminer web --method selector --selector 'h2.title' --step dedupe https://example.com/`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := source.ParseMethod(method)
			if err != nil {
				return err
			}
			st, err := parseSteps(steps)
			if err != nil {
				return err
			}
			a, err := c.newApp(cmd)
			if err != nil {
				return err
			}
			opts := a.Options()
			opts.Selector = selector
			res, err := a.Web(cmd.Context(), args[0], m, opts)
			if err != nil {
				return err
			}
			if res, err = a.Process(res, st); err != nil {
				return err
			}
			return emit(cmd, a, res, "Data from "+args[0])
		},
	}
	cmd.Flags().StringVarP(&method, "method", "m", "text", "Extraction method: full, text, tables, links, images or selector")
	cmd.Flags().StringVarP(&selector, "selector", "s", "", "CSS selector for the selector method")
	cmd.Flags().StringArrayVar(&steps, "step", nil, "Processing step applied in order, e.g. dedupe or filter:price:Greater Than:10")
	return cmd
}

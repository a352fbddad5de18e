package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/hyperifyio/dataminer/internal/advisor"
	"github.com/hyperifyio/dataminer/internal/app"
	"github.com/hyperifyio/dataminer/internal/result"
	"github.com/hyperifyio/dataminer/internal/source"
)

// input selects the data an advice command looks at: a web page or a
// platform query, extracted the same way the web and social commands do.
type input struct {
	url      string
	method   string
	selector string
	platform string
	kind     string
	query    string
}

func (in *input) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&in.url, "url", "", "Page to extract")
	f.StringVarP(&in.method, "method", "m", "tables", "Extraction method for --url")
	f.StringVarP(&in.selector, "selector", "s", "", "CSS selector for the selector method")
	f.StringVarP(&in.platform, "platform", "p", "", "Platform to query instead of a page")
	f.StringVarP(&in.kind, "kind", "k", "", "Query kind for --platform")
	f.StringVar(&in.query, "query", "", "Query value for --platform")
}

func (in *input) load(cmd *cobra.Command, a *app.App) (result.Result, error) {
	if in.platform != "" {
		p, err := source.ParsePlatform(in.platform)
		if err != nil {
			return result.Result{}, err
		}
		k, err := source.ParseQueryKind(p, in.kind)
		if err != nil {
			return result.Result{}, err
		}
		return a.Social(cmd.Context(), source.Social(p, k, in.query), a.Options())
	}
	if err := requireArg("url", in.url); err != nil {
		return result.Result{}, err
	}
	m, err := source.ParseMethod(in.method)
	if err != nil {
		return result.Result{}, err
	}
	opts := a.Options()
	opts.Selector = in.selector
	return a.Web(cmd.Context(), in.url, m, opts)
}

func newAdviseCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "advise",
		Short: "Ask the language model for processing, cleaning, visualization or extraction advice.",
		Long: `Advice is generated by an OpenAI-compatible model when an API key or base URL
is configured. Without one, deterministic suggestions derived from the data
are printed instead.`,
	}
	cmd.AddCommand(
		newDataAdviceCmd(c, "processing", "Suggest processing steps for extracted data",
			func(cmd *cobra.Command, a *app.App, r result.Result, _ string) error {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), a.Advisor().ProcessingSuggestions(cmd.Context(), r))
				return err
			}),
		newDataAdviceCmd(c, "cleaning", "Suggest per-column cleaning operations",
			func(cmd *cobra.Command, a *app.App, r result.Result, _ string) error {
				return writeCleaningPlan(cmd.OutOrStdout(), a.Advisor().CleaningSuggestions(cmd.Context(), r))
			}),
		newDataAdviceCmd(c, "visualization", "Suggest charts for extracted data",
			func(cmd *cobra.Command, a *app.App, r result.Result, _ string) error {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), a.Advisor().VisualizationSuggestions(cmd.Context(), r))
				return err
			}),
		newDataAdviceCmd(c, "social", "Analyze collected social posts",
			func(cmd *cobra.Command, a *app.App, r result.Result, _ string) error {
				platform, _ := cmd.Flags().GetString("platform")
				if p, err := source.ParsePlatform(platform); err == nil {
					platform = string(p)
				}
				_, err := fmt.Fprintln(cmd.OutOrStdout(), a.Advisor().SocialAnalysis(cmd.Context(), platform, r))
				return err
			}),
		newDataAdviceCmd(c, "summary", "Summarize extracted data",
			func(cmd *cobra.Command, a *app.App, r result.Result, focus string) error {
				return writeSummary(cmd.OutOrStdout(), a.Advisor().Summarize(cmd.Context(), r, focus))
			}),
		newExtractionAdviceCmd(c),
	)
	return cmd
}

type adviceFunc func(cmd *cobra.Command, a *app.App, r result.Result, focus string) error

func newDataAdviceCmd(c *cli, use, short string, run adviceFunc) *cobra.Command {
	var (
		in    input
		focus string
	)
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.newApp(cmd)
			if err != nil {
				return err
			}
			r, err := in.load(cmd, a)
			if err != nil {
				return err
			}
			return run(cmd, a, r, focus)
		},
	}
	in.register(cmd)
	if use == "summary" {
		cmd.Flags().StringVar(&focus, "focus", "", "Aspect the summary should focus on")
	}
	return cmd
}

func newExtractionAdviceCmd(c *cli) *cobra.Command {
	var siteURL, goal string
	cmd := &cobra.Command{
		Use:   "extraction --goal TEXT [--url URL]",
		Short: "Explain how to extract the described data from a site",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireArg("goal", goal); err != nil {
				return err
			}
			a, err := c.newApp(cmd)
			if err != nil {
				return err
			}
			return writeExtractionAdvice(cmd.OutOrStdout(), a.Advisor().ExtractionAdvice(cmd.Context(), siteURL, goal))
		},
	}
	cmd.Flags().StringVar(&siteURL, "url", "", "Site the data lives on")
	cmd.Flags().StringVar(&goal, "goal", "", "What to extract")
	return cmd
}

func writeCleaningPlan(w io.Writer, p advisor.CleaningPlan) error {
	if _, err := fmt.Fprintf(w, "%s\n\n", p.Overview); err != nil {
		return err
	}
	if len(p.Operations) == 0 {
		return nil
	}
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Column", "Issue", "Recommendation", "Priority"})
	for _, op := range p.Operations {
		t.AppendRow(table.Row{op.Column, op.Issue, op.Recommendation, op.Priority})
	}
	t.Render()
	return nil
}

func writeExtractionAdvice(w io.Writer, ea advisor.ExtractionAdvice) error {
	var b strings.Builder
	b.WriteString(ea.Explanation + "\n")
	if len(ea.CSSSelectors) > 0 {
		b.WriteString("\nSelectors:\n")
		for k, v := range ea.CSSSelectors {
			fmt.Fprintf(&b, "  %s: %s\n", k, v)
		}
	}
	if len(ea.Challenges) > 0 {
		b.WriteString("\nChallenges:\n")
		for _, ch := range ea.Challenges {
			fmt.Fprintf(&b, "  - %s", ch.Challenge)
			if ch.Solution != "" {
				fmt.Fprintf(&b, " (%s)", ch.Solution)
			}
			b.WriteString("\n")
		}
	}
	if ea.CodeSample != "" {
		b.WriteString("\n" + ea.CodeSample + "\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func writeSummary(w io.Writer, s advisor.Summary) error {
	var b strings.Builder
	b.WriteString(s.Overview + "\n")
	section := func(title string, items []string) {
		if len(items) == 0 {
			return
		}
		b.WriteString("\n" + title + ":\n")
		for _, it := range items {
			b.WriteString("  - " + it + "\n")
		}
	}
	section("Key points", s.KeyPoints)
	if s.DataQuality != "" {
		b.WriteString("\nData quality: " + s.DataQuality + "\n")
	}
	section("Recommendations", s.Recommendations)
	_, err := io.WriteString(w, b.String())
	return err
}

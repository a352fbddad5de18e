package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/hyperifyio/dataminer/internal/app"
	"github.com/hyperifyio/dataminer/internal/export"
	"github.com/hyperifyio/dataminer/internal/process"
	"github.com/hyperifyio/dataminer/internal/result"
	"github.com/hyperifyio/dataminer/internal/source"
)

// cli holds the raw flag values shared by every subcommand. Only flags the
// user actually set are applied on top of file and env configuration.
type cli struct {
	configPath string
	envFiles   []string
	verbose    bool

	format string
	out    string
	table  string

	userAgent  string
	delay      time.Duration
	timeout    time.Duration
	maxPages   int
	limit      int
	dateRange  string
	noMetadata bool
	noReplies  bool

	llmBase  string
	llmModel string
	llmKey   string

	addr string
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:           "dataminer",
		Short:         "dataminer extracts tables, text and posts from web pages and social platforms.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if c.verbose {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			} else {
				zerolog.SetGlobalLevel(zerolog.InfoLevel)
			}
		},
	}
	pf := root.PersistentFlags()
	pf.StringVar(&c.configPath, "config", "", "Path to a YAML or JSON config file")
	pf.StringSliceVar(&c.envFiles, "env-file", []string{".env"}, "Dotenv files to load; later files override earlier ones")
	pf.BoolVarP(&c.verbose, "verbose", "v", false, "Verbose logging")
	pf.StringVarP(&c.format, "format", "f", app.DefaultFormat, "Output format: "+formatList())
	pf.StringVarP(&c.out, "out", "o", "", "Write the result to this file instead of stdout")
	pf.StringVar(&c.table, "table", export.DefaultTableName, "Table name for sql and sqlite output")
	pf.StringVar(&c.userAgent, "user-agent", "", "User-Agent header for page requests")
	pf.DurationVar(&c.delay, "delay", app.DefaultDelay, "Delay between page requests")
	pf.DurationVar(&c.timeout, "timeout", app.DefaultTimeout, "Per-request timeout")
	pf.IntVar(&c.maxPages, "max-pages", app.DefaultMaxPages, "Maximum pages to follow")
	pf.IntVar(&c.limit, "limit", app.DefaultLimit, "Maximum items to return")
	pf.StringVar(&c.dateRange, "date-range", string(source.LastWeek), "Date range for social posts: day, week, month or all")
	pf.BoolVar(&c.noMetadata, "no-metadata", false, "Omit engagement metadata from social rows")
	pf.BoolVar(&c.noReplies, "no-replies", false, "Do not fetch replies or comments")
	pf.StringVar(&c.llmBase, "llm.base", "", "OpenAI-compatible base URL")
	pf.StringVar(&c.llmModel, "llm.model", "", "Model name")
	pf.StringVar(&c.llmKey, "llm.key", "", "API key for OpenAI-compatible server")

	root.AddCommand(newWebCmd(c), newSocialCmd(c), newAdviseCmd(c), newServeCmd(c))
	return root
}

func formatList() string {
	names := make([]string, 0, len(export.Formats))
	for _, f := range export.Formats {
		names = append(names, string(f))
	}
	return strings.Join(names, ", ")
}

// config resolves configuration with precedence flags > env > file > defaults.
func (c *cli) config(cmd *cobra.Command) (app.Config, error) {
	if err := app.LoadEnvFiles(c.envFiles...); err != nil {
		return app.Config{}, err
	}
	cfg := app.DefaultConfig()
	if c.configPath != "" {
		fc, err := app.LoadConfigFile(c.configPath)
		if err != nil {
			return app.Config{}, err
		}
		app.ApplyFileConfig(&cfg, fc)
	}
	app.ApplyEnvOverrides(&cfg)
	c.applyFlags(cmd, &cfg)
	if cfg.Verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	return cfg, nil
}

func (c *cli) applyFlags(cmd *cobra.Command, cfg *app.Config) {
	changed := func(name string) bool {
		f := cmd.Flag(name)
		return f != nil && f.Changed
	}
	if changed("verbose") {
		cfg.Verbose = c.verbose
	}
	if changed("format") {
		cfg.Format = c.format
	}
	if changed("out") {
		cfg.OutputPath = c.out
	}
	if changed("table") {
		cfg.TableName = c.table
	}
	if changed("user-agent") {
		cfg.UserAgent = c.userAgent
	}
	if changed("delay") {
		cfg.Delay = c.delay
	}
	if changed("timeout") {
		cfg.Timeout = c.timeout
	}
	if changed("max-pages") {
		cfg.MaxPages = c.maxPages
	}
	if changed("limit") {
		cfg.Limit = c.limit
	}
	if changed("date-range") {
		cfg.DateRange = c.dateRange
	}
	if changed("no-metadata") {
		cfg.NoMetadata = c.noMetadata
	}
	if changed("no-replies") {
		cfg.NoReplies = c.noReplies
	}
	if changed("llm.base") {
		cfg.LLMBaseURL = c.llmBase
	}
	if changed("llm.model") {
		cfg.LLMModel = c.llmModel
	}
	if changed("llm.key") {
		cfg.LLMAPIKey = c.llmKey
	}
	if changed("addr") {
		cfg.ListenAddr = c.addr
	}
	// An output file with a known extension picks the format unless one was
	// chosen explicitly.
	if cfg.OutputPath != "" && !changed("format") && cfg.Format == app.DefaultFormat {
		if f, err := export.ParseFormat(strings.TrimPrefix(filepath.Ext(cfg.OutputPath), ".")); err == nil {
			cfg.Format = string(f)
		}
	}
}

// newApp resolves configuration and builds the application.
func (c *cli) newApp(cmd *cobra.Command) (*app.App, error) {
	cfg, err := c.config(cmd)
	if err != nil {
		return nil, err
	}
	return app.New(cmd.Context(), cfg)
}

func parseSteps(raw []string) ([]process.Step, error) {
	steps := make([]process.Step, 0, len(raw))
	for _, s := range raw {
		st, err := process.ParseStep(s)
		if err != nil {
			return nil, &source.ValidationError{Field: "step", Reason: err.Error()}
		}
		steps = append(steps, st)
	}
	return steps, nil
}

// emit writes r to the configured output file or to stdout.
func emit(cmd *cobra.Command, a *app.App, r result.Result, title string) error {
	if p := a.Config().OutputPath; p != "" {
		return a.WriteFile(cmd.Context(), p, r, "", title)
	}
	return a.Export(cmd.Context(), cmd.OutOrStdout(), r, "", title)
}

// exitCode maps caller mistakes to 2 and everything else to 1.
func exitCode(err error) int {
	var ve *source.ValidationError
	var uc *source.UnsupportedCombinationError
	if errors.As(err, &ve) || errors.As(err, &uc) {
		return 2
	}
	return 1
}

func requireArg(name, v string) error {
	if strings.TrimSpace(v) == "" {
		return &source.ValidationError{Field: name, Reason: fmt.Sprintf("--%s is required", name)}
	}
	return nil
}

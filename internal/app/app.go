package app

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/dataminer/internal/advisor"
	"github.com/hyperifyio/dataminer/internal/export"
	"github.com/hyperifyio/dataminer/internal/llm"
	"github.com/hyperifyio/dataminer/internal/process"
	"github.com/hyperifyio/dataminer/internal/result"
	"github.com/hyperifyio/dataminer/internal/scrape"
	"github.com/hyperifyio/dataminer/internal/social"
	"github.com/hyperifyio/dataminer/internal/source"
)

// App ties configuration to the extraction, processing and export packages.
// It holds only the shared transport; every call builds fresh scrapers, so
// one App serves concurrent callers.
type App struct {
	cfg     Config
	hc      *http.Client
	advisor *advisor.Advisor
}

// New validates cfg and prepares the shared HTTP client. The advisor gets a
// model client only when an API key or a base URL is configured.
func New(_ context.Context, cfg Config) (*App, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	hc := NewHTTPClient()
	a := &App{cfg: cfg, hc: hc}
	var client llm.Client
	if cfg.LLMAPIKey != "" || cfg.LLMBaseURL != "" {
		client = llm.NewOpenAI(cfg.LLMBaseURL, cfg.LLMAPIKey, hc)
		log.Debug().Str("base", cfg.LLMBaseURL).Str("model", cfg.LLMModel).Msg("advisor enabled")
	}
	a.advisor = advisor.New(client, cfg.LLMModel)
	return a, nil
}

func (a *App) Config() Config { return a.cfg }

// Advisor returns the advice client. It works without a model, answering
// with canned advice.
func (a *App) Advisor() *advisor.Advisor { return a.advisor }

// Options returns the configured fetch defaults.
func (a *App) Options() source.Options { return a.cfg.FetchOptions() }

// Web runs one web extraction.
func (a *App) Web(ctx context.Context, rawURL string, m source.Method, opts source.Options) (result.Result, error) {
	return scrape.New(a.hc).Scrape(ctx, source.Web(rawURL), m, opts)
}

// Social runs one platform query.
func (a *App) Social(ctx context.Context, d source.Descriptor, opts source.Options) (result.Result, error) {
	return social.New(a.hc, a.cfg.SocialConfig()).Scrape(ctx, d, opts)
}

// Process applies steps in order.
func (a *App) Process(r result.Result, steps []process.Step) (result.Result, error) {
	if len(steps) == 0 {
		return r, nil
	}
	return process.Run(r, steps)
}

func (a *App) exportOptions(title string) export.Options {
	return export.Options{Title: title, TableName: a.cfg.TableName}
}

// Export encodes r to w. An empty format uses the configured one.
func (a *App) Export(ctx context.Context, w io.Writer, r result.Result, format, title string) error {
	f, err := a.format(format)
	if err != nil {
		return err
	}
	return export.Write(ctx, w, r, f, a.exportOptions(title))
}

// WriteFile exports r to path. SQLite appends to an existing database
// instead of replacing it.
func (a *App) WriteFile(ctx context.Context, path string, r result.Result, format, title string) error {
	f, err := a.format(format)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if f == export.FormatSQLite {
		return export.SQLite(ctx, path, r, a.cfg.TableName)
	}
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := export.Write(ctx, out, r, f, a.exportOptions(title)); err != nil {
		_ = out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	log.Info().Str("path", path).Str("format", string(f)).Msg("wrote output")
	return nil
}

// format resolves name, falling back to the configured format and then to
// DefaultFormat.
func (a *App) format(name string) (export.Format, error) {
	if strings.TrimSpace(name) == "" {
		name = a.cfg.Format
	}
	if strings.TrimSpace(name) == "" {
		name = DefaultFormat
	}
	return export.ParseFormat(name)
}

// Package social collects posts and comments from public platform endpoints
// and always returns a well-typed result: real rows, or a single placeholder
// row explaining why there are none.
package social

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/hyperifyio/dataminer/internal/fallback"
	"github.com/hyperifyio/dataminer/internal/fetch"
	"github.com/hyperifyio/dataminer/internal/logctx"
	"github.com/hyperifyio/dataminer/internal/normalize"
	"github.com/hyperifyio/dataminer/internal/result"
	"github.com/hyperifyio/dataminer/internal/source"
)

// Platform collects raw rows for one social source.
type Platform interface {
	Name() source.Platform
	// Collect fetches items for d. A *source.ValidationError is returned
	// to the caller as is; any other error becomes the platform's
	// Unavailable placeholder.
	Collect(ctx context.Context, env *Env, d source.Descriptor) (Batch, error)
	Unavailable(d source.Descriptor, err error) result.Result
}

// Batch is what a platform collected before filtering.
type Batch struct {
	// Lead rows precede the items and are never filtered, e.g. the video
	// metadata row of a comment listing.
	Lead  []result.Row
	Items []result.Row
	// TimeKey names the item field holding its timestamp.
	TimeKey string
	// Noun describes the items in the "no results" placeholder.
	Noun string
	// WhenEmpty replaces the placeholder when no item survives filtering
	// and Lead is not empty.
	WhenEmpty result.Row
}

// Env is the per-call state shared by a platform's requests.
type Env struct {
	Client *fetch.Client
	Pager  *fetch.Pager
	Opts   source.Options
	Cutoff time.Time
	// ProbeTimeout bounds mirror probes.
	ProbeTimeout time.Duration
}

// Get waits on the pager and fetches u.
func (e *Env) Get(ctx context.Context, u string) (fetch.Response, error) {
	if err := e.Pager.Wait(ctx); err != nil {
		return fetch.Response{}, err
	}
	return e.Client.Get(ctx, u)
}

// GetJSON waits on the pager and decodes u into v.
func (e *Env) GetJSON(ctx context.Context, u string, v any) error {
	if err := e.Pager.Wait(ctx); err != nil {
		return err
	}
	return e.Client.GetJSON(ctx, u, v)
}

// Keep reports whether an item with the given timestamp field passes the
// cutoff. Undated items pass.
func (e *Env) Keep(row result.Row, timeKey string) bool {
	return normalize.Keep(row, timeKey, e.Cutoff)
}

// Failover returns a mirror selector over candidates that lives for the
// current call only.
func (e *Env) Failover(candidates []string, probe func(base string) string) *fetch.Failover {
	return &fetch.Failover{Client: e.Client, Candidates: candidates, ProbeURL: probe, ProbeTimeout: e.ProbeTimeout}
}

// Scraper dispatches a platform descriptor to its Platform.
type Scraper struct {
	HTTPClient *http.Client
	Platforms  map[source.Platform]Platform
	Config     Config
	// Now is the clock used to resolve the date range.
	Now func() time.Time
}

// New returns a Scraper with every built-in platform configured from cfg.
func New(hc *http.Client, cfg Config) *Scraper {
	cfg = cfg.withDefaults()
	s := &Scraper{HTTPClient: hc, Config: cfg, Now: time.Now, Platforms: map[source.Platform]Platform{}}
	for _, p := range []Platform{
		&Twitter{Mirrors: cfg.NitterMirrors},
		&Reddit{BaseURL: cfg.RedditBaseURL},
		&YouTube{Mirrors: cfg.InvidiousMirrors},
		&Instagram{},
		&HackerNews{BaseURL: cfg.HackerNewsAPI},
	} {
		s.Platforms[p.Name()] = p
	}
	return s
}

// Scrape validates d and collects it. Apart from validation errors and
// cancellation it never fails: unreachable platforms and empty listings
// come back as placeholders.
func (s *Scraper) Scrape(ctx context.Context, d source.Descriptor, opts source.Options) (result.Result, error) {
	if err := source.ValidateSocial(d, opts); err != nil {
		return result.Result{}, err
	}
	opts = opts.WithDefaults()
	p, ok := s.Platforms[d.Platform]
	if !ok {
		return result.Result{}, &source.ValidationError{Field: "platform", Reason: "unsupported platform: " + string(d.Platform)}
	}
	ctx, _ = logctx.New(ctx)
	logger := logctx.From(ctx)
	logger.Info().Str("platform", string(d.Platform)).Str("kind", d.QueryKind).Str("query", d.Query).Msg("social scrape start")

	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	env := &Env{
		Client: &fetch.Client{
			HTTPClient:        s.HTTPClient,
			UserAgent:         opts.UserAgent,
			Header:            fetch.BrowserHeaders(),
			PerRequestTimeout: opts.Timeout,
		},
		Pager:        fetch.NewPager(opts.Delay),
		Opts:         opts,
		Cutoff:       opts.DateRange.Cutoff(now()),
		ProbeTimeout: s.Config.ProbeTimeout,
	}

	batch, err := p.Collect(ctx, env, d)
	if err != nil {
		var ve *source.ValidationError
		if errors.As(err, &ve) || errors.Is(err, context.Canceled) {
			return result.Result{}, err
		}
		logger.Warn().Err(err).Str("platform", string(d.Platform)).Msg("platform unavailable")
		return p.Unavailable(d, err), nil
	}

	items := normalize.Filter(batch.Items, batch.TimeKey, env.Cutoff, opts.Limit)
	if len(items) == 0 {
		if len(batch.Lead) > 0 && batch.WhenEmpty != nil {
			rows := append(append([]result.Row{}, batch.Lead...), batch.WhenEmpty)
			return result.OfTable(result.FromRows(rows)), nil
		}
		logger.Warn().Str("platform", string(d.Platform)).Msg("no items after filtering")
		return fallback.Empty(batch.Noun), nil
	}
	rows := make([]result.Row, 0, len(batch.Lead)+len(items))
	rows = append(rows, batch.Lead...)
	rows = append(rows, items...)
	logger.Info().Int("items", len(items)).Msg("social scrape done")
	return result.OfTable(result.FromRows(rows)), nil
}

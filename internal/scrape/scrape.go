// Package scrape runs the web extraction methods against a URL: it fetches
// one or more pages, applies the chosen extractor and returns a normalized
// result.
package scrape

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/hyperifyio/dataminer/internal/extract"
	"github.com/hyperifyio/dataminer/internal/fetch"
	"github.com/hyperifyio/dataminer/internal/logctx"
	"github.com/hyperifyio/dataminer/internal/normalize"
	"github.com/hyperifyio/dataminer/internal/result"
	"github.com/hyperifyio/dataminer/internal/source"
)

// Scraper holds only transport configuration. Each Scrape call builds its
// own fetch client and pager, so one Scraper may serve concurrent callers.
type Scraper struct {
	// HTTPClient is shared for connection pooling. Nil uses a fresh client
	// per call.
	HTTPClient *http.Client
	// RedirectMaxHops and MaxBodyBytes are passed through to fetch.Client.
	RedirectMaxHops int
	MaxBodyBytes    int64
}

// New returns a Scraper that pools connections through hc.
func New(hc *http.Client) *Scraper {
	return &Scraper{HTTPClient: hc}
}

// call is the state of one Scrape invocation.
type call struct {
	client *fetch.Client
	pager  *fetch.Pager
	opts   source.Options
	seed   *url.URL
}

// Scrape validates the request, then runs method m against d.
//
// Validation and unsupported combinations fail before any request. A fetch
// failure of the first page is returned as *fetch.Error; an empty structural
// extraction as *extract.Error.
func (s *Scraper) Scrape(ctx context.Context, d source.Descriptor, m source.Method, opts source.Options) (result.Result, error) {
	seed, err := source.ValidateWeb(d, m, opts)
	if err != nil {
		return result.Result{}, err
	}
	opts = opts.WithDefaults()
	ctx, _ = logctx.New(ctx)
	logger := logctx.From(ctx)
	logger.Info().Str("url", seed.String()).Str("method", string(m)).Msg("scrape start")

	c := &call{client: s.client(opts), pager: fetch.NewPager(opts.Delay), opts: opts, seed: seed}
	start := time.Now()

	var res result.Result
	switch m {
	case source.MethodFullContent:
		res, err = c.fullContent(ctx)
	case source.MethodTextOnly:
		res, err = c.textOnly(ctx)
	case source.MethodTables:
		res, err = c.tables(ctx)
	case source.MethodLinks:
		res, err = c.links(ctx)
	case source.MethodImages:
		res, err = c.images(ctx)
	case source.MethodSelector:
		res, err = c.selector(ctx)
	}
	if err != nil {
		logger.Warn().Err(err).Str("url", seed.String()).Dur("elapsed", time.Since(start)).Msg("scrape failed")
		return result.Result{}, err
	}
	logger.Info().Str("kind", res.Kind.String()).Int("rows", res.Table.Len()).Dur("elapsed", time.Since(start)).Msg("scrape done")
	return res, nil
}

func (s *Scraper) client(opts source.Options) *fetch.Client {
	return &fetch.Client{
		HTTPClient:        s.HTTPClient,
		UserAgent:         opts.UserAgent,
		Header:            fetch.BrowserHeaders(),
		PerRequestTimeout: opts.Timeout,
		RedirectMaxHops:   s.RedirectMaxHops,
		MaxBodyBytes:      s.MaxBodyBytes,
	}
}

// page fetches one URL after waiting on the pager and parses it.
func (c *call) page(ctx context.Context, u string) (fetch.Response, *extract.Page, error) {
	if err := c.pager.Wait(ctx); err != nil {
		return fetch.Response{}, nil, err
	}
	resp, err := c.client.Get(ctx, u)
	if err != nil {
		return fetch.Response{}, nil, err
	}
	p, err := extract.NewPage(resp.Body, resp.ContentType)
	if err != nil {
		return resp, nil, err
	}
	return resp, p, nil
}

func (c *call) fullContent(ctx context.Context) (result.Result, error) {
	if err := c.pager.Wait(ctx); err != nil {
		return result.Result{}, err
	}
	resp, err := c.client.Get(ctx, c.seed.String())
	if err != nil {
		return result.Result{}, err
	}
	return result.OfText(string(extract.Decode(resp.Body, resp.ContentType))), nil
}

func (c *call) textOnly(ctx context.Context) (result.Result, error) {
	_, p, err := c.page(ctx, c.seed.String())
	if err != nil {
		return result.Result{}, err
	}
	text, strategy := extract.Text(p.Doc, p.Raw, extract.TextStrategies)
	logctx.From(ctx).Debug().Str("strategy", strategy).Int("chars", len(text)).Msg("text extracted")
	return result.OfText(text), nil
}

// tables follows "next" links for up to MaxPages pages. Only a failure on the
// first page is fatal; later failures end pagination with what was found.
func (c *call) tables(ctx context.Context) (result.Result, error) {
	logger := logctx.From(ctx)
	var parts [][]result.Row
	current := c.seed.String()
	for pageNum := 0; pageNum < c.opts.MaxPages; pageNum++ {
		resp, p, err := c.page(ctx, current)
		if err != nil {
			if pageNum == 0 {
				return result.Result{}, err
			}
			logger.Warn().Err(err).Int("page", pageNum).Str("url", current).Msg("pagination stopped")
			break
		}
		found := extract.Tables(p.Doc)
		if len(found) == 0 {
			if pageNum == 0 {
				logger.Warn().Str("url", current).Msg("no tables found")
			}
			break
		}
		parts = append(parts, found...)
		if pageNum == c.opts.MaxPages-1 {
			break
		}
		next := extract.NextPage(p.Doc, pageURL(resp.URL, c.seed))
		if next == "" {
			break
		}
		current = next
	}
	if len(parts) == 0 {
		return result.Result{}, &extract.Error{URL: c.seed.String(), Err: extract.ErrNoTables}
	}
	return result.OfTable(normalize.Merge(parts)), nil
}

// links walks same-host pages breadth first, visiting at most MaxPages
// pages. Pages that fail to load are skipped.
func (c *call) links(ctx context.Context) (result.Result, error) {
	logger := logctx.From(ctx)
	host := c.seed.Host
	queue := []string{c.seed.String()}
	seen := map[string]struct{}{normalize.CanonicalURL(c.seed.String()): {}}
	var rows []result.Row
	var firstErr error
	visited := 0
	for len(queue) > 0 && visited < c.opts.MaxPages {
		current := queue[0]
		queue = queue[1:]
		visited++

		_, p, err := c.page(ctx, current)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return result.Result{}, err
			}
			if firstErr == nil {
				firstErr = err
			}
			logger.Warn().Err(err).Str("url", current).Msg("failed to scrape links")
			continue
		}
		pu, _ := url.Parse(current)
		for _, l := range extract.SameHostLinks(p.Doc, pu, host) {
			rows = append(rows, l.Row())
			key := normalize.CanonicalURL(l.URL)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			queue = append(queue, l.URL)
		}
	}
	if len(rows) == 0 {
		if firstErr != nil {
			return result.Result{}, firstErr
		}
		return result.Result{}, &extract.Error{URL: c.seed.String(), Err: extract.ErrNoLinks}
	}
	return result.OfTable(result.FromRows(rows)), nil
}

func (c *call) images(ctx context.Context) (result.Result, error) {
	resp, p, err := c.page(ctx, c.seed.String())
	if err != nil {
		return result.Result{}, err
	}
	rows := extract.Images(p.Doc, pageURL(resp.URL, c.seed))
	if len(rows) == 0 {
		return result.Result{}, &extract.Error{URL: c.seed.String(), Err: extract.ErrNoImages}
	}
	return result.OfTable(result.FromRows(rows)), nil
}

func (c *call) selector(ctx context.Context) (result.Result, error) {
	sel, err := extract.CompileSelector(c.opts.Selector)
	if err != nil {
		return result.Result{}, &source.ValidationError{Field: "selector", Reason: err.Error()}
	}
	_, p, err := c.page(ctx, c.seed.String())
	if err != nil {
		return result.Result{}, err
	}
	res, err := extract.Select(p.Doc, sel, c.opts.Selector)
	if err != nil {
		var ee *extract.Error
		if errors.As(err, &ee) {
			ee.URL = c.seed.String()
		}
		return result.Result{}, err
	}
	return res, nil
}

// pageURL is the URL relative links resolve against: the final URL after
// redirects when known.
func pageURL(final string, fallback *url.URL) *url.URL {
	if final != "" {
		if u, err := url.Parse(final); err == nil {
			return u
		}
	}
	return fallback
}

// Package server exposes extraction over HTTP for concurrent callers. Each
// request runs against its own scraper instances; only the connection pool
// of the application is shared.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/hyperifyio/dataminer/internal/app"
	"github.com/hyperifyio/dataminer/internal/export"
	"github.com/hyperifyio/dataminer/internal/extract"
	"github.com/hyperifyio/dataminer/internal/fetch"
	"github.com/hyperifyio/dataminer/internal/logctx"
	"github.com/hyperifyio/dataminer/internal/process"
	"github.com/hyperifyio/dataminer/internal/result"
	"github.com/hyperifyio/dataminer/internal/source"
)

// RequestIDHeader carries the per-request id in both directions.
const RequestIDHeader = "X-Request-ID"

// maxBody bounds request payloads.
const maxBody = 1 << 20

type Server struct {
	App *app.App
}

func New(a *app.App) *Server { return &Server{App: a} }

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestID)
	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/web", s.handleWeb)
		r.Post("/social", s.handleSocial)
		r.Post("/advice/extraction", s.handleExtractionAdvice)
	})
	return r
}

// requestID attaches a request-scoped logger, honouring an id sent by the
// caller.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if id := strings.TrimSpace(r.Header.Get(RequestIDHeader)); id != "" && len(id) <= 128 {
			ctx = logctx.WithID(ctx, id)
		}
		ctx, id := logctx.New(ctx)
		w.Header().Set(RequestIDHeader, id)
		start := time.Now()
		next.ServeHTTP(w, r.WithContext(ctx))
		logctx.From(ctx).Info().Str("path", r.URL.Path).Dur("took", time.Since(start)).Msg("request")
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Options overrides the configured fetch defaults for one request. Durations
// use Go syntax ("1.5s").
type Options struct {
	UserAgent       string `json:"user_agent,omitempty"`
	Delay           string `json:"delay,omitempty"`
	Timeout         string `json:"timeout,omitempty"`
	MaxPages        *int   `json:"max_pages,omitempty"`
	Limit           *int   `json:"limit,omitempty"`
	DateRange       string `json:"date_range,omitempty"`
	IncludeMetadata *bool  `json:"include_metadata,omitempty"`
	IncludeReplies  *bool  `json:"include_replies,omitempty"`
}

func (o Options) apply(base source.Options) (source.Options, error) {
	if o.UserAgent != "" {
		base.UserAgent = o.UserAgent
	}
	for _, d := range []struct {
		field string
		raw   string
		dst   *time.Duration
	}{{"delay", o.Delay, &base.Delay}, {"timeout", o.Timeout, &base.Timeout}} {
		if d.raw == "" {
			continue
		}
		v, err := time.ParseDuration(d.raw)
		if err != nil {
			return base, &source.ValidationError{Field: d.field, Reason: err.Error()}
		}
		*d.dst = v
	}
	if o.MaxPages != nil {
		base.MaxPages = *o.MaxPages
	}
	if o.Limit != nil {
		base.Limit = *o.Limit
	}
	if o.DateRange != "" {
		dr, err := source.ParseDateRange(o.DateRange)
		if err != nil {
			return base, err
		}
		base.DateRange = dr
	}
	if o.IncludeMetadata != nil {
		base.IncludeMetadata = *o.IncludeMetadata
	}
	if o.IncludeReplies != nil {
		base.IncludeReplies = *o.IncludeReplies
	}
	return base, nil
}

// common holds the fields shared by every extraction request.
type common struct {
	Options Options  `json:"options"`
	Steps   []string `json:"steps,omitempty"`
	Format  string   `json:"format,omitempty"`
}

type webRequest struct {
	URL      string `json:"url"`
	Method   string `json:"method"`
	Selector string `json:"selector,omitempty"`
	common
}

type socialRequest struct {
	Platform  string `json:"platform"`
	QueryKind string `json:"query_kind"`
	Query     string `json:"query"`
	common
}

func (s *Server) handleWeb(w http.ResponseWriter, r *http.Request) {
	var req webRequest
	if !decode(w, r, &req) {
		return
	}
	m, err := source.ParseMethod(req.Method)
	if err != nil {
		writeError(w, r, err)
		return
	}
	opts, err := req.Options.apply(s.App.Options())
	if err != nil {
		writeError(w, r, err)
		return
	}
	opts.Selector = req.Selector
	s.finish(w, r, req.common, func(ctx context.Context) (result.Result, error) {
		return s.App.Web(ctx, req.URL, m, opts)
	})
}

func (s *Server) handleSocial(w http.ResponseWriter, r *http.Request) {
	var req socialRequest
	if !decode(w, r, &req) {
		return
	}
	p, err := source.ParsePlatform(req.Platform)
	if err != nil {
		writeError(w, r, err)
		return
	}
	kind, err := source.ParseQueryKind(p, req.QueryKind)
	if err != nil {
		writeError(w, r, err)
		return
	}
	opts, err := req.Options.apply(s.App.Options())
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.finish(w, r, req.common, func(ctx context.Context) (result.Result, error) {
		return s.App.Social(ctx, source.Social(p, kind, req.Query), opts)
	})
}

// finish runs the extraction, applies processing steps and writes the
// result in the requested format.
func (s *Server) finish(w http.ResponseWriter, r *http.Request, c common, run func(context.Context) (result.Result, error)) {
	steps := make([]process.Step, 0, len(c.Steps))
	for _, raw := range c.Steps {
		st, err := process.ParseStep(raw)
		if err != nil {
			writeError(w, r, &source.ValidationError{Field: "steps", Reason: err.Error()})
			return
		}
		steps = append(steps, st)
	}
	var format export.Format
	if strings.TrimSpace(c.Format) != "" {
		f, err := export.ParseFormat(c.Format)
		if err != nil {
			writeError(w, r, &source.ValidationError{Field: "format", Reason: err.Error()})
			return
		}
		format = f
	}

	res, err := run(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if res, err = s.App.Process(res, steps); err != nil {
		writeError(w, r, err)
		return
	}
	if format == "" {
		writeJSON(w, http.StatusOK, res)
		return
	}
	w.Header().Set("Content-Type", contentType(format))
	if err := export.Write(r.Context(), w, res, format, export.Options{TableName: s.App.Config().TableName}); err != nil {
		logctx.From(r.Context()).Error().Err(err).Msg("export failed")
	}
}

type adviceRequest struct {
	URL  string `json:"url"`
	Goal string `json:"goal"`
}

func (s *Server) handleExtractionAdvice(w http.ResponseWriter, r *http.Request) {
	var req adviceRequest
	if !decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Goal) == "" {
		writeError(w, r, &source.ValidationError{Field: "goal", Reason: "empty"})
		return
	}
	writeJSON(w, http.StatusOK, s.App.Advisor().ExtractionAdvice(r.Context(), req.URL, req.Goal))
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, r, &source.ValidationError{Field: "body", Reason: err.Error()})
		return false
	}
	return true
}

func contentType(f export.Format) string {
	switch f {
	case export.FormatCSV:
		return "text/csv; charset=utf-8"
	case export.FormatJSON:
		return "application/json"
	case export.FormatHTML:
		return "text/html; charset=utf-8"
	case export.FormatPDF:
		return "application/pdf"
	case export.FormatSQLite:
		return "application/vnd.sqlite3"
	case export.FormatMarkdown:
		return "text/markdown; charset=utf-8"
	default:
		return "text/plain; charset=utf-8"
	}
}

// statusOf maps the error taxonomy onto HTTP statuses.
func statusOf(err error) int {
	var ve *source.ValidationError
	var uc *source.UnsupportedCombinationError
	var fe *fetch.Error
	var ee *extract.Error
	switch {
	case errors.As(err, &ve), errors.As(err, &uc):
		return http.StatusBadRequest
	case errors.As(err, &ee):
		return http.StatusUnprocessableEntity
	case errors.As(err, &fe):
		if fe.Timeout() {
			return http.StatusGatewayTimeout
		}
		return http.StatusBadGateway
	case errors.Is(err, context.Canceled):
		return 499
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	logctx.From(r.Context()).Warn().Err(err).Int("status", status).Msg("request failed")
	writeJSON(w, status, map[string]string{"error": err.Error(), "request_id": logctx.ID(r.Context())})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

package app

import (
	"time"

	"github.com/hyperifyio/dataminer/internal/social"
	"github.com/hyperifyio/dataminer/internal/source"
)

// Config holds runtime configuration for the application.
type Config struct {
	// Fetch defaults applied to every call unless a request overrides them.
	UserAgent  string
	Delay      time.Duration
	Timeout    time.Duration
	MaxPages   int
	Limit      int
	DateRange  string
	NoMetadata bool
	NoReplies  bool

	// Social endpoints
	NitterMirrors    []string
	InvidiousMirrors []string
	RedditBaseURL    string
	HackerNewsAPI    string
	ProbeTimeout     time.Duration

	// LLM
	LLMBaseURL string
	LLMModel   string
	LLMAPIKey  string

	// Output
	Format     string
	OutputPath string
	TableName  string

	// Server
	ListenAddr string

	Verbose bool
}

// Defaults used when neither flags, env nor file supply a value.
const (
	DefaultFormat     = "table"
	DefaultListenAddr = ":8080"
	DefaultMaxPages   = 1
	DefaultLimit      = 100
	DefaultDelay      = time.Second
	DefaultTimeout    = 30 * time.Second
)

// DefaultConfig returns the built-in settings.
func DefaultConfig() Config {
	return Config{
		UserAgent:  source.DefaultUserAgent,
		Delay:      DefaultDelay,
		Timeout:    DefaultTimeout,
		MaxPages:   DefaultMaxPages,
		Limit:      DefaultLimit,
		DateRange:  string(source.LastWeek),
		Format:     DefaultFormat,
		ListenAddr: DefaultListenAddr,
	}
}

// FetchOptions converts the fetch defaults into the per-call bundle.
func (c Config) FetchOptions() source.Options {
	dr, err := source.ParseDateRange(c.DateRange)
	if err != nil {
		dr = source.DateRange(c.DateRange)
	}
	return source.Options{
		UserAgent:       c.UserAgent,
		Delay:           c.Delay,
		Timeout:         c.Timeout,
		MaxPages:        c.MaxPages,
		Limit:           c.Limit,
		DateRange:       dr,
		IncludeMetadata: !c.NoMetadata,
		IncludeReplies:  !c.NoReplies,
	}
}

// SocialConfig selects the platform endpoints. Empty fields fall back to the
// built-in mirrors inside the social package.
func (c Config) SocialConfig() social.Config {
	return social.Config{
		NitterMirrors:    append([]string(nil), c.NitterMirrors...),
		InvidiousMirrors: append([]string(nil), c.InvidiousMirrors...),
		RedditBaseURL:    c.RedditBaseURL,
		HackerNewsAPI:    c.HackerNewsAPI,
		ProbeTimeout:     c.ProbeTimeout,
	}
}

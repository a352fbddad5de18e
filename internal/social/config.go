package social

import (
	"strings"
	"time"

	"github.com/hyperifyio/dataminer/internal/fetch"
)

// Config points platforms at their endpoints. Mirror lists are tried in
// order.
type Config struct {
	NitterMirrors    []string      `yaml:"nitter_mirrors" json:"nitter_mirrors"`
	InvidiousMirrors []string      `yaml:"invidious_mirrors" json:"invidious_mirrors"`
	RedditBaseURL    string        `yaml:"reddit_base_url" json:"reddit_base_url"`
	HackerNewsAPI    string        `yaml:"hackernews_api" json:"hackernews_api"`
	ProbeTimeout     time.Duration `yaml:"probe_timeout" json:"probe_timeout"`
}

var (
	DefaultNitterMirrors = []string{
		"https://nitter.net/",
		"https://nitter.unixfox.eu/",
		"https://nitter.kavin.rocks/",
		"https://nitter.1d4.us/",
	}
	DefaultInvidiousMirrors = []string{
		"https://invidious.snopyta.org",
		"https://invidious.kavin.rocks",
		"https://invidio.us",
	}
)

const (
	DefaultRedditBaseURL = "https://www.reddit.com"
	DefaultHackerNewsAPI = "https://hacker-news.firebaseio.com/v0"
)

// DefaultConfig returns the built-in endpoints.
func DefaultConfig() Config {
	return Config{}.withDefaults()
}

func (c Config) withDefaults() Config {
	if len(c.NitterMirrors) == 0 {
		c.NitterMirrors = append([]string(nil), DefaultNitterMirrors...)
	}
	if len(c.InvidiousMirrors) == 0 {
		c.InvidiousMirrors = append([]string(nil), DefaultInvidiousMirrors...)
	}
	if c.RedditBaseURL == "" {
		c.RedditBaseURL = DefaultRedditBaseURL
	}
	if c.HackerNewsAPI == "" {
		c.HackerNewsAPI = DefaultHackerNewsAPI
	}
	if c.ProbeTimeout <= 0 {
		c.ProbeTimeout = fetch.DefaultProbeTimeout
	}
	c.RedditBaseURL = strings.TrimRight(c.RedditBaseURL, "/")
	c.HackerNewsAPI = strings.TrimRight(c.HackerNewsAPI, "/")
	return c
}

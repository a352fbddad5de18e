package app

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// envBinding ties one environment variable to a Config field. With
// force=false set only fills unset fields.
type envBinding struct {
	key string
	set func(cfg *Config, v string, force bool)
}

func envString(get func(*Config) *string) func(*Config, string, bool) {
	return func(cfg *Config, v string, force bool) {
		if dst := get(cfg); force || *dst == "" {
			*dst = v
		}
	}
}

func envInt(get func(*Config) *int) func(*Config, string, bool) {
	return func(cfg *Config, v string, force bool) {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil || n < 0 {
			return
		}
		if dst := get(cfg); force || *dst == 0 {
			*dst = n
		}
	}
}

func envDuration(get func(*Config) *time.Duration) func(*Config, string, bool) {
	return func(cfg *Config, v string, force bool) {
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return
		}
		if dst := get(cfg); force || *dst == 0 {
			*dst = d
		}
	}
}

func envList(get func(*Config) *[]string) func(*Config, string, bool) {
	return func(cfg *Config, v string, force bool) {
		var list []string
		for _, p := range strings.Split(v, ",") {
			if s := strings.TrimSpace(p); s != "" {
				list = append(list, s)
			}
		}
		if dst := get(cfg); len(list) > 0 && (force || len(*dst) == 0) {
			*dst = list
		}
	}
}

func envBool(get func(*Config) *bool) func(*Config, string, bool) {
	return func(cfg *Config, v string, force bool) {
		dst := get(cfg)
		if *dst && !force {
			return
		}
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "on":
			*dst = true
		case "0", "false", "no", "off":
			if force {
				*dst = false
			}
		}
	}
}

// envBindings lists variables in precedence order: for the API key,
// LLM_API_KEY is consulted after OPENAI_API_KEY so it wins when forced.
var envBindings = []envBinding{
	{"DATAMINER_USER_AGENT", envString(func(c *Config) *string { return &c.UserAgent })},
	{"DATAMINER_DELAY", envDuration(func(c *Config) *time.Duration { return &c.Delay })},
	{"DATAMINER_TIMEOUT", envDuration(func(c *Config) *time.Duration { return &c.Timeout })},
	{"DATAMINER_MAX_PAGES", envInt(func(c *Config) *int { return &c.MaxPages })},
	{"DATAMINER_LIMIT", envInt(func(c *Config) *int { return &c.Limit })},
	{"DATAMINER_DATE_RANGE", envString(func(c *Config) *string { return &c.DateRange })},
	{"DATAMINER_NO_METADATA", envBool(func(c *Config) *bool { return &c.NoMetadata })},
	{"DATAMINER_NO_REPLIES", envBool(func(c *Config) *bool { return &c.NoReplies })},
	{"DATAMINER_NITTER_MIRRORS", envList(func(c *Config) *[]string { return &c.NitterMirrors })},
	{"DATAMINER_INVIDIOUS_MIRRORS", envList(func(c *Config) *[]string { return &c.InvidiousMirrors })},
	{"DATAMINER_REDDIT_URL", envString(func(c *Config) *string { return &c.RedditBaseURL })},
	{"DATAMINER_HN_API", envString(func(c *Config) *string { return &c.HackerNewsAPI })},
	{"DATAMINER_PROBE_TIMEOUT", envDuration(func(c *Config) *time.Duration { return &c.ProbeTimeout })},
	{"DATAMINER_FORMAT", envString(func(c *Config) *string { return &c.Format })},
	{"DATAMINER_OUTPUT", envString(func(c *Config) *string { return &c.OutputPath })},
	{"DATAMINER_TABLE", envString(func(c *Config) *string { return &c.TableName })},
	{"DATAMINER_ADDR", envString(func(c *Config) *string { return &c.ListenAddr })},
	{"DATAMINER_VERBOSE", envBool(func(c *Config) *bool { return &c.Verbose })},
	{"LLM_BASE_URL", envString(func(c *Config) *string { return &c.LLMBaseURL })},
	{"LLM_MODEL", envString(func(c *Config) *string { return &c.LLMModel })},
	{"OPENAI_API_KEY", envString(func(c *Config) *string { return &c.LLMAPIKey })},
	{"LLM_API_KEY", envString(func(c *Config) *string { return &c.LLMAPIKey })},
}

func applyEnv(cfg *Config, force bool) {
	if cfg == nil {
		return
	}
	for _, b := range envBindings {
		if v, ok := os.LookupEnv(b.key); ok && strings.TrimSpace(v) != "" {
			b.set(cfg, v, force)
		}
	}
}

// ApplyEnvToConfig populates unset fields of cfg from environment variables.
// Explicit cfg values take precedence over env.
func ApplyEnvToConfig(cfg *Config) { applyEnv(cfg, false) }

// ApplyEnvOverrides overwrites cfg fields whose variables are set, letting env
// take precedence over a config file.
func ApplyEnvOverrides(cfg *Config) { applyEnv(cfg, true) }

package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	yaml "gopkg.in/yaml.v3"

	"github.com/hyperifyio/dataminer/internal/export"
	"github.com/hyperifyio/dataminer/internal/source"
)

// FileConfig is the single-file configuration schema. Sections map onto the
// flag groups of the CLI.
type FileConfig struct {
	Fetch struct {
		UserAgent string        `yaml:"userAgent" json:"userAgent"`
		Delay     time.Duration `yaml:"delay" json:"delay"`
		Timeout   time.Duration `yaml:"timeout" json:"timeout"`
		MaxPages  int           `yaml:"maxPages" json:"maxPages"`
		Limit     int           `yaml:"limit" json:"limit"`
		DateRange string        `yaml:"dateRange" json:"dateRange"`
		Metadata  *bool         `yaml:"metadata" json:"metadata"`
		Replies   *bool         `yaml:"replies" json:"replies"`
	} `yaml:"fetch" json:"fetch"`

	Social struct {
		Nitter       []string      `yaml:"nitter" json:"nitter"`
		Invidious    []string      `yaml:"invidious" json:"invidious"`
		Reddit       string        `yaml:"reddit" json:"reddit"`
		HackerNews   string        `yaml:"hackerNews" json:"hackerNews"`
		ProbeTimeout time.Duration `yaml:"probeTimeout" json:"probeTimeout"`
	} `yaml:"social" json:"social"`

	LLM struct {
		BaseURL string `yaml:"base" json:"base"`
		Model   string `yaml:"model" json:"model"`
		APIKey  string `yaml:"key" json:"key"`
	} `yaml:"llm" json:"llm"`

	Output struct {
		Format string `yaml:"format" json:"format"`
		Path   string `yaml:"path" json:"path"`
		Table  string `yaml:"table" json:"table"`
	} `yaml:"output" json:"output"`

	Server struct {
		Addr string `yaml:"addr" json:"addr"`
	} `yaml:"server" json:"server"`

	Verbose bool `yaml:"verbose" json:"verbose"`
}

// LoadConfigFile reads YAML or JSON into FileConfig.
func LoadConfigFile(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse yaml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse json: %w", err)
		}
	default:
		if err := yaml.Unmarshal(b, &fc); err != nil {
			if jerr := json.Unmarshal(b, &fc); jerr != nil {
				return fc, fmt.Errorf("parse config: %v (yaml) / %v (json)", err, jerr)
			}
		}
	}
	return fc, nil
}

// ApplyFileConfig overlays file values onto cfg wherever cfg still holds its
// zero or built-in default, so explicit flags keep precedence.
func ApplyFileConfig(cfg *Config, fc FileConfig) {
	if cfg == nil {
		return
	}
	d := DefaultConfig()
	str := func(dst *string, def, v string) {
		if (*dst == "" || *dst == def) && v != "" {
			*dst = v
		}
	}
	num := func(dst *int, def, v int) {
		if (*dst == 0 || *dst == def) && v > 0 {
			*dst = v
		}
	}
	dur := func(dst *time.Duration, def, v time.Duration) {
		if (*dst == 0 || *dst == def) && v > 0 {
			*dst = v
		}
	}
	list := func(dst *[]string, v []string) {
		if len(*dst) == 0 && len(v) > 0 {
			*dst = append([]string(nil), v...)
		}
	}

	str(&cfg.UserAgent, d.UserAgent, fc.Fetch.UserAgent)
	dur(&cfg.Delay, d.Delay, fc.Fetch.Delay)
	dur(&cfg.Timeout, d.Timeout, fc.Fetch.Timeout)
	num(&cfg.MaxPages, d.MaxPages, fc.Fetch.MaxPages)
	num(&cfg.Limit, d.Limit, fc.Fetch.Limit)
	str(&cfg.DateRange, d.DateRange, fc.Fetch.DateRange)
	if !cfg.NoMetadata && fc.Fetch.Metadata != nil && !*fc.Fetch.Metadata {
		cfg.NoMetadata = true
	}
	if !cfg.NoReplies && fc.Fetch.Replies != nil && !*fc.Fetch.Replies {
		cfg.NoReplies = true
	}

	list(&cfg.NitterMirrors, fc.Social.Nitter)
	list(&cfg.InvidiousMirrors, fc.Social.Invidious)
	str(&cfg.RedditBaseURL, "", fc.Social.Reddit)
	str(&cfg.HackerNewsAPI, "", fc.Social.HackerNews)
	dur(&cfg.ProbeTimeout, 0, fc.Social.ProbeTimeout)

	str(&cfg.LLMBaseURL, "", fc.LLM.BaseURL)
	str(&cfg.LLMModel, "", fc.LLM.Model)
	str(&cfg.LLMAPIKey, "", fc.LLM.APIKey)

	str(&cfg.Format, d.Format, fc.Output.Format)
	str(&cfg.OutputPath, "", fc.Output.Path)
	str(&cfg.TableName, "", fc.Output.Table)
	str(&cfg.ListenAddr, d.ListenAddr, fc.Server.Addr)
	if !cfg.Verbose && fc.Verbose {
		cfg.Verbose = true
	}
}

// ValidateConfig rejects settings no run could use.
func ValidateConfig(cfg Config) error {
	if cfg.MaxPages < 0 || cfg.Limit < 0 {
		return errors.New("config: negative limits are not allowed")
	}
	if cfg.Delay < 0 || cfg.Timeout < 0 || cfg.ProbeTimeout < 0 {
		return errors.New("config: negative durations are not allowed")
	}
	if _, err := source.ParseDateRange(cfg.DateRange); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if strings.TrimSpace(cfg.Format) != "" {
		if _, err := export.ParseFormat(cfg.Format); err != nil {
			return fmt.Errorf("config: %w", err)
		}
	}
	return nil
}

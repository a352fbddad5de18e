// Package advisor asks an OpenAI-compatible model for advice about scraped
// data: how to process, clean, visualize or summarize it, and how to extract
// data from a site in the first place.
//
// Every call degrades to deterministic text derived from the data when no
// client is configured or the model call fails. Nothing in the extraction
// pipeline branches on advice.
package advisor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/dataminer/internal/export"
	"github.com/hyperifyio/dataminer/internal/llm"
	"github.com/hyperifyio/dataminer/internal/result"
)

// DefaultModel is used when Advisor.Model is empty.
const DefaultModel = "gpt-4o"

const (
	sampleRows  = 10
	sampleChars = 4000
)

// Advisor wraps an optional chat client. A nil Client is valid and always
// produces the canned advice.
type Advisor struct {
	Client llm.Client
	Model  string
}

func New(c llm.Client, model string) *Advisor {
	return &Advisor{Client: c, Model: model}
}

var errNotConfigured = errors.New("advisor not configured")

func (a *Advisor) ask(ctx context.Context, prompt string, jsonOut bool, maxTokens int) (string, error) {
	if a == nil || a.Client == nil {
		return "", errNotConfigured
	}
	model := a.Model
	if model == "" {
		model = DefaultModel
	}
	log.Debug().Str("stage", "advisor").Str("model", model).Int("prompt_len", len(prompt)).Msg("advisor prompt")
	return llm.Ask(ctx, a.Client, llm.Request{
		Model:       model,
		Prompt:      prompt,
		JSON:        jsonOut,
		MaxTokens:   maxTokens,
		Temperature: 0.2,
	})
}

// askJSON decodes the model's JSON answer into out.
func (a *Advisor) askJSON(ctx context.Context, prompt string, maxTokens int, out any) error {
	raw, err := a.ask(ctx, prompt, true, maxTokens)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return fmt.Errorf("parse advisor json: %w", err)
	}
	return nil
}

func logFallback(op string, err error) {
	if errors.Is(err, errNotConfigured) {
		log.Debug().Str("op", op).Msg("advisor not configured; using canned advice")
		return
	}
	log.Warn().Err(err).Str("op", op).Msg("advisor call failed; using canned advice")
}

// sample renders up to ten rows as a text table, or the text itself, capped
// at a few thousand characters.
func sample(r result.Result) string {
	var s string
	switch r.Kind {
	case result.KindText, result.KindScalar:
		s = r.Text
	default:
		t := r.AsTable()
		head := t
		if len(t.Rows) > sampleRows {
			head = result.Table{Columns: t.Columns, Rows: t.Rows[:sampleRows]}
		}
		var buf bytes.Buffer
		if err := export.Pretty(&buf, result.OfTable(head)); err != nil {
			return ""
		}
		s = "Table sample:\n" + buf.String()
	}
	if len(s) > sampleChars {
		cut := sampleChars
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		s = s[:cut] + "...\n[truncated]"
	}
	return s
}

func isTable(r result.Result) bool {
	return r.Kind == result.KindTable
}

func bullets(lines ...string) string {
	var b strings.Builder
	for _, l := range lines {
		b.WriteString("- ")
		b.WriteString(l)
		b.WriteByte('\n')
	}
	return b.String()
}

package advisor

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperifyio/dataminer/internal/result"
)

type fakeClient struct {
	content string
	err     error
	calls   int
	last    openai.ChatCompletionRequest
}

func (f *fakeClient) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.calls++
	f.last = req
	if f.err != nil {
		return openai.ChatCompletionResponse{}, f.err
	}
	return openai.ChatCompletionResponse{Choices: []openai.ChatCompletionChoice{{Message: openai.ChatCompletionMessage{Content: f.content}}}}, nil
}

func cities() result.Result {
	return result.OfTable(result.FromRows([]result.Row{
		{{Key: "city", Value: "Oslo"}, {Key: "pop", Value: "709,000"}, {Key: "area", Value: 454.0}, {Key: "founded", Value: "1040-01-01"}},
		{{Key: "city", Value: "Bergen"}, {Key: "pop", Value: "291,000"}, {Key: "area", Value: 465.0}, {Key: "founded", Value: "1070-01-01"}},
		{{Key: "city", Value: "Bergen"}, {Key: "pop", Value: "291,000"}, {Key: "area", Value: 465.0}, {Key: "founded", Value: "1070-01-01"}},
		{{Key: "city", Value: nil}, {Key: "pop", Value: "1"}, {Key: "area", Value: 1.0}, {Key: "founded", Value: "1999-01-01"}},
	}))
}

func TestProfile(t *testing.T) {
	p := profileOf(cities().Table)
	assert.Equal(t, []string{"pop", "area"}, p.Numeric)
	assert.Equal(t, []string{"founded"}, p.Datetime)
	assert.Equal(t, []string{"city"}, p.Categorical)
	assert.Equal(t, 1, p.Missing["city"])
	assert.Equal(t, 1, p.Duplicates)
}

func TestProcessingSuggestions_UsesModelAnswer(t *testing.T) {
	c := &fakeClient{content: "Overview: fine"}
	a := New(c, "")
	out := a.ProcessingSuggestions(context.Background(), cities())
	assert.Equal(t, "Overview: fine", out)
	assert.Equal(t, DefaultModel, c.last.Model)
	assert.Contains(t, c.last.Messages[0].Content, "Oslo")
	assert.Nil(t, c.last.ResponseFormat)
}

func TestProcessingSuggestions_FallbackWithoutClient(t *testing.T) {
	a := New(nil, "")
	out := a.ProcessingSuggestions(context.Background(), cities())
	assert.True(t, strings.HasPrefix(out, "# Data Processing Suggestions"))
	assert.Contains(t, out, "4 rows and 4 columns")

	out = a.ProcessingSuggestions(context.Background(), result.OfText("hello"))
	assert.Contains(t, out, "about 5 characters")
}

func TestCleaningSuggestions_FallbackOnError(t *testing.T) {
	c := &fakeClient{err: errors.New("boom")}
	plan := New(c, "m").CleaningSuggestions(context.Background(), cities())
	require.Equal(t, 1, c.calls)
	assert.Equal(t, "The dataset has 4 rows and 4 columns.", plan.Overview)

	var issues []string
	for _, op := range plan.Operations {
		issues = append(issues, op.Column+": "+op.Issue)
	}
	assert.Contains(t, issues, "city: Missing values (1)")
	assert.Contains(t, issues, "all: Duplicate rows (1)")
	assert.Contains(t, issues, "pop: Text column with numeric values")
	assert.Contains(t, issues, "founded: Potential datetime column")
	assert.NotContains(t, issues, "area: Text column with numeric values")
	assert.Equal(t, "High", plan.Operations[0].Priority)
}

func TestCleaningSuggestions_DecodesJSON(t *testing.T) {
	c := &fakeClient{content: `{"overview":"ok","operations":[{"column":"pop","issue":"commas","recommendation":"strip","priority":"Low"}]}`}
	plan := New(c, "m").CleaningSuggestions(context.Background(), cities())
	assert.Equal(t, "ok", plan.Overview)
	require.Len(t, plan.Operations, 1)
	assert.Equal(t, "strip", plan.Operations[0].Recommendation)
	require.NotNil(t, c.last.ResponseFormat)
}

func TestCleaningSuggestions_BadJSONFallsBack(t *testing.T) {
	plan := New(&fakeClient{content: "not json"}, "m").CleaningSuggestions(context.Background(), result.OfText("x"))
	require.Len(t, plan.Operations, 1)
	assert.Equal(t, "all", plan.Operations[0].Column)
}

func TestVisualizationSuggestions_Fallback(t *testing.T) {
	out := New(nil, "").VisualizationSuggestions(context.Background(), cities())
	assert.Contains(t, out, "2 numeric, 1 categorical and 1 datetime columns")
	assert.Contains(t, out, "1. **Bar Chart**: distribution of city")
	assert.Contains(t, out, "**Scatter Plot**: pop vs area")
	assert.Contains(t, out, "**Line Chart**: pop over founded")
	assert.NotContains(t, out, "Heatmap")
}

func TestSocialAnalysis_Fallback(t *testing.T) {
	out := New(nil, "").SocialAnalysis(context.Background(), "Reddit", cities())
	assert.True(t, strings.HasPrefix(out, "# Reddit Analysis Suggestions"))
	assert.Contains(t, out, "4 entries from Reddit")
}

func TestExtractionAdvice(t *testing.T) {
	c := &fakeClient{content: `{"explanation":"use tables","code_sample":"x","css_selectors":{"title":"h1"},"challenges":["paging",{"challenge":"js","solution":"render"}]}`}
	adv := New(c, "m").ExtractionAdvice(context.Background(), "https://example.com", "titles")
	assert.Equal(t, "use tables", adv.Explanation)
	assert.Equal(t, "h1", adv.CSSSelectors["title"])
	require.Len(t, adv.Challenges, 2)
	assert.Equal(t, Challenge{Challenge: "paging"}, adv.Challenges[0])
	assert.Equal(t, Challenge{Challenge: "js", Solution: "render"}, adv.Challenges[1])
	assert.Contains(t, c.last.Messages[0].Content, "Website URL: https://example.com")
}

func TestExtractionAdvice_Fallbacks(t *testing.T) {
	adv := New(nil, "").ExtractionAdvice(context.Background(), "", "titles")
	assert.Contains(t, adv.Explanation, "OPENAI_API_KEY")
	assert.Equal(t, codeTemplate, adv.CodeSample)

	adv = New(&fakeClient{err: errors.New("quota")}, "m").ExtractionAdvice(context.Background(), "", "titles")
	assert.Contains(t, adv.Explanation, "quota")
}

func TestSummarize(t *testing.T) {
	c := &fakeClient{content: `{"overview":"cities","key_points":["two big"],"recommendations":["map them"]}`}
	s := New(c, "m").Summarize(context.Background(), cities(), "population")
	assert.Equal(t, "cities", s.Overview)
	assert.Equal(t, []string{"two big"}, s.KeyPoints)
	assert.Contains(t, c.last.Messages[0].Content, "Focus especially on: population")
	assert.Contains(t, c.last.Messages[0].Content, "4 rows x 4 columns")

	s = New(nil, "").Summarize(context.Background(), cities(), "")
	assert.Contains(t, s.Overview, "not available")
	assert.Len(t, s.KeyPoints, 2)
}

func TestSample_Truncates(t *testing.T) {
	long := strings.Repeat("a", sampleChars+10)
	s := sample(result.OfText(long))
	assert.True(t, strings.HasSuffix(s, "[truncated]"))
	assert.Len(t, s, sampleChars+len("...\n[truncated]"))
}

func TestSample_TruncatesOnRuneBoundary(t *testing.T) {
	// "€" is three bytes, so sampleChars lands inside a rune.
	long := strings.Repeat("€", sampleChars)
	s := sample(result.OfText(long))
	assert.True(t, utf8.ValidString(s))
	assert.True(t, strings.HasSuffix(s, "€...\n[truncated]"))
}

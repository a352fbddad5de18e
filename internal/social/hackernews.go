package social

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hyperifyio/dataminer/internal/fallback"
	"github.com/hyperifyio/dataminer/internal/logctx"
	"github.com/hyperifyio/dataminer/internal/normalize"
	"github.com/hyperifyio/dataminer/internal/result"
	"github.com/hyperifyio/dataminer/internal/source"
)

// HackerNews reads story lists from the Firebase API.
type HackerNews struct {
	BaseURL string
}

// hnTopComments bounds the replies fetched per story.
const hnTopComments = 5

var hnLists = map[string]string{
	"Top Stories": "topstories",
	"New Stories": "newstories",
	"Ask HN":      "askstories",
	"Show HN":     "showstories",
}

type hnItem struct {
	ID          int64   `json:"id"`
	By          string  `json:"by"`
	Time        int64   `json:"time"`
	Title       string  `json:"title"`
	URL         string  `json:"url"`
	Text        string  `json:"text"`
	Type        string  `json:"type"`
	Score       int     `json:"score"`
	Descendants int     `json:"descendants"`
	Kids        []int64 `json:"kids"`
	Deleted     bool    `json:"deleted"`
}

func (h *HackerNews) Name() source.Platform { return source.PlatformHN }

// Collect walks the story id list one page of Limit ids at a time, for at
// most MaxPages pages, keeping stories that pass the cutoff and query.
// A story that fails to load is skipped.
func (h *HackerNews) Collect(ctx context.Context, env *Env, d source.Descriptor) (Batch, error) {
	list, ok := hnLists[d.QueryKind]
	if !ok {
		return Batch{}, &source.ValidationError{Field: "query_kind", Reason: "unsupported HackerNews query type: " + d.QueryKind}
	}
	var ids []int64
	if err := env.GetJSON(ctx, h.BaseURL+"/"+list+".json", &ids); err != nil {
		return Batch{}, err
	}
	budget := env.Opts.Limit * env.Opts.MaxPages
	if budget < len(ids) {
		ids = ids[:budget]
	}

	b := Batch{TimeKey: "time", Noun: "HackerNews stories"}
	for _, id := range ids {
		if len(b.Items) >= env.Opts.Limit {
			break
		}
		var item *hnItem
		if err := env.GetJSON(ctx, h.itemURL(id), &item); err != nil {
			logctx.From(ctx).Warn().Err(err).Int64("id", id).Msg("error fetching story")
			continue
		}
		if item == nil {
			continue
		}
		row := h.storyRow(id, item, env.Opts.IncludeMetadata)
		if !env.Keep(row, b.TimeKey) || !matchesQuery(item, d.Query) {
			continue
		}
		if env.Opts.IncludeReplies && len(item.Kids) > 0 {
			row = append(row, result.Field{Key: "top_comments", Value: h.topComments(ctx, env, item.Kids)})
		}
		b.Items = append(b.Items, row)
	}
	return b, nil
}

func (h *HackerNews) Unavailable(_ source.Descriptor, err error) result.Result {
	return fallback.HackerNews(err).Result(result.ReasonUnreachable)
}

func (h *HackerNews) itemURL(id int64) string {
	return fmt.Sprintf("%s/item/%d.json", h.BaseURL, id)
}

func (h *HackerNews) storyRow(id int64, it *hnItem, metadata bool) result.Row {
	row := result.Row{
		{Key: "title", Value: it.Title},
		{Key: "by", Value: it.By},
	}
	// undated items carry no time field so the cutoff keeps them
	if it.Time > 0 {
		row = append(row, result.Field{Key: "time", Value: normalize.FormatTime(time.Unix(it.Time, 0))})
	}
	row = append(row,
		result.Field{Key: "url", Value: it.URL},
		result.Field{Key: "text", Value: it.Text},
		result.Field{Key: "type", Value: it.Type},
		result.Field{Key: "hn_link", Value: fmt.Sprintf("https://news.ycombinator.com/item?id=%d", id)},
	)
	if metadata {
		row = append(row,
			result.Field{Key: "score", Value: it.Score},
			result.Field{Key: "descendants", Value: it.Descendants},
		)
	}
	return row
}

func (h *HackerNews) topComments(ctx context.Context, env *Env, kids []int64) []result.Row {
	if len(kids) > hnTopComments {
		kids = kids[:hnTopComments]
	}
	out := []result.Row{}
	for _, kid := range kids {
		var c *hnItem
		if err := env.GetJSON(ctx, h.itemURL(kid), &c); err != nil {
			logctx.From(ctx).Warn().Err(err).Int64("id", kid).Msg("error fetching comment")
			continue
		}
		if c == nil || c.Type != "comment" || c.Deleted {
			continue
		}
		row := result.Row{
			{Key: "by", Value: c.By},
			{Key: "text", Value: c.Text},
			{Key: "time", Value: unixOrEmpty(c.Time)},
		}
		if env.Opts.IncludeMetadata {
			row = append(row, result.Field{Key: "reply_count", Value: len(c.Kids)})
		}
		out = append(out, row)
	}
	return out
}

// matchesQuery is a case-insensitive substring match over title, text, url
// and author. An empty query matches everything.
func matchesQuery(it *hnItem, query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	for _, f := range []string{it.Title, it.Text, it.URL, it.By} {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

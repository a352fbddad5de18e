package social

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/hyperifyio/dataminer/internal/fallback"
	"github.com/hyperifyio/dataminer/internal/logctx"
	"github.com/hyperifyio/dataminer/internal/normalize"
	"github.com/hyperifyio/dataminer/internal/result"
	"github.com/hyperifyio/dataminer/internal/source"
)

// Reddit reads the public JSON listings.
type Reddit struct {
	BaseURL string
}

// redditPageSize is the largest page the listing endpoints accept.
const redditPageSize = 100

// redditTopComments bounds the replies fetched per post.
const redditTopComments = 5

type redditListing struct {
	Data struct {
		After    string `json:"after"`
		Children []struct {
			Kind string          `json:"kind"`
			Data redditThingData `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type redditThingData struct {
	Title             string  `json:"title"`
	Author            string  `json:"author"`
	Subreddit         string  `json:"subreddit"`
	Selftext          string  `json:"selftext"`
	URL               string  `json:"url"`
	Permalink         string  `json:"permalink"`
	CreatedUTC        float64 `json:"created_utc"`
	Score             int     `json:"score"`
	UpvoteRatio       float64 `json:"upvote_ratio"`
	NumComments       int     `json:"num_comments"`
	IsVideo           bool    `json:"is_video"`
	IsOriginalContent bool    `json:"is_original_content"`
	IsSelf            bool    `json:"is_self"`
	Body              string  `json:"body"`
}

func (r *Reddit) Name() source.Platform { return source.PlatformReddit }

func (r *Reddit) Collect(ctx context.Context, env *Env, d source.Descriptor) (Batch, error) {
	endpoint, err := r.listingURL(d.QueryKind, d.Query)
	if err != nil {
		return Batch{}, err
	}
	pageSize := env.Opts.Limit
	if pageSize > redditPageSize {
		pageSize = redditPageSize
	}

	b := Batch{TimeKey: "created_utc", Noun: "Reddit posts"}
	after := ""
	for page := 0; page < env.Opts.MaxPages && len(b.Items) < env.Opts.Limit; page++ {
		u := withParams(endpoint, map[string]string{"limit": fmt.Sprint(pageSize), "after": after})
		var listing redditListing
		if err := env.GetJSON(ctx, u, &listing); err != nil {
			if page == 0 {
				return Batch{}, err
			}
			logctx.From(ctx).Warn().Err(err).Int("page", page).Msg("reddit pagination stopped")
			break
		}
		for _, child := range listing.Data.Children {
			if len(b.Items) >= env.Opts.Limit {
				break
			}
			row := r.postRow(child.Data, env.Opts.IncludeMetadata)
			if !env.Keep(row, b.TimeKey) {
				continue
			}
			if env.Opts.IncludeReplies && child.Data.NumComments > 0 {
				if comments, err := r.topComments(ctx, env, child.Data.Permalink); err != nil {
					logctx.From(ctx).Warn().Err(err).Str("permalink", child.Data.Permalink).Msg("error fetching comments")
				} else {
					row = append(row, result.Field{Key: "top_comments", Value: comments})
				}
			}
			b.Items = append(b.Items, row)
		}
		after = listing.Data.After
		if after == "" {
			break
		}
	}
	return b, nil
}

func (r *Reddit) Unavailable(_ source.Descriptor, err error) result.Result {
	return fallback.Reddit(err).Result(result.ReasonUnreachable)
}

func (r *Reddit) listingURL(kind, query string) (string, error) {
	q := strings.TrimSpace(query)
	switch kind {
	case "Subreddit":
		name := strings.Trim(strings.TrimPrefix(strings.TrimPrefix(q, "/"), "r/"), "/")
		return r.BaseURL + "/r/" + url.PathEscape(name) + ".json", nil
	case "User":
		name := strings.Trim(strings.TrimPrefix(strings.TrimPrefix(strings.TrimPrefix(q, "/"), "user/"), "u/"), "/")
		return r.BaseURL + "/user/" + url.PathEscape(name) + "/submitted.json", nil
	case "Search Term":
		return r.BaseURL + "/search.json?q=" + url.QueryEscape(q), nil
	}
	return "", &source.ValidationError{Field: "query_kind", Reason: "unsupported Reddit query type: " + kind}
}

func (r *Reddit) postRow(p redditThingData, metadata bool) result.Row {
	row := result.Row{
		{Key: "title", Value: p.Title},
		{Key: "author", Value: p.Author},
		{Key: "subreddit", Value: p.Subreddit},
		{Key: "selftext", Value: p.Selftext},
		{Key: "url", Value: p.URL},
		{Key: "permalink", Value: "https://www.reddit.com" + p.Permalink},
	}
	// undated posts carry no created_utc so the cutoff keeps them
	if p.CreatedUTC > 0 {
		row = append(row, result.Field{Key: "created_utc", Value: unixString(p.CreatedUTC)})
	}
	if metadata {
		row = append(row,
			result.Field{Key: "score", Value: p.Score},
			result.Field{Key: "upvote_ratio", Value: p.UpvoteRatio},
			result.Field{Key: "num_comments", Value: p.NumComments},
			result.Field{Key: "is_video", Value: p.IsVideo},
			result.Field{Key: "is_original_content", Value: p.IsOriginalContent},
			result.Field{Key: "is_self", Value: p.IsSelf},
		)
	}
	return row
}

// topComments reads the first top-level t1 comments of a thread.
func (r *Reddit) topComments(ctx context.Context, env *Env, permalink string) ([]result.Row, error) {
	var listings []redditListing
	if err := env.GetJSON(ctx, r.BaseURL+strings.TrimRight(permalink, "/")+".json", &listings); err != nil {
		return nil, err
	}
	out := []result.Row{}
	if len(listings) < 2 {
		return out, nil
	}
	children := listings[1].Data.Children
	if len(children) > redditTopComments {
		children = children[:redditTopComments]
	}
	for _, c := range children {
		if c.Kind != "t1" {
			continue
		}
		out = append(out, result.Row{
			{Key: "author", Value: c.Data.Author},
			{Key: "body", Value: c.Data.Body},
			{Key: "score", Value: c.Data.Score},
			{Key: "created_utc", Value: unixString(c.Data.CreatedUTC)},
		})
	}
	return out, nil
}

func unixString(sec float64) string {
	if sec <= 0 {
		return ""
	}
	return normalize.FormatTime(time.Unix(int64(sec), 0))
}

// withParams sets non-empty query parameters on raw.
func withParams(raw string, params map[string]string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	q := u.Query()
	for k, v := range params {
		if v != "" {
			q.Set(k, v)
		}
	}
	u.RawQuery = q.Encode()
	return u.String()
}

package social

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperifyio/dataminer/internal/normalize"
	"github.com/hyperifyio/dataminer/internal/result"
	"github.com/hyperifyio/dataminer/internal/source"
)

var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func jsonServer(t *testing.T, routes map[string]any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.URL.Path
		if r.URL.RawQuery != "" {
			if _, ok := routes[key+"?"+r.URL.RawQuery]; ok {
				key += "?" + r.URL.RawQuery
			}
		}
		v, ok := routes[key]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(v)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func downServer(t *testing.T, hits *int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newScraper(cfg Config) *Scraper {
	s := New(nil, cfg)
	s.Now = func() time.Time { return fixedNow }
	return s
}

func baseOpts() source.Options {
	return source.Options{Timeout: 2 * time.Second, MaxPages: 1, Limit: 10, DateRange: source.AllTime}
}

func TestHackerNews_LastDayKeepsRecentAndUndated(t *testing.T) {
	srv := jsonServer(t, map[string]any{
		"/v0/topstories.json": []int{1, 2, 3},
		"/v0/item/1.json":     map[string]any{"id": 1, "by": "ada", "title": "fresh", "time": fixedNow.Add(-time.Hour).Unix(), "type": "story"},
		"/v0/item/2.json":     map[string]any{"id": 2, "by": "bob", "title": "stale", "time": fixedNow.Add(-48 * time.Hour).Unix(), "type": "story"},
		"/v0/item/3.json":     map[string]any{"id": 3, "by": "cy", "title": "undated", "type": "story"},
	})
	o := baseOpts()
	o.DateRange = source.LastDay
	o.IncludeReplies = false

	res, err := newScraper(Config{HackerNewsAPI: srv.URL + "/v0"}).Scrape(context.Background(), source.Social(source.PlatformHN, "Top Stories", ""), o)
	require.NoError(t, err)
	require.Equal(t, result.KindTable, res.Kind)
	require.Equal(t, 2, res.Table.Len())
	assert.Equal(t, "fresh", res.Table.Rows[0].String("title"))
	assert.Equal(t, "undated", res.Table.Rows[1].String("title"))

	cutoff := fixedNow.Add(-24 * time.Hour)
	for _, r := range res.Table.Rows {
		v, ok := r.Get("time")
		if !ok {
			continue
		}
		ts, ok := normalize.ParseTime(v)
		require.True(t, ok)
		assert.False(t, ts.Before(cutoff), "item older than cutoff: %v", ts)
	}
}

func TestHackerNews_QueryFilterAndReplies(t *testing.T) {
	srv := jsonServer(t, map[string]any{
		"/v0/askstories.json": []int{10, 11},
		"/v0/item/10.json":    map[string]any{"id": 10, "by": "x", "title": "Ask HN: Go generics?", "time": fixedNow.Unix(), "kids": []int{100, 101}},
		"/v0/item/11.json":    map[string]any{"id": 11, "by": "y", "title": "Ask HN: Rust?", "time": fixedNow.Unix()},
		"/v0/item/100.json":   map[string]any{"id": 100, "by": "c1", "text": "yes", "type": "comment", "time": fixedNow.Unix(), "kids": []int{1000}},
		"/v0/item/101.json":   map[string]any{"id": 101, "type": "comment", "deleted": true},
	})
	o := baseOpts()
	o.IncludeReplies = true
	o.IncludeMetadata = true

	res, err := newScraper(Config{HackerNewsAPI: srv.URL + "/v0"}).Scrape(context.Background(), source.Social(source.PlatformHN, "Ask HN", "go"), o)
	require.NoError(t, err)
	require.Equal(t, 1, res.Table.Len())
	row := res.Table.Rows[0]
	assert.Equal(t, "https://news.ycombinator.com/item?id=10", row.String("hn_link"))
	v, _ := row.Get("top_comments")
	comments := v.([]result.Row)
	require.Len(t, comments, 1)
	assert.Equal(t, "c1", comments[0].String("by"))
	rc, _ := comments[0].Get("reply_count")
	assert.Equal(t, 1, rc)
}

func TestHackerNews_ListFailureIsPlaceholder(t *testing.T) {
	var hits int32
	srv := downServer(t, &hits)
	res, err := newScraper(Config{HackerNewsAPI: srv.URL}).Scrape(context.Background(), source.Social(source.PlatformHN, "New Stories", ""), baseOpts())
	require.NoError(t, err)
	assert.True(t, res.IsPlaceholder())
	assert.Equal(t, result.ReasonUnreachable, res.Reason)
	assert.Contains(t, res.Message(), "HackerNews data could not be retrieved")
}

func TestHackerNews_NothingMatchesIsEmptyPlaceholder(t *testing.T) {
	srv := jsonServer(t, map[string]any{
		"/topstories.json": []int{1},
		"/item/1.json":     map[string]any{"id": 1, "title": "unrelated", "time": fixedNow.Unix()},
	})
	res, err := newScraper(Config{HackerNewsAPI: srv.URL}).Scrape(context.Background(), source.Social(source.PlatformHN, "Top Stories", "zig"), baseOpts())
	require.NoError(t, err)
	assert.True(t, res.IsPlaceholder())
	assert.Equal(t, result.ReasonEmpty, res.Reason)
	assert.Equal(t, "No HackerNews stories found for the given criteria", res.Message())
}

func TestTwitter_AllMirrorsDownIsSinglePlaceholder(t *testing.T) {
	var hits int32
	a, b := downServer(t, &hits), downServer(t, &hits)
	s := newScraper(Config{NitterMirrors: []string{a.URL, b.URL, "http://127.0.0.1:1"}, ProbeTimeout: time.Second})

	res, err := s.Scrape(context.Background(), source.Social(source.PlatformTwitter, "Username", "@golang"), baseOpts())
	require.NoError(t, err)
	require.True(t, res.IsPlaceholder())
	assert.Equal(t, 1, res.Table.Len())
	assert.NotEmpty(t, res.Message())
	assert.Equal(t, result.ReasonUnreachable, res.Reason)
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
}

const nitterPage = `<html><body>
<div class="timeline">
  <div class="timeline-item">
    <a class="tweet-link" href="/golang/status/1"></a>
    <a class="fullname">Go</a><a class="username">@golang</a>
    <span class="tweet-date"><a title="%s">1h</a></span>
    <div class="tweet-content">Go 1.22 is released</div>
    <div class="tweet-stats">
      <span class="tweet-stat"><div class="icon-container"><span class="icon-comment"></span> 12</div></span>
      <span class="tweet-stat"><div class="icon-container"><span class="icon-retweet"></span> 1,204</div></span>
      <span class="tweet-stat"><div class="icon-container"><span class="icon-heart"></span> 9</div></span>
    </div>
  </div>
  <div class="timeline-item">
    <a class="username">@golang</a>
    <span class="tweet-date"><a title="%s">2mo</a></span>
    <div class="tweet-content">old news</div>
  </div>
</div></body></html>`

func TestTwitter_ParsesTimelineAndFilters(t *testing.T) {
	body := fmt.Sprintf(nitterPage,
		fixedNow.Add(-time.Hour).Format("Jan 2, 2006 · 3:04 PM MST"),
		fixedNow.AddDate(0, -2, 0).Format("Jan 2, 2006 · 3:04 PM MST"))
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			path = r.URL.Path
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()
	o := baseOpts()
	o.DateRange = source.LastWeek
	o.IncludeMetadata = true

	res, err := newScraper(Config{NitterMirrors: []string{srv.URL}}).Scrape(context.Background(), source.Social(source.PlatformTwitter, "Username", "@golang"), o)
	require.NoError(t, err)
	require.Equal(t, result.KindTable, res.Kind)
	assert.Equal(t, "/golang", path)
	require.Equal(t, 1, res.Table.Len())
	row := res.Table.Rows[0]
	assert.Equal(t, "Go 1.22 is released", row.String("content"))
	assert.Equal(t, "https://twitter.com/golang/status/1", row.String("link"))
	assert.Equal(t, normalize.FormatTime(fixedNow.Add(-time.Hour)), row.String("timestamp"))
	for key, want := range map[string]int{"replies": 12, "retweets": 1204, "likes": 9} {
		v, _ := row.Get(key)
		assert.Equal(t, want, v, key)
	}
}

func TestReddit_PaginatesAndFetchesComments(t *testing.T) {
	post := func(title string, comments int) map[string]any {
		return map[string]any{"kind": "t3", "data": map[string]any{
			"title": title, "author": "gopher", "subreddit": "golang", "permalink": "/r/golang/comments/" + title + "/",
			"created_utc": float64(fixedNow.Add(-time.Hour).Unix()), "num_comments": comments, "score": 5,
		}}
	}
	srv := jsonServer(t, map[string]any{
		"/r/golang.json?limit=3":            map[string]any{"data": map[string]any{"after": "t3_b", "children": []any{post("a", 2), post("b", 0)}}},
		"/r/golang.json?after=t3_b&limit=3": map[string]any{"data": map[string]any{"after": "", "children": []any{post("c", 0), post("d", 0)}}},
		"/r/golang/comments/a.json": []any{
			map[string]any{"data": map[string]any{"children": []any{}}},
			map[string]any{"data": map[string]any{"children": []any{
				map[string]any{"kind": "t1", "data": map[string]any{"author": "r1", "body": "nice", "score": 3, "created_utc": 1.0}},
				map[string]any{"kind": "more", "data": map[string]any{}},
			}}},
		},
	})
	o := baseOpts()
	o.Limit = 3
	o.MaxPages = 5
	o.IncludeReplies = true

	res, err := newScraper(Config{RedditBaseURL: srv.URL}).Scrape(context.Background(), source.Social(source.PlatformReddit, "Subreddit", "r/golang"), o)
	require.NoError(t, err)
	require.Equal(t, 3, res.Table.Len())
	assert.Equal(t, "c", res.Table.Rows[2].String("title"))
	v, ok := res.Table.Rows[0].Get("top_comments")
	require.True(t, ok)
	require.Len(t, v.([]result.Row), 1)
	_, ok = res.Table.Rows[1].Get("top_comments")
	assert.False(t, ok)
}

func TestReddit_UndatedPostSurvivesCutoff(t *testing.T) {
	srv := jsonServer(t, map[string]any{
		"/r/golang.json?limit=10": map[string]any{"data": map[string]any{"children": []any{
			map[string]any{"kind": "t3", "data": map[string]any{"title": "undated", "permalink": "/r/golang/1/"}},
			map[string]any{"kind": "t3", "data": map[string]any{"title": "old", "permalink": "/r/golang/2/", "created_utc": float64(fixedNow.AddDate(0, -2, 0).Unix())}},
		}}},
	})
	o := baseOpts()
	o.DateRange = source.LastDay
	res, err := newScraper(Config{RedditBaseURL: srv.URL}).Scrape(context.Background(), source.Social(source.PlatformReddit, "Subreddit", "golang"), o)
	require.NoError(t, err)
	require.Equal(t, result.KindTable, res.Kind)
	require.Equal(t, 1, res.Table.Len())
	assert.Equal(t, "undated", res.Table.Rows[0].String("title"))
	_, ok := res.Table.Rows[0].Get("created_utc")
	assert.False(t, ok)
}

func TestReddit_UnreachableCarriesCause(t *testing.T) {
	var hits int32
	srv := downServer(t, &hits)
	res, err := newScraper(Config{RedditBaseURL: srv.URL}).Scrape(context.Background(), source.Social(source.PlatformReddit, "User", "spez"), baseOpts())
	require.NoError(t, err)
	require.True(t, res.IsPlaceholder())
	assert.Contains(t, res.Message(), "502")
}

func TestYouTube_LeadRowAndNoComments(t *testing.T) {
	var hits int32
	down := downServer(t, &hits)
	srv := jsonServer(t, map[string]any{
		"/api/v1/videos/abc123":   map[string]any{"title": "Intro", "author": "chan", "published": fixedNow.Unix()},
		"/api/v1/comments/abc123": map[string]any{"comments": []any{}},
	})
	s := newScraper(Config{InvidiousMirrors: []string{down.URL, srv.URL}})
	o := baseOpts()
	o.IncludeMetadata = true

	res, err := s.Scrape(context.Background(), source.Social(source.PlatformYouTube, "", "https://www.youtube.com/watch?v=abc123&t=4"), o)
	require.NoError(t, err)
	require.Equal(t, result.KindTable, res.Kind)
	require.Equal(t, 2, res.Table.Len())
	assert.Equal(t, "Intro", res.Table.Rows[0].String("video_title"))
	assert.Equal(t, "video_info", res.Table.Rows[0].String("video_type"))
	assert.Equal(t, NoCommentsText, res.Table.Rows[1].String("text"))
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestYouTube_CommentsFollowVideoRow(t *testing.T) {
	srv := jsonServer(t, map[string]any{
		"/api/v1/videos/xyz": map[string]any{"title": "Talk"},
		"/api/v1/comments/xyz": map[string]any{"comments": []any{
			map[string]any{"author": "a", "content": "great", "published": fixedNow.Unix(), "likeCount": 4, "replies": map[string]any{"replyCount": 2}},
			map[string]any{"author": "b", "content": "meh", "published": fixedNow.Unix()},
		}},
	})
	o := baseOpts()
	o.IncludeMetadata = true
	res, err := newScraper(Config{InvidiousMirrors: []string{srv.URL}}).Scrape(context.Background(), source.Social(source.PlatformYouTube, "Video URL", "youtu.be/xyz"), o)
	require.NoError(t, err)
	require.Equal(t, 3, res.Table.Len())
	assert.Equal(t, "great", res.Table.Rows[1].String("text"))
	v, _ := res.Table.Rows[1].Get("replies")
	assert.Equal(t, 2, v)
}

func TestYouTube_VideoFetchedOnce(t *testing.T) {
	var videoHits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/v1/videos/once":
			atomic.AddInt32(&videoHits, 1)
			_, _ = w.Write([]byte(`{"title":"Once"}`))
		case "/api/v1/comments/once":
			_, _ = w.Write([]byte(`{"comments":[]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	res, err := newScraper(Config{InvidiousMirrors: []string{srv.URL}}).Scrape(context.Background(), source.Social(source.PlatformYouTube, "", "youtu.be/once"), baseOpts())
	require.NoError(t, err)
	assert.Equal(t, "Once", res.Table.Rows[0].String("video_title"))
	assert.Equal(t, int32(1), atomic.LoadInt32(&videoHits))
}

func TestScrape_NegativeLimitIsValidationError(t *testing.T) {
	o := baseOpts()
	o.Limit = -1
	_, err := newScraper(Config{}).Scrape(context.Background(), source.Social(source.PlatformHN, "Top Stories", ""), o)
	var ve *source.ValidationError
	assert.True(t, errors.As(err, &ve), "got %v", err)
}

func TestYouTube_BadURLIsValidationError(t *testing.T) {
	_, err := newScraper(Config{}).Scrape(context.Background(), source.Social(source.PlatformYouTube, "", "https://vimeo.com/123"), baseOpts())
	var ve *source.ValidationError
	assert.True(t, errors.As(err, &ve), "got %v", err)
}

func TestYouTube_AllMirrorsDown(t *testing.T) {
	var hits int32
	down := downServer(t, &hits)
	res, err := newScraper(Config{InvidiousMirrors: []string{down.URL}}).Scrape(context.Background(), source.Social(source.PlatformYouTube, "", "youtu.be/q1"), baseOpts())
	require.NoError(t, err)
	require.True(t, res.IsPlaceholder())
	assert.Contains(t, res.Table.Rows[0].String("step3"), "q1")
}

func TestInstagram_AlwaysRestricted(t *testing.T) {
	res, err := newScraper(Config{}).Scrape(context.Background(), source.Social(source.PlatformInstagram, "Username", "nasa"), baseOpts())
	require.NoError(t, err)
	assert.True(t, res.IsPlaceholder())
	assert.Equal(t, result.ReasonRestricted, res.Reason)
}

func TestVideoID(t *testing.T) {
	tests := map[string]string{
		"https://www.youtube.com/watch?v=dQw4w9WgXcQ": "dQw4w9WgXcQ",
		"youtube.com/watch?feature=share&v=abc":       "abc",
		"https://youtu.be/abc?si=tracking":            "abc",
		"https://m.youtube.com/watch?v=mobile":        "mobile",
	}
	for in, want := range tests {
		got, err := VideoID(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := VideoID("https://www.youtube.com/channel/x")
	assert.Error(t, err)
}

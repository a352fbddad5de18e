package social

import (
	"context"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/hyperifyio/dataminer/internal/extract"
	"github.com/hyperifyio/dataminer/internal/fallback"
	"github.com/hyperifyio/dataminer/internal/logctx"
	"github.com/hyperifyio/dataminer/internal/normalize"
	"github.com/hyperifyio/dataminer/internal/result"
	"github.com/hyperifyio/dataminer/internal/source"
)

// Twitter reads timelines and searches through a Nitter front end.
type Twitter struct {
	Mirrors []string
}

func (t *Twitter) Name() source.Platform { return source.PlatformTwitter }

func (t *Twitter) Collect(ctx context.Context, env *Env, d source.Descriptor) (Batch, error) {
	base, err := env.Failover(t.Mirrors, nil).Resolve(ctx)
	if err != nil {
		return Batch{}, err
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	target, err := nitterURL(base, d.QueryKind, d.Query)
	if err != nil {
		return Batch{}, err
	}

	b := Batch{TimeKey: "timestamp", Noun: "tweets"}
	for page := 0; page < env.Opts.MaxPages && len(b.Items) < env.Opts.Limit; page++ {
		resp, err := env.Get(ctx, target)
		if err != nil {
			if page == 0 {
				return Batch{}, err
			}
			logctx.From(ctx).Warn().Err(err).Int("page", page).Msg("nitter pagination stopped")
			break
		}
		p, err := extract.NewPage(resp.Body, resp.ContentType)
		if err != nil {
			return Batch{}, err
		}
		p.Doc.Find(".timeline-item").EachWithBreak(func(_ int, item *goquery.Selection) bool {
			row := tweetRow(item, env.Opts.IncludeMetadata)
			if env.Keep(row, b.TimeKey) {
				b.Items = append(b.Items, row)
			}
			return len(b.Items) < env.Opts.Limit
		})
		next := nextCursor(p.Doc, resp.URL)
		if next == "" {
			break
		}
		target = next
	}
	return b, nil
}

func (t *Twitter) Unavailable(d source.Descriptor, _ error) result.Result {
	return fallback.Twitter(d.Query).Result(result.ReasonUnreachable)
}

func nitterURL(base, kind, query string) (string, error) {
	switch kind {
	case "Username":
		return base + url.PathEscape(strings.Trim(strings.TrimSpace(query), "@")), nil
	case "Hashtag":
		return base + "search?f=tweets&q=" + url.QueryEscape("#"+strings.Trim(strings.TrimSpace(query), "#")), nil
	case "Keyword":
		return base + "search?f=tweets&q=" + url.QueryEscape(query), nil
	}
	return "", &source.ValidationError{Field: "query_kind", Reason: "unsupported Twitter query type: " + kind}
}

func tweetRow(item *goquery.Selection, metadata bool) result.Row {
	text := func(sel string) string { return strings.TrimSpace(item.Find(sel).First().Text()) }
	stamp, _ := item.Find(".tweet-date a").First().Attr("title")
	if ts, ok := normalize.ParseTime(stamp); ok {
		stamp = normalize.FormatTime(ts)
	}
	link := ""
	if href, ok := item.Find(".tweet-link").First().Attr("href"); ok && href != "" {
		link = "https://twitter.com" + href
	}
	row := result.Row{
		{Key: "username", Value: text(".username")},
		{Key: "fullname", Value: text(".fullname")},
		{Key: "content", Value: text(".tweet-content")},
		{Key: "timestamp", Value: stamp},
		{Key: "link", Value: link},
	}
	if metadata {
		item.Find(".tweet-stats .icon-container").Each(func(_ int, stat *goquery.Selection) {
			label := strings.ToLower(stat.Text())
			if cls, ok := stat.Find("span").Attr("class"); ok {
				label += " " + strings.ToLower(cls)
			}
			n := firstNumber(stat.Text())
			switch {
			case strings.Contains(label, "reply") || strings.Contains(label, "comment"):
				row.Set("replies", n)
			case strings.Contains(label, "retweet"):
				row.Set("retweets", n)
			case strings.Contains(label, "like") || strings.Contains(label, "heart"):
				row.Set("likes", n)
			}
		})
	}
	return row
}

var digits = regexp.MustCompile(`\d[\d,]*`)

// firstNumber reads the first integer in s, so "1,204 likes" is 1204.
func firstNumber(s string) int {
	m := digits.FindString(s)
	if m == "" {
		return 0
	}
	n, err := strconv.Atoi(strings.ReplaceAll(m, ",", ""))
	if err != nil {
		return 0
	}
	return n
}

// nextCursor returns the "load more" link of a Nitter timeline page.
func nextCursor(doc *goquery.Document, pageURL string) string {
	var href string
	doc.Find(".show-more a").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		h, ok := a.Attr("href")
		if ok && strings.Contains(h, "cursor=") {
			href = h
			return false
		}
		return true
	})
	if href == "" {
		return ""
	}
	base, err := url.Parse(pageURL)
	if err != nil {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}

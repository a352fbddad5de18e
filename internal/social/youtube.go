package social

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/hyperifyio/dataminer/internal/fallback"
	"github.com/hyperifyio/dataminer/internal/fetch"
	"github.com/hyperifyio/dataminer/internal/logctx"
	"github.com/hyperifyio/dataminer/internal/normalize"
	"github.com/hyperifyio/dataminer/internal/result"
	"github.com/hyperifyio/dataminer/internal/source"
)

// YouTube reads video comments through the Invidious API.
type YouTube struct {
	Mirrors []string
}

// NoCommentsText fills the row after the video row when a video has no
// comments left after filtering.
const NoCommentsText = "No comments found for this video"

type invidiousVideo struct {
	Title         string `json:"title"`
	Author        string `json:"author"`
	Published     int64  `json:"published"`
	Description   string `json:"description"`
	ViewCount     int64  `json:"viewCount"`
	LikeCount     int64  `json:"likeCount"`
	DislikeCount  int64  `json:"dislikeCount"`
	SubCountText  string `json:"subCountText"`
	LengthSeconds int64  `json:"lengthSeconds"`
}

type invidiousComments struct {
	Continuation string `json:"continuation"`
	Comments     []struct {
		Author               string `json:"author"`
		Content              string `json:"content"`
		Published            int64  `json:"published"`
		LikeCount            int64  `json:"likeCount"`
		AuthorIsChannelOwner bool   `json:"authorIsChannelOwner"`
		Replies              *struct {
			ReplyCount int `json:"replyCount"`
		} `json:"replies"`
	} `json:"comments"`
}

func (y *YouTube) Name() source.Platform { return source.PlatformYouTube }

func (y *YouTube) Collect(ctx context.Context, env *Env, d source.Descriptor) (Batch, error) {
	id, err := VideoID(d.Query)
	if err != nil {
		return Batch{}, err
	}
	probe := func(base string) string { return strings.TrimRight(base, "/") + "/api/v1/videos/" + id }
	mirrors := env.Failover(y.Mirrors, probe)
	base, err := mirrors.Resolve(ctx)
	if err != nil {
		return Batch{}, err
	}
	base = strings.TrimRight(base, "/")

	// the probe already fetched the video document
	var video invidiousVideo
	if err := fetch.DecodeJSON(mirrors.Pinned(), &video); err != nil {
		return Batch{}, err
	}
	b := Batch{
		Lead:      []result.Row{videoRow(video, env.Opts.IncludeMetadata)},
		TimeKey:   "published",
		Noun:      "comments",
		WhenEmpty: result.Row{{Key: "text", Value: NoCommentsText}},
	}

	continuation := ""
	for page := 0; page < env.Opts.MaxPages && len(b.Items) < env.Opts.Limit; page++ {
		u := withParams(base+"/api/v1/comments/"+id, map[string]string{"continuation": continuation})
		var cs invidiousComments
		if err := env.GetJSON(ctx, u, &cs); err != nil {
			if page == 0 {
				return Batch{}, err
			}
			logctx.From(ctx).Warn().Err(err).Int("page", page).Msg("comment pagination stopped")
			break
		}
		for _, c := range cs.Comments {
			if len(b.Items) >= env.Opts.Limit {
				break
			}
			row := result.Row{
				{Key: "author", Value: c.Author},
				{Key: "text", Value: c.Content},
				{Key: "published", Value: unixOrEmpty(c.Published)},
			}
			if env.Opts.IncludeMetadata {
				replies := 0
				if c.Replies != nil {
					replies = c.Replies.ReplyCount
				}
				row = append(row,
					result.Field{Key: "likes", Value: c.LikeCount},
					result.Field{Key: "is_owner", Value: c.AuthorIsChannelOwner},
					result.Field{Key: "replies", Value: replies},
				)
			}
			if env.Keep(row, b.TimeKey) {
				b.Items = append(b.Items, row)
			}
		}
		continuation = cs.Continuation
		if continuation == "" {
			break
		}
	}
	return b, nil
}

func (y *YouTube) Unavailable(d source.Descriptor, _ error) result.Result {
	id, _ := VideoID(d.Query)
	return fallback.YouTube(id).Result(result.ReasonUnreachable)
}

func videoRow(v invidiousVideo, metadata bool) result.Row {
	row := result.Row{
		{Key: "video_title", Value: v.Title},
		{Key: "video_author", Value: v.Author},
		{Key: "video_published", Value: unixOrEmpty(v.Published)},
		{Key: "description", Value: v.Description},
	}
	if metadata {
		row = append(row,
			result.Field{Key: "view_count", Value: v.ViewCount},
			result.Field{Key: "like_count", Value: v.LikeCount},
			result.Field{Key: "dislike_count", Value: v.DislikeCount},
			result.Field{Key: "subscriber_count", Value: v.SubCountText},
			result.Field{Key: "length_seconds", Value: v.LengthSeconds},
			result.Field{Key: "video_type", Value: "video_info"},
		)
	}
	return row
}

func unixOrEmpty(sec int64) string {
	if sec <= 0 {
		return ""
	}
	return normalize.FormatTime(time.Unix(sec, 0))
}

// VideoID reads the id from a youtube.com/watch?v= or youtu.be/ URL.
func VideoID(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if !strings.Contains(s, "://") {
		s = "https://" + s
	}
	u, err := url.Parse(s)
	if err == nil {
		host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
		host = strings.TrimPrefix(host, "m.")
		switch {
		case host == "youtube.com" && u.Path == "/watch":
			if id := u.Query().Get("v"); id != "" {
				return id, nil
			}
		case host == "youtu.be":
			if id := strings.Trim(u.Path, "/"); id != "" {
				return id, nil
			}
		}
	}
	return "", &source.ValidationError{Field: "query", Reason: "invalid YouTube URL, provide a valid YouTube video URL"}
}

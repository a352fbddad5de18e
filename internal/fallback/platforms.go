package fallback

import (
	"github.com/hyperifyio/dataminer/internal/result"
)

func Twitter(query string) Remedy {
	return Remedy{
		Message:  "Twitter data could not be retrieved: no Nitter mirror responded.",
		Solution: "To collect Twitter data, you need to:",
		Steps: []string{
			"Sign up for X API access",
			"Create a bearer token and export it as X_BEARER_TOKEN",
			"Query the recent search endpoint for: " + query,
		},
		CodeExample: `curl -H "Authorization: Bearer $X_BEARER_TOKEN" \
  "https://api.x.com/2/tweets/search/recent?query=QUERY&max_results=100"`,
		Extra: []result.Field{
			{Key: "note", Value: "Recent X API tiers may require a paid plan for search access."},
		},
	}
}

func Reddit(cause error) Remedy {
	return Remedy{
		Message:  "Reddit data could not be retrieved: " + errText(cause),
		Solution: "To collect Reddit data, you can:",
		Steps: []string{
			"Register an application at https://www.reddit.com/prefs/apps",
			"Use the OAuth client credentials with a descriptive User-Agent",
		},
		CodeExample: `curl -A "dataminer/1.0" -H "Authorization: bearer $REDDIT_TOKEN" \
  "https://oauth.reddit.com/r/golang/hot?limit=10"`,
	}
}

func YouTube(videoID string) Remedy {
	return Remedy{
		Message:  "YouTube comments could not be retrieved: no Invidious mirror responded.",
		Solution: "To collect YouTube comments, you need to:",
		Steps: []string{
			"Sign up for YouTube Data API access",
			"Create an API key and export it as YOUTUBE_API_KEY",
			"Use the YouTube API to fetch comments for video: " + videoID,
		},
		CodeExample: `curl "https://www.googleapis.com/youtube/v3/commentThreads?part=snippet&videoId=VIDEO_ID&maxResults=100&key=$YOUTUBE_API_KEY"`,
		Extra: []result.Field{
			{Key: "alternative", Value: "Alternatively, point the Invidious mirror list at an instance you run yourself."},
		},
	}
}

func Instagram(query string) Remedy {
	return Remedy{
		Message:    "Instagram data could not be retrieved due to platform restrictions.",
		Limitation: "Instagram actively prevents web scraping and requires authentication.",
		Solution:   "To collect Instagram data, you need to:",
		Steps: []string{
			"Use the Instagram Graph API (requires a Meta developer account)",
			"Set up a Meta app and obtain Instagram API credentials",
			"Use the API to fetch data for: " + query,
		},
		CodeExample: `curl "https://graph.facebook.com/v19.0/IG_USER_ID/media?fields=caption,timestamp,permalink&access_token=$IG_TOKEN"`,
		Extra: []result.Field{
			{Key: "alternative", Value: "For legal Instagram data collection, consider:"},
			{Key: "option1", Value: "- Using the official Instagram API with proper authentication"},
			{Key: "option2", Value: "- Using a third-party service that provides Instagram data legally"},
			{Key: "option3", Value: "- Manually collecting data with permission from content owners"},
		},
	}
}

func HackerNews(cause error) Remedy {
	return Remedy{
		Message:  "HackerNews data could not be retrieved: " + errText(cause),
		Solution: "To collect HackerNews data, you can use the official API:",
		CodeExample: `curl https://hacker-news.firebaseio.com/v0/topstories.json
curl https://hacker-news.firebaseio.com/v0/item/ITEM_ID.json`,
		Extra: []result.Field{
			{Key: "api_docs", Value: "https://github.com/HackerNews/API"},
		},
	}
}

func errText(err error) string {
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}

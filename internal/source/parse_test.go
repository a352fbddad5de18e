package source

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMethod(t *testing.T) {
	cases := map[string]Method{
		"tables":              MethodTables,
		"Custom CSS Selector": MethodSelector,
		"text only":           MethodTextOnly,
		" FULL ":              MethodFullContent,
	}
	for in, want := range cases {
		got, err := ParseMethod(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseMethod("screenshot")
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "method", ve.Field)
}

func TestParsePlatformAndKind(t *testing.T) {
	p, err := ParsePlatform("hn")
	require.NoError(t, err)
	assert.Equal(t, PlatformHN, p)

	k, err := ParseQueryKind(PlatformHN, "top-stories")
	require.NoError(t, err)
	assert.Equal(t, "Top Stories", k)

	k, err = ParseQueryKind(PlatformReddit, "search_term")
	require.NoError(t, err)
	assert.Equal(t, "Search Term", k)

	k, err = ParseQueryKind(PlatformYouTube, "")
	require.NoError(t, err)
	assert.Equal(t, "Video URL", k)

	_, err = ParseQueryKind(PlatformTwitter, "list")
	assert.Error(t, err)
	_, err = ParsePlatform("myspace")
	assert.Error(t, err)
}

func TestParseDateRange(t *testing.T) {
	r, err := ParseDateRange("")
	require.NoError(t, err)
	assert.Equal(t, AllTime, r)
	r, err = ParseDateRange("last week")
	require.NoError(t, err)
	assert.Equal(t, LastWeek, r)
	r, err = ParseDateRange("24h")
	require.NoError(t, err)
	assert.Equal(t, LastDay, r)
	_, err = ParseDateRange("yesterday")
	assert.Error(t, err)
}

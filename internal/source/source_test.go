package source

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeURL_AddsScheme(t *testing.T) {
	u, err := NormalizeURL("example.com/path")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/path", u.String())
}

func TestNormalizeURL_RejectsEmpty(t *testing.T) {
	_, err := NormalizeURL("   ")
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "url", ve.Field)
}

func TestValidateWeb_SelectorRequired(t *testing.T) {
	_, err := ValidateWeb(Web("https://example.com"), MethodSelector, Options{})
	var uc *UnsupportedCombinationError
	require.True(t, errors.As(err, &uc), "got %v", err)
}

func TestValidateWeb_UnknownMethod(t *testing.T) {
	_, err := ValidateWeb(Web("https://example.com"), Method("Screenshots"), Options{})
	var ve *ValidationError
	require.True(t, errors.As(err, &ve), "got %v", err)
	assert.Equal(t, "method", ve.Field)
}

func TestValidateSocial(t *testing.T) {
	tests := []struct {
		name string
		d    Descriptor
		ok   bool
	}{
		{"reddit subreddit", Social(PlatformReddit, "Subreddit", "golang"), true},
		{"hn without query", Social(PlatformHN, "Top Stories", ""), true},
		{"youtube any kind", Social(PlatformYouTube, "", "https://youtu.be/abc"), true},
		{"unknown platform", Social("Myspace", "User", "tom"), false},
		{"bad kind", Social(PlatformTwitter, "Subreddit", "x"), false},
		{"empty query", Social(PlatformReddit, "User", " "), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSocial(tt.d, Options{})
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			var ve *ValidationError
			assert.True(t, errors.As(err, &ve), "got %v", err)
		})
	}
}

func TestDateRange_Cutoff(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, now.Add(-24*time.Hour), LastDay.Cutoff(now))
	assert.Equal(t, now.AddDate(0, 0, -7), LastWeek.Cutoff(now))
	assert.Equal(t, now.AddDate(0, 0, -30), LastMonth.Cutoff(now))
	assert.True(t, AllTime.Cutoff(now).IsZero())
}

func TestOptions_ValidateRejectsUnknownRange(t *testing.T) {
	err := Options{DateRange: "Last decade"}.Validate()
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
}

func TestValidateWeb_NegativeLimitsRejected(t *testing.T) {
	for name, o := range map[string]Options{
		"max pages": {MaxPages: -3},
		"limit":     {Limit: -1},
		"delay":     {Delay: -time.Second},
	} {
		_, err := ValidateWeb(Web("https://example.com"), MethodTables, o)
		var ve *ValidationError
		require.True(t, errors.As(err, &ve), "%s: got %v", name, err)
	}
}

func TestWithDefaults_KeepsNegatives(t *testing.T) {
	o := Options{MaxPages: -2, Limit: -1}.WithDefaults()
	assert.Equal(t, -2, o.MaxPages)
	assert.Equal(t, -1, o.Limit)
	assert.Error(t, o.Validate())

	z := Options{}.WithDefaults()
	assert.Equal(t, Defaults().MaxPages, z.MaxPages)
	assert.Equal(t, Defaults().Limit, z.Limit)
}

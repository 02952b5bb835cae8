package utils

import (
	"net/url"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "0123456789abcdef0123456789abcdef"

func TestFormTokensRoundTrip(t *testing.T) {
	now := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
	tokens, err := NewFormTokens(testKey, "https://forms.test/prom", func() time.Time { return now })
	require.NoError(t, err)

	link, err := tokens.FormURL(7, now.AddDate(0, 0, 42))
	require.NoError(t, err)
	u, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, "forms.test", u.Host)
	assert.Equal(t, "7", u.Query().Get("schedule"))

	id, err := tokens.Validate(u.Query().Get("token"))
	require.NoError(t, err)
	assert.Equal(t, uint(7), id)
}

func TestFormTokensExpiry(t *testing.T) {
	now := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
	clock := now
	tokens, err := NewFormTokens(testKey, "https://forms.test/prom", func() time.Time { return clock })
	require.NoError(t, err)

	due := now.AddDate(0, 0, 90)
	link, err := tokens.FormURL(3, due)
	require.NoError(t, err)
	u, _ := url.Parse(link)
	token := u.Query().Get("token")

	clock = due.Add(FormTokenValidity - time.Hour)
	_, err = tokens.Validate(token)
	assert.NoError(t, err)

	clock = due.Add(FormTokenValidity + time.Hour)
	_, err = tokens.Validate(token)
	assert.True(t, errors.Is(err, ErrTokenExpired))
}

func TestFormTokensRejectForeignTokens(t *testing.T) {
	tokens, err := NewFormTokens(testKey, "https://forms.test/prom", nil)
	require.NoError(t, err)
	other, err := NewFormTokens("fedcba9876543210fedcba9876543210", "https://forms.test/prom", nil)
	require.NoError(t, err)

	token, err := other.Issue(1, time.Now().Add(time.Hour))
	require.NoError(t, err)
	_, err = tokens.Validate(token)
	assert.True(t, errors.Is(err, ErrTokenInvalid))

	_, err = tokens.Validate("garbage")
	assert.True(t, errors.Is(err, ErrTokenInvalid))

	_, err = NewFormTokens("short", "", nil)
	assert.Error(t, err)
}

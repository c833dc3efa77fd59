package utils

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const linkSecret = "link-secret"

func tokenOf(t *testing.T, link string) string {
	t.Helper()
	u, err := url.Parse(link)
	require.NoError(t, err)
	return u.Query().Get("token")
}

func TestSignFileURL(t *testing.T) {
	key := "orders/3/image/ab12cd34_front.png"

	link, err := SignFileURL(key, linkSecret, time.Minute)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(link, "/api/v1/uploads/"+key+"?token="))
	assert.NoError(t, VerifyFileToken(tokenOf(t, link), key, linkSecret))

	empty, err := SignFileURL("", linkSecret, time.Minute)
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = SignFileURL(key, "", time.Minute)
	assert.Error(t, err)
}

func TestVerifyFileToken_Rejections(t *testing.T) {
	key := "orders/3/image/ab12cd34_front.png"
	link, err := SignFileURL(key, linkSecret, time.Minute)
	require.NoError(t, err)
	token := tokenOf(t, link)

	expired, err := SignFileURL(key, linkSecret, -time.Minute)
	require.NoError(t, err)

	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "12",
		Audience:  jwt.ClaimStrings{"orderflow-dashboard"},
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte(linkSecret))
	require.NoError(t, err)

	tests := []struct {
		name   string
		token  string
		key    string
		secret string
	}{
		{"missing token", "", key, linkSecret},
		{"other file", token, "orders/4/image/ffffffff_back.png", linkSecret},
		{"wrong secret", token, key, "another-secret"},
		{"expired", tokenOf(t, expired), key, linkSecret},
		{"access token", accessToken, key, linkSecret},
		{"garbage", "not-a-token", key, linkSecret},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, VerifyFileToken(tt.token, tt.key, tt.secret), ErrInvalidFileLink)
		})
	}
}

package utils

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// FileLinkTTL is how long a signed link to a locally stored file stays valid
const FileLinkTTL = 15 * time.Minute

const fileLinkAudience = "uploads"

// ErrInvalidFileLink is returned for missing, expired or foreign link tokens
var ErrInvalidFileLink = errors.New("invalid or expired file link")

// SignFileURL returns the uploads route for key carrying a token that expires
// after ttl. The token is bound to key and cannot be used as an access token.
func SignFileURL(key, secret string, ttl time.Duration) (string, error) {
	if key == "" {
		return "", nil
	}
	if secret == "" {
		return "", errors.New("file link secret is not configured")
	}

	now := time.Now()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   key,
		Audience:  jwt.ClaimStrings{fileLinkAudience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign file link: %w", err)
	}

	return GetFileURL(key) + "?token=" + url.QueryEscape(token), nil
}

// VerifyFileToken checks that token was signed for key and has not expired
func VerifyFileToken(token, key, secret string) error {
	if token == "" || secret == "" {
		return ErrInvalidFileLink
	}

	_, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(*jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(fileLinkAudience),
		jwt.WithSubject(key),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidFileLink, err)
	}
	return nil
}

package identity

import (
	"context"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"spokd/internal/config"
	"spokd/internal/core"
)

const tokenTTL = 30 * 24 * time.Hour

// Tokens signs and verifies bearer tokens. The subject is the account ID.
type Tokens struct {
	Config *config.Config

	secret []byte
}

func (t *Tokens) Init(context.Context) error {
	t.secret = []byte(t.Config.TokenSecret)
	return nil
}

func (t *Tokens) Issue(userID int64, now time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		Issuer:    "spokd",
		Subject:   strconv.FormatInt(userID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

// Verify returns the account ID carried by a valid token. Every failure
// collapses to ErrUnauthorized, callers never learn why a token was bad.
func (t *Tokens) Verify(token string) (int64, error) {
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(*jwt.Token) (any, error) {
		return t.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer("spokd"))
	if err != nil {
		return 0, core.ErrUnauthorized
	}

	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok {
		return 0, core.ErrUnauthorized
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return 0, core.ErrUnauthorized
	}
	return userID, nil
}

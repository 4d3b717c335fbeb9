package jwtPkg

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
)

var (
	ErrEmptyToken   = errors.New("empty token")
	ErrTokenExpired = errors.New("token expired")
	ErrInvalidToken = errors.New("invalid token")
)

// TokenInfo describes an auth token as far as the editor can see it.
// Tokens that are not JWTs are treated as opaque and reported with IsJWT false.
// Verified is set only when the signature was checked against a secret.
type TokenInfo struct {
	IsJWT     bool
	Verified  bool
	Subject   string
	ExpiresAt *time.Time
}

// InspectToken checks that token is usable for a call to the blog service.
// When secret is empty the signature is not verified; only expiry is checked.
func InspectToken(token string, secret string, now time.Time) (TokenInfo, error) {
	log := logrus.WithField("func", "InspectToken")

	token = strings.TrimSpace(token)
	if token == "" {
		return TokenInfo{}, ErrEmptyToken
	}

	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		log.Debug("Token is not a JWT, treating as opaque")
		return TokenInfo{}, nil
	}

	if secret != "" {
		_, err := jwt.NewParser(jwt.WithTimeFunc(func() time.Time { return now })).
			ParseWithClaims(token, jwt.MapClaims{}, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
				}
				return []byte(secret), nil
			})
		if errors.Is(err, jwt.ErrTokenExpired) {
			return TokenInfo{}, ErrTokenExpired
		}
		if err != nil {
			log.WithError(err).Warn("Token verification failed")
			return TokenInfo{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
		}
	}

	info := TokenInfo{IsJWT: true, Verified: secret != ""}
	if sub, err := claims.GetSubject(); err == nil {
		info.Subject = sub
	}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return TokenInfo{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if exp != nil {
		t := exp.Time
		info.ExpiresAt = &t
		if !now.Before(t) {
			return TokenInfo{}, ErrTokenExpired
		}
	}

	return info, nil
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(header string) string {
	header = strings.TrimSpace(header)
	if len(header) < 7 || !strings.EqualFold(header[:7], "Bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}

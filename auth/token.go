// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// OrganizerRole is the role claim carried by organizer tokens.
const OrganizerRole = "orga"

// DefaultTokenTTL bounds how long an organizer token stays valid.
const DefaultTokenTTL = 12 * time.Hour

var ErrNoSecret = errors.New("token secret is empty")

// Claims is the payload of an organizer token.
type Claims struct {
	jwt.RegisteredClaims
	Role      string `json:"role"`
	TastingID string `json:"tid"`
}

// Issuer signs and verifies organizer tokens scoped to one tasting.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewIssuer builds an HS256 issuer. A zero ttl uses DefaultTokenTTL and a
// nil now uses time.Now.
func NewIssuer(secret string, ttl time.Duration, now func() time.Time) (*Issuer, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, ErrNoSecret
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	if now == nil {
		now = time.Now
	}
	return &Issuer{secret: []byte(secret), ttl: ttl, now: now}, nil
}

// TTL returns the lifetime of issued tokens.
func (i *Issuer) TTL() time.Duration { return i.ttl }

// Issue returns a fresh organizer token for tastingID.
func (i *Issuer) Issue(tastingID string) (string, error) {
	if tastingID == "" {
		return "", fmt.Errorf("%w: tasting id is empty", ErrInvalidToken)
	}
	jti, err := GenerateID(16)
	if err != nil {
		return "", err
	}

	now := i.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   tastingID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
		Role:      OrganizerRole,
		TastingID: tastingID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Parse validates signature, algorithm and expiry and returns the claims.
func (i *Issuer) Parse(tokenString string) (Claims, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return Claims{}, ErrInvalidToken
	}

	var claims Claims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if claims.Role != OrganizerRole || claims.TastingID == "" {
		return Claims{}, fmt.Errorf("%w: not an organizer token", ErrInvalidToken)
	}
	return claims, nil
}

// Verify reports whether tokenString is a valid organizer token for
// tastingID. Any failure is a plain false.
func (i *Issuer) Verify(tokenString, tastingID string) bool {
	if tastingID == "" {
		return false
	}
	claims, err := i.Parse(tokenString)
	if err != nil {
		return false
	}
	return claims.TastingID == tastingID
}

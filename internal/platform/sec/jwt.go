// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package sec provides cryptographic primitives and token management.
//
// # Architecture
//
// This package isolates security-sensitive code (Hashing, Token Signing) from
// the domain logic. It acts as an Infrastructure service injected into the
// Application layer via small interfaces ([TokenIssuer], [TokenVerifier]).
package sec

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrMissingSigningKey is returned when the token service is built without a secret.
	ErrMissingSigningKey = errors.New("auth: token signing key is not configured")

	// ErrInvalidToken is returned when a token is neither a valid signed token
	// nor a decodable legacy token.
	ErrInvalidToken = errors.New("auth: invalid token")
)

// Identity is the authenticated principal carried by a token or a session.
type Identity struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
}

// AuthClaims represents the payload embedded inside a signed bearer token.
//
// Custom application claims are abbreviated to keep the payload small.
type AuthClaims struct {
	jwt.RegisteredClaims

	UserID   string `json:"uid"`
	Username string `json:"unm"`
}

// TokenService issues and verifies HS256 bearer tokens.
type TokenService struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// TokenOption customises a [TokenService].
type TokenOption func(*TokenService)

// WithTokenClock overrides the clock used for issuing and validating expiry.
func WithTokenClock(now func() time.Time) TokenOption {
	return func(service *TokenService) { service.now = now }
}

// WithTokenTTL overrides the lifetime of issued tokens.
func WithTokenTTL(ttl time.Duration) TokenOption {
	return func(service *TokenService) { service.ttl = ttl }
}

// NewTokenService creates a new TokenService signing with the given secret.
// An empty secret is a configuration error; there is no default key.
func NewTokenService(secret, issuer string, ttl time.Duration, options ...TokenOption) (*TokenService, error) {
	if secret == "" {
		return nil, ErrMissingSigningKey
	}

	service := &TokenService{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}
	for _, option := range options {
		option(service)
	}
	return service, nil
}

// Issue creates a signed token for the identity, expiring after the service TTL.
func (service *TokenService) Issue(identity Identity) (string, error) {
	currentTime := service.now()
	claims := AuthClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.UserID,
			Issuer:    service.issuer,
			IssuedAt:  jwt.NewNumericDate(currentTime),
			ExpiresAt: jwt.NewNumericDate(currentTime.Add(service.ttl)),
		},
		UserID:   identity.UserID,
		Username: identity.Username,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(service.secret)
	if err != nil {
		return "", fmt.Errorf("auth: failed to sign token: %w", err)
	}

	return signedToken, nil
}

// Verify resolves a bearer token to an identity.
//
// Signed tokens are checked first (signature, algorithm, issuer, expiry). Any
// failure there falls through to the legacy unsigned encoding so clients holding
// pre-signing tokens are not logged out.
func (service *TokenService) Verify(tokenString string) (*Identity, error) {
	if identity, err := service.verifySigned(tokenString); err == nil {
		return identity, nil
	}

	if identity, ok := DecodeLegacyToken(tokenString); ok {
		return identity, nil
	}

	return nil, ErrInvalidToken
}

func (service *TokenService) verifySigned(tokenString string) (*Identity, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AuthClaims{}, func(token *jwt.Token) (interface{}, error) {
		return service.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(service.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(service.now),
	)
	if err != nil {
		return nil, fmt.Errorf("auth: invalid token: %w", err)
	}

	claims, ok := token.Claims.(*AuthClaims)
	if !ok || !token.Valid || claims.UserID == "" || claims.Username == "" {
		return nil, fmt.Errorf("auth: invalid token claims")
	}

	return &Identity{UserID: claims.UserID, Username: claims.Username}, nil
}

// Copyright (c) 2026 EduSeek. All rights reserved.
// Author: quang.leminh.dev@gmail.com

// Package sec provides cryptographic primitives and token management.
//
// # Architecture
//
// This package isolates security-sensitive code (Hashing, JWT Signing, CSRF
// entropy) from the domain logic. It acts as an Infrastructure service
// injected into the Application layer via small interfaces.
package sec

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AuthClaims represents the payload embedded inside a signed token.
//
// # Why custom claims?
//
// By embedding the Username, Role, and Purpose directly inside the JWT,
// the authentication gate can reconstruct the active principal context
// WITHOUT querying the database for the claims themselves. Claim names are
// abbreviated to keep the token payload small.
type AuthClaims struct {
	jwt.RegisteredClaims

	Username string `json:"unm"`
	Role     string `json:"rol"`

	// Purpose labels non-access tokens (REFRESH_TOKEN, RESET_TOKEN).
	// Access tokens carry an empty purpose.
	Purpose string `json:"pur,omitempty"`
}

// ErrTokenExpired marks a token whose signature is valid but whose expiry
// has elapsed. It is distinguishable from other parse failures for logging
// and for the refresh flow; handlers surface both identically as 401.
var ErrTokenExpired = errors.New("sec: token expired")

// ErrTokenInvalid marks any other verification failure (bad signature,
// malformed payload, wrong algorithm).
var ErrTokenInvalid = errors.New("sec: invalid token")

// TokenCodec signs and verifies tokens with a single shared HS256 secret.
//
// The secret is process-wide immutable configuration injected at startup.
// Rotating it is a deploy-time operation: all outstanding tokens become
// invalid, which is the intended behavior for an emergency rotation.
type TokenCodec struct {
	secret []byte
	issuer string
}

// NewTokenCodec creates a codec around the shared signing secret.
func NewTokenCodec(secret, issuer string) (*TokenCodec, error) {
	if secret == "" {
		return nil, fmt.Errorf("sec: signing secret must not be empty")
	}
	return &TokenCodec{secret: []byte(secret), issuer: issuer}, nil
}

// Issue creates a signed token for the subject.
//
// # Parameters
//   - subject: The principal's username.
//   - role: The principal's role, carried as a claim.
//   - purpose: Registry purpose label; empty for access tokens.
//   - timeToLive: Duration before the token expires.
func (codec *TokenCodec) Issue(subject, role, purpose string, timeToLive time.Duration) (string, error) {
	currentTime := time.Now()
	claims := AuthClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    codec.issuer,
			IssuedAt:  jwt.NewNumericDate(currentTime),
			ExpiresAt: jwt.NewNumericDate(currentTime.Add(timeToLive)),
		},
		Username: subject,
		Role:     role,
		Purpose:  purpose,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(codec.secret)
	if err != nil {
		return "", fmt.Errorf("sec: failed to sign token: %w", err)
	}

	return signedToken, nil
}

// Parse verifies the signature first, then the expiry, and returns the claims.
//
// Expiry failures are reported as [ErrTokenExpired]; every other failure as
// [ErrTokenInvalid]. Callers outside this package must treat both the same
// way toward clients.
func (codec *TokenCodec) Parse(tokenString string) (*AuthClaims, error) {
	return codec.parse(tokenString)
}

// ParseIgnoringExpiry verifies the signature but skips the expiry check.
//
// # Security
//
// This is a deliberately separate, named operation rather than a flag on
// [TokenCodec.Parse]. Its only legitimate use is resolving WHO an already
// expired access token belonged to, so the refresh flow can look up the
// registry by subject. It never makes an expired token acceptable for
// authentication.
func (codec *TokenCodec) ParseIgnoringExpiry(tokenString string) (*AuthClaims, error) {
	return codec.parse(tokenString, jwt.WithoutClaimsValidation())
}

// parse runs the shared verification pipeline.
func (codec *TokenCodec) parse(tokenString string, options ...jwt.ParserOption) (*AuthClaims, error) {
	keyFunc := func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("sec: unexpected signing method: %v", token.Header["alg"])
		}
		return codec.secret, nil
	}

	token, err := jwt.ParseWithClaims(tokenString, &AuthClaims{}, keyFunc, options...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %w", ErrTokenExpired, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}

	claims, ok := token.Claims.(*AuthClaims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}

// IsExpired reports whether a parse failure was an expiry failure with an
// otherwise valid signature. Used for metrics/log labels only.
func IsExpired(err error) bool {
	return errors.Is(err, ErrTokenExpired)
}

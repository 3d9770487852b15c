// Copyright (c) 2026 EduSeek. All rights reserved.
// Author: quang.leminh.dev@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/eduseek/eduseek/internal/platform/apperr"
	"github.com/eduseek/eduseek/internal/platform/constants"
	"github.com/eduseek/eduseek/internal/platform/sec"
)

// # Contracts & Types

// TokenCodec defines the contract for issuing and verifying signed tokens.
//
// Parse and ParseIgnoringExpiry are deliberately separate named operations:
// the security-sensitive choice to skip the expiry check must be visible at
// every call site.
type TokenCodec interface {
	Issue(subject, role, purpose string, timeToLive time.Duration) (string, error)
	Parse(tokenString string) (*sec.AuthClaims, error)
	ParseIgnoringExpiry(tokenString string) (*sec.AuthClaims, error)
}

// TokenConfig carries the externally injected token lifetimes.
type TokenConfig struct {
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	ResetTTL   time.Duration
}

// Service implements the session lifecycle use cases.
//
// # Review Process
//
// This service is critical for security. Any changes to credential
// verification, token issuance, or the refresh flow must be reviewed by the
// security team.
type Service struct {
	users    UserRepository
	registry TokenRegistry
	codec    TokenCodec
	mailer   Mailer
	tokens   TokenConfig
}

// NewService constructs a new [Service] with necessary dependencies.
func NewService(users UserRepository, registry TokenRegistry, codec TokenCodec, mailer Mailer, tokens TokenConfig) *Service {
	return &Service{
		users:    users,
		registry: registry,
		codec:    codec,
		mailer:   mailer,
		tokens:   tokens,
	}
}

// # Authentication Flow

// LoginInput defines credentials for an authentication attempt.
type LoginInput struct {
	Login    string // Can be Username or Email
	Password string
}

// Login validates credentials and establishes a session.
//
// # Flow
//
//  1. Resolve the principal by email or username.
//  2. Verify the password hash (constant-time comparison inside bcrypt).
//  3. Only AFTER the credential check, verify the role belongs to the
//     endpoint's permitted set. Checking the role first would leak which
//     accounts exist through the 401-vs-403 distinction.
//  4. Issue the access token, refresh token, and CSRF token, and write the
//     refresh token to the registry (overwriting any prior session).
//
// The registry write is the session's single piece of server-side state.
// If it fails, no session exists: the error propagates and the issued
// tokens are discarded.
func (service *Service) Login(ctx context.Context, input LoginInput, permitted ...sec.Role) (*Session, error) {
	user, err := service.users.FindByEmail(ctx, input.Login)
	if err != nil {
		user, err = service.users.FindByUsername(ctx, input.Login)
	}

	// Generic message for both unknown account and bad password, to prevent
	// account enumeration.
	if err != nil {
		return nil, apperr.Unauthorized("Invalid login credentials")
	}

	if !sec.CheckPasswordHash(input.Password, user.PasswordHash) {
		return nil, apperr.Unauthorized("Invalid login credentials")
	}

	if !user.IsActive {
		return nil, apperr.Unauthorized("Account is deactivated")
	}

	if !user.Role.In(permitted...) {
		return nil, apperr.Forbidden("Insufficient permissions for this endpoint")
	}

	session, err := service.issueSession(user)
	if err != nil {
		return nil, err
	}

	refreshToken, err := service.codec.Issue(user.Username, string(user.Role), constants.PurposeRefreshToken, service.tokens.RefreshTTL)
	if err != nil {
		return nil, fmt.Errorf("auth_service_refresh_token_failed: %w", err)
	}

	if err := service.registry.Put(ctx, constants.PurposeRefreshToken, user.Username, refreshToken, service.tokens.RefreshTTL); err != nil {
		return nil, registryUnavailable(err)
	}

	return session, nil
}

// # Session Management

// Refresh exchanges a stale access token for a fresh access+CSRF pair.
//
// The caller's access token may be expired — that is the point of the flow —
// so the subject is recovered with ParseIgnoringExpiry, which still verifies
// the signature. Validity then hinges entirely on the registry: the stored
// refresh token must exist, verify, and belong to a still-active principal.
//
// The refresh token itself is NOT reissued and the registry entry is left
// untouched: only the access layer rotates, and the refresh lifetime stays
// anchored to its original issuance. This is a deliberate simplification —
// a stolen refresh token remains valid until logout or natural expiry, and
// both logout and password reset force it out.
func (service *Service) Refresh(ctx context.Context, staleAccessToken string) (*Session, error) {
	claims, err := service.codec.ParseIgnoringExpiry(staleAccessToken)
	if err != nil {
		return nil, apperr.Unauthorized("Invalid Access Token")
	}

	subject := claims.Subject

	storedToken, err := service.registry.Get(ctx, constants.PurposeRefreshToken, subject)
	if err != nil {
		if errors.Is(err, ErrEntryAbsent) {
			return nil, apperr.Unauthorized("Refresh token is empty")
		}
		// A registry outage must fail closed, but as 503, never as a
		// silently "absent" token and never as implicit validity.
		return nil, registryUnavailable(err)
	}

	refreshClaims, err := service.codec.Parse(storedToken)
	if err != nil || refreshClaims.Purpose != constants.PurposeRefreshToken || refreshClaims.Subject != subject {
		return nil, apperr.Unauthorized("Invalid Refresh Token")
	}

	user, err := service.users.FindByUsername(ctx, subject)
	if err != nil {
		return nil, apperr.Unauthorized("User not found")
	}

	if !user.IsActive {
		return nil, apperr.Unauthorized("Account is deactivated")
	}

	return service.issueSession(user)
}

// Logout removes the principal's refresh token registry entry.
//
// The operation is idempotent: logging out twice leaves the registry in the
// same state and the second call does not error.
func (service *Service) Logout(ctx context.Context, subject string) error {
	if err := service.registry.Delete(ctx, constants.PurposeRefreshToken, subject); err != nil {
		return registryUnavailable(err)
	}
	return nil
}

// # Password Recovery

// ForgotPassword initiates the reset flow for the given email.
//
// NOTE: an unknown email returns nil — the caller always sees the same
// generic response, preventing user enumeration.
func (service *Service) ForgotPassword(ctx context.Context, email string) error {
	user, err := service.users.FindByEmail(ctx, email)
	if err != nil {
		return nil
	}

	resetToken, err := service.codec.Issue(user.Username, string(user.Role), constants.PurposeResetToken, service.tokens.ResetTTL)
	if err != nil {
		return fmt.Errorf("auth_service_reset_token_failed: %w", err)
	}

	if err := service.registry.Put(ctx, constants.PurposeResetToken, user.Username, resetToken, service.tokens.ResetTTL); err != nil {
		return registryUnavailable(err)
	}

	// Delivery is the notification service's problem; a lost email is
	// recoverable by requesting another reset.
	_ = service.mailer.SendPasswordReset(ctx, user.Email, resetToken)

	return nil
}

// ResetPassword completes the reset flow.
//
// The presented token must verify, carry the RESET_TOKEN purpose, and match
// the registry copy exactly — issuing a newer reset token supersedes older
// ones, and a consumed token cannot be replayed. On success every active
// session of the principal is revoked.
func (service *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	claims, err := service.codec.Parse(token)
	if err != nil || claims.Purpose != constants.PurposeResetToken {
		return apperr.Unauthorized("Invalid or expired reset token")
	}

	subject := claims.Subject

	storedToken, err := service.registry.Get(ctx, constants.PurposeResetToken, subject)
	if err != nil {
		if errors.Is(err, ErrEntryAbsent) {
			return apperr.Unauthorized("Invalid or expired reset token")
		}
		return registryUnavailable(err)
	}

	if storedToken != token {
		return apperr.Unauthorized("Invalid or expired reset token")
	}

	hashedPassword, err := sec.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("auth_service_reset_password_hash_failed: %w", err)
	}

	if err := service.users.UpdatePassword(ctx, subject, hashedPassword); err != nil {
		return fmt.Errorf("auth_service_reset_password_update_failed: %w", err)
	}

	// Consume the reset token and revoke the active session.
	_ = service.registry.Delete(ctx, constants.PurposeResetToken, subject)
	_ = service.registry.Delete(ctx, constants.PurposeRefreshToken, subject)

	return nil
}

// # Gate Support

// ResolveActivePrincipal resolves a token subject to its current role.
//
// It implements the authentication gate's resolver contract: the granted
// role always reflects the stored account, and deactivated principals are
// never bound to a request.
func (service *Service) ResolveActivePrincipal(ctx context.Context, username string) (sec.Role, error) {
	user, err := service.users.FindByUsername(ctx, username)
	if err != nil {
		return "", err
	}
	if !user.IsActive {
		return "", apperr.Unauthorized("Account is deactivated")
	}
	return user.Role, nil
}

// # Helpers

// issueSession creates the access+CSRF pair for an already-verified principal.
func (service *Service) issueSession(user *User) (*Session, error) {
	accessToken, err := service.codec.Issue(user.Username, string(user.Role), "", service.tokens.AccessTTL)
	if err != nil {
		return nil, fmt.Errorf("auth_service_access_token_failed: %w", err)
	}

	csrfToken, err := sec.GenerateCSRFToken()
	if err != nil {
		return nil, fmt.Errorf("auth_service_csrf_token_failed: %w", err)
	}

	now := time.Now()
	return &Session{
		AccessToken:          accessToken,
		AccessTokenExpiresAt: now.Add(service.tokens.AccessTTL),
		RefreshExpiresAt:     now.Add(service.tokens.RefreshTTL),
		CsrfToken:            csrfToken,
		User:                 user,
	}, nil
}

// registryUnavailable wraps a registry I/O failure as a 503.
// The request is denied (fail closed) but distinguishable from a 401.
func registryUnavailable(err error) error {
	return apperr.ServiceUnavailable("Session store unavailable", err)
}

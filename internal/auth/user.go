// Copyright (c) 2026 EduSeek. All rights reserved.
// Author: quang.leminh.dev@gmail.com

/*
Package auth implements the authentication and session subsystem.

It defines the Principal entity and the logic for credential verification,
token issuance, refresh rotation, and logout.

# Architecture

This layer is the "Truth" of the system for identity. Entities defined here
have no transport dependencies and encapsulate all business rules related to
session lifecycle.
*/
package auth

import (
	"time"

	"github.com/eduseek/eduseek/internal/platform/sec"
)

// # Domain Entities

// User represents a registered principal of the EduSeek platform.
//
// Accounts are created and managed by the user-management subsystem; the
// auth core reads them and only ever writes the password hash (reset flow).
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Explicitly omitted from JSON for security.
	DisplayName  string    `json:"display_name"`
	Role         sec.Role  `json:"role"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Session represents a successfully established login or refresh result.
//
// It is transport-ready: the handler turns it into the ACCESS_TOKEN and
// CSRF_TOKEN cookies plus the JSON response body. Nothing here is persisted —
// the only server-side session state is the refresh token registry entry.
type Session struct {
	AccessToken          string
	AccessTokenExpiresAt time.Time

	// RefreshExpiresAt is the end of the refresh window. The session cookies
	// live until this point — not until the access token expires — so the
	// client still holds the expired access token when it calls refresh.
	RefreshExpiresAt time.Time

	CsrfToken string
	User      *User
}

// # Field Identifiers

// Global field names for validation and identity mapping in the authentication domain.
const (
	FieldEmail       = "email"
	FieldPassword    = "password"
	FieldLogin       = "login"
	FieldToken       = "token"
	FieldAccessToken = "access_token"
	FieldCsrfToken   = "csrf_token"
	FieldTokenType   = "token_type"
	FieldExpiresIn   = "expires_in"
	FieldUser        = "user"
	FieldMessage     = "message"
)

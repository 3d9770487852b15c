// Copyright (c) 2026 EduSeek. All rights reserved.
// Author: quang.leminh.dev@gmail.com

package auth

import (
	"context"
	"errors"
	"time"
)

// ErrEntryAbsent is returned by [TokenRegistry.Get] when no entry exists for
// the (purpose, principal) pair.
//
// Absence is distinct from a transient store failure: absence means the
// caller holds a token that was never issued, already rotated out, or has
// naturally expired; a store failure means we cannot know, and must fail
// closed. Both deny the request, but only the latter surfaces as 503.
var ErrEntryAbsent = errors.New("auth: token registry entry absent")

// # User Data Access

// UserRepository defines the read-mostly data access contract for principals.
//
// The auth core never creates or deletes accounts; the single write it
// performs is the password-hash update at the end of the reset flow.
type UserRepository interface {
	// FindByUsername returns the account with the given username.
	FindByUsername(ctx context.Context, username string) (*User, error)

	// FindByEmail returns the account with the given email.
	FindByEmail(ctx context.Context, email string) (*User, error)

	// UpdatePassword replaces only the user's password hash.
	UpdatePassword(ctx context.Context, username, newHash string) error
}

// # Token Registry

// TokenRegistry is the centralized store holding the single currently-valid
// token per (purpose, principal) pair.
//
// # Semantics
//
//   - Put overwrites unconditionally (last-writer-wins); rotation always
//     replaces the prior entry in one atomic single-key write.
//   - Get returns [ErrEntryAbsent] when no entry exists; any other error is
//     a transient store failure.
//   - Delete of a missing entry is a no-op, which makes logout idempotent.
//
// Entries expire on their own after ttl, so an abandoned principal leaves
// no permanent state behind.
type TokenRegistry interface {
	Put(ctx context.Context, purpose, principal, value string, ttl time.Duration) error
	Get(ctx context.Context, purpose, principal string) (string, error)
	Delete(ctx context.Context, purpose, principal string) error
}

// # External Collaborators

// Mailer delivers notification emails. Actual delivery is owned by the
// email-notification service; this core only hands it the reset token.
type Mailer interface {
	// SendPasswordReset sends the reset token to the given address.
	SendPasswordReset(ctx context.Context, email, token string) error
}

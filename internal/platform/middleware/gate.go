// Copyright (c) 2026 EduSeek. All rights reserved.
// Author: quang.leminh.dev@gmail.com

// Package middleware: authentication gate for the EduSeek API server.
//
// # Architecture
//
// The gate intercepts every inbound request before it reaches a domain
// handler. It never writes to the token registry — issuing and rotating
// tokens is the session service's job; the gate only validates and binds
// the per-request principal context.
package middleware

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"

	"github.com/eduseek/eduseek/internal/platform/apperr"
	"github.com/eduseek/eduseek/internal/platform/constants"
	"github.com/eduseek/eduseek/internal/platform/ctxutil"
	"github.com/eduseek/eduseek/internal/platform/respond"
	"github.com/eduseek/eduseek/internal/platform/sec"
)

// TokenParser defines the interface needed to verify access tokens in the gate.
//
// # Why an interface?
//
// Defining TokenParser here decouples the middleware from the concrete
// [sec.TokenCodec], allowing us to easily inject mocks during unit testing.
type TokenParser interface {
	Parse(tokenString string) (*sec.AuthClaims, error)
}

// PrincipalResolver resolves a token subject to its current role, failing
// for unknown or deactivated accounts.
//
// The gate consults it so that the granted role always reflects the stored
// principal, not a stale claim inside a still-valid token.
type PrincipalResolver interface {
	ResolveActivePrincipal(ctx context.Context, username string) (sec.Role, error)
}

// PublicRoute is a single entry in the gate's allow-list.
//
// An empty Method matches every HTTP method. Prefix matching is deliberate:
// "/api/v1/auth/login" covers both login endpoints.
type PublicRoute struct {
	Method string
	Prefix string
}

// Matches reports whether the request falls under this allow-list entry.
func (route PublicRoute) Matches(request *http.Request) bool {
	if route.Method != "" && route.Method != request.Method {
		return false
	}
	return strings.HasPrefix(request.URL.Path, route.Prefix)
}

// Gate is the per-request authentication middleware.
//
// # Flow
//
//  1. Requests matching the public allow-list pass through unauthenticated.
//  2. Every other request must present matching CSRF values in the
//     CSRF_TOKEN cookie and the X-CSRF-TOKEN header (double-submit).
//     A mismatch rejects with 403 before any token is touched.
//  3. The ACCESS_TOKEN cookie, when present, is parsed. An invalid or
//     expired token does NOT abort the request — it leaves the context
//     unauthenticated so that downstream [RequireAuth]/[RequireRole]
//     guards produce the final 401/403. A valid token resolves the
//     principal by subject and binds the claims for the rest of the request.
func Gate(parser TokenParser, resolver PrincipalResolver, public []PublicRoute) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

			// ── 1. Public Allow-List ──────────────────────────────────────────
			for _, route := range public {
				if route.Matches(request) {
					next.ServeHTTP(writer, request)
					return
				}
			}

			// ── 2. CSRF Double-Submit ─────────────────────────────────────────
			if !csrfMatches(request) {
				respond.Error(writer, request, apperr.Forbidden("Invalid CSRF Token"))
				return
			}

			// ── 3. Optional Principal Binding ─────────────────────────────────
			cookie, err := request.Cookie(constants.AccessTokenCookieName)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(writer, request)
				return
			}

			claims, err := parser.Parse(cookie.Value)
			if err != nil {
				// Fail silently to "no identity": public+optional-auth routes
				// still work, and role guards reject where auth is mandatory.
				logger := ctxutil.GetLogger(request.Context())
				logger.DebugContext(request.Context(), "access_token_rejected",
					slog.Bool("expired", sec.IsExpired(err)),
				)
				next.ServeHTTP(writer, request)
				return
			}

			// Do not overwrite an identity already bound upstream.
			if ctxutil.GetPrincipal(request.Context()) != nil {
				next.ServeHTTP(writer, request)
				return
			}

			// The granted role comes from the stored principal; a subject
			// that no longer resolves (deactivated, deleted) stays anonymous.
			role, err := resolver.ResolveActivePrincipal(request.Context(), claims.Subject)
			if err != nil {
				next.ServeHTTP(writer, request)
				return
			}

			bound := &sec.AuthClaims{
				RegisteredClaims: claims.RegisteredClaims,
				Username:         claims.Subject,
				Role:             string(role),
			}
			ctx := ctxutil.WithPrincipal(request.Context(), bound)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// csrfMatches implements the double-submit comparison.
//
// Both copies must be present and byte-identical. The comparison is
// constant-time; length is leaked, which is fine since token length is fixed
// and public.
func csrfMatches(request *http.Request) bool {
	cookie, err := request.Cookie(constants.CSRFTokenCookieName)
	if err != nil || cookie.Value == "" {
		return false
	}

	header := request.Header.Get(constants.HeaderXCSRFToken)
	if header == "" || len(header) != len(cookie.Value) {
		return false
	}

	return subtle.ConstantTimeCompare([]byte(cookie.Value), []byte(header)) == 1
}

// RequireAuth blocks requests that are not authenticated.
//
// # Usage
//
// Must be registered in the router AFTER [Gate].
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		claims := ctxutil.GetPrincipal(request.Context())
		if claims == nil {
			respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
			return
		}
		next.ServeHTTP(writer, request)
	})
}

// RequireRole blocks requests whose principal's role is outside the
// permitted set.
//
// # Usage
//
// Must be registered in the router AFTER [Gate]. It implies [RequireAuth],
// so mounting both is unnecessary.
//
// The permitted set is explicit and exhaustive per route; there is no role
// hierarchy. An admin must be named in the set to pass.
func RequireRole(permitted ...sec.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			claims := ctxutil.GetPrincipal(request.Context())

			// ── 1. Authentication Check ───────────────────────────────────────
			if claims == nil {
				respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
				return
			}

			// ── 2. Authorization Check ────────────────────────────────────────
			role, ok := sec.ParseRole(claims.Role)
			if !ok || !role.In(permitted...) {
				respond.Error(writer, request, apperr.Forbidden("Insufficient permissions"))
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}

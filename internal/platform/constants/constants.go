// Copyright (c) 2026 EduSeek. All rights reserved.
// Author: quang.leminh.dev@gmail.com

/*
Package constants provides centralized, immutable values for the entire platform.

It defines default timeouts, rate limits, and cross-cutting keys that are shared
between different layers of the system.

Categories:

  - Server Timing: Read/Write/Idle timeouts for the HTTP server.
  - Rate Limiting: Burst capacities and IP tracking TTLs.
  - Security: Token issuer, cookie names, and registry purpose labels.

Using this package ensures Magic Strings and Magic Numbers are eliminated
from the business logic.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "eduseek-api"
	AppVersion = "0.1.0-dev"
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	DefaultReadTimeout = 5 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	DefaultWriteTimeout = 10 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the deadline for the entire request lifecycle.
	GlobalRequestTimeout = 30 * time.Second

	// ShutdownTimeout is how long we wait for in-flight requests to complete during shutdown.
	ShutdownTimeout = 30 * time.Second
)

// # Rate Limiting

const (
	// DefaultRateLimitRPS is the requests per second allowed per IP.
	DefaultRateLimitRPS = 100.0

	// DefaultRateLimitBurst is the maximum burst allowed for the rate limiter.
	DefaultRateLimitBurst = 150

	// RateLimitCleanupInterval is how often old IP entries are removed from memory.
	RateLimitCleanupInterval = 1 * time.Minute

	// RateLimitClientTTL is how long a client must be idle before its entry is deleted.
	RateLimitClientTTL = 3 * time.Minute
)

// # Authentication

const (
	// AuthIssuer is the standard 'iss' claim in issued tokens.
	AuthIssuer = "eduseek.app"

	// AccessTokenCookieName stores the short-lived access token.
	// The cookie is http-only: client scripts must never read it.
	AccessTokenCookieName = "ACCESS_TOKEN"

	// CSRFTokenCookieName stores the anti-forgery token. The cookie is
	// deliberately readable by client scripts so its value can be echoed
	// back in the X-CSRF-TOKEN header (double-submit pattern).
	CSRFTokenCookieName = "CSRF_TOKEN"

	// HeaderXCSRFToken carries the client's copy of the CSRF token.
	HeaderXCSRFToken = "X-CSRF-TOKEN"

	// AuthCookiePath scopes both auth cookies to the API root.
	AuthCookiePath = "/"
)

// # Token Registry Purposes

// Purpose labels partition the token registry key space. A token stored
// under one purpose can never satisfy a lookup for another.
const (
	PurposeRefreshToken = "REFRESH_TOKEN"
	PurposeResetToken   = "RESET_TOKEN"
)

// # HTTP Headers

const (
	HeaderXRequestID    = "X-Request-ID"
	HeaderXRealIP       = "X-Real-IP"
	HeaderXForwardedFor = "X-Forwarded-For"
	HeaderOrigin        = "Origin"
)

// # JSON Field Identifiers

const (
	FieldData    = "data"
	FieldMeta    = "meta"
	FieldError   = "error"
	FieldCode    = "code"
	FieldDetails = "details"
	FieldMessage = "message"
	FieldStatus  = "status"
	FieldService = "service"
)

// # Database Schemas

const (
	SchemaUsers   = "users"
	SchemaCatalog = "catalog"
)

// # Redis Prefixes (Cache Taxonomy)

const (
	// RedisPrefixToken is the root of all token registry keys. The full key
	// shape is "auth:token:<PURPOSE>:<username>".
	RedisPrefixToken = "auth:token:"
)

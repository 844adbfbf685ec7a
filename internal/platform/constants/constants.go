// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package constants provides centralized, immutable values for the entire platform.

It defines default timeouts, credential lifetimes, and cross-cutting keys that are
shared between different layers of the system.

Categories:

  - Server Timing: Read/Write/Idle timeouts for the HTTP server.
  - Storage: Local fallback reserve and mirror key prefixes.
  - Security: Token issuer, TTLs and cookie configuration.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "spark-api"
	AppVersion = "0.3.0"
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	DefaultReadTimeout = 5 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	// It must outlive GlobalRequestTimeout so a fallback can still answer.
	DefaultWriteTimeout = 20 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the deadline for the entire request lifecycle.
	GlobalRequestTimeout = 15 * time.Second

	// ShutdownTimeout is how long we wait for in-flight requests to complete during shutdown.
	ShutdownTimeout = 15 * time.Second
)

// # Storage

const (
	// LocalFallbackReserve is the part of a request deadline kept back from
	// a remote call so the local store can still answer.
	LocalFallbackReserve = 500 * time.Millisecond

	// RedisPrefixStore namespaces the local store snapshots mirrored to Redis.
	RedisPrefixStore = "spark:store:"
)

// # Authentication

const (
	// AuthIssuer is the standard 'iss' claim in issued tokens.
	AuthIssuer = "spark.app"

	// TokenTTL is how long an issued bearer token stays valid.
	TokenTTL = 7 * 24 * time.Hour

	// SessionTTL is how long a cookie session stays valid.
	SessionTTL = 7 * 24 * time.Hour

	// SessionIDLength is the number of random bytes behind a session id.
	SessionIDLength = 24

	// SessionCookieName is the name of the cookie carrying the session id.
	SessionCookieName = "session"

	// SessionCookiePath scopes the session cookie to the whole site.
	SessionCookiePath = "/"
)

// # HTTP Headers

const (
	HeaderXRequestID    = "X-Request-ID"
	HeaderXServingMode  = "X-Serving-Mode"
	HeaderXRealIP       = "X-Real-IP"
	HeaderXForwardedFor = "X-Forwarded-For"
	HeaderOrigin        = "Origin"
	HeaderAuthorization = "Authorization"
	HeaderCookie        = "Cookie"
	HeaderSetCookie     = "Set-Cookie"
)

// # JSON Field Identifiers

const (
	FieldData    = "data"
	FieldMode    = "mode"
	FieldError   = "error"
	FieldCode    = "code"
	FieldDetails = "details"
	FieldMessage = "message"
	FieldStatus  = "status"
	FieldChecks  = "checks"
)

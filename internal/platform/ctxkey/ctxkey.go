// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package ctxkey defines typed context keys used by middleware and handlers.
//
// Keys use an unexported type so no other package can collide with them.
package ctxkey

type key string

const (
	// KeyRequestID carries the X-Request-ID correlation value.
	KeyRequestID key = "request_id"

	// KeyIdentity carries the caller resolved from a bearer token or session cookie.
	KeyIdentity key = "identity"

	// KeyLogger carries the per-request [*log/slog.Logger].
	KeyLogger key = "logger"
)

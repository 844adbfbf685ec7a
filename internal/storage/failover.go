// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package storage

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/taibuivan/spark/internal/platform/constants"
)

// LocalReserve is the part of a caller's deadline kept back from the remote
// attempt so the local store can still answer.
const LocalReserve = constants.LocalFallbackReserve

// ErrNoRemote is returned by [Failover.CheckRemote] when no remote is configured.
var ErrNoRemote = errors.New("storage: no remote datastore configured")

// Failover pairs the remote datastore with the local fallback.
//
// It is built once at startup. A nil remote means every call is served by the
// local store in demo mode.
type Failover struct {
	remote  Backend
	local   Backend
	timeout time.Duration
	logger  *slog.Logger
}

// NewFailover returns the call-site policy for remote and local.
func NewFailover(remote, local Backend, timeout time.Duration, logger *slog.Logger) *Failover {
	return &Failover{remote: remote, local: local, timeout: timeout, logger: logger}
}

// Local returns the fallback backend.
func (f *Failover) Local() Backend {
	return f.local
}

// HasRemote reports whether a remote datastore is configured.
func (f *Failover) HasRemote() bool {
	return f.remote != nil
}

// CheckRemote pings the remote datastore when it supports [Pinger].
func (f *Failover) CheckRemote(ctx context.Context) error {
	if f.remote == nil {
		return ErrNoRemote
	}
	if pinger, ok := f.remote.(Pinger); ok {
		return pinger.Ping(ctx)
	}
	return nil
}

// Run executes fn against the remote datastore under the remote deadline.
//
// When the remote is unavailable (see [IsUnavailable]) fn is executed again
// against the local store and the result is reported as [ModeDemo]. Any other
// error is returned as-is. fn must therefore be safe to repeat from scratch.
//
// The remote attempt ends [LocalReserve] before the caller's own deadline. A
// caller with less time left than that skips the remote.
func Run[T any](ctx context.Context, f *Failover, op string, fn func(ctx context.Context, backend Backend) (T, error)) (T, Mode, error) {
	if f.remote == nil {
		result, err := fn(ctx, f.local)
		return result, ModeDemo, err
	}

	budget := f.remoteBudget(ctx)
	if budget <= 0 {
		f.logger.WarnContext(ctx, "storage_fallback",
			slog.String("op", op),
			slog.String("reason", "deadline"),
		)
		result, err := fn(ctx, f.local)
		return result, ModeDemo, err
	}

	remoteCtx, cancel := context.WithTimeout(ctx, budget)
	result, err := fn(remoteCtx, f.remote)
	cancel()

	if err == nil {
		return result, ModeLive, nil
	}
	if !IsUnavailable(err) {
		return result, ModeLive, err
	}

	// The caller gave up; there is nobody left to serve.
	if ctx.Err() != nil {
		var zero T
		return zero, ModeLive, ctx.Err()
	}

	f.logger.WarnContext(ctx, "storage_fallback",
		slog.String("op", op),
		slog.Any("error", err),
	)

	result, err = fn(ctx, f.local)
	return result, ModeDemo, err
}

// remoteBudget is the time the remote attempt may take for a call under ctx.
func (f *Failover) remoteBudget(ctx context.Context) time.Duration {
	deadline, ok := ctx.Deadline()
	if !ok {
		return f.timeout
	}
	return min(f.timeout, time.Until(deadline)-LocalReserve)
}

// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/taibuivan/spark/internal/platform/constants"
	"github.com/taibuivan/spark/internal/platform/ctxutil"
	"github.com/taibuivan/spark/internal/platform/sec"
	"github.com/taibuivan/spark/internal/storage"
	"github.com/taibuivan/spark/pkg/slice"
)

// SessionOption configures a [SessionStore].
type SessionOption func(*SessionStore)

// WithClock replaces the wall clock.
func WithClock(now func() time.Time) SessionOption {
	return func(s *SessionStore) {
		s.now = now
	}
}

// SessionStore implements [SessionRepository] on the local store.
//
// # Lifecycle
//
// Active -> Expired (implicit, once ExpiresAt has passed) -> Purged. Expired
// sessions are never returned and are deleted on the next [SessionStore.Resolve].
type SessionStore struct {
	backend storage.Backend
	ttl     time.Duration
	now     func() time.Time
}

// NewSessionStore returns a store persisting sessions in backend.
func NewSessionStore(backend storage.Backend, options ...SessionOption) *SessionStore {
	store := &SessionStore{
		backend: backend,
		ttl:     constants.SessionTTL,
		now:     time.Now,
	}
	for _, option := range options {
		option(store)
	}
	return store
}

/*
Create opens a session with a fresh random id.
*/
func (store *SessionStore) Create(ctx context.Context, identity sec.Identity, token string) (*Session, error) {
	id, err := sec.GenerateSecureToken(constants.SessionIDLength)
	if err != nil {
		return nil, fmt.Errorf("auth_session_id_failed: %w", err)
	}

	now := store.now().UTC()
	session := &Session{
		ID:        id,
		UserID:    identity.UserID,
		Username:  identity.Username,
		Token:     token,
		CreatedAt: now,
		ExpiresAt: now.Add(store.ttl),
	}

	record, err := storage.Encode(newSessionRow(session))
	if err != nil {
		return nil, err
	}
	if _, err := store.backend.Insert(ctx, ResourceSessions, record); err != nil {
		return nil, fmt.Errorf("auth_session_create_failed: %w", err)
	}

	return session, nil
}

/*
Resolve returns the unexpired session with the given id, or nil.

Description: Reads the whole collection, splits it on the current time, purges
the expired part and then looks the id up among the live sessions.
*/
func (store *SessionStore) Resolve(ctx context.Context, sessionID string) (*Session, error) {
	if sessionID == "" {
		return nil, nil
	}

	rows, err := store.backend.Query(ctx, ResourceSessions, storage.Filter{})
	if err != nil {
		return nil, fmt.Errorf("auth_session_load_failed: %w", err)
	}

	sessions, err := storage.DecodeAll[sessionRow](rows)
	if err != nil {
		return nil, err
	}

	now := store.now()
	active, expired := slice.Partition(sessions, func(row sessionRow) bool {
		expiresAt, ok := row.expiry()
		return ok && expiresAt.After(now)
	})

	if len(expired) > 0 {
		if err := store.purgeExpired(ctx, expired); err != nil {
			return nil, err
		}
	}

	for _, row := range active {
		if row.ID == sessionID {
			return row.toEntity(), nil
		}
	}
	return nil, nil
}

/*
Revoke deletes the session with the given id. Unknown ids are ignored.
*/
func (store *SessionStore) Revoke(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := store.backend.Delete(ctx, ResourceSessions, storage.Where("id", sessionID)); err != nil {
		return fmt.Errorf("auth_session_revoke_failed: %w", err)
	}
	return nil
}

// purgeExpired deletes exactly the given expired sessions.
func (store *SessionStore) purgeExpired(ctx context.Context, expired []sessionRow) error {
	for _, row := range expired {
		if err := store.backend.Delete(ctx, ResourceSessions, storage.Where("id", row.ID)); err != nil {
			return fmt.Errorf("auth_session_purge_failed: %w", err)
		}
	}

	ctxutil.GetLogger(ctx).InfoContext(ctx, "session_expired_purged", slog.Int("count", len(expired)))
	return nil
}

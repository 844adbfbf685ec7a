// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/taibuivan/spark/internal/platform/sec"
	"github.com/taibuivan/spark/internal/storage"
	"github.com/taibuivan/spark/pkg/slice"
	"github.com/taibuivan/spark/pkg/uuid"
)

// IdentityRepository implements [UserRepository] on top of the failover policy.
type IdentityRepository struct {
	failover *storage.Failover
	now      func() time.Time
}

// NewIdentityRepository returns a repository reading and writing through failover.
func NewIdentityRepository(failover *storage.Failover) *IdentityRepository {
	return &IdentityRepository{failover: failover, now: time.Now}
}

/*
FindByUsername returns the account with the given username, or nil.
*/
func (repository *IdentityRepository) FindByUsername(ctx context.Context, username string) (*User, storage.Mode, error) {
	return storage.Run(ctx, repository.failover, "users_find", func(ctx context.Context, backend storage.Backend) (*User, error) {
		return findUser(ctx, backend, username)
	})
}

/*
Create persists a new account.

Description: The username is checked first and the insert also relies on the
backend's unique key, so a concurrent duplicate still yields nil rather than
a second account.
*/
func (repository *IdentityRepository) Create(ctx context.Context, input NewUser) (*User, storage.Mode, error) {

	// Hash once, outside the operation that may run twice
	hash, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, storage.ModeDemo, fmt.Errorf("auth_repository_hash_failed: %w", err)
	}

	candidate := &User{
		UserID:       uuid.New(),
		Username:     input.Username,
		Email:        optionalEmail(input.Email),
		PasswordHash: hash,
		CreatedAt:    repository.now().UTC(),
	}

	return storage.Run(ctx, repository.failover, "users_create", func(ctx context.Context, backend storage.Backend) (*User, error) {

		// Reject a taken username without touching the write path
		existing, err := findUser(ctx, backend, input.Username)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, nil
		}

		record, err := storage.Encode(newUserRow(candidate))
		if err != nil {
			return nil, err
		}

		stored, err := backend.Insert(ctx, ResourceUsers, record)
		if errors.Is(err, storage.ErrConflict) {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("auth_repository_create_failed: %w", err)
		}

		var row userRow
		if err := storage.Decode(stored, &row); err != nil {
			return nil, err
		}
		return row.toEntity(), nil
	})
}

/*
List returns every account ordered by creation time, newest first.
*/
func (repository *IdentityRepository) List(ctx context.Context) ([]User, storage.Mode, error) {
	return storage.Run(ctx, repository.failover, "users_list", func(ctx context.Context, backend storage.Backend) ([]User, error) {
		rows, err := backend.Query(ctx, ResourceUsers, storage.Filter{}.OrderBy("created_at", true))
		if err != nil {
			return nil, fmt.Errorf("auth_repository_list_failed: %w", err)
		}

		decoded, err := storage.DecodeAll[userRow](rows)
		if err != nil {
			return nil, err
		}

		return slice.Map(decoded, func(row userRow) User { return *row.toEntity() }), nil
	})
}

func findUser(ctx context.Context, backend storage.Backend, username string) (*User, error) {
	rows, err := backend.Query(ctx, ResourceUsers, storage.Where("username", username).Take(1))
	if err != nil {
		return nil, fmt.Errorf("auth_repository_find_failed: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	var row userRow
	if err := storage.Decode(rows[0], &row); err != nil {
		return nil, err
	}
	return row.toEntity(), nil
}

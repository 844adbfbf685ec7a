// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"

	"github.com/taibuivan/spark/internal/platform/sec"
	"github.com/taibuivan/spark/internal/storage"
)

// # User Data Access

// UserRepository defines the data access contract for user accounts.
//
// Every call reports the [storage.Mode] that served it.
type UserRepository interface {

	/*
		FindByUsername returns the account with the given username.

		Parameters:
		  - ctx: context.Context
		  - username: string (case-sensitive)

		Returns:
		  - *User: Hydrated entity, or nil when absent
		  - storage.Mode: live or demo
		  - error: Storage failures
	*/
	FindByUsername(ctx context.Context, username string) (*User, storage.Mode, error)

	/*
		Create hashes the password and persists a brand-new account.

		Parameters:
		  - ctx: context.Context
		  - input: NewUser

		Returns:
		  - *User: Stored entity, or nil when the username is taken
		  - storage.Mode: live or demo
		  - error: Hashing or storage failures
	*/
	Create(ctx context.Context, input NewUser) (*User, storage.Mode, error)

	/*
		List returns every account, newest first.

		Returns:
		  - []User: Accounts
		  - storage.Mode: live or demo
		  - error: Storage failures
	*/
	List(ctx context.Context) ([]User, storage.Mode, error)
}

// NewUser carries the data required to enroll a new member.
type NewUser struct {
	Username string
	Email    string
	Password string
}

// # Session Data Access

// SessionRepository defines the data access contract for cookie sessions.
type SessionRepository interface {

	/*
		Create opens a session for identity carrying the issued token.

		Parameters:
		  - ctx: context.Context
		  - identity: sec.Identity
		  - token: string

		Returns:
		  - *Session: Stored session
		  - error: Entropy or storage failures
	*/
	Create(ctx context.Context, identity sec.Identity, token string) (*Session, error)

	/*
		Resolve returns the live session with the given id.

		Description: Expired sessions are purged from storage as a side effect.

		Returns:
		  - *Session: The session, or nil when unknown or expired
		  - error: Storage failures
	*/
	Resolve(ctx context.Context, sessionID string) (*Session, error)

	/*
		Revoke deletes the session with the given id.

		Returns:
		  - error: Storage failures
	*/
	Revoke(ctx context.Context, sessionID string) error
}

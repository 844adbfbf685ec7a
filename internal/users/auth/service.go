// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"fmt"

	"github.com/taibuivan/spark/internal/platform/apperr"
	"github.com/taibuivan/spark/internal/platform/sec"
	"github.com/taibuivan/spark/internal/storage"
)

// # Contracts & Types

// TokenIssuer defines the contract for minting bearer tokens.
type TokenIssuer interface {
	Issue(identity sec.Identity) (string, error)
}

// Service implements user authentication use cases.
type Service struct {
	users    UserRepository
	sessions SessionRepository
	tokens   TokenIssuer
}

// NewService constructs a new [Service] with necessary dependencies.
func NewService(users UserRepository, sessions SessionRepository, tokens TokenIssuer) *Service {
	return &Service{users: users, sessions: sessions, tokens: tokens}
}

// Credentials is the outcome of a successful register or login.
type Credentials struct {
	Token     string `json:"token"`
	Username  string `json:"username"`
	UserID    string `json:"userId"`
	SessionID string `json:"-"`
}

// # Registration Flow

/*
Register creates an account and signs the new member in.

Parameters:
  - ctx: context.Context
  - input: NewUser (already validated)

Returns:
  - *Credentials: Token plus the session to set as a cookie
  - storage.Mode: live or demo
  - err: Conflict when the username is taken, or storage errors
*/
func (service *Service) Register(ctx context.Context, input NewUser) (*Credentials, storage.Mode, error) {
	user, mode, err := service.users.Create(ctx, input)
	if err != nil {
		return nil, mode, fmt.Errorf("auth_service_register_failed: %w", err)
	}
	if user == nil {
		return nil, mode, apperr.Conflict("Username already taken")
	}

	credentials, err := service.signIn(ctx, user.Identity())
	return credentials, mode, err
}

// # Authentication Flow

/*
Login verifies credentials and issues a token and a session.

Description: An unknown username is not rejected. It signs in as an identity
derived from the username and password, so the same pair always maps to the
same user id.

Returns:
  - *Credentials: Token plus the session to set as a cookie
  - storage.Mode: live or demo
  - err: Unauthorized on a wrong password, or storage errors
*/
func (service *Service) Login(ctx context.Context, username, password string) (*Credentials, storage.Mode, error) {
	user, mode, err := service.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, mode, fmt.Errorf("auth_service_login_failed: %w", err)
	}

	identity := sec.DeriveIdentity(username, password)
	if user != nil {
		// Constant-time comparison inside bcrypt
		if !sec.CheckPasswordHash(password, user.PasswordHash) {
			return nil, mode, apperr.Unauthorized("Invalid username or password")
		}
		identity = user.Identity()
	}

	credentials, err := service.signIn(ctx, identity)
	return credentials, mode, err
}

/*
Logout revokes the session. It is idempotent.
*/
func (service *Service) Logout(ctx context.Context, sessionID string) error {
	if err := service.sessions.Revoke(ctx, sessionID); err != nil {
		return fmt.Errorf("auth_service_logout_failed: %w", err)
	}
	return nil
}

// # Session Management

/*
ResolveSession maps a session cookie value to its owner, or nil.
*/
func (service *Service) ResolveSession(ctx context.Context, sessionID string) (*sec.Identity, error) {
	session, err := service.sessions.Resolve(ctx, sessionID)
	if err != nil || session == nil {
		return nil, err
	}
	return session.Identity(), nil
}

func (service *Service) signIn(ctx context.Context, identity sec.Identity) (*Credentials, error) {
	token, err := service.tokens.Issue(identity)
	if err != nil {
		return nil, fmt.Errorf("auth_service_token_failed: %w", err)
	}

	session, err := service.sessions.Create(ctx, identity, token)
	if err != nil {
		return nil, fmt.Errorf("auth_service_session_failed: %w", err)
	}

	return &Credentials{
		Token:     token,
		Username:  identity.Username,
		UserID:    identity.UserID,
		SessionID: session.ID,
	}, nil
}

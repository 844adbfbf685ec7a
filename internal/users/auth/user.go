// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package auth implements the user identity and session management layer.

It defines the core domain entities (User, Session), the repositories that
persist them and the register/login/logout use cases built on top.

# Architecture

Users live in the remote datastore with a transparent local fallback. Sessions
are process-side state and always live in the local store, which is made
durable by its mirror.
*/
package auth

import (
	"time"

	"github.com/taibuivan/spark/internal/platform/sec"
	"github.com/taibuivan/spark/internal/storage"
	"github.com/taibuivan/spark/pkg/pointer"
)

// # Domain Entities

// User represents a registered member of Spark.
type User struct {
	UserID       string    `json:"userId"`
	Username     string    `json:"username"`
	Email        *string   `json:"email,omitempty"`
	PasswordHash string    `json:"-"` // Explicitly omitted from JSON for security.
	CreatedAt    time.Time `json:"createdAt"`
}

// Identity returns the principal carried in tokens for this user.
func (u *User) Identity() sec.Identity {
	return sec.Identity{UserID: u.UserID, Username: u.Username}
}

// Session is a cookie session created at login or registration.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Username  string    `json:"username"`
	Token     string    `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Identity returns the principal that owns the session.
func (s *Session) Identity() *sec.Identity {
	return &sec.Identity{UserID: s.UserID, Username: s.Username}
}

// # Storage Shapes

// Resources owned by this package.
const (
	ResourceUsers    = "users"
	ResourceSessions = "sessions"
)

// UniqueKeys lists the keys the local store must enforce for this package.
func UniqueKeys() []storage.MemoryOption {
	return []storage.MemoryOption{
		storage.WithUniqueKey(ResourceUsers, "username"),
		storage.WithUniqueKey(ResourceUsers, "user_id"),
		storage.WithUniqueKey(ResourceSessions, "id"),
	}
}

type userRow struct {
	UserID       string    `json:"user_id"`
	Username     string    `json:"username"`
	Email        *string   `json:"email"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
}

func (r userRow) toEntity() *User {
	return &User{
		UserID:       r.UserID,
		Username:     r.Username,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		CreatedAt:    r.CreatedAt,
	}
}

func newUserRow(u *User) userRow {
	return userRow{
		UserID:       u.UserID,
		Username:     u.Username,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt.UTC(),
	}
}

// sessionRow keeps timestamps as text so an unreadable expiry can be treated as expired.
type sessionRow struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	Username  string `json:"username"`
	Token     string `json:"token"`
	CreatedAt string `json:"created_at"`
	ExpiresAt string `json:"expires_at"`
}

func newSessionRow(s *Session) sessionRow {
	return sessionRow{
		ID:        s.ID,
		UserID:    s.UserID,
		Username:  s.Username,
		Token:     s.Token,
		CreatedAt: s.CreatedAt.UTC().Format(time.RFC3339Nano),
		ExpiresAt: s.ExpiresAt.UTC().Format(time.RFC3339Nano),
	}
}

// expiry parses the stored expiry. ok is false when it cannot be read.
func (r sessionRow) expiry() (time.Time, bool) {
	expiresAt, err := time.Parse(time.RFC3339Nano, r.ExpiresAt)
	return expiresAt, err == nil
}

func (r sessionRow) toEntity() *Session {
	createdAt, _ := time.Parse(time.RFC3339Nano, r.CreatedAt)
	expiresAt, _ := r.expiry()
	return &Session{
		ID:        r.ID,
		UserID:    r.UserID,
		Username:  r.Username,
		Token:     r.Token,
		CreatedAt: createdAt,
		ExpiresAt: expiresAt,
	}
}

// # Field Identifiers

// Field names for validation in the authentication domain.
const (
	FieldUsername = "username"
	FieldEmail    = "email"
	FieldPassword = "password"
)

// Field-length policy.
const (
	UsernameMinLength = 3
	UsernameMaxLength = 32
	PasswordMinLength = 6
	PasswordMaxBytes  = 72
)

// optionalEmail turns a blank email into nil.
func optionalEmail(email string) *string {
	if email == "" {
		return nil
	}
	return pointer.To(email)
}

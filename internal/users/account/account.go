// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package account serves the public side of user accounts.

It provides the member directory and the profile page of a single member,
assembled from the identity and post repositories.

# Architecture

  - Entities: Member, Profile (read models, never stored).
  - Domain: Depends on auth for users and on posts for authored posts.
*/
package account

import (
	"context"
	"time"

	"github.com/taibuivan/spark/internal/posts"
	"github.com/taibuivan/spark/internal/storage"
	"github.com/taibuivan/spark/internal/users/auth"
)

// # Read Models

// Member is one entry of the user directory.
type Member struct {
	UserID   string    `json:"userId"`
	Username string    `json:"username"`
	JoinedAt time.Time `json:"joinedAt"`
}

// Profile summarises a member and their activity.
type Profile struct {
	Username  string    `json:"username"`
	UserID    string    `json:"userId"`
	JoinedAt  time.Time `json:"joinedAt"`
	PostCount int       `json:"postCount"`
	// TotalUpvotes is the sum of the scores of the member's posts.
	TotalUpvotes int `json:"totalUpvotes"`
}

// ProfilePage is a profile together with the member's posts, newest first.
type ProfilePage struct {
	User  Profile      `json:"user"`
	Posts []posts.Post `json:"posts"`
}

// # Collaborator Contracts

// UserReader is the read side of the identity repository.
type UserReader interface {
	FindByUsername(ctx context.Context, username string) (*auth.User, storage.Mode, error)
	List(ctx context.Context) ([]auth.User, storage.Mode, error)
}

// AuthoredPosts lists the posts written by a member.
type AuthoredPosts interface {
	ListByAuthor(ctx context.Context, username string) ([]posts.Post, storage.Mode, error)
}

// FieldUsername is the query parameter naming a member.
const FieldUsername = "username"

// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package posts implements idea posts and the votes cast on them.

It owns the Post and Vote entities, the repository that lists and creates
posts (seeding a fixed demo set on first use) and the reconciler that applies
a vote and keeps the counters and score consistent.

# Invariants

  - score == upvoteCount - downvoteCount after every write.
  - At most one Vote exists per (user, post) pair.
  - Posts are never deleted.
*/
package posts

import (
	"time"

	"github.com/taibuivan/spark/internal/storage"
)

// # Domain Entities

// Author identifies who submitted a post.
type Author struct {
	Username string `json:"username"`
	UserID   string `json:"userId"`
}

// Post is a submitted idea together with its vote tally.
type Post struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Content       string    `json:"content"`
	Category      string    `json:"category"`
	Author        Author    `json:"author"`
	Score         int       `json:"score"`
	UpvoteCount   int       `json:"upvoteCount"`
	DownvoteCount int       `json:"downvoteCount"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Direction is the way a vote points. The zero value means no vote.
type Direction string

const (
	DirectionNone Direction = ""
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

// Vote records one user's current vote on one post.
type Vote struct {
	UserID    string    `json:"userId"`
	PostID    string    `json:"postId"`
	Direction Direction `json:"direction"`
}

// NewPost carries the data required to submit a post.
type NewPost struct {
	Title    string
	Content  string
	Category string
	Author   Author
}

// # Storage Shapes

// Resources owned by this package.
const (
	ResourcePosts = "posts"
	ResourceVotes = "votes"
)

// DefaultCategory is used when a post is submitted without one.
const DefaultCategory = "tech"

// UniqueKeys lists the keys the local store must enforce for this package.
func UniqueKeys() []storage.MemoryOption {
	return []storage.MemoryOption{
		storage.WithUniqueKey(ResourcePosts, "id"),
		storage.WithUniqueKey(ResourceVotes, "user_id", "post_id"),
	}
}

type postRow struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Content        string    `json:"content"`
	Category       string    `json:"category"`
	AuthorUsername string    `json:"author_username"`
	AuthorUserID   string    `json:"author_user_id"`
	Score          int       `json:"score"`
	UpvoteCount    int       `json:"upvote_count"`
	DownvoteCount  int       `json:"downvote_count"`
	CreatedAt      time.Time `json:"created_at"`
}

func (r postRow) toEntity() *Post {
	return &Post{
		ID:       r.ID,
		Title:    r.Title,
		Content:  r.Content,
		Category: r.Category,
		Author: Author{
			Username: r.AuthorUsername,
			UserID:   r.AuthorUserID,
		},
		Score:         r.Score,
		UpvoteCount:   r.UpvoteCount,
		DownvoteCount: r.DownvoteCount,
		CreatedAt:     r.CreatedAt,
	}
}

type voteRow struct {
	UserID    string    `json:"user_id"`
	PostID    string    `json:"post_id"`
	Direction Direction `json:"direction"`
}

// tallyPatch is the single update that moves the counters and the score together.
func tallyPatch(upvotes, downvotes int) storage.Row {
	return storage.Row{
		"upvote_count":   int64(upvotes),
		"downvote_count": int64(downvotes),
		"score":          int64(upvotes - downvotes),
	}
}

// # Field Identifiers

// Field names for validation in the posts domain.
const (
	FieldTitle    = "title"
	FieldContent  = "content"
	FieldCategory = "category"
	FieldVoteType = "voteType"
)

// Field-length policy.
const (
	TitleMaxLength    = 200
	ContentMaxLength  = 10000
	CategoryMaxLength = 32
)

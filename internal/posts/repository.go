// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package posts

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/taibuivan/spark/internal/platform/ctxutil"
	"github.com/taibuivan/spark/internal/storage"
	"github.com/taibuivan/spark/pkg/slice"
	"github.com/taibuivan/spark/pkg/uuid"
)

// Repository reads and writes posts through the failover policy.
type Repository struct {
	failover *storage.Failover
	now      func() time.Time
}

// NewRepository returns a post repository bound to failover.
func NewRepository(failover *storage.Failover) *Repository {
	return &Repository{failover: failover, now: time.Now}
}

// # Queries

/*
List returns every post, highest score first and newest first among equals.

Description: An empty collection is seeded with the demo set and read again,
so the first listing on a fresh store is deterministic.

Returns:
  - []Post: Ordered posts
  - storage.Mode: live or demo
  - error: Storage failures
*/
func (repository *Repository) List(ctx context.Context) ([]Post, storage.Mode, error) {
	return storage.Run(ctx, repository.failover, "posts_list", func(ctx context.Context, backend storage.Backend) ([]Post, error) {
		posts, err := listPosts(ctx, backend, storage.Filter{})
		if err != nil || len(posts) > 0 {
			return posts, err
		}

		seeded, err := seed(ctx, backend)
		if err != nil {
			return nil, err
		}
		ctxutil.GetLogger(ctx).InfoContext(ctx, "posts_seeded", slog.Int("count", seeded))

		return listPosts(ctx, backend, storage.Filter{})
	})
}

/*
Get returns the post with the given id, or nil.
*/
func (repository *Repository) Get(ctx context.Context, id string) (*Post, storage.Mode, error) {
	return storage.Run(ctx, repository.failover, "posts_get", func(ctx context.Context, backend storage.Backend) (*Post, error) {
		return findPost(ctx, backend, id)
	})
}

/*
ListByAuthor returns the posts submitted by username, newest first.
*/
func (repository *Repository) ListByAuthor(ctx context.Context, username string) ([]Post, storage.Mode, error) {
	return storage.Run(ctx, repository.failover, "posts_list_by_author", func(ctx context.Context, backend storage.Backend) ([]Post, error) {
		rows, err := backend.Query(ctx, ResourcePosts, storage.Where("author_username", username).OrderBy("created_at", true))
		if err != nil {
			return nil, fmt.Errorf("posts_repository_list_failed: %w", err)
		}
		return decodePosts(rows)
	})
}

// # Commands

/*
Create stores a new post with a zero tally.

Parameters:
  - ctx: context.Context
  - input: NewPost (already validated)

Returns:
  - *Post: The stored post
  - storage.Mode: live or demo
  - error: Storage failures
*/
func (repository *Repository) Create(ctx context.Context, input NewPost) (*Post, storage.Mode, error) {
	category := input.Category
	if category == "" {
		category = DefaultCategory
	}

	candidate := postRow{
		ID:             uuid.New(),
		Title:          input.Title,
		Content:        input.Content,
		Category:       category,
		AuthorUsername: input.Author.Username,
		AuthorUserID:   input.Author.UserID,
		CreatedAt:      repository.now().UTC(),
	}

	return storage.Run(ctx, repository.failover, "posts_create", func(ctx context.Context, backend storage.Backend) (*Post, error) {
		record, err := storage.Encode(candidate)
		if err != nil {
			return nil, err
		}

		stored, err := backend.Insert(ctx, ResourcePosts, record)
		if err != nil {
			return nil, fmt.Errorf("posts_repository_create_failed: %w", err)
		}

		var row postRow
		if err := storage.Decode(stored, &row); err != nil {
			return nil, err
		}
		return row.toEntity(), nil
	})
}

// # Helpers

func listPosts(ctx context.Context, backend storage.Backend, filter storage.Filter) ([]Post, error) {
	rows, err := backend.Query(ctx, ResourcePosts, filter.OrderBy("score", true).OrderBy("created_at", true))
	if err != nil {
		return nil, fmt.Errorf("posts_repository_list_failed: %w", err)
	}
	return decodePosts(rows)
}

func findPost(ctx context.Context, backend storage.Backend, id string) (*Post, error) {
	rows, err := backend.Query(ctx, ResourcePosts, storage.Where("id", id).Take(1))
	if err != nil {
		return nil, fmt.Errorf("posts_repository_find_failed: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	var row postRow
	if err := storage.Decode(rows[0], &row); err != nil {
		return nil, err
	}
	return row.toEntity(), nil
}

func decodePosts(rows []storage.Row) ([]Post, error) {
	decoded, err := storage.DecodeAll[postRow](rows)
	if err != nil {
		return nil, err
	}
	return slice.Map(decoded, func(row postRow) Post { return *row.toEntity() }), nil
}

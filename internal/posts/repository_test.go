// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package posts_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/spark/internal/posts"
	"github.com/taibuivan/spark/internal/storage"
)

// downBackend is a remote that cannot be reached.
type downBackend struct{}

func (downBackend) err() error {
	return &storage.BackendError{Backend: "down", Err: errors.New("connection refused")}
}

func (d downBackend) Query(context.Context, string, storage.Filter) ([]storage.Row, error) {
	return nil, d.err()
}

func (d downBackend) Insert(context.Context, string, storage.Row) (storage.Row, error) {
	return nil, d.err()
}

func (d downBackend) Update(context.Context, string, storage.Filter, storage.Row) error {
	return d.err()
}

func (d downBackend) Delete(context.Context, string, storage.Filter) error {
	return d.err()
}

func newLocal() *storage.MemoryBackend {
	return storage.NewMemoryBackend(slog.Default(), posts.UniqueKeys()...)
}

func newFailover(remote, local storage.Backend) *storage.Failover {
	return storage.NewFailover(remote, local, time.Second, slog.Default())
}

func postIDs(list []posts.Post) []string {
	result := make([]string, 0, len(list))
	for _, post := range list {
		result = append(result, post.ID)
	}
	return result
}

func TestRepository_ListSeedsOnce(t *testing.T) {
	ctx := context.Background()
	local := newLocal()
	repository := posts.NewRepository(newFailover(nil, local))

	first, mode, err := repository.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, storage.ModeDemo, mode)
	assert.Equal(t, []string{"seed-1", "seed-2", "seed-3"}, postIDs(first))

	second, _, err := repository.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, postIDs(first), postIDs(second))

	rows, err := local.Query(ctx, posts.ResourcePosts, storage.Filter{})
	require.NoError(t, err)
	assert.Len(t, rows, 3)

	for _, post := range first {
		assert.Equal(t, post.UpvoteCount-post.DownvoteCount, post.Score, post.ID)
		assert.Equal(t, "spark", post.Author.Username)
		assert.Equal(t, "system", post.Author.UserID)
	}
}

func TestRepository_ListSkipsSeedWhenPopulated(t *testing.T) {
	ctx := context.Background()
	repository := posts.NewRepository(newFailover(nil, newLocal()))

	_, _, err := repository.Create(ctx, posts.NewPost{Title: "X", Content: "Y", Author: posts.Author{Username: "alice", UserID: "u1"}})
	require.NoError(t, err)

	list, _, err := repository.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "X", list[0].Title)
}

func TestRepository_ListOrdersByScoreThenRecency(t *testing.T) {
	ctx := context.Background()
	local := newLocal()
	repository := posts.NewRepository(newFailover(nil, local))

	for _, row := range []storage.Row{
		{"id": "old", "title": "a", "score": int64(3), "upvote_count": int64(3), "downvote_count": int64(0), "created_at": "2026-03-01T00:00:00Z"},
		{"id": "new", "title": "b", "score": int64(3), "upvote_count": int64(3), "downvote_count": int64(0), "created_at": "2026-03-02T00:00:00Z"},
		{"id": "top", "title": "c", "score": int64(9), "upvote_count": int64(9), "downvote_count": int64(0), "created_at": "2026-01-01T00:00:00Z"},
	} {
		_, err := local.Insert(ctx, posts.ResourcePosts, row)
		require.NoError(t, err)
	}

	list, _, err := repository.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"top", "new", "old"}, postIDs(list))
}

func TestRepository_CreateDefaults(t *testing.T) {
	ctx := context.Background()
	repository := posts.NewRepository(newFailover(nil, newLocal()))

	post, _, err := repository.Create(ctx, posts.NewPost{
		Title:   "X",
		Content: "Y",
		Author:  posts.Author{Username: "alice", UserID: "u1"},
	})
	require.NoError(t, err)
	require.NotNil(t, post)

	assert.NotEmpty(t, post.ID)
	assert.Equal(t, posts.DefaultCategory, post.Category)
	assert.Zero(t, post.Score)
	assert.Zero(t, post.UpvoteCount)
	assert.Zero(t, post.DownvoteCount)
	assert.Equal(t, "alice", post.Author.Username)
	assert.False(t, post.CreatedAt.IsZero())

	found, _, err := repository.Get(ctx, post.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, post.Title, found.Title)

	missing, _, err := repository.Get(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestRepository_RemoteFailureKeepsEntityShape(t *testing.T) {
	ctx := context.Background()
	repository := posts.NewRepository(newFailover(downBackend{}, newLocal()))

	post, mode, err := repository.Create(ctx, posts.NewPost{
		Title:    "X",
		Content:  "Y",
		Category: "business",
		Author:   posts.Author{Username: "alice", UserID: "u1"},
	})
	require.NoError(t, err)
	assert.Equal(t, storage.ModeDemo, mode)
	require.NotNil(t, post)
	assert.NotEmpty(t, post.ID)
	assert.Equal(t, "X", post.Title)
	assert.Equal(t, "Y", post.Content)
	assert.Equal(t, "business", post.Category)
	assert.Zero(t, post.Score)
}

func TestRepository_ListByAuthor(t *testing.T) {
	ctx := context.Background()
	repository := posts.NewRepository(newFailover(nil, newLocal()))

	for _, title := range []string{"first", "second"} {
		_, _, err := repository.Create(ctx, posts.NewPost{Title: title, Content: "c", Author: posts.Author{Username: "alice", UserID: "u1"}})
		require.NoError(t, err)
	}
	_, _, err := repository.Create(ctx, posts.NewPost{Title: "other", Content: "c", Author: posts.Author{Username: "bob", UserID: "u2"}})
	require.NoError(t, err)

	list, _, err := repository.ListByAuthor(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, list, 2)
	for _, post := range list {
		assert.Equal(t, "alice", post.Author.Username)
	}
	assert.False(t, list[0].CreatedAt.Before(list[1].CreatedAt))
}

// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package posts

import (
	"context"

	"github.com/taibuivan/spark/internal/platform/sec"
	"github.com/taibuivan/spark/internal/storage"
)

// PostRepository defines the data access contract for posts.
type PostRepository interface {
	List(ctx context.Context) ([]Post, storage.Mode, error)
	Get(ctx context.Context, id string) (*Post, storage.Mode, error)
	ListByAuthor(ctx context.Context, username string) ([]Post, storage.Mode, error)
	Create(ctx context.Context, input NewPost) (*Post, storage.Mode, error)
}

// VoteCaster applies a vote to a post.
type VoteCaster interface {
	Cast(ctx context.Context, postID string, voter *sec.Identity, cast Direction) (*Post, storage.Mode, error)
}

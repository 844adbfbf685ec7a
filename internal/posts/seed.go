// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package posts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/taibuivan/spark/internal/storage"
)

// Seed posts are authored by the system account.
const (
	seedAuthorUsername = "spark"
	seedAuthorUserID   = "system"
)

// seedPosts is the demo set written into an empty posts collection.
var seedPosts = []postRow{
	{
		ID:             "seed-1",
		Title:          "Open-source AI coding assistant",
		Content:        "A local-first coding assistant that runs entirely on your machine. No API keys, no subscriptions, just Claude via Ollama.",
		Category:       "tech",
		AuthorUsername: seedAuthorUsername,
		AuthorUserID:   seedAuthorUserID,
		Score:          142,
		UpvoteCount:    142,
		CreatedAt:      time.Date(2026, time.January, 15, 8, 0, 0, 0, time.UTC),
	},
	{
		ID:             "seed-2",
		Title:          "Micro-investment app for Gen Z",
		Content:        "Round up every purchase to the nearest dollar and auto-invest the difference into a diversified ETF portfolio.",
		Category:       "business",
		AuthorUsername: seedAuthorUsername,
		AuthorUserID:   seedAuthorUserID,
		Score:          87,
		UpvoteCount:    87,
		CreatedAt:      time.Date(2026, time.January, 20, 12, 0, 0, 0, time.UTC),
	},
	{
		ID:             "seed-3",
		Title:          "Sleep tracking without a wearable",
		Content:        "Use your phone mic + accelerometer passively to track sleep cycles and give you a morning score. Zero hardware required.",
		Category:       "tech",
		AuthorUsername: seedAuthorUsername,
		AuthorUserID:   seedAuthorUserID,
		Score:          61,
		UpvoteCount:    61,
		CreatedAt:      time.Date(2026, time.February, 1, 9, 30, 0, 0, time.UTC),
	},
}

/*
seed writes every demo post that is not already present.

Description: Each id is checked before it is inserted and a unique-key
conflict from a concurrent seeder is ignored, so repeated calls never
duplicate a post.

Returns:
  - int: Number of posts written by this call
  - error: Storage failures
*/
func seed(ctx context.Context, backend storage.Backend) (int, error) {
	seeded := 0
	for _, post := range seedPosts {
		existing, err := findPost(ctx, backend, post.ID)
		if err != nil {
			return seeded, err
		}
		if existing != nil {
			continue
		}

		record, err := storage.Encode(post)
		if err != nil {
			return seeded, err
		}

		_, err = backend.Insert(ctx, ResourcePosts, record)
		if errors.Is(err, storage.ErrConflict) {
			continue
		}
		if err != nil {
			return seeded, fmt.Errorf("posts_seed_failed: %w", err)
		}
		seeded++
	}
	return seeded, nil
}

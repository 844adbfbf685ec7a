// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package posts

import (
	"context"
	"fmt"

	"github.com/taibuivan/spark/internal/platform/apperr"
	"github.com/taibuivan/spark/internal/platform/sec"
	"github.com/taibuivan/spark/internal/storage"
)

// Service implements the post listing, submission and voting use cases.
type Service struct {
	posts PostRepository
	votes VoteCaster
	// allowAnonymousVotes lets callers without an identity move the counters.
	allowAnonymousVotes bool
}

// ServiceOption configures a [Service].
type ServiceOption func(*Service)

// WithAnonymousVotes sets whether unauthenticated callers may vote. They may by default.
func WithAnonymousVotes(allow bool) ServiceOption {
	return func(s *Service) {
		s.allowAnonymousVotes = allow
	}
}

// NewService constructs a new [Service].
func NewService(posts PostRepository, votes VoteCaster, options ...ServiceOption) *Service {
	service := &Service{posts: posts, votes: votes, allowAnonymousVotes: true}
	for _, option := range options {
		option(service)
	}
	return service
}

// List returns the ranked feed.
func (service *Service) List(ctx context.Context) ([]Post, storage.Mode, error) {
	posts, mode, err := service.posts.List(ctx)
	if err != nil {
		return nil, mode, fmt.Errorf("posts_service_list_failed: %w", err)
	}
	return posts, mode, nil
}

/*
Submit stores a post authored by identity.

Returns:
  - *Post: The stored post
  - storage.Mode: live or demo
  - error: Unauthorized without an identity, or storage failures
*/
func (service *Service) Submit(ctx context.Context, identity *sec.Identity, input NewPost) (*Post, storage.Mode, error) {
	if identity == nil {
		return nil, storage.ModeLive, apperr.Unauthorized("Authentication required")
	}

	input.Author = Author{Username: identity.Username, UserID: identity.UserID}

	post, mode, err := service.posts.Create(ctx, input)
	if err != nil {
		return nil, mode, fmt.Errorf("posts_service_submit_failed: %w", err)
	}
	return post, mode, nil
}

/*
Vote casts voter's vote on a post.

Description: A nil voter casts an anonymous vote, or is rejected when
anonymous votes are disabled.
*/
func (service *Service) Vote(ctx context.Context, postID string, voter *sec.Identity, cast Direction) (*Post, storage.Mode, error) {
	if voter == nil && !service.allowAnonymousVotes {
		return nil, storage.ModeLive, apperr.Unauthorized("Authentication required")
	}

	post, mode, err := service.votes.Cast(ctx, postID, voter, cast)
	if err != nil {
		return nil, mode, fmt.Errorf("posts_service_vote_failed: %w", err)
	}
	return post, mode, nil
}

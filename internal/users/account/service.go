// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"context"
	"fmt"

	"github.com/taibuivan/spark/internal/platform/apperr"
	"github.com/taibuivan/spark/internal/posts"
	"github.com/taibuivan/spark/internal/storage"
	"github.com/taibuivan/spark/internal/users/auth"
	"github.com/taibuivan/spark/pkg/slice"
)

// Service assembles the directory and profile read models.
type Service struct {
	users UserReader
	posts AuthoredPosts
}

// NewService constructs a new [Service] with its repository dependencies.
func NewService(users UserReader, posts AuthoredPosts) *Service {
	return &Service{users: users, posts: posts}
}

/*
Directory lists every member, newest first.

Returns:
  - []Member: Members
  - storage.Mode: live or demo
  - error: Storage failures
*/
func (service *Service) Directory(ctx context.Context) ([]Member, storage.Mode, error) {
	users, mode, err := service.users.List(ctx)
	if err != nil {
		return nil, mode, fmt.Errorf("account_service_directory_failed: %w", err)
	}

	members := slice.Map(users, func(user auth.User) Member {
		return Member{UserID: user.UserID, Username: user.Username, JoinedAt: user.CreatedAt}
	})
	return members, mode, nil
}

/*
Profile returns the public profile of username.

Returns:
  - *ProfilePage: Profile and authored posts
  - storage.Mode: demo if any part was served locally
  - error: apperr.NotFound for an unknown member, or storage failures
*/
func (service *Service) Profile(ctx context.Context, username string) (*ProfilePage, storage.Mode, error) {
	user, userMode, err := service.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, userMode, fmt.Errorf("account_service_profile_failed: %w", err)
	}
	if user == nil {
		return nil, userMode, apperr.NotFound("User")
	}

	authored, postsMode, err := service.posts.ListByAuthor(ctx, username)
	if err != nil {
		return nil, postsMode, fmt.Errorf("account_service_profile_posts_failed: %w", err)
	}

	totalScore := slice.Reduce(authored, 0, func(sum int, post posts.Post) int {
		return sum + post.Score
	})

	return &ProfilePage{
		User: Profile{
			Username:     user.Username,
			UserID:       user.UserID,
			JoinedAt:     user.CreatedAt,
			PostCount:    len(authored),
			TotalUpvotes: totalScore,
		},
		Posts: authored,
	}, storage.Combine(userMode, postsMode), nil
}

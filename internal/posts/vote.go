// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package posts

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/taibuivan/spark/internal/platform/apperr"
	"github.com/taibuivan/spark/internal/platform/ctxutil"
	"github.com/taibuivan/spark/internal/platform/sec"
	"github.com/taibuivan/spark/internal/storage"
)

// compensationTimeout bounds the write that reverts a vote change after the
// tally update failed.
const compensationTimeout = 5 * time.Second

// # Vote State Machine

/*
Transition returns the vote state after casting a vote and how each counter moves.

	NoVote    --up-->   Upvoted     up +1
	NoVote    --down--> Downvoted   down +1
	Upvoted   --up-->   NoVote      up -1
	Upvoted   --down--> Downvoted   up -1, down +1
	Downvoted --down--> NoVote      down -1
	Downvoted --up-->   Upvoted     down -1, up +1

A cast other than up or down leaves the state untouched.
*/
func Transition(current, cast Direction) (next Direction, deltaUp, deltaDown int) {
	if cast != DirectionUp && cast != DirectionDown {
		return current, 0, 0
	}

	switch current {
	case cast:
		deltaUp, deltaDown = counterDelta(cast, -1)
		return DirectionNone, deltaUp, deltaDown
	case DirectionNone:
		deltaUp, deltaDown = counterDelta(cast, 1)
		return cast, deltaUp, deltaDown
	default:
		removedUp, removedDown := counterDelta(current, -1)
		addedUp, addedDown := counterDelta(cast, 1)
		return cast, removedUp + addedUp, removedDown + addedDown
	}
}

func counterDelta(direction Direction, amount int) (up, down int) {
	if direction == DirectionUp {
		return amount, 0
	}
	return 0, amount
}

// # Reconciler

// Reconciler applies votes and keeps the post tally consistent.
//
// # Concurrency
//
// Casts on the same post are serialized while they run against the local
// store, so the tally is always recomputed from the latest counters.
type Reconciler struct {
	failover *storage.Failover
	locks    *postLocks
}

// NewReconciler returns a reconciler writing through failover.
func NewReconciler(failover *storage.Failover) *Reconciler {
	return &Reconciler{failover: failover, locks: newPostLocks()}
}

/*
Cast applies a vote on a post and returns the post with its new tally.

Description: With a voter the stored vote is moved through [Transition] and
the counters follow. Without a voter the vote is anonymous: the counter for
cast goes up by one and nothing is remembered. The counters and the score are
written in one update. If that update fails the vote change is reverted.

Parameters:
  - ctx: context.Context
  - postID: string
  - voter: *sec.Identity (nil for an anonymous vote)
  - cast: Direction (up or down)

Returns:
  - *Post: The post after the vote
  - storage.Mode: live or demo
  - error: apperr.NotFound when the post does not exist, or storage failures
*/
func (reconciler *Reconciler) Cast(ctx context.Context, postID string, voter *sec.Identity, cast Direction) (*Post, storage.Mode, error) {
	if cast != DirectionUp && cast != DirectionDown {
		return nil, storage.ModeLive, apperr.ValidationError(`voteType must be "up" or "down"`)
	}

	return storage.Run(ctx, reconciler.failover, "posts_vote", func(ctx context.Context, backend storage.Backend) (*Post, error) {
		if backend == reconciler.failover.Local() {
			unlock := reconciler.locks.lock(postID)
			defer unlock()
		}

		post, err := findPost(ctx, backend, postID)
		if err != nil {
			return nil, err
		}
		if post == nil {
			return nil, apperr.NotFound("Post")
		}

		if voter == nil {
			deltaUp, deltaDown := counterDelta(cast, 1)
			if err := applyTally(ctx, backend, post, deltaUp, deltaDown); err != nil {
				return nil, err
			}
			return post, nil
		}

		current, err := findVote(ctx, backend, voter.UserID, postID)
		if err != nil {
			return nil, err
		}

		next, deltaUp, deltaDown := Transition(current, cast)
		revert, err := moveVote(ctx, backend, voter.UserID, postID, current, next)
		if err != nil {
			return nil, err
		}

		if err := applyTally(ctx, backend, post, deltaUp, deltaDown); err != nil {
			compensate(ctx, revert, postID)
			return nil, err
		}
		return post, nil
	})
}

// applyTally writes the new counters and score of post in one update and
// mirrors them onto post.
func applyTally(ctx context.Context, backend storage.Backend, post *Post, deltaUp, deltaDown int) error {
	upvotes := max(post.UpvoteCount+deltaUp, 0)
	downvotes := max(post.DownvoteCount+deltaDown, 0)

	if err := backend.Update(ctx, ResourcePosts, storage.Where("id", post.ID), tallyPatch(upvotes, downvotes)); err != nil {
		return fmt.Errorf("posts_vote_tally_failed: %w", err)
	}

	post.UpvoteCount = upvotes
	post.DownvoteCount = downvotes
	post.Score = upvotes - downvotes
	return nil
}

func findVote(ctx context.Context, backend storage.Backend, userID, postID string) (Direction, error) {
	rows, err := backend.Query(ctx, ResourceVotes, voteKey(userID, postID).Take(1))
	if err != nil {
		return DirectionNone, fmt.Errorf("posts_vote_find_failed: %w", err)
	}
	if len(rows) == 0 {
		return DirectionNone, nil
	}

	var row voteRow
	if err := storage.Decode(rows[0], &row); err != nil {
		return DirectionNone, err
	}
	return row.Direction, nil
}

/*
moveVote stores the vote state change from current to next.

Returns:
  - func(context.Context) error: Writes current back
  - error: Storage failures
*/
func moveVote(ctx context.Context, backend storage.Backend, userID, postID string, current, next Direction) (func(context.Context) error, error) {
	key := voteKey(userID, postID)

	insert := func(ctx context.Context, direction Direction) error {
		record, err := storage.Encode(voteRow{UserID: userID, PostID: postID, Direction: direction})
		if err != nil {
			return err
		}
		_, err = backend.Insert(ctx, ResourceVotes, record)
		return err
	}
	remove := func(ctx context.Context) error {
		return backend.Delete(ctx, ResourceVotes, key)
	}
	point := func(ctx context.Context, direction Direction) error {
		return backend.Update(ctx, ResourceVotes, key, storage.Row{"direction": string(direction)})
	}

	var (
		err    error
		revert func(context.Context) error
	)
	switch {
	case current == DirectionNone:
		err = insert(ctx, next)
		revert = remove
	case next == DirectionNone:
		err = remove(ctx)
		revert = func(ctx context.Context) error { return insert(ctx, current) }
	default:
		err = point(ctx, next)
		revert = func(ctx context.Context) error { return point(ctx, current) }
	}

	if err != nil {
		return nil, fmt.Errorf("posts_vote_write_failed: %w", err)
	}
	return revert, nil
}

// compensate reverts a vote change. It runs outside the caller's deadline,
// which may be what failed the tally update.
func compensate(ctx context.Context, revert func(context.Context) error, postID string) {
	revertCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), compensationTimeout)
	defer cancel()

	if err := revert(revertCtx); err != nil {
		ctxutil.GetLogger(ctx).ErrorContext(ctx, "posts_vote_compensation_failed",
			slog.String("post_id", postID),
			slog.Any("error", err),
		)
	}
}

// postLocks hands out one mutex per post id and drops it once nobody holds
// or waits for it.
type postLocks struct {
	mu   sync.Mutex
	held map[string]*postLock
}

type postLock struct {
	sync.Mutex
	refs int
}

func newPostLocks() *postLocks {
	return &postLocks{held: make(map[string]*postLock)}
}

func (locks *postLocks) lock(postID string) func() {
	locks.mu.Lock()
	entry, ok := locks.held[postID]
	if !ok {
		entry = &postLock{}
		locks.held[postID] = entry
	}
	entry.refs++
	locks.mu.Unlock()

	entry.Lock()

	return func() {
		entry.Unlock()

		locks.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(locks.held, postID)
		}
		locks.mu.Unlock()
	}
}

func voteKey(userID, postID string) storage.Filter {
	return storage.Where("user_id", userID).And("post_id", postID)
}

// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package storage defines the record-level persistence contract shared by every
datastore Spark can talk to.

Architecture:

  - Backend: Query/Insert/Update/Delete over named resources ("users", "posts", ...).
  - Remote variants: [RESTBackend] (PostgREST/Supabase) and [PostgresBackend] (pgx).
  - Local variant: [MemoryBackend], optionally mirrored to disk or Redis.
  - Call-site policy: [Run] tries the remote first and re-runs on the local store
    when the remote is unavailable, reporting which [Mode] served the call.

Rows are flat maps of column name to scalar value. Domain packages convert their
row structs with [Encode] and [Decode] so every backend yields identical shapes.
*/
package storage

import (
	"context"
	"errors"
	"fmt"
	"slices"
)

// Row is a single record keyed by column name.
type Row map[string]any

// Backend is the capability every datastore variant provides.
type Backend interface {
	// Query returns the rows of resource matching filter.
	Query(ctx context.Context, resource string, filter Filter) ([]Row, error)

	// Insert stores record and returns the stored representation.
	Insert(ctx context.Context, resource string, record Row) (Row, error)

	// Update applies patch to every row matching filter.
	// Matching nothing is not an error.
	Update(ctx context.Context, resource string, filter Filter, patch Row) error

	// Delete removes every row matching filter.
	Delete(ctx context.Context, resource string, filter Filter) error
}

// Pinger is implemented by backends that can report their reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// # Serving Mode

// Mode names the datastore that served a call.
type Mode string

const (
	// ModeLive means the remote datastore answered.
	ModeLive Mode = "live"
	// ModeDemo means the local fallback answered.
	ModeDemo Mode = "demo"
)

// Combine reports the mode of a response assembled from several calls.
// One demo answer makes the whole response demo.
func Combine(modes ...Mode) Mode {
	if slices.Contains(modes, ModeDemo) {
		return ModeDemo
	}
	return ModeLive
}

// # Errors

var (
	// ErrConflict is returned when an insert violates a unique key.
	ErrConflict = errors.New("storage: unique key conflict")

	// ErrUnfiltered is returned by Update and Delete called without conditions.
	ErrUnfiltered = errors.New("storage: update or delete without a filter")
)

// BackendError reports that a datastore could not serve a call.
// It is the only error class that triggers a fallback.
type BackendError struct {
	Backend  string
	Op       string
	Resource string
	// Status is the HTTP status for REST failures, zero otherwise.
	Status int
	Err    error
}

func (e *BackendError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("storage: %s %s %s: status %d: %v", e.Backend, e.Op, e.Resource, e.Status, e.Err)
	}
	return fmt.Sprintf("storage: %s %s %s: %v", e.Backend, e.Op, e.Resource, e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }

// IsUnavailable reports whether err means the datastore failed, as opposed to
// rejecting the call on business grounds.
func IsUnavailable(err error) bool {
	if err == nil {
		return false
	}
	var backendErr *BackendError
	return errors.As(err, &backendErr) || errors.Is(err, context.DeadlineExceeded)
}

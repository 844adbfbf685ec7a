// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package storage

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"sync"
)

// Mirror persists whole collections of the local store.
type Mirror interface {
	Load(ctx context.Context, resource string) ([]Row, error)
	Save(ctx context.Context, resource string, rows []Row) error
}

// MemoryOption configures a [MemoryBackend].
type MemoryOption func(*MemoryBackend)

// WithUniqueKey rejects inserts into resource that duplicate columns of an existing row.
func WithUniqueKey(resource string, columns ...string) MemoryOption {
	return func(m *MemoryBackend) {
		m.unique[resource] = append(m.unique[resource], columns)
	}
}

// WithMirror writes every collection change through to mirror.
func WithMirror(mirror Mirror) MemoryOption {
	return func(m *MemoryBackend) {
		m.mirror = mirror
	}
}

// MemoryBackend is the local fallback datastore.
//
// # Concurrency
//
// All collections share one RWMutex. Rows are flat, so cloning the map is
// enough to keep callers from mutating stored state.
type MemoryBackend struct {
	mu          sync.RWMutex
	collections map[string][]Row
	unique      map[string][][]string
	mirror      Mirror
	logger      *slog.Logger
}

// NewMemoryBackend creates an empty local store.
func NewMemoryBackend(logger *slog.Logger, options ...MemoryOption) *MemoryBackend {
	backend := &MemoryBackend{
		collections: make(map[string][]Row),
		unique:      make(map[string][][]string),
		logger:      logger,
	}
	for _, option := range options {
		option(backend)
	}
	return backend
}

// Restore loads the given collections from the mirror, replacing memory contents.
// It is a no-op without a mirror.
func (m *MemoryBackend) Restore(ctx context.Context, resources ...string) error {
	if m.mirror == nil {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, resource := range resources {
		rows, err := m.mirror.Load(ctx, resource)
		if err != nil {
			return fmt.Errorf("storage_restore_failed: %s: %w", resource, err)
		}
		m.collections[resource] = rows
		m.logger.Info("storage_restored", slog.String("resource", resource), slog.Int("rows", len(rows)))
	}
	return nil
}

// Query implements [Backend].
func (m *MemoryBackend) Query(_ context.Context, resource string, filter Filter) ([]Row, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []Row
	for _, row := range m.collections[resource] {
		if matches(row, filter) {
			result = append(result, maps.Clone(row))
		}
	}

	if len(filter.Orders) > 0 {
		slices.SortStableFunc(result, func(a, b Row) int {
			for _, order := range filter.Orders {
				cmp := compareValues(a[order.Column], b[order.Column])
				if order.Desc {
					cmp = -cmp
				}
				if cmp != 0 {
					return cmp
				}
			}
			return 0
		})
	}

	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[:filter.Limit]
	}
	return result, nil
}

// Insert implements [Backend].
func (m *MemoryBackend) Insert(ctx context.Context, resource string, record Row) (Row, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, columns := range m.unique[resource] {
		for _, existing := range m.collections[resource] {
			if sameKey(existing, record, columns) {
				return nil, fmt.Errorf("%w: %s(%s)", ErrConflict, resource, strings.Join(columns, ","))
			}
		}
	}

	stored := maps.Clone(record)
	m.collections[resource] = append(m.collections[resource], stored)
	m.persist(ctx, resource)

	return maps.Clone(stored), nil
}

// Update implements [Backend].
func (m *MemoryBackend) Update(ctx context.Context, resource string, filter Filter, patch Row) error {
	if filter.IsEmpty() {
		return ErrUnfiltered
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	changed := false
	for i, row := range m.collections[resource] {
		if !matches(row, filter) {
			continue
		}
		updated := maps.Clone(row)
		maps.Copy(updated, patch)
		m.collections[resource][i] = updated
		changed = true
	}

	if changed {
		m.persist(ctx, resource)
	}
	return nil
}

// Delete implements [Backend].
func (m *MemoryBackend) Delete(ctx context.Context, resource string, filter Filter) error {
	if filter.IsEmpty() {
		return ErrUnfiltered
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	before := len(m.collections[resource])
	m.collections[resource] = slices.DeleteFunc(m.collections[resource], func(row Row) bool {
		return matches(row, filter)
	})

	if len(m.collections[resource]) != before {
		m.persist(ctx, resource)
	}
	return nil
}

// persist writes one collection to the mirror. Callers hold the write lock.
// A failed mirror write leaves memory authoritative for this process.
func (m *MemoryBackend) persist(ctx context.Context, resource string) {
	if m.mirror == nil {
		return
	}
	if err := m.mirror.Save(ctx, resource, m.collections[resource]); err != nil {
		m.logger.ErrorContext(ctx, "storage_mirror_save_failed",
			slog.String("resource", resource),
			slog.Any("error", err),
		)
	}
}

func matches(row Row, filter Filter) bool {
	for _, condition := range filter.Conditions {
		value, ok := row[condition.Column]
		if !ok || textOf(value) != textOf(condition.Value) {
			return false
		}
	}
	return true
}

func sameKey(a, b Row, columns []string) bool {
	for _, column := range columns {
		if textOf(a[column]) != textOf(b[column]) {
			return false
		}
	}
	return true
}

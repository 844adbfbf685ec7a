// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package dberr_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/spark/internal/platform/dberr"
)

func TestIsUniqueViolation(t *testing.T) {
	wrapped := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: "users_username_key"})

	assert.True(t, dberr.IsUniqueViolation(wrapped))
	assert.Equal(t, "users_username_key", dberr.Constraint(wrapped))
	assert.False(t, dberr.IsUniqueViolation(&pgconn.PgError{Code: "42P01"}))
	assert.False(t, dberr.IsUniqueViolation(errors.New("boom")))
	assert.Empty(t, dberr.Constraint(errors.New("boom")))
}


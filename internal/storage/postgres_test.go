// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package storage_test

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/spark/internal/storage"
)

func newPostgres(t *testing.T) (*storage.PostgresBackend, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	return storage.NewPostgresBackend(mock), mock
}

func TestPostgresBackend_Query(t *testing.T) {
	backend, mock := newPostgres(t)
	defer mock.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "posts" WHERE "author_username" = $1 ORDER BY "score" DESC, "created_at" DESC LIMIT 5`)).
		WithArgs("spark").
		WillReturnRows(pgxmock.NewRows([]string{"id", "score"}).
			AddRow("seed-1", int32(142)).
			AddRow("seed-2", int32(87)))

	rows, err := backend.Query(context.Background(), "posts",
		storage.Where("author_username", "spark").OrderBy("score", true).OrderBy("created_at", true).Take(5))

	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "seed-1", rows[0]["id"])
	assert.Equal(t, int32(87), rows[1]["score"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresBackend_Insert(t *testing.T) {
	backend, mock := newPostgres(t)
	defer mock.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "users" ("password_hash", "user_id", "username") VALUES ($1, $2, $3) RETURNING *`)).
		WithArgs("$2a$10$hash", "u-1", "alice").
		WillReturnRows(pgxmock.NewRows([]string{"user_id", "username", "password_hash", "email"}).
			AddRow("u-1", "alice", "$2a$10$hash", nil))

	stored, err := backend.Insert(context.Background(), "users",
		storage.Row{"username": "alice", "user_id": "u-1", "password_hash": "$2a$10$hash"})

	require.NoError(t, err)
	assert.Equal(t, "alice", stored["username"])
	assert.Contains(t, stored, "email")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresBackend_InsertConflict(t *testing.T) {
	backend, mock := newPostgres(t)
	defer mock.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "users"`)).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_username_key"})

	_, err := backend.Insert(context.Background(), "users", storage.Row{"username": "alice"})

	assert.ErrorIs(t, err, storage.ErrConflict)
	assert.False(t, storage.IsUnavailable(err))
}

func TestPostgresBackend_UpdateDelete(t *testing.T) {
	backend, mock := newPostgres(t)
	defer mock.Close()

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "posts" SET "downvote_count" = $1, "score" = $2, "upvote_count" = $3 WHERE "id" = $4`)).
		WithArgs(int64(0), int64(1), int64(1), "p1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "votes" WHERE "user_id" = $1 AND "post_id" = $2`)).
		WithArgs("u1", "p1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	ctx := context.Background()
	require.NoError(t, backend.Update(ctx, "posts", storage.Where("id", "p1"),
		storage.Row{"score": int64(1), "upvote_count": int64(1), "downvote_count": int64(0)}))
	require.NoError(t, backend.Delete(ctx, "votes", storage.Where("user_id", "u1").And("post_id", "p1")))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresBackend_DriverFailureIsUnavailable(t *testing.T) {
	backend, mock := newPostgres(t)
	defer mock.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "posts"`)).
		WillReturnError(errors.New("dial tcp: connection refused"))

	_, err := backend.Query(context.Background(), "posts", storage.Filter{})

	require.Error(t, err)
	assert.True(t, storage.IsUnavailable(err))
}

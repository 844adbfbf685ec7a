// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package storage

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/taibuivan/spark/internal/platform/dberr"
	"github.com/taibuivan/spark/internal/platform/postgres"
)

// PostgresBackend talks to PostgreSQL directly.
//
// Resource and column names are quoted identifiers and every value is a bound
// parameter. Unique violations are reported as [ErrConflict], every other
// driver error as a [*BackendError].
type PostgresBackend struct {
	pool postgres.PgxPool
}

// NewPostgresBackend returns a backend using pool.
func NewPostgresBackend(pool postgres.PgxPool) *PostgresBackend {
	return &PostgresBackend{pool: pool}
}

// Query implements [Backend].
func (p *PostgresBackend) Query(ctx context.Context, resource string, filter Filter) ([]Row, error) {
	var sql strings.Builder
	sql.WriteString("SELECT * FROM " + quote(resource))

	where, args := whereClause(filter, 1)
	sql.WriteString(where)

	if len(filter.Orders) > 0 {
		orders := make([]string, 0, len(filter.Orders))
		for _, order := range filter.Orders {
			direction := " ASC"
			if order.Desc {
				direction = " DESC"
			}
			orders = append(orders, quote(order.Column)+direction)
		}
		sql.WriteString(" ORDER BY " + strings.Join(orders, ", "))
	}
	if filter.Limit > 0 {
		sql.WriteString(" LIMIT " + strconv.Itoa(filter.Limit))
	}

	rows, err := p.pool.Query(ctx, sql.String(), args...)
	if err != nil {
		return nil, p.wrap("query", resource, err)
	}
	defer rows.Close()

	var result []Row
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, p.wrap("query", resource, err)
		}
		row := make(Row, len(values))
		for i, field := range rows.FieldDescriptions() {
			row[field.Name] = values[i]
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, p.wrap("query", resource, err)
	}
	return result, nil
}

// Insert implements [Backend]. The stored row is read back with RETURNING.
func (p *PostgresBackend) Insert(ctx context.Context, resource string, record Row) (Row, error) {
	columns := slices.Sorted(maps.Keys(record))

	quoted := make([]string, len(columns))
	placeholders := make([]string, len(columns))
	args := make([]any, len(columns))
	for i, column := range columns {
		quoted[i] = quote(column)
		placeholders[i] = "$" + strconv.Itoa(i+1)
		args[i] = record[column]
	}

	sql := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING *",
		quote(resource), strings.Join(quoted, ", "), strings.Join(placeholders, ", "))

	rows, err := p.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, p.wrap("insert", resource, err)
	}
	defer rows.Close()

	stored := maps.Clone(record)
	if rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, p.wrap("insert", resource, err)
		}
		for i, field := range rows.FieldDescriptions() {
			stored[field.Name] = values[i]
		}
	}
	if err := rows.Err(); err != nil {
		return nil, p.wrap("insert", resource, err)
	}
	return stored, nil
}

// Update implements [Backend].
func (p *PostgresBackend) Update(ctx context.Context, resource string, filter Filter, patch Row) error {
	if filter.IsEmpty() {
		return ErrUnfiltered
	}

	columns := slices.Sorted(maps.Keys(patch))
	assignments := make([]string, len(columns))
	args := make([]any, 0, len(columns)+len(filter.Conditions))
	for i, column := range columns {
		assignments[i] = quote(column) + " = $" + strconv.Itoa(i+1)
		args = append(args, patch[column])
	}

	where, whereArgs := whereClause(filter, len(columns)+1)
	sql := "UPDATE " + quote(resource) + " SET " + strings.Join(assignments, ", ") + where

	if _, err := p.pool.Exec(ctx, sql, append(args, whereArgs...)...); err != nil {
		return p.wrap("update", resource, err)
	}
	return nil
}

// Delete implements [Backend].
func (p *PostgresBackend) Delete(ctx context.Context, resource string, filter Filter) error {
	if filter.IsEmpty() {
		return ErrUnfiltered
	}

	where, args := whereClause(filter, 1)
	if _, err := p.pool.Exec(ctx, "DELETE FROM "+quote(resource)+where, args...); err != nil {
		return p.wrap("delete", resource, err)
	}
	return nil
}

// Ping implements [Pinger].
func (p *PostgresBackend) Ping(ctx context.Context) error {
	if err := postgres.Ping(ctx, p.pool); err != nil {
		return &BackendError{Backend: "postgres", Op: "ping", Err: err}
	}
	return nil
}

func (p *PostgresBackend) wrap(op, resource string, err error) error {
	if dberr.IsUniqueViolation(err) {
		return fmt.Errorf("%w: %s(%s)", ErrConflict, resource, dberr.Constraint(err))
	}
	return &BackendError{Backend: "postgres", Op: op, Resource: resource, Err: err}
}

// whereClause renders equality conditions with placeholders numbered from first.
func whereClause(filter Filter, first int) (string, []any) {
	if filter.IsEmpty() {
		return "", nil
	}

	parts := make([]string, len(filter.Conditions))
	args := make([]any, len(filter.Conditions))
	for i, condition := range filter.Conditions {
		parts[i] = quote(condition.Column) + " = $" + strconv.Itoa(first+i)
		args[i] = condition.Value
	}
	return " WHERE " + strings.Join(parts, " AND "), args
}

func quote(identifier string) string {
	return pgx.Identifier{identifier}.Sanitize()
}

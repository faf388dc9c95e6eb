package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/starford/esurat/internal/apperr"
)

type scanner interface {
	Scan(dest ...any) error
}

// table maps one collection onto one SQL table. Insert and update statements
// take the id as $1 followed by the values returned by args.
type table[T any] struct {
	pool      *pgxpool.Pool
	name      string
	selectSQL string
	insertSQL string
	updateSQL string
	scan      func(scanner) (T, error)
	args      func(T) ([]any, error)
	idOf      func(T) string
	setID     func(T, string) T
}

func (t *table[T]) List(ctx context.Context) ([]T, error) {
	rows, err := t.pool.Query(ctx, t.selectSQL)
	if err != nil {
		return nil, fmt.Errorf("postgres: select %s: %w", t.name, err)
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		v, err := t.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan %s: %w", t.name, err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterate %s: %w", t.name, err)
	}
	return out, nil
}

func (t *table[T]) Create(ctx context.Context, v T) (T, error) {
	var zero T
	args, err := t.args(v)
	if err != nil {
		return zero, fmt.Errorf("postgres: encode %s: %w", t.name, err)
	}
	var id string
	err = t.pool.QueryRow(ctx, t.insertSQL, append([]any{t.idOf(v)}, args...)...).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return zero, fmt.Errorf("postgres: insert %s: %w", t.name, apperr.ErrAlreadyExists)
		}
		return zero, fmt.Errorf("postgres: insert %s: %w", t.name, err)
	}
	return t.setID(v, id), nil
}

func (t *table[T]) Update(ctx context.Context, v T) error {
	id := t.idOf(v)
	args, err := t.args(v)
	if err != nil {
		return fmt.Errorf("postgres: encode %s: %w", t.name, err)
	}
	tag, err := t.pool.Exec(ctx, t.updateSQL, append([]any{id}, args...)...)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("postgres: update %s %s: %w", t.name, id, apperr.ErrAlreadyExists)
		}
		return fmt.Errorf("postgres: update %s %s: %w", t.name, id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("postgres: update %s %s: %w", t.name, id, apperr.ErrNotFound)
	}
	return nil
}

func (t *table[T]) Delete(ctx context.Context, id string) error {
	tag, err := t.pool.Exec(ctx, "DELETE FROM "+t.name+" WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("postgres: delete %s %s: %w", t.name, id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("postgres: delete %s %s: %w", t.name, id, apperr.ErrNotFound)
	}
	return nil
}

// isUniqueViolation reports whether err is a PostgreSQL unique_violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

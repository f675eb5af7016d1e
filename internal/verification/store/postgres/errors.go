// Package postgres implements the verification ports on PostgreSQL through
// database/sql and the pgx stdlib driver. Stores are pure I/O; counters are
// updated with single UPDATE ... RETURNING statements.
package postgres

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"docverify/pkg/platform/sentinel"
)

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// wrap maps driver errors onto sentinel errors while keeping op context.
func wrap(op string, err error) error {
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("%s: %w", op, sentinel.ErrNotFound)
	case isUniqueViolation(err):
		return fmt.Errorf("%s: %w", op, sentinel.ErrConflict)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

func marshalJSON(v any) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}

// unmarshalStrings decodes a to_jsonb(text[]) column.
func unmarshalStrings(raw []byte) ([]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

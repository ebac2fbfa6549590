// Package store provides PostgreSQL repositories for users, categories and
// posts. Each store struct wraps a *sql.DB and exposes typed query methods.
// Lookups return (nil, nil) when a row does not exist; constraint
// violations surface as the models storage sentinels.
package store

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"inkwell/internal/models"
)

// PostgreSQL error codes the stores translate.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// pgError returns the PostgreSQL error carried by err, if any.
func pgError(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr, true
	}
	return nil, false
}

// mapConstraint turns unique and foreign key violations into ErrDuplicate
// and ErrReferenced. Other errors are returned unchanged.
func mapConstraint(err error) error {
	pgErr, ok := pgError(err)
	if !ok {
		return err
	}
	switch pgErr.Code {
	case codeUniqueViolation:
		return fmt.Errorf("%w: %s", models.ErrDuplicate, pgErr.ConstraintName)
	case codeForeignKeyViolation:
		return fmt.Errorf("%w: %s", models.ErrReferenced, pgErr.ConstraintName)
	}
	return err
}

// uuidArray renders ids as a PostgreSQL array literal for `= ANY($1::uuid[])`.
func uuidArray(ids []uuid.UUID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = id.String()
	}
	return "{" + strings.Join(parts, ",") + "}"
}

// updateBuilder accumulates "col = $n" assignments for partial updates.
type updateBuilder struct {
	sets []string
	args []any
}

func (b *updateBuilder) set(column string, value any) {
	b.args = append(b.args, value)
	b.sets = append(b.sets, fmt.Sprintf("%s = $%d", column, len(b.args)))
}

// build returns the UPDATE statement for table, keyed by id and returning
// columns. updated_at is always refreshed.
func (b *updateBuilder) build(table string, id uuid.UUID, columns string) (string, []any) {
	sets := append(b.sets, "updated_at = NOW()")
	args := append(b.args, id)
	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = $%d RETURNING %s",
		table, strings.Join(sets, ", "), len(args), columns)
	return query, args
}

// likePattern escapes LIKE metacharacters in q and wraps it for a
// substring match.
func likePattern(q string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(q) + "%"
}

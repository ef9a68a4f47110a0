package repository

import (
	"errors"
	"fmt"
	"strings"

	"gametracker/internal/database"
)

var (
	// ErrDuplicate wraps unique constraint failures
	ErrDuplicate = errors.New("duplicate record")
	// ErrReferenced wraps foreign key failures: the row is still referenced,
	// or it references a row that does not exist
	ErrReferenced = errors.New("record is referenced")
)

// wrapError prefixes err with op and tags constraint failures with the
// matching sentinel so services can use errors.Is.
func wrapError(d database.Dialect, op string, err error) error {
	switch {
	case d.IsUniqueViolation(err):
		return fmt.Errorf("failed to %s: %w: %w", op, ErrDuplicate, err)
	case d.IsForeignKeyViolation(err):
		return fmt.Errorf("failed to %s: %w: %w", op, ErrReferenced, err)
	default:
		return fmt.Errorf("failed to %s: %w", op, err)
	}
}

// placeholders returns "?, ?, ..." for an IN clause of n values
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func int64Args(ids []int64) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}

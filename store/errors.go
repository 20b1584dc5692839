package store

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound covers both "no such record" and "record owned by
// someone else". The two are deliberately indistinguishable so an
// operation on another author's entry does not leak its existence.
var ErrNotFound = errors.New("not found")

// ValidationError reports a field-level problem with the caller's
// input. The entity is left unchanged.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// AsValidationError unwraps err into a *ValidationError if it is one.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// isUniqueViolation reports whether err is the sqlite unique-constraint
// failure for the given column. Uniqueness is enforced at the store so
// concurrent writers racing on the same title cannot both win; the
// loser gets a validation failure, not a crash.
func isUniqueViolation(err error, table, column string) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), fmt.Sprintf("UNIQUE constraint failed: %s.%s", table, column))
}

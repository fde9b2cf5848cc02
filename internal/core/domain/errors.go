package domain

import (
	"errors"
	"fmt"
)

var (
	ErrDocumentNotFound = errors.New("document not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrTemporary        = errors.New("temporary failure")

	ErrEmptyIndex        = errors.New("index is empty")
	ErrInconsistentStore = errors.New("index store is inconsistent")
	ErrSnapshotMissing   = errors.New("snapshot not found")
	ErrSnapshotCorrupt   = errors.New("snapshot is corrupt")
	ErrSchemaMismatch    = errors.New("snapshot schema version mismatch")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}

package opk

import (
	"fmt"

	"github.com/pkg/errors"
)

// Boundary-level failures. Source and sink failures abort a pipeline
// run; callers can classify a wrapped error with errors.Cause.
var (
	// ErrSourceUnavailable indicates a dataset locator could not be
	// opened or read.
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrSchemaMismatch indicates a dataset is missing a required
	// field and no record of that dataset can be decoded.
	ErrSchemaMismatch = errors.New("schema mismatch")

	// ErrSinkUnavailable indicates the output destination could not be
	// written.
	ErrSinkUnavailable = errors.New("sink unavailable")

	// ErrInvalidCredit is returned by ClassifyCredit for credit values
	// no tier is defined for.
	ErrInvalidCredit = errors.New("invalid credit")
)

// MalformedRecordError is a row-local failure: one record of a dataset
// could not be decoded or violates a field constraint. Malformed
// records are collected into a Report and skipped rather than aborting
// the batch.
type MalformedRecordError struct {
	Dataset DatasetKind
	Key     int64  // id of the offending record if one was decoded, else 0
	Field   string // offending field, empty if the whole row is bad
	Reason  string
}

func (e *MalformedRecordError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("malformed %s record (id %d): %s", e.Dataset, e.Key, e.Reason)
	}
	return fmt.Sprintf("malformed %s record (id %d): field %q: %s", e.Dataset, e.Key, e.Field, e.Reason)
}

// Malformed wraps a reason into a MalformedRecordError for kind.
func Malformed(kind DatasetKind, key int64, field, format string, args ...interface{}) *MalformedRecordError {
	return &MalformedRecordError{
		Dataset: kind,
		Key:     key,
		Field:   field,
		Reason:  fmt.Sprintf(format, args...),
	}
}

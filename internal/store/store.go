// Package store persists activity and Scope 3 records per account.
package store

import (
	"context"

	"github.com/rshade/carbon-dashboard/internal/carbon"
)

// constError is an immutable error type for sentinel errors.
type constError string

func (e constError) Error() string { return string(e) }

const (
	// ErrNotFound is returned when a record does not exist for the account.
	ErrNotFound = constError("record not found")
	// ErrInvalidRecord is returned for records that cannot be keyed, such as a blank month.
	ErrInvalidRecord = constError("invalid record")
)

// Source reads an account's records. Returned activity records are already
// normalised, with legacy fuel folded and totals recomputed.
type Source interface {
	ActivityRecords(ctx context.Context, accountID string) ([]carbon.ActivityRecord, error)
	Scope3Records(ctx context.Context, accountID string) ([]carbon.Scope3Record, error)
}

// Writer mutates an account's records.
//
// SaveActivity fully overwrites the month's record and recomputes its total
// from the new quantities; previous totals are never carried over.
type Writer interface {
	SaveActivity(ctx context.Context, accountID string, row carbon.ActivityRow) (carbon.ActivityRecord, error)
	DeleteActivity(ctx context.Context, accountID, month string) error
	SaveScope3(ctx context.Context, accountID string, rec carbon.Scope3Record) (carbon.Scope3Record, error)
}

// Store reads and writes records.
type Store interface {
	Source
	Writer
}

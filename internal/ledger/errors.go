package ledger

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidDate   = errors.New("invalid transaction date")
	ErrInvalidAmount = errors.New("invalid amount")
)

// DataError reports a record that cannot be placed in the ledger.
type DataError struct {
	Index int
	Field string
	Value string
	Err   error
}

func (e *DataError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("record %d: %s %q: %v", e.Index, e.Field, e.Value, e.Err)
	}
	return fmt.Sprintf("record %d: %s: %v", e.Index, e.Field, e.Err)
}

func (e *DataError) Unwrap() error { return e.Err }

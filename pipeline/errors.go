package pipeline

import (
	"errors"
	"fmt"
)

var (
	// ErrSource is returned when the data file cannot be opened or decoded.
	ErrSource = errors.New("data source unreadable")
	// ErrNoRows means no row survived length-of-stay cleaning.
	ErrNoRows = errors.New("no rows with a numeric length of stay")
	// ErrEmptyView is returned by aggregates computed over zero records.
	ErrEmptyView = errors.New("no records match the current filters")

	ErrInvalidStay   = errors.New("length of stay is not numeric")
	ErrInvalidRange  = errors.New("invalid length of stay range")
	ErrUnknownColumn = errors.New("unknown column")
	ErrNoColumns     = errors.New("select at least one column")
)

// MissingColumnError reports a required header absent from the source.
type MissingColumnError struct {
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("expected column %q is missing", e.Column)
}

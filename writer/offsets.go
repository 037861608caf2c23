// Package writer splices rendered transactions into a ledger file at their
// chronological position and replaces the file atomically.
package writer

import (
	"errors"
	"fmt"
	"time"

	"golang.org/x/exp/slices"
)

var (
	// ErrUnsortedOffsets is returned when date offsets are not in date order.
	ErrUnsortedOffsets = errors.New("date offsets are not sorted by date")

	// ErrOffsetOutOfRange is returned when an offset points outside the file.
	ErrOffsetOutOfRange = errors.New("date offset outside of file")
)

// DateOffset records where the last existing entry of a date ends.
type DateOffset struct {
	Date   time.Time
	Offset int64
}

// Fold reduces raw per-entry offsets to one offset per date, keeping the
// last occurrence. Entries must already be sorted by date with ties in file
// order; anything else is rejected because "last occurrence wins" would pick
// the wrong entry.
func Fold(raw []DateOffset) ([]DateOffset, error) {
	folded := make([]DateOffset, 0, len(raw))
	for i, o := range raw {
		if n := len(folded); n > 0 {
			last := folded[n-1]
			switch {
			case o.Date.Before(last.Date):
				return nil, fmt.Errorf("%w: %s at position %d follows %s",
					ErrUnsortedOffsets, o.Date.Format("2006-01-02"), i, last.Date.Format("2006-01-02"))
			case o.Date.Equal(last.Date):
				folded[n-1] = o
				continue
			}
		}
		folded = append(folded, o)
	}
	return folded, nil
}

// InsertionPoint returns the byte offset at which an entry dated date belongs.
// offsets must be folded. A date already present lands after its last entry;
// a new date lands after the closest earlier date, or at the start of the file
// when it predates everything.
func InsertionPoint(offsets []DateOffset, date time.Time) int64 {
	i, found := slices.BinarySearchFunc(offsets, date, func(o DateOffset, d time.Time) int {
		return o.Date.Compare(d)
	})
	if found {
		return offsets[i].Offset
	}
	if i > 0 {
		return offsets[i-1].Offset
	}
	return 0
}

// validate checks that folded offsets are strictly ascending by date and lie
// within a file of the given size.
func validate(offsets []DateOffset, size int64) error {
	for i, o := range offsets {
		if i > 0 && !offsets[i-1].Date.Before(o.Date) {
			return fmt.Errorf("%w: %s at position %d", ErrUnsortedOffsets, o.Date.Format("2006-01-02"), i)
		}
		if o.Offset < 0 || o.Offset > size {
			return fmt.Errorf("%w: %d not in [0, %d]", ErrOffsetOutOfRange, o.Offset, size)
		}
	}
	return nil
}

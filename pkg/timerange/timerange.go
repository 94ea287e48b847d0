// Package timerange describes the window of acceptable capture times for a batch.
package timerange

import (
	"errors"
	"fmt"
	"time"
)

// ErrEmptyRange is returned when begin is not strictly before end.
var ErrEmptyRange = errors.New("range begin must be before end")

// Range is the half-open interval [begin, end).
//
// Both bounds share the location of begin. The location matters for display and
// for interpreting timestamps that carry no zone of their own.
type Range struct {
	begin time.Time
	end   time.Time
}

// New returns the range [begin, end).
func New(begin, end time.Time) (Range, error) {
	if !begin.Before(end) {
		return Range{}, fmt.Errorf("%w: %s >= %s", ErrEmptyRange, begin, end)
	}
	return Range{begin: begin, end: end.In(begin.Location())}, nil
}

// MustNew is like New but panics on an empty range.
func MustNew(begin, end time.Time) Range {
	r, err := New(begin, end)
	if err != nil {
		panic(err)
	}
	return r
}

func (r Range) Begin() time.Time { return r.begin }

func (r Range) End() time.Time { return r.end }

// Contains reports whether begin <= t < end. The comparison is on absolute
// instants, so the location of t is irrelevant.
func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.begin) && t.Before(r.end)
}

// Location returns the timezone of the range.
func (r Range) Location() *time.Location {
	return r.begin.Location()
}

// IsZero reports whether r is the zero Range.
func (r Range) IsZero() bool {
	return r.begin.IsZero() && r.end.IsZero()
}

func (r Range) String() string {
	return fmt.Sprintf("[%s - %s)", r.begin, r.end)
}

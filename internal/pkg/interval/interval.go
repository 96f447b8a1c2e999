// Package interval holds the validity-window primitives shared by the
// assignment validators and the derived vacancy/activity reads.
package interval

import "time"

// FarFuture is the open-end sentinel for validity intervals with no end date.
var FarFuture = time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)

// Span is a validity window. To is FarFuture for open-ended spans.
type Span struct {
	From time.Time
	To   time.Time
}

// Normalize fills an omitted end with the FarFuture sentinel.
func Normalize(from time.Time, to *time.Time) Span {
	s := Span{From: from, To: FarFuture}
	if to != nil && !to.IsZero() {
		s.To = *to
	}
	return s
}

// Overlaps reports whether two spans share at least one instant:
// a.From <= b.To && a.To >= b.From. Both endpoints count.
func (s Span) Overlaps(o Span) bool {
	return !s.From.After(o.To) && !s.To.Before(o.From)
}

// Contains reports whether t falls inside the span, endpoints included.
func (s Span) Contains(t time.Time) bool {
	return !t.Before(s.From) && !t.After(s.To)
}

// OpenEnded reports whether the span has no real end date.
func (s Span) OpenEnded() bool {
	return !s.To.Before(FarFuture)
}

package domain

import "time"

const (
	DefaultPage     = 1
	DefaultPageSize = 10
)

// ListFilter narrows a booking listing. String fields are substring
// matches; empty means no constraint.
type ListFilter struct {
	Page         int
	PageSize     int
	Username     string
	RoomName     string
	RoomLocation string
	RangeStart   time.Time
	RangeEnd     time.Time
}

// Normalize fills in paging defaults and, when only a range start is
// given, sets the range end to start + DefaultRangeSpan.
func (f ListFilter) Normalize() ListFilter {
	if f.Page < 1 {
		f.Page = DefaultPage
	}

	if f.PageSize < 1 {
		f.PageSize = DefaultPageSize
	}

	if !f.RangeStart.IsZero() && f.RangeEnd.IsZero() {
		f.RangeEnd = f.RangeStart.Add(DefaultRangeSpan)
	}

	return f
}

// Offset is the number of rows skipped for a 1-indexed page.
func (f ListFilter) Offset() int {
	return (f.Page - 1) * f.PageSize
}

func (f ListFilter) HasRange() bool {
	return !f.RangeStart.IsZero()
}

package domain

import "time"

// DefaultRangeSpan is the effective length of a time filter that only
// names a start.
const DefaultRangeSpan = time.Hour

// Interval is a half-open time range [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

func NewInterval(start, end time.Time) (Interval, error) {
	iv := Interval{Start: start, End: end}
	if err := iv.Validate(); err != nil {
		return Interval{}, err
	}

	return iv, nil
}

// IntervalFromMillis builds an interval from epoch milliseconds.
func IntervalFromMillis(startMs, endMs int64) (Interval, error) {
	return NewInterval(time.UnixMilli(startMs).UTC(), time.UnixMilli(endMs).UTC())
}

func (i Interval) Validate() error {
	if i.Start.IsZero() || i.End.IsZero() {
		return ErrInvalidInterval
	}

	if !i.Start.Before(i.End) {
		return ErrInvalidInterval
	}

	return nil
}

// Overlaps reports whether [s1,e1) and [s2,e2) share any instant,
// i.e. s1 < e2 && s2 < e1. Touching endpoints do not overlap.
func (i Interval) Overlaps(other Interval) bool {
	return i.Start.Before(other.End) && other.Start.Before(i.End)
}

func (i Interval) Duration() time.Duration {
	return i.End.Sub(i.Start)
}

// Conflicts reports whether candidate overlaps any interval in existing.
// Callers pass only the active bookings of the same room.
func Conflicts(candidate Interval, existing []Interval) bool {
	for _, iv := range existing {
		if candidate.Overlaps(iv) {
			return true
		}
	}

	return false
}

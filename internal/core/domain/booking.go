package domain

import (
	"time"
)

type BookingStatus string

const (
	BookingPending  BookingStatus = "PENDING"
	BookingApproved BookingStatus = "APPROVED"
	BookingRejected BookingStatus = "REJECTED"
	BookingReleased BookingStatus = "RELEASED"
)

// ActiveStatuses are the statuses that occupy a room.
var ActiveStatuses = []BookingStatus{BookingPending, BookingApproved}

var transitions = map[BookingStatus][]BookingStatus{
	BookingApproved: {BookingPending},
	BookingRejected: {BookingPending},
	BookingReleased: {BookingPending, BookingApproved},
}

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPending, BookingApproved, BookingRejected, BookingReleased:
		return true
	}
	return false
}

func (s BookingStatus) IsActive() bool {
	return s == BookingPending || s == BookingApproved
}

func (s BookingStatus) IsTerminal() bool {
	return s == BookingRejected || s == BookingReleased
}

// CanTransitionTo reports whether a booking in status s may move to next.
// Nothing moves back to PENDING and nothing leaves a terminal status.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	for _, from := range transitions[next] {
		if from == s {
			return true
		}
	}
	return false
}

type Booking struct {
	ID        int64
	RoomID    int64
	UserID    int64
	StartTime time.Time
	EndTime   time.Time
	Status    BookingStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (b *Booking) Interval() Interval {
	return Interval{Start: b.StartTime, End: b.EndTime}
}

// TransitionTo applies next to the booking. Re-applying the current
// status is a no-op and reports changed == false.
func (b *Booking) TransitionTo(next BookingStatus, at time.Time) (changed bool, err error) {
	if b.Status == next {
		return false, nil
	}

	if !b.Status.CanTransitionTo(next) {
		return false, &TransitionError{BookingID: b.ID, From: b.Status, To: next}
	}

	b.Status = next
	b.UpdatedAt = at

	return true, nil
}

// BookingDetail is a booking joined with its room and requester, as
// returned by listings.
type BookingDetail struct {
	Booking
	Room Room
	User User
}

// BookingPage is one page of a booking listing.
type BookingPage struct {
	Bookings   []BookingDetail
	TotalCount int64
}

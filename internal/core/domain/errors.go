package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrInvalidInterval = fmt.Errorf("%w: start time must be before end time", ErrInvalidInput)

	ErrBookingNotFound = errors.New("booking not found")
	ErrRoomNotFound    = errors.New("meeting room not found")
	ErrUserNotFound    = errors.New("user not found")

	ErrConflict          = errors.New("time slot already booked for this room")
	ErrInvalidTransition = errors.New("invalid status transition")

	ErrThrottled         = errors.New("booking already escalated recently")
	ErrNoAdminConfigured = errors.New("no administrator configured")
	ErrNotPending        = errors.New("booking is not awaiting approval")

	ErrCacheUnavailable = errors.New("cache unavailable")
	ErrNotifyFailed     = errors.New("failed to send notification")
)

// ThrottledError is returned by escalation while the cooldown for a
// booking is still running.
type ThrottledError struct {
	BookingID int64
	Remaining time.Duration
}

func (e *ThrottledError) Error() string {
	return fmt.Sprintf("booking %d already escalated, retry in %s", e.BookingID, e.Remaining.Round(time.Second))
}

func (e *ThrottledError) Is(target error) bool {
	return target == ErrThrottled
}

// TransitionError describes a rejected status change.
type TransitionError struct {
	BookingID int64
	From      BookingStatus
	To        BookingStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("booking %d: cannot move from %s to %s", e.BookingID, e.From, e.To)
}

func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

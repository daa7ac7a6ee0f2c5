package domain_test

import (
	"testing"
	"time"

	"github.com/srgjo27/meeting_room/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookingStatus_CanTransitionTo(t *testing.T) {
	all := []domain.BookingStatus{
		domain.BookingPending,
		domain.BookingApproved,
		domain.BookingRejected,
		domain.BookingReleased,
	}

	allowed := map[[2]domain.BookingStatus]bool{
		{domain.BookingPending, domain.BookingApproved}:  true,
		{domain.BookingPending, domain.BookingRejected}:  true,
		{domain.BookingPending, domain.BookingReleased}:  true,
		{domain.BookingApproved, domain.BookingReleased}: true,
	}

	for _, from := range all {
		for _, to := range all {
			want := allowed[[2]domain.BookingStatus{from, to}]
			assert.Equal(t, want, from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}
}

func TestBooking_TransitionTo(t *testing.T) {
	at := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)

	t.Run("pending to approved", func(t *testing.T) {
		b := &domain.Booking{ID: 1, Status: domain.BookingPending}

		changed, err := b.TransitionTo(domain.BookingApproved, at)
		require.NoError(t, err)
		assert.True(t, changed)
		assert.Equal(t, domain.BookingApproved, b.Status)
		assert.Equal(t, at, b.UpdatedAt)
	})

	t.Run("same status is a no-op", func(t *testing.T) {
		b := &domain.Booking{ID: 1, Status: domain.BookingReleased}

		changed, err := b.TransitionTo(domain.BookingReleased, at)
		require.NoError(t, err)
		assert.False(t, changed)
		assert.True(t, b.UpdatedAt.IsZero())
	})

	t.Run("terminal statuses stay terminal", func(t *testing.T) {
		for _, from := range []domain.BookingStatus{domain.BookingRejected, domain.BookingReleased} {
			for _, to := range []domain.BookingStatus{domain.BookingApproved, domain.BookingPending} {
				b := &domain.Booking{ID: 7, Status: from}

				_, err := b.TransitionTo(to, at)
				assert.ErrorIs(t, err, domain.ErrInvalidTransition)
				assert.Equal(t, from, b.Status)

				var te *domain.TransitionError
				require.ErrorAs(t, err, &te)
				assert.Equal(t, int64(7), te.BookingID)
			}
		}
	})
}

func TestListFilter_Normalize(t *testing.T) {
	f := domain.ListFilter{}.Normalize()
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, 10, f.PageSize)
	assert.Equal(t, 0, f.Offset())
	assert.False(t, f.HasRange())

	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	f = domain.ListFilter{Page: 3, PageSize: 20, RangeStart: start}.Normalize()
	assert.Equal(t, 40, f.Offset())
	assert.Equal(t, start.Add(time.Hour), f.RangeEnd)

	end := start.Add(4 * time.Hour)
	f = domain.ListFilter{RangeStart: start, RangeEnd: end}.Normalize()
	assert.Equal(t, end, f.RangeEnd)
}

func TestThrottledError(t *testing.T) {
	err := error(&domain.ThrottledError{BookingID: 3, Remaining: 90 * time.Second})
	assert.ErrorIs(t, err, domain.ErrThrottled)
	assert.Contains(t, err.Error(), "1m30s")
}

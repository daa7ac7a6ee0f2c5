package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/srgjo27/meeting_room/internal/adapter/repository/memory"
	"github.com/srgjo27/meeting_room/internal/core/domain"
	"github.com/srgjo27/meeting_room/internal/core/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)

func insert(t *testing.T, s *memory.Store, roomID, userID int64, start time.Time, d time.Duration) *domain.Booking {
	t.Helper()

	b := &domain.Booking{
		RoomID:    roomID,
		UserID:    userID,
		StartTime: start,
		EndTime:   start.Add(d),
		Status:    domain.BookingPending,
	}

	err := s.WithRoomLock(context.Background(), roomID, func(ctx context.Context, tx ports.BookingTx) error {
		return tx.Insert(ctx, b)
	})
	require.NoError(t, err)

	return b
}

func TestStore_WithRoomLock_RollsBackOnError(t *testing.T) {
	s := memory.NewSeededStore(base)
	ctx := context.Background()
	boom := errors.New("boom")

	var id int64
	err := s.WithRoomLock(ctx, 30, func(ctx context.Context, tx ports.BookingTx) error {
		b := &domain.Booking{RoomID: 30, UserID: 5, StartTime: base, EndTime: base.Add(time.Hour), Status: domain.BookingPending}
		require.NoError(t, tx.Insert(ctx, b))
		id = b.ID

		active, err := tx.ListActiveIntervals(ctx, 30)
		require.NoError(t, err)
		assert.Len(t, active, 1, "pending insert is visible inside the transaction")

		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = s.GetByID(ctx, id)
	assert.ErrorIs(t, err, domain.ErrBookingNotFound)
}

func TestStore_WithRoomLock_UnknownRoom(t *testing.T) {
	s := memory.NewSeededStore(base)

	err := s.WithRoomLock(context.Background(), 999, func(ctx context.Context, tx ports.BookingTx) error {
		return tx.Insert(ctx, &domain.Booking{RoomID: 999, UserID: 5, StartTime: base, EndTime: base.Add(time.Hour)})
	})
	assert.ErrorIs(t, err, domain.ErrRoomNotFound)
}

func TestStore_WithRoomLock_HonoursContext(t *testing.T) {
	s := memory.NewSeededStore(base)

	held := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})

	go func() {
		defer close(done)
		_ = s.WithRoomLock(context.Background(), 30, func(ctx context.Context, tx ports.BookingTx) error {
			close(held)
			<-release
			return nil
		})
	}()

	<-held

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := s.WithRoomLock(ctx, 30, func(ctx context.Context, tx ports.BookingTx) error {
		t.Fatal("must not enter while the room is held")
		return nil
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	err = s.WithRoomLock(context.Background(), 33, func(ctx context.Context, tx ports.BookingTx) error {
		return nil
	})
	assert.NoError(t, err, "other rooms are not blocked")

	close(release)
	<-done
}

func TestStore_ListActiveIntervals_SkipsInactive(t *testing.T) {
	s := memory.NewSeededStore(base)
	ctx := context.Background()

	a := insert(t, s, 30, 5, base, time.Hour)
	b := insert(t, s, 30, 8, base.Add(2*time.Hour), time.Hour)
	insert(t, s, 33, 8, base, time.Hour)

	_, err := s.Transition(ctx, b.ID, domain.BookingRejected, base)
	require.NoError(t, err)

	err = s.WithRoomLock(ctx, 30, func(ctx context.Context, tx ports.BookingTx) error {
		active, err := tx.ListActiveIntervals(ctx, 30)
		require.NoError(t, err)
		assert.Equal(t, []domain.Interval{a.Interval()}, active)
		return nil
	})
	require.NoError(t, err)
}

func TestStore_Transition(t *testing.T) {
	s := memory.NewSeededStore(base)
	ctx := context.Background()
	b := insert(t, s, 30, 5, base, time.Hour)

	got, err := s.Transition(ctx, b.ID, domain.BookingApproved, base.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, domain.BookingApproved, got.Status)
	assert.Equal(t, base.Add(time.Minute), got.UpdatedAt)

	_, err = s.Transition(ctx, b.ID, domain.BookingRejected, base)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	stored, err := s.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingApproved, stored.Status)

	_, err = s.Transition(ctx, 12345, domain.BookingApproved, base)
	assert.ErrorIs(t, err, domain.ErrBookingNotFound)
}

func TestStore_List(t *testing.T) {
	s := memory.NewSeededStore(base)
	ctx := context.Background()

	insert(t, s, 30, 5, base, time.Hour)
	insert(t, s, 33, 8, base.Add(30*time.Minute), time.Hour)
	insert(t, s, 30, 8, base.Add(3*time.Hour), time.Hour)

	testCases := []struct {
		name      string
		filter    domain.ListFilter
		wantIDs   []int64
		wantTotal int64
	}{
		{name: "all", filter: domain.ListFilter{}, wantIDs: []int64{1, 2, 3}, wantTotal: 3},
		{name: "page size", filter: domain.ListFilter{Page: 2, PageSize: 2}, wantIDs: []int64{3}, wantTotal: 3},
		{name: "page past end", filter: domain.ListFilter{Page: 5, PageSize: 2}, wantIDs: []int64{}, wantTotal: 3},
		{name: "username", filter: domain.ListFilter{Username: "TAY"}, wantIDs: []int64{2, 3}, wantTotal: 2},
		{name: "room name", filter: domain.ListFilter{RoomName: "berna"}, wantIDs: []int64{1, 3}, wantTotal: 2},
		{name: "room location", filter: domain.ListFilter{RoomLocation: "2F"}, wantIDs: []int64{2}, wantTotal: 1},
		{name: "range start only", filter: domain.ListFilter{RangeStart: base}, wantIDs: []int64{1, 2}, wantTotal: 2},
		{
			name:      "explicit range",
			filter:    domain.ListFilter{RangeStart: base.Add(time.Hour), RangeEnd: base.Add(4 * time.Hour)},
			wantIDs:   []int64{3},
			wantTotal: 1,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			page, err := s.List(ctx, tc.filter.Normalize())
			require.NoError(t, err)

			ids := []int64{}
			for _, d := range page.Bookings {
				ids = append(ids, d.ID)
			}

			assert.Equal(t, tc.wantIDs, ids)
			assert.Equal(t, tc.wantTotal, page.TotalCount)
		})
	}
}

func TestStore_FindAdministrator(t *testing.T) {
	s := memory.NewStore()
	ctx := context.Background()

	_, err := s.FindAdministrator(ctx)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	s.PutUser(domain.User{ID: 9, Username: "b", IsAdmin: true, Email: "b@example.com"})
	s.PutUser(domain.User{ID: 3, Username: "a", IsAdmin: true, Email: "a@example.com"})
	s.PutUser(domain.User{ID: 1, Username: "plain"})

	admin, err := s.FindAdministrator(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), admin.ID)
}

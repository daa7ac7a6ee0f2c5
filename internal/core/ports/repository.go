package ports

import (
	"context"
	"time"

	"github.com/srgjo27/meeting_room/internal/core/domain"
)

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=RoomDirectory
//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=UserDirectory

// BookingTx is the view of the booking store available while a room is
// held exclusively.
type BookingTx interface {
	ListActiveIntervals(ctx context.Context, roomID int64) ([]domain.Interval, error)
	Insert(ctx context.Context, booking *domain.Booking) error
}

type BookingRepository interface {
	// WithRoomLock runs fn while no other WithRoomLock for the same room
	// can run. Writes made through tx are committed only if fn returns nil.
	WithRoomLock(ctx context.Context, roomID int64, fn func(ctx context.Context, tx BookingTx) error) error
	GetByID(ctx context.Context, bookingID int64) (*domain.Booking, error)
	// Transition atomically moves a booking to next using Booking.TransitionTo.
	Transition(ctx context.Context, bookingID int64, next domain.BookingStatus, at time.Time) (*domain.Booking, error)
	List(ctx context.Context, filter domain.ListFilter) (*domain.BookingPage, error)
}

type RoomDirectory interface {
	GetRoom(ctx context.Context, roomID int64) (*domain.Room, error)
}

type UserDirectory interface {
	GetUser(ctx context.Context, userID int64) (*domain.User, error)
	FindAdministrator(ctx context.Context) (*domain.User, error)
}

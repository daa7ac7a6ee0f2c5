package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/srgjo27/meeting_room/internal/core/domain"
	"github.com/srgjo27/meeting_room/internal/core/ports"
	"github.com/srgjo27/meeting_room/internal/platform/clock"
	"github.com/srgjo27/meeting_room/internal/platform/logger/sl"
)

const (
	DefaultOperationTimeout   = 3 * time.Second
	DefaultEscalationCooldown = 30 * time.Minute
	DefaultAdminContactTTL    = 10 * time.Minute
	DefaultEscalationSubject  = "Meeting room booking awaiting approval"
)

type Config struct {
	// OperationTimeout bounds every store and cache call made for one request.
	OperationTimeout   time.Duration
	EscalationCooldown time.Duration
	AdminContactTTL    time.Duration
	EscalationSubject  string
}

func (c Config) withDefaults() Config {
	if c.OperationTimeout <= 0 {
		c.OperationTimeout = DefaultOperationTimeout
	}
	if c.EscalationCooldown <= 0 {
		c.EscalationCooldown = DefaultEscalationCooldown
	}
	if c.AdminContactTTL <= 0 {
		c.AdminContactTTL = DefaultAdminContactTTL
	}
	if c.EscalationSubject == "" {
		c.EscalationSubject = DefaultEscalationSubject
	}
	return c
}

type CreateBookingRequest struct {
	RoomID    int64 `json:"meetingRoomId" validate:"required,gt=0"`
	UserID    int64 `json:"userId" validate:"required,gt=0"`
	StartTime int64 `json:"startTime" validate:"required,gt=0"`
	EndTime   int64 `json:"endTime" validate:"required,gtfield=StartTime"`
}

type Option func(*BookingService)

func WithClock(c clock.Clock) Option {
	return func(s *BookingService) {
		s.clock = c
	}
}

type BookingService struct {
	bookingRepo ports.BookingRepository
	rooms       ports.RoomDirectory
	users       ports.UserDirectory
	cache       ports.Cache
	notifier    ports.Notifier
	clock       clock.Clock
	log         *slog.Logger
	cfg         Config
}

func NewBookingService(
	bookingRepo ports.BookingRepository,
	rooms ports.RoomDirectory,
	users ports.UserDirectory,
	cache ports.Cache,
	notifier ports.Notifier,
	log *slog.Logger,
	cfg Config,
	opts ...Option,
) *BookingService {
	s := &BookingService{
		bookingRepo: bookingRepo,
		rooms:       rooms,
		users:       users,
		cache:       cache,
		notifier:    notifier,
		clock:       clock.Real(),
		log:         log,
		cfg:         cfg.withDefaults(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *BookingService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.cfg.OperationTimeout)
}

func (s *BookingService) CreateBooking(ctx context.Context, req CreateBookingRequest) (*domain.Booking, error) {
	const op = "services.BookingService.CreateBooking"

	log := s.log.With(
		slog.String("op", op),
		slog.Int64("room_id", req.RoomID),
		slog.Int64("user_id", req.UserID),
	)

	if req.RoomID <= 0 {
		return nil, fmt.Errorf("%w: meeting room id is required", domain.ErrInvalidInput)
	}

	if req.UserID <= 0 {
		return nil, fmt.Errorf("%w: user id is required", domain.ErrInvalidInput)
	}

	interval, err := domain.IntervalFromMillis(req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if _, err := s.rooms.GetRoom(ctx, req.RoomID); err != nil {
		if errors.Is(err, domain.ErrRoomNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%s: resolve room: %w", op, err)
	}

	if _, err := s.users.GetUser(ctx, req.UserID); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%s: resolve user: %w", op, err)
	}

	now := s.clock.Now()
	booking := &domain.Booking{
		RoomID:    req.RoomID,
		UserID:    req.UserID,
		StartTime: interval.Start,
		EndTime:   interval.End,
		Status:    domain.BookingPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = s.bookingRepo.WithRoomLock(ctx, req.RoomID, func(ctx context.Context, tx ports.BookingTx) error {
		existing, err := tx.ListActiveIntervals(ctx, req.RoomID)
		if err != nil {
			return err
		}

		if domain.Conflicts(interval, existing) {
			return domain.ErrConflict
		}

		return tx.Insert(ctx, booking)
	})
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			log.Info("booking rejected, slot taken",
				slog.Time("start_time", interval.Start),
				slog.Time("end_time", interval.End),
			)
			return nil, err
		}

		log.Error("failed to create booking", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("booking created", slog.Int64("booking_id", booking.ID))

	return booking, nil
}

func (s *BookingService) GetBooking(ctx context.Context, bookingID int64) (*domain.Booking, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, domain.ErrBookingNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("services.BookingService.GetBooking: %w", err)
	}

	return booking, nil
}

func (s *BookingService) ListBookings(ctx context.Context, filter domain.ListFilter) (*domain.BookingPage, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	page, err := s.bookingRepo.List(ctx, filter.Normalize())
	if err != nil {
		return nil, fmt.Errorf("services.BookingService.ListBookings: %w", err)
	}

	return page, nil
}

func (s *BookingService) Approve(ctx context.Context, bookingID int64) (*domain.Booking, error) {
	return s.transition(ctx, "services.BookingService.Approve", bookingID, domain.BookingApproved)
}

func (s *BookingService) Reject(ctx context.Context, bookingID int64) (*domain.Booking, error) {
	return s.transition(ctx, "services.BookingService.Reject", bookingID, domain.BookingRejected)
}

// Release frees the room for the booking's interval.
func (s *BookingService) Release(ctx context.Context, bookingID int64) (*domain.Booking, error) {
	return s.transition(ctx, "services.BookingService.Release", bookingID, domain.BookingReleased)
}

func (s *BookingService) transition(ctx context.Context, op string, bookingID int64, next domain.BookingStatus) (*domain.Booking, error) {
	log := s.log.With(slog.String("op", op), slog.Int64("booking_id", bookingID))

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	booking, err := s.bookingRepo.Transition(ctx, bookingID, next, s.clock.Now())
	if err != nil {
		if errors.Is(err, domain.ErrBookingNotFound) || errors.Is(err, domain.ErrInvalidTransition) {
			log.Info("status change refused", sl.Err(err))
			return nil, err
		}

		log.Error("failed to change booking status", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("booking status changed", slog.String("status", string(booking.Status)))

	return booking, nil
}

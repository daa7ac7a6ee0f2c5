// Package memory keeps rooms, users and bookings in process memory. It
// implements the same ports as the postgres adapter and is used for
// local runs and tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/srgjo27/meeting_room/internal/core/domain"
	"github.com/srgjo27/meeting_room/internal/core/ports"
)

type Store struct {
	mu       sync.RWMutex
	rooms    map[int64]domain.Room
	users    map[int64]domain.User
	bookings map[int64]*domain.Booking
	nextID   int64

	locksMu   sync.Mutex
	roomLocks map[int64]chan struct{}
}

func NewStore() *Store {
	return &Store{
		rooms:     make(map[int64]domain.Room),
		users:     make(map[int64]domain.User),
		bookings:  make(map[int64]*domain.Booking),
		roomLocks: make(map[int64]chan struct{}),
	}
}

// NewSeededStore returns a store holding the demo rooms and users.
func NewSeededStore(now time.Time) *Store {
	s := NewStore()

	s.PutRoom(domain.Room{ID: 30, Name: "Bernabeu", Capacity: 10, Location: "1F West", Equipment: "projector", CreatedAt: now})
	s.PutRoom(domain.Room{ID: 31, Name: "Etihad", Capacity: 30, Location: "3F East", Equipment: "whiteboard", CreatedAt: now})
	s.PutRoom(domain.Room{ID: 33, Name: "Old Trafford", Capacity: 5, Location: "2F East", CreatedAt: now})

	s.PutUser(domain.User{ID: 5, Username: "leehom", NickName: "Leehom", Email: "leehom@example.com", IsAdmin: true})
	s.PutUser(domain.User{ID: 8, Username: "taylor", NickName: "Taylor Swift", Email: "taylor@example.com"})

	return s
}

func (s *Store) PutRoom(room domain.Room) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms[room.ID] = room
}

func (s *Store) PutUser(user domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.ID] = user
}

func (s *Store) GetRoom(ctx context.Context, roomID int64) (*domain.Room, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	room, ok := s.rooms[roomID]
	if !ok {
		return nil, domain.ErrRoomNotFound
	}

	return &room, nil
}

func (s *Store) GetUser(ctx context.Context, userID int64) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[userID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}

	return &user, nil
}

func (s *Store) FindAdministrator(ctx context.Context) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var admin *domain.User
	for _, u := range s.users {
		if !u.IsAdmin {
			continue
		}
		if admin == nil || u.ID < admin.ID {
			u := u
			admin = &u
		}
	}

	if admin == nil {
		return nil, domain.ErrUserNotFound
	}

	return admin, nil
}

func (s *Store) roomLock(roomID int64) chan struct{} {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()

	l, ok := s.roomLocks[roomID]
	if !ok {
		l = make(chan struct{}, 1)
		s.roomLocks[roomID] = l
	}

	return l
}

// WithRoomLock holds the room's lock while fn runs. Inserts are buffered
// and only become visible if fn returns nil.
func (s *Store) WithRoomLock(ctx context.Context, roomID int64, fn func(ctx context.Context, tx ports.BookingTx) error) error {
	l := s.roomLock(roomID)

	select {
	case l <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}

	defer func() { <-l }()

	tx := &bookingTx{store: s}
	if err := fn(ctx, tx); err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, b := range tx.pending {
		if _, ok := s.rooms[b.RoomID]; !ok {
			return domain.ErrRoomNotFound
		}
		if _, ok := s.users[b.UserID]; !ok {
			return domain.ErrUserNotFound
		}
	}

	for _, b := range tx.pending {
		stored := *b
		s.bookings[b.ID] = &stored
	}

	return nil
}

type bookingTx struct {
	store   *Store
	pending []*domain.Booking
}

func (t *bookingTx) ListActiveIntervals(ctx context.Context, roomID int64) ([]domain.Interval, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	t.store.mu.RLock()
	defer t.store.mu.RUnlock()

	var intervals []domain.Interval
	for _, b := range t.store.bookings {
		if b.RoomID == roomID && b.Status.IsActive() {
			intervals = append(intervals, b.Interval())
		}
	}

	for _, b := range t.pending {
		if b.RoomID == roomID && b.Status.IsActive() {
			intervals = append(intervals, b.Interval())
		}
	}

	return intervals, nil
}

func (t *bookingTx) Insert(ctx context.Context, booking *domain.Booking) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	t.store.mu.Lock()
	t.store.nextID++
	booking.ID = t.store.nextID
	t.store.mu.Unlock()

	t.pending = append(t.pending, booking)

	return nil
}

func (s *Store) GetByID(ctx context.Context, bookingID int64) (*domain.Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.bookings[bookingID]
	if !ok {
		return nil, domain.ErrBookingNotFound
	}

	out := *b
	return &out, nil
}

func (s *Store) Transition(ctx context.Context, bookingID int64, next domain.BookingStatus, at time.Time) (*domain.Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bookings[bookingID]
	if !ok {
		return nil, domain.ErrBookingNotFound
	}

	updated := *b
	if _, err := updated.TransitionTo(next, at); err != nil {
		return nil, err
	}

	*b = updated

	return &updated, nil
}

func (s *Store) List(ctx context.Context, filter domain.ListFilter) (*domain.BookingPage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]domain.BookingDetail, 0)
	for _, b := range s.bookings {
		d := domain.BookingDetail{
			Booking: *b,
			Room:    s.rooms[b.RoomID],
			User:    s.users[b.UserID],
		}

		if matches(d, filter) {
			matched = append(matched, d)
		}
	}

	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	page := &domain.BookingPage{
		Bookings:   []domain.BookingDetail{},
		TotalCount: int64(len(matched)),
	}

	from := filter.Offset()
	if from >= len(matched) {
		return page, nil
	}

	to := from + filter.PageSize
	if to > len(matched) {
		to = len(matched)
	}

	page.Bookings = matched[from:to]

	return page, nil
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func matches(d domain.BookingDetail, f domain.ListFilter) bool {
	if f.Username != "" && !containsFold(d.User.Username, f.Username) {
		return false
	}

	if f.RoomName != "" && !containsFold(d.Room.Name, f.RoomName) {
		return false
	}

	if f.RoomLocation != "" && !containsFold(d.Room.Location, f.RoomLocation) {
		return false
	}

	if f.HasRange() && (d.StartTime.Before(f.RangeStart) || d.StartTime.After(f.RangeEnd)) {
		return false
	}

	return true
}

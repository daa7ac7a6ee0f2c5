package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/srgjo27/meeting_room/internal/core/domain"
	"github.com/srgjo27/meeting_room/internal/core/ports"
)

const bookingColumns = `id, room_id, user_id, start_time, end_time, status, created_at, updated_at`

type BookingRepository struct {
	db *sql.DB
}

func NewBookingRepository(db *sql.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner) (*domain.Booking, error) {
	var b domain.Booking
	err := row.Scan(
		&b.ID,
		&b.RoomID,
		&b.UserID,
		&b.StartTime,
		&b.EndTime,
		&b.Status,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &b, nil
}

// WithRoomLock serializes writers on one room with a transaction-scoped
// advisory lock. The bookings_no_overlap exclusion constraint backs it up.
func (r *BookingRepository) WithRoomLock(ctx context.Context, roomID int64, fn func(ctx context.Context, tx ports.BookingTx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, roomID); err != nil {
		return fmt.Errorf("failed to lock room %d: %w", roomID, err)
	}

	if err := fn(ctx, &bookingTx{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", mapWriteError(err))
	}

	return nil
}

type bookingTx struct {
	tx *sql.Tx
}

func (t *bookingTx) ListActiveIntervals(ctx context.Context, roomID int64) ([]domain.Interval, error) {
	query := `
	SELECT start_time, end_time
	FROM bookings
	WHERE room_id = $1 AND status = ANY($2)
	`

	rows, err := t.tx.QueryContext(ctx, query, roomID, pq.Array(statusStrings(domain.ActiveStatuses)))
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	var intervals []domain.Interval
	for rows.Next() {
		var iv domain.Interval
		if err := rows.Scan(&iv.Start, &iv.End); err != nil {
			return nil, err
		}

		intervals = append(intervals, iv)
	}

	return intervals, rows.Err()
}

func (t *bookingTx) Insert(ctx context.Context, booking *domain.Booking) error {
	query := `
	INSERT INTO bookings (room_id, user_id, start_time, end_time, status, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	RETURNING id
	`

	err := t.tx.QueryRowContext(ctx, query,
		booking.RoomID,
		booking.UserID,
		booking.StartTime,
		booking.EndTime,
		booking.Status,
		booking.CreatedAt,
		booking.UpdatedAt,
	).Scan(&booking.ID)
	if err != nil {
		if mapped := mapWriteError(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("failed to insert booking: %w", err)
	}

	return nil
}

func (r *BookingRepository) GetByID(ctx context.Context, bookingID int64) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	b, err := scanBooking(r.db.QueryRowContext(ctx, query, bookingID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrBookingNotFound
		}
		return nil, err
	}

	return b, nil
}

func (r *BookingRepository) Transition(ctx context.Context, bookingID int64, next domain.BookingStatus, at time.Time) (*domain.Booking, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}

	defer tx.Rollback()

	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1 FOR UPDATE`

	b, err := scanBooking(tx.QueryRowContext(ctx, query, bookingID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrBookingNotFound
		}
		return nil, err
	}

	changed, err := b.TransitionTo(next, at)
	if err != nil {
		return nil, err
	}

	if !changed {
		return b, nil
	}

	_, err = tx.ExecContext(ctx, `UPDATE bookings SET status = $1, updated_at = $2 WHERE id = $3`, b.Status, b.UpdatedAt, b.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to update booking status: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return b, nil
}

func (r *BookingRepository) List(ctx context.Context, filter domain.ListFilter) (*domain.BookingPage, error) {
	where, args := listConditions(filter)

	countQuery := `
	SELECT COUNT(*)
	FROM bookings b
	JOIN meeting_rooms r ON r.id = b.room_id
	JOIN users u ON u.id = b.user_id
	` + where

	page := &domain.BookingPage{Bookings: []domain.BookingDetail{}}
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&page.TotalCount); err != nil {
		return nil, fmt.Errorf("failed to count bookings: %w", err)
	}

	if page.TotalCount == 0 {
		return page, nil
	}

	args = append(args, filter.PageSize, filter.Offset())
	listQuery := fmt.Sprintf(`
	SELECT b.id, b.room_id, b.user_id, b.start_time, b.end_time, b.status, b.created_at, b.updated_at,
		r.id, r.name, r.capacity, r.location, r.equipment, r.description, r.created_at,
		u.id, u.username, u.nick_name, u.email, u.is_admin
	FROM bookings b
	JOIN meeting_rooms r ON r.id = b.room_id
	JOIN users u ON u.id = b.user_id
	%s
	ORDER BY b.id
	LIMIT $%d OFFSET $%d
	`, where, len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, listQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}

	defer rows.Close()

	for rows.Next() {
		var d domain.BookingDetail
		if err := rows.Scan(
			&d.ID, &d.RoomID, &d.UserID, &d.StartTime, &d.EndTime, &d.Status, &d.CreatedAt, &d.UpdatedAt,
			&d.Room.ID, &d.Room.Name, &d.Room.Capacity, &d.Room.Location, &d.Room.Equipment, &d.Room.Description, &d.Room.CreatedAt,
			&d.User.ID, &d.User.Username, &d.User.NickName, &d.User.Email, &d.User.IsAdmin,
		); err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}

		page.Bookings = append(page.Bookings, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating bookings: %w", err)
	}

	return page, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

// listConditions builds the WHERE clause shared by the count and page
// queries. The time range matches on start time, both ends inclusive.
func listConditions(f domain.ListFilter) (string, []any) {
	var conds []string
	var args []any

	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if f.Username != "" {
		add("u.username ILIKE $%d", containsPattern(f.Username))
	}

	if f.RoomName != "" {
		add("r.name ILIKE $%d", containsPattern(f.RoomName))
	}

	if f.RoomLocation != "" {
		add("r.location ILIKE $%d", containsPattern(f.RoomLocation))
	}

	if f.HasRange() {
		add("b.start_time >= $%d", f.RangeStart)
		add("b.start_time <= $%d", f.RangeEnd)
	}

	if len(conds) == 0 {
		return "", args
	}

	return "WHERE " + strings.Join(conds, " AND "), args
}

func statusStrings(statuses []domain.BookingStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

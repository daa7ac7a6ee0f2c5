package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/srgjo27/meeting_room/internal/core/domain"
)

type RoomRepository struct {
	db *sql.DB
}

func NewRoomRepository(db *sql.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

func (r *RoomRepository) GetRoom(ctx context.Context, roomID int64) (*domain.Room, error) {
	query := `
	SELECT id, name, capacity, location, equipment, description, created_at
	FROM meeting_rooms
	WHERE id = $1
	`

	var room domain.Room
	err := r.db.QueryRowContext(ctx, query, roomID).Scan(
		&room.ID,
		&room.Name,
		&room.Capacity,
		&room.Location,
		&room.Equipment,
		&room.Description,
		&room.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrRoomNotFound
		}

		return nil, err
	}

	return &room, nil
}

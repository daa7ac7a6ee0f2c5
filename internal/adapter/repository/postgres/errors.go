package postgres

import (
	"errors"

	"github.com/lib/pq"

	"github.com/srgjo27/meeting_room/internal/core/domain"
)

const (
	codeForeignKeyViolation = "23503"
	codeExclusionViolation  = "23P01"
)

// mapWriteError translates constraint violations raised by writes on
// bookings into domain errors.
func mapWriteError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}

	switch pqErr.Code {
	case codeExclusionViolation:
		return domain.ErrConflict
	case codeForeignKeyViolation:
		switch pqErr.Constraint {
		case "bookings_room_id_fkey":
			return domain.ErrRoomNotFound
		case "bookings_user_id_fkey":
			return domain.ErrUserNotFound
		}
	}

	return err
}

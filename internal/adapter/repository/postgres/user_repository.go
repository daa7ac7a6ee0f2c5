package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/srgjo27/meeting_room/internal/core/domain"
)

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetUser(ctx context.Context, userID int64) (*domain.User, error) {
	query := `
	SELECT id, username, nick_name, email, is_admin
	FROM users
	WHERE id = $1
	`

	return r.scanOne(r.db.QueryRowContext(ctx, query, userID))
}

// FindAdministrator returns the administrator with the lowest id.
func (r *UserRepository) FindAdministrator(ctx context.Context) (*domain.User, error) {
	query := `
	SELECT id, username, nick_name, email, is_admin
	FROM users
	WHERE is_admin = TRUE
	ORDER BY id
	LIMIT 1
	`

	return r.scanOne(r.db.QueryRowContext(ctx, query))
}

func (r *UserRepository) scanOne(row *sql.Row) (*domain.User, error) {
	var user domain.User
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.NickName,
		&user.Email,
		&user.IsAdmin,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}

		return nil, err
	}

	return &user, nil
}

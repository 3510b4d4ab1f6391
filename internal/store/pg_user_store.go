package store

import (
	"context"
	"errors"
	"fmt"

	cerrors "github.com/abgdnv/storecatalog/internal/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = "id, username, password_hash, role, locked, enabled"

// PgUserStore implements UserStore on PostgreSQL.
type PgUserStore struct {
	db *pgxpool.Pool
}

func NewPgUserStore(dbp *pgxpool.Pool) *PgUserStore {
	return &PgUserStore{db: dbp}
}

func scanUser(row pgx.Row) (*User, error) {
	var u User
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &u.Locked, &u.Enabled); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *PgUserStore) FindByUsername(ctx context.Context, username string) (*User, error) {
	user, err := scanUser(s.db.QueryRow(ctx, "SELECT "+userColumns+" FROM users WHERE username = $1", username))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, cerrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

func (s *PgUserStore) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)", username).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check username: %w", err)
	}
	return exists, nil
}

func (s *PgUserStore) Create(ctx context.Context, user User) (*User, error) {
	created, err := scanUser(s.db.QueryRow(ctx,
		`INSERT INTO users (username, password_hash, role, locked, enabled)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+userColumns,
		user.Username, user.PasswordHash, user.Role, user.Locked, user.Enabled))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, cerrors.ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return created, nil
}

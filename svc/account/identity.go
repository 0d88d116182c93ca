package account

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgIdentityStore deletes users from Postgres. The schema declares
// ON DELETE CASCADE on every table referencing users, so a single
// delete removes the subscription record and all other user-owned
// rows atomically.
type PgIdentityStore struct {
	pool *pgxpool.Pool
}

func NewPgIdentityStore(pool *pgxpool.Pool) *PgIdentityStore {
	if pool == nil {
		panic("account: pgx pool is required")
	}
	return &PgIdentityStore{pool: pool}
}

const deleteUserQuery = `DELETE FROM users WHERE id = $1`

func (s *PgIdentityStore) DeleteUser(ctx context.Context, userID uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, deleteUserQuery, userID)
	if err != nil {
		return fmt.Errorf("account: failed to delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

package permission

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	id "scolara/pkg/domain"
)

const uniqueViolation = "23505"

// PostgresOverrideStore persists override grants as one row per
// (user, permission) pair.
type PostgresOverrideStore struct {
	db *sql.DB
}

func NewPostgresOverrides(db *sql.DB) *PostgresOverrideStore {
	return &PostgresOverrideStore{db: db}
}

func (s *PostgresOverrideStore) OverridesFor(ctx context.Context, userID id.UserID) (Set, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT permission FROM permission_overrides WHERE user_id = $1`,
		uuid.UUID(userID),
	)
	if err != nil {
		return nil, fmt.Errorf("load overrides: %w", err)
	}
	defer rows.Close()

	set := Set{}
	for rows.Next() {
		var perm string
		if err := rows.Scan(&perm); err != nil {
			return nil, fmt.Errorf("scan override: %w", err)
		}
		set[Permission(perm)] = struct{}{}
	}
	return set, rows.Err()
}

func (s *PostgresOverrideStore) Grant(ctx context.Context, userID id.UserID, perm Permission) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO permission_overrides (user_id, permission, created_at)
		VALUES ($1, $2, now())`,
		uuid.UUID(userID), string(perm),
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			// Granting an existing override is a no-op.
			return nil
		}
		return fmt.Errorf("grant override: %w", err)
	}
	return nil
}

func (s *PostgresOverrideStore) Revoke(ctx context.Context, userID id.UserID, perm Permission) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM permission_overrides WHERE user_id = $1 AND permission = $2`,
		uuid.UUID(userID), string(perm),
	); err != nil {
		return fmt.Errorf("revoke override: %w", err)
	}
	return nil
}

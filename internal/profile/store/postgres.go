package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"scolara/internal/profile"
	id "scolara/pkg/domain"
	"scolara/pkg/platform/sentinel"
)

// PostgresStore persists profiles. The upsert uses ON CONFLICT on the primary
// key so a trigger-created stub row is updated in place, never a duplicate.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Upsert(ctx context.Context, p profile.Profile) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO profiles (id, email, display_name, role, phone, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, now(), now())
		ON CONFLICT (id) DO UPDATE SET
			email        = EXCLUDED.email,
			display_name = EXCLUDED.display_name,
			role         = EXCLUDED.role,
			phone        = EXCLUDED.phone,
			active       = EXCLUDED.active,
			updated_at   = now()`,
		uuid.UUID(p.ID), p.Email, p.DisplayName, string(p.Role), p.Phone, p.Active,
	)
	if err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, userID id.UserID) (*profile.Profile, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, email, display_name, role, phone, active, deleted_at, created_at, updated_at
		FROM profiles
		WHERE id = $1 AND deleted_at IS NULL`,
		uuid.UUID(userID),
	)
	return scanProfile(row)
}

func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (*profile.Profile, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, email, display_name, role, phone, active, deleted_at, created_at, updated_at
		FROM profiles
		WHERE lower(email) = lower($1) AND deleted_at IS NULL`,
		email,
	)
	return scanProfile(row)
}

func (s *PostgresStore) Delete(ctx context.Context, userID id.UserID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM profiles WHERE id = $1`, uuid.UUID(userID))
	if err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func scanProfile(row *sql.Row) (*profile.Profile, error) {
	var (
		p       profile.Profile
		rawID   uuid.UUID
		rawRole string
	)
	err := row.Scan(&rawID, &p.Email, &p.DisplayName, &rawRole, &p.Phone, &p.Active, &p.DeletedAt, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan profile: %w", err)
	}
	p.ID = id.UserID(rawID)
	p.Role = profile.Role(rawRole)
	return &p, nil
}

package relationship

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	id "scolara/pkg/domain"
	"scolara/pkg/platform/sentinel"
)

// PostgresStore persists guardian-student links.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Insert(ctx context.Context, link Link) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO relationship_links (id, guardian_id, student_id, relation, is_primary, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		uuid.UUID(link.ID), uuid.UUID(link.GuardianID), uuid.UUID(link.StudentID),
		string(link.Relation), link.Primary, link.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert relationship link: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindPrimaryGuardian(ctx context.Context, studentID id.StudentID) (id.UserID, error) {
	var rawID uuid.UUID
	err := s.db.QueryRowContext(ctx, `
		SELECT guardian_id FROM relationship_links
		WHERE student_id = $1
		ORDER BY is_primary DESC, created_at
		LIMIT 1`,
		uuid.UUID(studentID),
	).Scan(&rawID)
	if errors.Is(err, sql.ErrNoRows) {
		return id.UserID{}, sentinel.ErrNotFound
	}
	if err != nil {
		return id.UserID{}, fmt.Errorf("find primary guardian: %w", err)
	}
	return id.UserID(rawID), nil
}

func (s *PostgresStore) CountByGuardian(ctx context.Context, guardianID id.UserID) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT count(*) FROM relationship_links WHERE guardian_id = $1`,
		uuid.UUID(guardianID),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count links by guardian: %w", err)
	}
	return count, nil
}

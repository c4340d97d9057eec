package credstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"

	id "scolara/pkg/domain"
	dErrors "scolara/pkg/domain-errors"
	"scolara/pkg/platform/sentinel"
)

const uniqueViolation = "23505"

// PostgresStore persists identities. The unique index on lower(email) is the
// final authority on duplicates; a concurrent create losing the race surfaces
// as sentinel.ErrConflict exactly like the pre-check case.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) CreateIdentity(ctx context.Context, email, password string) (id.UserID, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return id.UserID{}, dErrors.New(dErrors.CodeValidation, "email is required")
	}
	if password == "" {
		return id.UserID{}, dErrors.New(dErrors.CodeValidation, "password is required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return id.UserID{}, dErrors.Wrap(err, dErrors.CodeInternal, "could not hash credential")
	}

	identityID := id.NewUserID()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO identities (id, email, credential_hash, confirmed, created_at)
		VALUES ($1, $2, $3, true, now())`,
		uuid.UUID(identityID), email, string(hash),
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return id.UserID{}, sentinel.ErrConflict
		}
		return id.UserID{}, fmt.Errorf("insert identity: %w", err)
	}
	return identityID, nil
}

func (s *PostgresStore) DeleteIdentity(ctx context.Context, identityID id.UserID) error {
	// Idempotent: zero rows affected is still success.
	if _, err := s.db.ExecContext(ctx, `DELETE FROM identities WHERE id = $1`, uuid.UUID(identityID)); err != nil {
		return fmt.Errorf("delete identity: %w", err)
	}
	return nil
}

func (s *PostgresStore) Authenticate(ctx context.Context, email, password string) (id.UserID, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var (
		rawID uuid.UUID
		hash  string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, credential_hash FROM identities WHERE email = $1`, email,
	).Scan(&rawID, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return id.UserID{}, dErrors.New(dErrors.CodeUnauthorized, "invalid email or password")
	}
	if err != nil {
		return id.UserID{}, fmt.Errorf("look up identity: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return id.UserID{}, dErrors.New(dErrors.CodeUnauthorized, "invalid email or password")
	}
	return id.UserID(rawID), nil
}

package store

import (
	"context"

	"scolara/internal/profile"
	id "scolara/pkg/domain"
)

// Store is the profile persistence contract. Upsert is insert-or-update keyed
// by ID: the hosted credential backend may pre-create a stub row via a
// trigger, so a blind insert would conflict where an upsert absorbs it.
type Store interface {
	Upsert(ctx context.Context, p profile.Profile) error
	FindByID(ctx context.Context, userID id.UserID) (*profile.Profile, error)
	FindByEmail(ctx context.Context, email string) (*profile.Profile, error)
	Delete(ctx context.Context, userID id.UserID) error
}

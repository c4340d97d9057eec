// Package credstore implements the credential backend: it issues and deletes
// authentication identities and verifies passwords. It owns the credential
// hash; nothing else in the system ever sees it.
package credstore

import (
	"context"

	id "scolara/pkg/domain"
)

// Store is the credential persistence contract. Email uniqueness is enforced
// here; the provisioning pre-check is only an optimization. DeleteIdentity is
// idempotent so compensating deletes can be retried safely.
type Store interface {
	CreateIdentity(ctx context.Context, email, password string) (id.UserID, error)
	DeleteIdentity(ctx context.Context, identityID id.UserID) error
	Authenticate(ctx context.Context, email, password string) (id.UserID, error)
}

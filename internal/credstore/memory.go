package credstore

import (
	"context"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"

	id "scolara/pkg/domain"
	dErrors "scolara/pkg/domain-errors"
	"scolara/pkg/platform/sentinel"
)

type identity struct {
	id             id.UserID
	email          string
	credentialHash []byte
	confirmed      bool
}

// InMemoryStore keeps identities in memory with bcrypt-hashed credentials.
type InMemoryStore struct {
	mu         sync.RWMutex
	byID       map[id.UserID]identity
	emailIndex map[string]id.UserID
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{
		byID:       make(map[id.UserID]identity),
		emailIndex: make(map[string]id.UserID),
	}
}

func (s *InMemoryStore) CreateIdentity(_ context.Context, email, password string) (id.UserID, error) {
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

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.emailIndex[email]; taken {
		return id.UserID{}, sentinel.ErrConflict
	}
	identityID := id.NewUserID()
	s.byID[identityID] = identity{id: identityID, email: email, credentialHash: hash, confirmed: true}
	s.emailIndex[email] = identityID
	return identityID, nil
}

func (s *InMemoryStore) DeleteIdentity(_ context.Context, identityID id.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ident, ok := s.byID[identityID]
	if !ok {
		// Idempotent: deleting an absent identity succeeds.
		return nil
	}
	delete(s.byID, identityID)
	delete(s.emailIndex, ident.email)
	return nil
}

func (s *InMemoryStore) Authenticate(_ context.Context, email, password string) (id.UserID, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	s.mu.RLock()
	identityID, ok := s.emailIndex[email]
	var hash []byte
	if ok {
		hash = s.byID[identityID].credentialHash
	}
	s.mu.RUnlock()

	if !ok {
		return id.UserID{}, dErrors.New(dErrors.CodeUnauthorized, "invalid email or password")
	}
	if err := bcrypt.CompareHashAndPassword(hash, []byte(password)); err != nil {
		return id.UserID{}, dErrors.New(dErrors.CodeUnauthorized, "invalid email or password")
	}
	return identityID, nil
}

// Exists reports whether an identity is present. Tests use it to verify the
// compensating delete actually removed the credential.
func (s *InMemoryStore) Exists(identityID id.UserID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.byID[identityID]
	return ok
}

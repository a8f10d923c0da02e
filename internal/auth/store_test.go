package auth

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hackerwear/storefront/models"
	"github.com/hackerwear/storefront/repositories"
	"github.com/stretchr/testify/mock"
)

// memStore is an in-memory SessionStore
type memStore struct {
	mu      sync.Mutex
	byToken map[uuid.UUID]*models.Session
	findErr error
}

func newMemStore() *memStore {
	return &memStore{byToken: make(map[uuid.UUID]*models.Session)}
}

func (s *memStore) Create(_ context.Context, session *models.Session) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byToken[session.TokenID]; ok {
		return nil, repositories.ErrDuplicate
	}
	stored := *session
	stored.ID = uuid.New()
	s.byToken[stored.TokenID] = &stored

	out := stored
	return &out, nil
}

func (s *memStore) FindByTokenID(_ context.Context, tokenID uuid.UUID) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.findErr != nil {
		return nil, s.findErr
	}
	session, ok := s.byToken[tokenID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	out := *session
	return &out, nil
}

func (s *memStore) Revoke(_ context.Context, id uuid.UUID) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, session := range s.byToken {
		if session.ID != id {
			continue
		}
		if !session.Revoked {
			now := time.Now().UTC()
			session.Revoked = true
			session.RevokedAt = &now
		}
		out := *session
		return &out, nil
	}
	return nil, repositories.ErrNotFound
}

func (s *memStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byToken)
}

// MockSessionStore is a mock implementation of SessionStore
type MockSessionStore struct {
	mock.Mock
}

func (m *MockSessionStore) Create(ctx context.Context, session *models.Session) (*models.Session, error) {
	args := m.Called(ctx, session)
	if s := args.Get(0); s != nil {
		return s.(*models.Session), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSessionStore) FindByTokenID(ctx context.Context, tokenID uuid.UUID) (*models.Session, error) {
	args := m.Called(ctx, tokenID)
	if s := args.Get(0); s != nil {
		return s.(*models.Session), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSessionStore) Revoke(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	args := m.Called(ctx, id)
	if s := args.Get(0); s != nil {
		return s.(*models.Session), args.Error(1)
	}
	return nil, args.Error(1)
}

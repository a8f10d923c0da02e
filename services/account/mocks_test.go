package account

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/hackerwear/storefront/models"
	"github.com/hackerwear/storefront/services/audit"
	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if u := args.Get(0); u != nil {
		return u.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if u := args.Get(0); u != nil {
		return u.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockSessionRepository is a mock implementation of SessionRepository
type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) Create(ctx context.Context, session *models.Session) (*models.Session, error) {
	args := m.Called(ctx, session)
	if s := args.Get(0); s != nil {
		return s.(*models.Session), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSessionRepository) FindByTokenID(ctx context.Context, tokenID uuid.UUID) (*models.Session, error) {
	args := m.Called(ctx, tokenID)
	if s := args.Get(0); s != nil {
		return s.(*models.Session), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSessionRepository) Revoke(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	args := m.Called(ctx, id)
	if s := args.Get(0); s != nil {
		return s.(*models.Session), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSessionRepository) ListActiveByUser(ctx context.Context, userID uuid.UUID, now time.Time) ([]*models.Session, error) {
	args := m.Called(ctx, userID, now)
	if s := args.Get(0); s != nil {
		return s.([]*models.Session), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSessionRepository) RevokeAllForUser(ctx context.Context, userID uuid.UUID) ([]*models.Session, error) {
	args := m.Called(ctx, userID)
	if s := args.Get(0); s != nil {
		return s.([]*models.Session), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockIssuer is a mock implementation of TokenIssuer
type MockIssuer struct {
	mock.Mock
}

func (m *MockIssuer) Issue(ctx context.Context, user *models.User, now time.Time) (string, *models.Session, error) {
	args := m.Called(ctx, user, now)
	if s := args.Get(1); s != nil {
		return args.String(0), s.(*models.Session), args.Error(2)
	}
	return args.String(0), nil, args.Error(2)
}

// MockRecorder is a mock implementation of Recorder
type MockRecorder struct {
	mock.Mock
}

func (m *MockRecorder) LogSignup(user *models.User, meta audit.RequestMeta) error {
	return m.Called(user, meta).Error(0)
}

func (m *MockRecorder) LogLoginSucceeded(user *models.User, session *models.Session, meta audit.RequestMeta) error {
	return m.Called(user, session, meta).Error(0)
}

func (m *MockRecorder) LogLoginFailed(email, reason string, meta audit.RequestMeta) error {
	return m.Called(email, reason, meta).Error(0)
}

func (m *MockRecorder) LogSessionIssued(user *models.User, session *models.Session, meta audit.RequestMeta) error {
	return m.Called(user, session, meta).Error(0)
}

func (m *MockRecorder) LogSessionRevoked(userID uuid.UUID, email string, sessionID *uuid.UUID, count int64, meta audit.RequestMeta) error {
	return m.Called(userID, email, sessionID, count, meta).Error(0)
}

func (m *MockRecorder) LogOperatorRevoked(ctx context.Context, session *models.Session, meta audit.RequestMeta) error {
	return m.Called(ctx, session, meta).Error(0)
}

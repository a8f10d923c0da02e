// Package account implements signup, login and logout on top of the token
// issuer and the session store.
package account

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hackerwear/storefront/internal/auth"
	"github.com/hackerwear/storefront/internal/password"
	"github.com/hackerwear/storefront/models"
	"github.com/hackerwear/storefront/repositories"
	"github.com/hackerwear/storefront/services"
	"github.com/hackerwear/storefront/services/audit"
	"go.uber.org/zap"
)

// TokenIssuer mints a session token for a persisted user
type TokenIssuer interface {
	Issue(ctx context.Context, user *models.User, now time.Time) (string, *models.Session, error)
}

// Recorder receives auth events. *audit.AuditService implements it.
type Recorder interface {
	LogSignup(user *models.User, meta audit.RequestMeta) error
	LogLoginSucceeded(user *models.User, session *models.Session, meta audit.RequestMeta) error
	LogLoginFailed(email, reason string, meta audit.RequestMeta) error
	LogSessionIssued(user *models.User, session *models.Session, meta audit.RequestMeta) error
	LogSessionRevoked(userID uuid.UUID, email string, sessionID *uuid.UUID, count int64, meta audit.RequestMeta) error
	LogOperatorRevoked(ctx context.Context, session *models.Session, meta audit.RequestMeta) error
}

// SignupInput is the payload of a signup request
type SignupInput struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

// LoginInput is the payload of a login request
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResult is a freshly issued token and the session behind it
type LoginResult struct {
	Token   string
	User    *models.User
	Session *models.Session
}

// Service handles account lifecycle operations
type Service struct {
	users     repositories.UserRepository
	sessions  repositories.SessionRepository
	hasher    *password.Hasher
	issuer    TokenIssuer
	recorder  Recorder
	logger    *zap.Logger
	now       func() time.Time
	dummyHash string
}

// NewService creates a new account service
func NewService(
	users repositories.UserRepository,
	sessions repositories.SessionRepository,
	hasher *password.Hasher,
	issuer TokenIssuer,
	recorder Recorder,
	logger *zap.Logger,
) (*Service, error) {
	// checked against when the email is unknown
	dummy, err := hasher.Hash(uuid.NewString())
	if err != nil {
		return nil, err
	}

	return &Service{
		users:     users,
		sessions:  sessions,
		hasher:    hasher,
		issuer:    issuer,
		recorder:  recorder,
		logger:    logger,
		now:       time.Now,
		dummyHash: dummy,
	}, nil
}

// Signup hashes the password and creates a non-admin user
func (s *Service) Signup(ctx context.Context, in SignupInput, meta audit.RequestMeta) (*models.User, error) {
	email := normalizeEmail(in.Email)

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		if errors.Is(err, password.ErrEmptyPassword) {
			return nil, services.ErrWeakPassword
		}
		return nil, services.WrapInternal("failed to hash password", err)
	}

	user := models.NewUser(strings.TrimSpace(in.Name), email, hash)
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, services.ErrDuplicateEmail
		}
		return nil, services.WrapInternal("failed to create user", err)
	}

	s.logger.Info("user signed up", zap.String("user_id", user.ID.String()))
	s.record(s.recorder.LogSignup(user, meta))

	return user, nil
}

// Login checks credentials and issues a session token. An unknown email and
// a wrong password produce the same error.
func (s *Service) Login(ctx context.Context, in LoginInput, meta audit.RequestMeta) (*LoginResult, error) {
	email := normalizeEmail(in.Email)

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, repositories.ErrNotFound) {
			return nil, services.WrapUnavailable("failed to load user", err)
		}
		_, _ = s.hasher.Verify(in.Password, s.dummyHash)
		s.record(s.recorder.LogLoginFailed(email, "unknown email", meta))
		return nil, services.ErrInvalidCredentials
	}

	ok, err := s.hasher.Verify(in.Password, user.PasswordHash)
	if err != nil {
		return nil, services.WrapInternal("stored password hash is unreadable", err)
	}
	if !ok {
		s.record(s.recorder.LogLoginFailed(email, "wrong password", meta))
		return nil, services.ErrInvalidCredentials
	}

	token, session, err := s.issuer.Issue(ctx, user, s.now())
	if err != nil {
		s.logger.Error("token issuance failed", zap.String("user_id", user.ID.String()), zap.Error(err))
		return nil, services.ErrIssuanceFailed
	}

	s.logger.Info("user logged in",
		zap.String("user_id", user.ID.String()),
		zap.String("session_id", session.ID.String()))
	s.record(s.recorder.LogLoginSucceeded(user, session, meta))
	s.record(s.recorder.LogSessionIssued(user, session, meta))

	return &LoginResult{Token: token, User: user, Session: session}, nil
}

// Logout revokes the session the claims were issued for
func (s *Service) Logout(ctx context.Context, claims *auth.Claims, meta audit.RequestMeta) (*models.Session, error) {
	session, err := s.sessionFor(ctx, claims)
	if err != nil {
		return nil, err
	}

	revoked, err := s.sessions.Revoke(ctx, session.ID)
	if err != nil {
		return nil, services.WrapUnavailable("failed to revoke session", err)
	}

	s.record(s.recorder.LogSessionRevoked(revoked.UserID, claims.Email(), &revoked.ID, 1, meta))
	return revoked, nil
}

// LogoutAll revokes every session of the user the claims belong to
func (s *Service) LogoutAll(ctx context.Context, claims *auth.Claims, meta audit.RequestMeta) (int64, error) {
	session, err := s.sessionFor(ctx, claims)
	if err != nil {
		return 0, err
	}

	revoked, err := s.sessions.RevokeAllForUser(ctx, session.UserID)
	if err != nil {
		return 0, services.WrapUnavailable("failed to revoke sessions", err)
	}
	count := int64(len(revoked))

	s.logger.Info("user sessions revoked",
		zap.String("user_id", session.UserID.String()),
		zap.Int64("count", count))
	s.record(s.recorder.LogSessionRevoked(session.UserID, claims.Email(), nil, count, meta))

	return count, nil
}

// RevokeToken revokes the session behind a token id. Used by operators; the
// audit event is queued before it returns.
func (s *Service) RevokeToken(ctx context.Context, tokenID uuid.UUID, meta audit.RequestMeta) (*models.Session, error) {
	session, err := s.sessions.FindByTokenID(ctx, tokenID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, services.ErrSessionNotFound
		}
		return nil, services.WrapUnavailable("failed to load session", err)
	}

	revoked, err := s.sessions.Revoke(ctx, session.ID)
	if err != nil {
		return nil, services.WrapUnavailable("failed to revoke session", err)
	}

	s.record(s.recorder.LogOperatorRevoked(ctx, revoked, meta))
	return revoked, nil
}

// ActiveSessions lists the unexpired, unrevoked sessions of a user
func (s *Service) ActiveSessions(ctx context.Context, userID uuid.UUID) ([]*models.Session, error) {
	sessions, err := s.sessions.ListActiveByUser(ctx, userID, s.now())
	if err != nil {
		return nil, services.WrapUnavailable("failed to list sessions", err)
	}
	return sessions, nil
}

func (s *Service) sessionFor(ctx context.Context, claims *auth.Claims) (*models.Session, error) {
	if claims == nil {
		return nil, services.ErrUnauthorized
	}
	tokenID, err := claims.TokenID()
	if err != nil {
		return nil, services.ErrInvalidToken
	}

	session, err := s.sessions.FindByTokenID(ctx, tokenID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, services.ErrSessionNotFound
		}
		return nil, services.WrapUnavailable("failed to load session", err)
	}
	return session, nil
}

func (s *Service) record(err error) {
	if err != nil {
		s.logger.Warn("auth event not recorded", zap.Error(err))
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/hackerwear/storefront/models"
	"go.uber.org/zap"
)

// SessionStore persists the server-side record behind each token.
type SessionStore interface {
	// Create assigns an ID and inserts the session. A duplicate token id is an error.
	Create(ctx context.Context, session *models.Session) (*models.Session, error)

	// FindByTokenID returns the session for a jti, or repositories.ErrNotFound.
	FindByTokenID(ctx context.Context, tokenID uuid.UUID) (*models.Session, error)

	// Revoke marks the session revoked. Repeating it is a no-op.
	Revoke(ctx context.Context, id uuid.UUID) (*models.Session, error)
}

// Issuer mints signed session tokens. Each token is backed by a session
// record that is persisted before the token is signed.
type Issuer struct {
	keys     *KeyPair
	sessions SessionStore
	cfg      TokenConfig
	logger   *zap.Logger
}

// NewIssuer creates a new Issuer
func NewIssuer(keys *KeyPair, sessions SessionStore, cfg TokenConfig, logger *zap.Logger) *Issuer {
	return &Issuer{
		keys:     keys,
		sessions: sessions,
		cfg:      cfg,
		logger:   logger,
	}
}

// Issue creates a session for user valid from now until now plus the
// configured validity and returns the signed token. When the session cannot
// be persisted no token is returned.
func (i *Issuer) Issue(ctx context.Context, user *models.User, now time.Time) (string, *models.Session, error) {
	if user == nil || user.ID == uuid.Nil {
		return "", nil, &IssuanceError{Err: ErrMissingUserID}
	}

	issuedAt := now.UTC().Truncate(time.Second)
	expiresAt := issuedAt.Add(i.cfg.Validity)
	tokenID := uuid.New()

	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.cfg.Issuer,
			Subject:   user.Email,
			Audience:  jwt.ClaimStrings{i.cfg.Audience},
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        tokenID.String(),
		},
	}

	session, err := i.sessions.Create(ctx, models.NewSession(tokenID, user.ID, issuedAt, expiresAt))
	if err != nil {
		i.logger.Error("failed to persist session",
			zap.String("user_id", user.ID.String()),
			zap.Error(err))
		return "", nil, &IssuanceError{Err: err}
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims).SignedString(i.keys.private)
	if err != nil {
		return "", nil, &IssuanceError{Err: fmt.Errorf("sign token: %w", err)}
	}

	i.logger.Debug("session token issued",
		zap.String("user_id", user.ID.String()),
		zap.String("session_id", session.ID.String()),
		zap.Time("expires_at", expiresAt))

	return token, session, nil
}

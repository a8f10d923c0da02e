package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/hackerwear/storefront/models"
	"github.com/hackerwear/storefront/repositories"
	"go.uber.org/zap"
)

const sessionColumns = `id, token_id, user_id, issued_at, expires_at, revoked, revoked_at`

// SessionRepository implements the repositories.SessionRepository interface.
// The token_id unique constraint is enforced by the database.
type SessionRepository struct {
	db     *DB
	logger *zap.Logger
	now    func() time.Time
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db *DB, logger *zap.Logger) repositories.SessionRepository {
	return &SessionRepository{
		db:     db,
		logger: logger,
		now:    time.Now,
	}
}

// Create assigns an ID and inserts the session
func (r *SessionRepository) Create(ctx context.Context, session *models.Session) (*models.Session, error) {
	query := `
		INSERT INTO session_tokens (id, token_id, user_id, issued_at, expires_at, revoked)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	stored := *session
	stored.ID = uuid.New()
	stored.Revoked = false
	stored.RevokedAt = nil

	executor := GetExecutor(ctx, r.db)
	_, err := executor.ExecContext(ctx, query,
		stored.ID,
		stored.TokenID,
		stored.UserID,
		stored.IssuedAt,
		stored.ExpiresAt,
		stored.Revoked,
	)
	if err != nil {
		return nil, translateError("create session", err)
	}

	r.logger.Debug("session created",
		zap.String("id", stored.ID.String()),
		zap.String("user_id", stored.UserID.String()))
	return &stored, nil
}

// FindByTokenID retrieves a session by its token id
func (r *SessionRepository) FindByTokenID(ctx context.Context, tokenID uuid.UUID) (*models.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM session_tokens WHERE token_id = $1`

	executor := GetExecutor(ctx, r.db)
	session, err := scanSession(executor.QueryRowContext(ctx, query, tokenID))
	if err != nil {
		return nil, translateError("find session", err)
	}
	return session, nil
}

// Revoke marks a session revoked. revoked_at keeps the first revocation time.
func (r *SessionRepository) Revoke(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	query := `
		UPDATE session_tokens
		SET revoked = TRUE, revoked_at = COALESCE(revoked_at, $2)
		WHERE id = $1
		RETURNING ` + sessionColumns

	executor := GetExecutor(ctx, r.db)
	session, err := scanSession(executor.QueryRowContext(ctx, query, id, r.now().UTC()))
	if err != nil {
		return nil, translateError("revoke session", err)
	}

	r.logger.Debug("session revoked", zap.String("id", id.String()))
	return session, nil
}

// ListActiveByUser retrieves unrevoked sessions of a user expiring after now
func (r *SessionRepository) ListActiveByUser(ctx context.Context, userID uuid.UUID, now time.Time) ([]*models.Session, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM session_tokens
		WHERE user_id = $1 AND revoked = FALSE AND expires_at > $2
		ORDER BY issued_at DESC
	`

	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query, userID, now)
	if err != nil {
		return nil, translateError("list sessions", err)
	}
	defer rows.Close()

	var sessions []*models.Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, translateError("list sessions", err)
		}
		sessions = append(sessions, session)
	}

	if err := rows.Err(); err != nil {
		return nil, translateError("list sessions", err)
	}

	return sessions, nil
}

// RevokeAllForUser revokes every unrevoked session of a user and returns the
// revoked rows
func (r *SessionRepository) RevokeAllForUser(ctx context.Context, userID uuid.UUID) ([]*models.Session, error) {
	query := `
		UPDATE session_tokens
		SET revoked = TRUE, revoked_at = $2
		WHERE user_id = $1 AND revoked = FALSE
		RETURNING ` + sessionColumns

	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query, userID, r.now().UTC())
	if err != nil {
		return nil, translateError("revoke user sessions", err)
	}
	defer rows.Close()

	var revoked []*models.Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, translateError("revoke user sessions", err)
		}
		revoked = append(revoked, session)
	}

	if err := rows.Err(); err != nil {
		return nil, translateError("revoke user sessions", err)
	}

	r.logger.Debug("user sessions revoked",
		zap.String("user_id", userID.String()),
		zap.Int("count", len(revoked)))
	return revoked, nil
}

func scanSession(row rowScanner) (*models.Session, error) {
	session := &models.Session{}
	var revokedAt sql.NullTime
	err := row.Scan(
		&session.ID,
		&session.TokenID,
		&session.UserID,
		&session.IssuedAt,
		&session.ExpiresAt,
		&session.Revoked,
		&revokedAt,
	)
	if err != nil {
		return nil, err
	}
	if revokedAt.Valid {
		t := revokedAt.Time
		session.RevokedAt = &t
	}
	return session, nil
}

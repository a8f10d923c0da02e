package postgres

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/hackerwear/storefront/models"
	"github.com/hackerwear/storefront/repositories"
	"go.uber.org/zap"
)

// AuthEventRepository implements the repositories.AuthEventRepository interface
type AuthEventRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewAuthEventRepository creates a new auth event repository
func NewAuthEventRepository(db *DB, logger *zap.Logger) repositories.AuthEventRepository {
	return &AuthEventRepository{
		db:     db,
		logger: logger,
	}
}

// Insert inserts a new auth event
func (r *AuthEventRepository) Insert(ctx context.Context, event *models.AuthEvent) error {
	query := `
		INSERT INTO auth_events (
			id, action, user_id, session_id, email, details,
			ip_address, user_agent, request_id, timestamp
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	details := event.Details
	if len(details) == 0 {
		details = []byte(`{}`)
	}

	executor := GetExecutor(ctx, r.db)
	_, err := executor.ExecContext(ctx, query,
		event.ID,
		event.Action,
		event.UserID,
		event.SessionID,
		event.Email,
		details,
		event.IPAddress,
		event.UserAgent,
		event.RequestID,
		event.Timestamp,
	)
	if err != nil {
		return translateError("insert auth event", err)
	}

	r.logger.Debug("auth event inserted", zap.String("id", event.ID.String()), zap.String("action", string(event.Action)))
	return nil
}

// GetByUserID retrieves events for a user, newest first
func (r *AuthEventRepository) GetByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.AuthEvent, error) {
	query := `
		SELECT id, action, user_id, session_id, email, details,
		       ip_address, user_agent, request_id, timestamp
		FROM auth_events
		WHERE user_id = $1
		ORDER BY timestamp DESC
		LIMIT $2 OFFSET $3
	`

	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, translateError("list auth events", err)
	}
	defer rows.Close()

	var events []*models.AuthEvent
	for rows.Next() {
		event := &models.AuthEvent{}
		var (
			uid, sid                        uuid.NullUUID
			details                         []byte
			ipAddress, userAgent, requestID sql.NullString
		)
		if err := rows.Scan(
			&event.ID,
			&event.Action,
			&uid,
			&sid,
			&event.Email,
			&details,
			&ipAddress,
			&userAgent,
			&requestID,
			&event.Timestamp,
		); err != nil {
			return nil, translateError("list auth events", err)
		}
		if uid.Valid {
			event.UserID = &uid.UUID
		}
		if sid.Valid {
			event.SessionID = &sid.UUID
		}
		event.Details = details
		event.IPAddress = ipAddress.String
		event.UserAgent = userAgent.String
		event.RequestID = requestID.String
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, translateError("list auth events", err)
	}

	return events, nil
}

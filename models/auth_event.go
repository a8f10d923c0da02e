package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// AuthAction represents the type of authentication event being recorded
type AuthAction string

const (
	AuthActionSignup         AuthAction = "signup"
	AuthActionLoginSucceeded AuthAction = "login_succeeded"
	AuthActionLoginFailed    AuthAction = "login_failed"
	AuthActionSessionIssued  AuthAction = "session_issued"
	AuthActionSessionRevoked AuthAction = "session_revoked"
)

// AuthEvent is an audit trail entry for account and session activity
type AuthEvent struct {
	ID        uuid.UUID       `json:"id" db:"id"`
	Action    AuthAction      `json:"action" db:"action"`
	UserID    *uuid.UUID      `json:"user_id,omitempty" db:"user_id"`
	SessionID *uuid.UUID      `json:"session_id,omitempty" db:"session_id"`
	Email     string          `json:"email" db:"email"`
	Details   json.RawMessage `json:"details" db:"details"` // JSONB for flexible metadata
	IPAddress string          `json:"ip_address" db:"ip_address"`
	UserAgent string          `json:"user_agent" db:"user_agent"`
	RequestID string          `json:"request_id" db:"request_id"`
	Timestamp time.Time       `json:"timestamp" db:"timestamp"`
}

// TableName returns the table name for the AuthEvent model
func (AuthEvent) TableName() string {
	return "auth_events"
}

// NewAuthEvent creates a new AuthEvent instance
func NewAuthEvent(action AuthAction, email string) *AuthEvent {
	return &AuthEvent{
		ID:        uuid.New(),
		Action:    action,
		Email:     email,
		Details:   json.RawMessage(`{}`),
		Timestamp: time.Now().UTC(),
	}
}

// WithUser sets the user ID
func (e *AuthEvent) WithUser(userID uuid.UUID) *AuthEvent {
	e.UserID = &userID
	return e
}

// WithSession sets the session ID
func (e *AuthEvent) WithSession(sessionID uuid.UUID) *AuthEvent {
	e.SessionID = &sessionID
	return e
}

// WithDetails sets the details
func (e *AuthEvent) WithDetails(details interface{}) *AuthEvent {
	if data, err := json.Marshal(details); err == nil {
		e.Details = data
	}
	return e
}

// WithRequest sets request metadata
func (e *AuthEvent) WithRequest(requestID, ipAddress, userAgent string) *AuthEvent {
	e.RequestID = requestID
	e.IPAddress = ipAddress
	e.UserAgent = userAgent
	return e
}

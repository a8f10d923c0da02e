package models

import (
	"time"

	"github.com/google/uuid"
)

// Session is the server-side record behind an issued token. Only Revoked and
// RevokedAt change after creation, and Revoked only moves from false to true.
type Session struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	TokenID   uuid.UUID  `json:"token_id" db:"token_id"` // jti claim of the issued token
	UserID    uuid.UUID  `json:"user_id" db:"user_id"`
	IssuedAt  time.Time  `json:"issued_at" db:"issued_at"`
	ExpiresAt time.Time  `json:"expires_at" db:"expires_at"`
	Revoked   bool       `json:"revoked" db:"revoked"`
	RevokedAt *time.Time `json:"revoked_at,omitempty" db:"revoked_at"`
}

// TableName returns the table name for the Session model
func (Session) TableName() string {
	return "session_tokens"
}

// NewSession creates an unpersisted, non-revoked session. ID stays zero until
// the store assigns it.
func NewSession(tokenID, userID uuid.UUID, issuedAt, expiresAt time.Time) *Session {
	return &Session{
		TokenID:   tokenID,
		UserID:    userID,
		IssuedAt:  issuedAt,
		ExpiresAt: expiresAt,
	}
}

// IsActive reports whether the session is unrevoked and unexpired at t
func (s *Session) IsActive(t time.Time) bool {
	return !s.Revoked && t.Before(s.ExpiresAt)
}

package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// User tests
func TestNewUser(t *testing.T) {
	user := NewUser("Ada", "ada@example.com", "$argon2id$hash")

	assert.NotEqual(t, uuid.Nil, user.ID)
	assert.Equal(t, "Ada", user.Name)
	assert.Equal(t, "ada@example.com", user.Email)
	assert.False(t, user.IsAdmin)
	assert.False(t, user.CreatedAt.IsZero())
	assert.Equal(t, user.CreatedAt, user.UpdatedAt)
}

func TestUser_JSONMarshaling(t *testing.T) {
	user := NewUser("Ada", "ada@example.com", "super-secret-hash")

	data, err := json.Marshal(user)
	require.NoError(t, err)

	assert.NotContains(t, string(data), "super-secret-hash")
	assert.NotContains(t, string(data), "password_hash")
}

func TestUser_TableName(t *testing.T) {
	assert.Equal(t, "users", User{}.TableName())
}

// Session tests
func TestNewSession(t *testing.T) {
	tokenID := uuid.New()
	userID := uuid.New()
	issued := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	expires := issued.Add(240 * time.Hour)

	s := NewSession(tokenID, userID, issued, expires)

	assert.Equal(t, uuid.Nil, s.ID)
	assert.Equal(t, tokenID, s.TokenID)
	assert.Equal(t, userID, s.UserID)
	assert.False(t, s.Revoked)
	assert.Nil(t, s.RevokedAt)
}

func TestSession_IsActive(t *testing.T) {
	issued := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := NewSession(uuid.New(), uuid.New(), issued, issued.Add(time.Hour))

	assert.True(t, s.IsActive(issued.Add(30*time.Minute)))
	assert.False(t, s.IsActive(issued.Add(time.Hour)))

	s.Revoked = true
	assert.False(t, s.IsActive(issued.Add(time.Minute)))
}

func TestSession_TableName(t *testing.T) {
	assert.Equal(t, "session_tokens", Session{}.TableName())
}

// Product tests
func TestProduct_InStock(t *testing.T) {
	assert.True(t, (&Product{StockQty: 3}).InStock())
	assert.False(t, (&Product{StockQty: 0}).InStock())
}

func TestGroupedProduct_JSONFieldNames(t *testing.T) {
	data, err := json.Marshal(GroupedProduct{Title: "Hoodie", AvailableQty: 4})
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Contains(t, decoded, "availableQty")
	assert.Contains(t, decoded, "desc")
	assert.EqualValues(t, 4, decoded["availableQty"])
}

// AuthEvent tests
func TestNewAuthEvent(t *testing.T) {
	event := NewAuthEvent(AuthActionLoginFailed, "ada@example.com")

	assert.NotEqual(t, uuid.Nil, event.ID)
	assert.Equal(t, AuthActionLoginFailed, event.Action)
	assert.Equal(t, "ada@example.com", event.Email)
	assert.JSONEq(t, `{}`, string(event.Details))
	assert.False(t, event.Timestamp.IsZero())
}

func TestAuthEvent_BuilderMethods(t *testing.T) {
	userID := uuid.New()
	sessionID := uuid.New()

	event := NewAuthEvent(AuthActionSessionIssued, "ada@example.com").
		WithUser(userID).
		WithSession(sessionID).
		WithRequest("req-123", "192.168.1.1", "Mozilla/5.0").
		WithDetails(map[string]interface{}{"key": "value"})

	assert.Equal(t, userID, *event.UserID)
	assert.Equal(t, sessionID, *event.SessionID)
	assert.Equal(t, "req-123", event.RequestID)
	assert.Equal(t, "192.168.1.1", event.IPAddress)
	assert.Equal(t, "Mozilla/5.0", event.UserAgent)
	assert.JSONEq(t, `{"key":"value"}`, string(event.Details))
}

func TestAuthEvent_TableName(t *testing.T) {
	assert.Equal(t, "auth_events", AuthEvent{}.TableName())
}

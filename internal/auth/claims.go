package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	// DefaultIssuer is the iss claim stamped on every token.
	DefaultIssuer = "hackerwear-api-server"

	// DefaultAudience is the aud claim every token must carry.
	DefaultAudience = "hackerwear-web"

	// DefaultTokenValidity is how long an issued token stays valid.
	DefaultTokenValidity = 10 * 24 * time.Hour
)

// TokenConfig holds the claim values and lifetime shared by Issuer and Validator.
type TokenConfig struct {
	Issuer   string
	Audience string
	Validity time.Duration
}

// DefaultTokenConfig returns the storefront's standard token settings.
func DefaultTokenConfig() TokenConfig {
	return TokenConfig{
		Issuer:   DefaultIssuer,
		Audience: DefaultAudience,
		Validity: DefaultTokenValidity,
	}
}

// Claims is the payload of a session token. Subject carries the user's email
// and ID (jti) carries the session's token id.
type Claims struct {
	jwt.RegisteredClaims
}

// TokenID parses the jti claim.
func (c *Claims) TokenID() (uuid.UUID, error) {
	return uuid.Parse(c.ID)
}

// Email returns the subject of the token.
func (c *Claims) Email() string {
	return c.Subject
}

// ExpiresAtTime returns exp as a time, or the zero time when absent.
func (c *Claims) ExpiresAtTime() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}

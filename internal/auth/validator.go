package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/hackerwear/storefront/models"
	"github.com/hackerwear/storefront/repositories"
)

// Status is the outcome of validating a token.
type Status int

const (
	// StatusInvalid covers bad signatures, malformed tokens and claim mismatches.
	StatusInvalid Status = iota
	// StatusExpired means the token was genuine but its exp has passed.
	StatusExpired
	// StatusValid means the token may be trusted.
	StatusValid
)

func (s Status) String() string {
	switch s {
	case StatusValid:
		return "valid"
	case StatusExpired:
		return "expired"
	case StatusInvalid:
		return "invalid"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Result carries the status and, when valid, the verified claims.
type Result struct {
	Status  Status
	Claims  *Claims
	Session *models.Session // set only by ValidateSession
}

// Valid reports whether the result carries trusted claims.
func (r Result) Valid() bool {
	return r.Status == StatusValid
}

// Validator verifies session tokens. It is stateless apart from its
// immutable key and config and is safe for concurrent use.
type Validator struct {
	keys     *KeyPair
	sessions SessionStore
	cfg      TokenConfig
	now      func() time.Time
}

// ValidatorOption customises a Validator.
type ValidatorOption func(*Validator)

// WithClock replaces time.Now as the validator's clock.
func WithClock(now func() time.Time) ValidatorOption {
	return func(v *Validator) {
		v.now = now
	}
}

// NewValidator creates a Validator. sessions may be nil when only offline
// validation is needed.
func NewValidator(keys *KeyPair, sessions SessionStore, cfg TokenConfig, opts ...ValidatorOption) *Validator {
	v := &Validator{
		keys:     keys,
		sessions: sessions,
		cfg:      cfg,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Now returns the validator's current time.
func (v *Validator) Now() time.Time {
	return v.now()
}

// Validate checks token against the validator's clock.
func (v *Validator) Validate(token string) Result {
	return v.ValidateAt(token, v.now())
}

// ValidateAt checks signature, audience, issuer and expiry of token as of at.
// It performs no I/O.
func (v *Validator) ValidateAt(token string, at time.Time) Result {
	claims := &Claims{}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodEdDSA.Alg()}),
		jwt.WithAudience(v.cfg.Audience),
		jwt.WithIssuer(v.cfg.Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return at }),
	)

	_, err := parser.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return v.keys.public, nil
	})
	if err != nil {
		return Result{Status: classify(err)}
	}

	if claims.Subject == "" {
		return Result{Status: StatusInvalid}
	}
	if _, err := claims.TokenID(); err != nil {
		return Result{Status: StatusInvalid}
	}

	return Result{Status: StatusValid, Claims: claims}
}

// classify maps a parser error onto a status. Audience and issuer mismatches
// win over expiry so that a foreign token is never reported as merely expired.
func classify(err error) Status {
	switch {
	case errors.Is(err, jwt.ErrTokenInvalidAudience),
		errors.Is(err, jwt.ErrTokenInvalidIssuer),
		errors.Is(err, jwt.ErrTokenSignatureInvalid),
		errors.Is(err, jwt.ErrTokenMalformed),
		errors.Is(err, jwt.ErrTokenUnverifiable):
		return StatusInvalid
	case errors.Is(err, jwt.ErrTokenExpired):
		return StatusExpired
	default:
		return StatusInvalid
	}
}

// ValidateSession runs ValidateAt and, for a valid token, confirms that its
// session exists and is not revoked. A missing or revoked session yields
// StatusInvalid together with ErrSessionUnknown or ErrSessionRevoked. Store
// failures are returned as errors with StatusInvalid so callers can tell
// them apart from rejections.
func (v *Validator) ValidateSession(ctx context.Context, token string, at time.Time) (Result, error) {
	result := v.ValidateAt(token, at)
	if !result.Valid() || v.sessions == nil {
		return result, nil
	}

	tokenID, _ := result.Claims.TokenID()
	session, err := v.sessions.FindByTokenID(ctx, tokenID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return Result{Status: StatusInvalid}, ErrSessionUnknown
		}
		return Result{Status: StatusInvalid}, fmt.Errorf("look up session: %w", err)
	}

	if session.Revoked {
		return Result{Status: StatusInvalid}, ErrSessionRevoked
	}

	result.Session = session
	return result, nil
}

package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

const (
	// AuthorizationHeader is the header the guard reads credentials from.
	AuthorizationHeader = "Authorization"

	// bearerPrefix is matched case-sensitively, including the trailing space.
	bearerPrefix = "Bearer "
)

// Rejection explains why a request was not authenticated.
type Rejection int

const (
	// RejectNone means the request carried valid credentials.
	RejectNone Rejection = iota
	// RejectMissingCredential means there was no Authorization header.
	RejectMissingCredential
	// RejectInvalidCredential means the header was not a Bearer credential.
	RejectInvalidCredential
	// RejectExpiredToken means the token was genuine but expired.
	RejectExpiredToken
	// RejectInvalidToken means the token failed verification.
	RejectInvalidToken
	// RejectRevokedSession means the token's session was revoked or unknown.
	RejectRevokedSession
	// RejectUnavailable means session state could not be read.
	RejectUnavailable
)

// Code returns a stable machine-readable identifier for the rejection.
func (r Rejection) Code() string {
	switch r {
	case RejectNone:
		return ""
	case RejectMissingCredential:
		return "missing_credential"
	case RejectInvalidCredential:
		return "invalid_credential"
	case RejectExpiredToken:
		return "token_expired"
	case RejectInvalidToken:
		return "invalid_token"
	case RejectRevokedSession:
		return "session_revoked"
	case RejectUnavailable:
		return "auth_unavailable"
	default:
		return "unknown"
	}
}

func (r Rejection) String() string {
	if r == RejectNone {
		return "none"
	}
	return r.Code()
}

// GuardResult is either verified claims or a rejection.
type GuardResult struct {
	Claims    *Claims
	Result    Result
	Rejection Rejection
}

// OK reports whether the request was authenticated.
func (g GuardResult) OK() bool {
	return g.Rejection == RejectNone
}

// Guard authenticates requests from their headers. It does not depend on any
// router and holds no per-request state.
type Guard struct {
	validator     *Validator
	checkSessions bool
	logger        *zap.Logger
}

// NewGuard creates a Guard. When checkSessions is true every valid token is
// also checked against the session store for revocation.
func NewGuard(validator *Validator, checkSessions bool, logger *zap.Logger) *Guard {
	return &Guard{
		validator:     validator,
		checkSessions: checkSessions,
		logger:        logger,
	}
}

// ExtractAndValidate reads the Authorization header and validates the bearer
// token it carries.
func (g *Guard) ExtractAndValidate(ctx context.Context, header http.Header) GuardResult {
	values := header.Values(AuthorizationHeader)
	if len(values) == 0 {
		return GuardResult{Rejection: RejectMissingCredential}
	}

	raw := values[0]
	if !strings.HasPrefix(raw, bearerPrefix) {
		return GuardResult{Rejection: RejectInvalidCredential}
	}
	token := strings.TrimPrefix(raw, bearerPrefix)
	if token == "" {
		return GuardResult{Rejection: RejectInvalidCredential}
	}

	at := g.validator.Now()
	if !g.checkSessions {
		return fromResult(g.validator.ValidateAt(token, at))
	}

	result, err := g.validator.ValidateSession(ctx, token, at)
	switch {
	case err == nil:
		return fromResult(result)
	case errors.Is(err, ErrSessionRevoked), errors.Is(err, ErrSessionUnknown):
		return GuardResult{Result: result, Rejection: RejectRevokedSession}
	default:
		g.logger.Error("session lookup failed", zap.Error(err))
		return GuardResult{Result: result, Rejection: RejectUnavailable}
	}
}

func fromResult(result Result) GuardResult {
	switch result.Status {
	case StatusValid:
		return GuardResult{Claims: result.Claims, Result: result}
	case StatusExpired:
		return GuardResult{Result: result, Rejection: RejectExpiredToken}
	case StatusInvalid:
		return GuardResult{Result: result, Rejection: RejectInvalidToken}
	default:
		return GuardResult{Result: result, Rejection: RejectInvalidToken}
	}
}

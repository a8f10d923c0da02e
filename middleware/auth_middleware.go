package middleware

import (
	"context"
	"net/http"

	"github.com/hackerwear/storefront/internal/auth"
	"github.com/hackerwear/storefront/utils"
	"go.uber.org/zap"
)

// TokenGuard authenticates a request from its headers
type TokenGuard interface {
	ExtractAndValidate(ctx context.Context, header http.Header) auth.GuardResult
}

// AuthMiddleware provides authentication middleware functionality
type AuthMiddleware struct {
	guard  TokenGuard
	logger *zap.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(guard TokenGuard, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		guard:  guard,
		logger: logger,
	}
}

var rejectionMessages = map[auth.Rejection]string{
	auth.RejectMissingCredential: "Missing authorization header",
	auth.RejectInvalidCredential: "Authorization header must use the Bearer scheme",
	auth.RejectExpiredToken:      "Token expired",
	auth.RejectInvalidToken:      "Invalid token",
	auth.RejectRevokedSession:    "Session revoked",
	auth.RejectUnavailable:       "Authentication temporarily unavailable",
}

// RequireAuth is a middleware that requires a valid bearer token
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		requestID := GetRequestIDFromContext(ctx)

		result := m.guard.ExtractAndValidate(ctx, r.Header)
		if !result.OK() {
			m.reject(w, requestID, result.Rejection)
			return
		}

		ctx = WithClaims(ctx, result.Claims)
		if result.Result.Session != nil {
			ctx = WithSession(ctx, result.Result.Session)
		}

		m.logger.Debug("authentication successful",
			zap.String("request_id", requestID),
			zap.String("sub", result.Claims.Subject),
			zap.String("jti", result.Claims.ID))

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *AuthMiddleware) reject(w http.ResponseWriter, requestID string, rejection auth.Rejection) {
	message := rejectionMessages[rejection]
	if message == "" {
		message = "Authentication required"
	}

	if rejection == auth.RejectUnavailable {
		m.logger.Error("authentication unavailable", zap.String("request_id", requestID))
		_ = utils.WriteJSON(w, http.StatusServiceUnavailable, utils.ErrorResponse{
			Error:   rejection.Code(),
			Message: message,
		})
		return
	}

	m.logger.Warn("request rejected",
		zap.String("request_id", requestID),
		zap.String("reason", rejection.Code()))

	w.Header().Set("WWW-Authenticate", challenge(rejection, message))
	_ = utils.WriteJSON(w, http.StatusUnauthorized, utils.ErrorResponse{
		Error:   rejection.Code(),
		Message: message,
	})
}

// challenge builds an RFC 6750 WWW-Authenticate value. A request without
// credentials gets no error attribute.
func challenge(rejection auth.Rejection, description string) string {
	var code string
	switch rejection {
	case auth.RejectMissingCredential:
		return "Bearer"
	case auth.RejectInvalidCredential:
		code = "invalid_request"
	default:
		code = "invalid_token"
	}
	return `Bearer error="` + code + `", error_description="` + description + `"`
}

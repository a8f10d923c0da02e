// Package auth serves the account endpoints: signup, login, token
// verification and logout.
package auth

import (
	"context"
	"net/http"
	"time"

	authn "github.com/hackerwear/storefront/internal/auth"
	"github.com/hackerwear/storefront/middleware"
	"github.com/hackerwear/storefront/models"
	"github.com/hackerwear/storefront/services"
	"github.com/hackerwear/storefront/services/account"
	"github.com/hackerwear/storefront/services/audit"
	"github.com/hackerwear/storefront/utils"
	"go.uber.org/zap"
)

// Client-facing messages. Storefront clients match on these strings.
const (
	MessageSignedUp         = "Success"
	MessageSignupFailed     = "There was problem Creating Account"
	MessageLoggedIn         = "Yeh! Logged in Successfully!"
	MessageInvalidLogin     = "Invalid Credentials"
	MessageLoginUnavailable = "Unable to retrieve data"
	MessageLoggedOut        = "Logged out"
)

// AccountService is the account lifecycle the handler drives
type AccountService interface {
	Signup(ctx context.Context, in account.SignupInput, meta audit.RequestMeta) (*models.User, error)
	Login(ctx context.Context, in account.LoginInput, meta audit.RequestMeta) (*account.LoginResult, error)
	Logout(ctx context.Context, claims *authn.Claims, meta audit.RequestMeta) (*models.Session, error)
	LogoutAll(ctx context.Context, claims *authn.Claims, meta audit.RequestMeta) (int64, error)
}

// SignupResponse is the body of a signup reply
type SignupResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Email   string `json:"email,omitempty"`
	Error   string `json:"error,omitempty"`
}

// LoginResponse is the body of a login reply
type LoginResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Token   string `json:"token,omitempty"`
	Error   string `json:"error,omitempty"`
}

// VerifyResponse describes the caller's verified token
type VerifyResponse struct {
	Success   bool   `json:"success"`
	Email     string `json:"email"`
	TokenID   string `json:"token_id"`
	ExpiresAt string `json:"expires_at"`
}

// LogoutResponse is the body of a logout reply
type LogoutResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Revoked int64  `json:"revoked"`
}

// Handler handles account HTTP requests
type Handler struct {
	accounts AccountService
	logger   *zap.Logger
}

// NewHandler creates a new auth handler
func NewHandler(accounts AccountService, logger *zap.Logger) *Handler {
	return &Handler{
		accounts: accounts,
		logger:   logger,
	}
}

// HandleSignup handles POST /signup
func (h *Handler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var in account.SignupInput
	if !h.decode(w, r, &in) {
		return
	}

	user, err := h.accounts.Signup(r.Context(), in, middleware.RequestMeta(r))
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case services.IsConflictError(err):
			status = http.StatusConflict
		case services.IsValidationError(err):
			status = http.StatusBadRequest
		default:
			h.logger.Error("signup failed", zap.Error(err))
		}
		_ = utils.WriteJSON(w, status, SignupResponse{Error: MessageSignupFailed})
		return
	}

	_ = utils.WriteJSON(w, http.StatusOK, SignupResponse{
		Success: true,
		Message: MessageSignedUp,
		Email:   user.Email,
	})
}

// HandleLogin handles POST /login
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var in account.LoginInput
	if !h.decode(w, r, &in) {
		return
	}

	result, err := h.accounts.Login(r.Context(), in, middleware.RequestMeta(r))
	if err != nil {
		switch {
		case services.IsUnauthorizedError(err):
			_ = utils.WriteJSON(w, http.StatusUnauthorized, LoginResponse{Error: MessageInvalidLogin})
		case services.IsUnavailableError(err):
			h.logger.Error("login unavailable", zap.Error(err))
			_ = utils.WriteJSON(w, http.StatusServiceUnavailable, LoginResponse{Error: MessageLoginUnavailable})
		default:
			h.logger.Error("login failed", zap.Error(err))
			_ = utils.WriteJSON(w, http.StatusInternalServerError, LoginResponse{Error: MessageLoginUnavailable})
		}
		return
	}

	_ = utils.WriteJSON(w, http.StatusOK, LoginResponse{
		Success: true,
		Message: MessageLoggedIn,
		Token:   result.Token,
	})
}

// HandleVerifyUser handles GET /verify-user. It must run behind RequireAuth.
func (h *Handler) HandleVerifyUser(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		_ = utils.WriteUnauthorized(w, "")
		return
	}

	_ = utils.WriteJSON(w, http.StatusOK, VerifyResponse{
		Success:   true,
		Email:     claims.Email(),
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAtTime().UTC().Format(time.RFC3339),
	})
}

// HandleLogout handles POST /logout, revoking the caller's own session
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if _, err := h.accounts.Logout(r.Context(), claims, middleware.RequestMeta(r)); err != nil {
		h.writeError(w, err)
		return
	}

	_ = utils.WriteJSON(w, http.StatusOK, LogoutResponse{Success: true, Message: MessageLoggedOut, Revoked: 1})
}

// HandleLogoutAll handles POST /logout-all, revoking every session of the caller
func (h *Handler) HandleLogoutAll(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	count, err := h.accounts.LogoutAll(r.Context(), claims, middleware.RequestMeta(r))
	if err != nil {
		h.writeError(w, err)
		return
	}

	_ = utils.WriteJSON(w, http.StatusOK, LogoutResponse{Success: true, Message: MessageLoggedOut, Revoked: count})
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := utils.DecodeJSON(w, r, dst); err != nil {
		_ = utils.WriteBadRequest(w, err.Error(), nil)
		return false
	}
	if err := utils.ValidateStruct(dst); err != nil {
		details := make(map[string]interface{})
		for field, msg := range utils.GetValidationFields(err) {
			details[field] = msg
		}
		_ = utils.WriteBadRequest(w, "Validation failed", details)
		return false
	}
	return true
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	message := services.PublicMessage(err)
	switch {
	case services.IsUnauthorizedError(err):
		_ = utils.WriteUnauthorized(w, message)
	case services.IsNotFoundError(err):
		_ = utils.WriteNotFound(w, message)
	case services.IsUnavailableError(err):
		h.logger.Error("session store unavailable", zap.Error(err))
		_ = utils.WriteServiceUnavailable(w, "")
	default:
		h.logger.Error("logout failed", zap.Error(err))
		_ = utils.WriteInternalServerError(w, "An internal error occurred")
	}
}

package handlers

import (
	"net/http"

	"github.com/hackerwear/storefront/auth"
	"github.com/hackerwear/storefront/utils"
)

// AuthDeps provides auth handler for route wiring
type AuthDeps interface {
	AuthHandler() *auth.Handler
}

func withAuthHandler(deps AuthDeps, serve func(h *auth.Handler, w http.ResponseWriter, r *http.Request)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h := deps.AuthHandler(); h != nil {
			serve(h, w, r)
			return
		}
		_ = utils.WriteServiceUnavailable(w, "Authentication not configured")
	}
}

// AuthSignupHandler returns an http.HandlerFunc for the signup endpoint
func AuthSignupHandler(deps AuthDeps) http.HandlerFunc {
	return withAuthHandler(deps, (*auth.Handler).HandleSignup)
}

// AuthLoginHandler returns an http.HandlerFunc for the login endpoint
func AuthLoginHandler(deps AuthDeps) http.HandlerFunc {
	return withAuthHandler(deps, (*auth.Handler).HandleLogin)
}

// AuthVerifyHandler returns an http.HandlerFunc for the token verification endpoint
func AuthVerifyHandler(deps AuthDeps) http.HandlerFunc {
	return withAuthHandler(deps, (*auth.Handler).HandleVerifyUser)
}

// AuthLogoutHandler returns an http.HandlerFunc for the logout endpoint
func AuthLogoutHandler(deps AuthDeps) http.HandlerFunc {
	return withAuthHandler(deps, (*auth.Handler).HandleLogout)
}

// AuthLogoutAllHandler returns an http.HandlerFunc for the logout-everywhere endpoint
func AuthLogoutAllHandler(deps AuthDeps) http.HandlerFunc {
	return withAuthHandler(deps, (*auth.Handler).HandleLogoutAll)
}

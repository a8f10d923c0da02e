// Package auth implements session tokens for the storefront API.
//
// This package implements:
//   - Ed25519 signing key bootstrap (load from PKCS#8 DER or generate)
//   - Token issuance bound to a persisted, revocable session record
//   - Token validation with a tri-state result (valid, expired, invalid)
//   - An Auth Guard that turns an Authorization header into claims
//
// The guard takes plain http.Header values and does not depend on a router,
// so it can sit behind any HTTP middleware.
package auth

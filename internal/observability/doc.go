// Package observability builds the structured logger used across the
// storefront API.
//
// Logging is zap-based: JSON output for deployed environments and a
// human-readable console encoder for local development.
package observability

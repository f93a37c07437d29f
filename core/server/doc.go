// Package server holds the HTTP server configuration.
//
// The server exposes the vault's operations (extraction, export/import,
// listing management) to UI clients. Access is protected by an optional
// API key, checked by the auth middleware.
package server

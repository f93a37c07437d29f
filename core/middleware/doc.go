// Package middleware groups the HTTP middleware used by the server.
//
// Subpackages:
//   - rayid: attaches a unique request id (ray_id) to every request so logs
//     across a request can be correlated.
//   - auth: protects the API with a static API key when one is configured.
package middleware

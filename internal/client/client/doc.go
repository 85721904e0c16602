// Package client contains the client-side transport for the session server.
//
// # Overview
//
// The package provides:
//  1. The Client contract (Register, Login, Refresh, Logout, Me, Close) and
//     its JSON-over-HTTP implementation, HTTPClient.
//  2. A retrying http.RoundTripper that attaches the access token and, on a
//     401, refreshes it through the attached Session and replays the request
//     once. At most one refresh runs at a time per client.
//  3. PersistentJar, a cookie jar that keeps the refresh cookie in SQLite
//     (see InitDatabase) so a restarted CLI can resume its session.
//
// # Error Handling
//
// Non-2xx answers come back as *APIError, which unwraps to one of the
// sentinels (ErrValidation, ErrInvalidCredentials, ErrUnauthorized,
// ErrForbidden, ErrNotFound, ErrConflict, ErrServer). Network failures wrap
// ErrUnavailable. A failed automatic refresh yields ErrSessionExpired.
package client

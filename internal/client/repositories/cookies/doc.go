// Package cookies persists HTTP cookies for the CLI in SQLite so that a
// restart keeps the server session.
package cookies

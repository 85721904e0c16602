// Package cli provides the interactive sessionkeeper command-line client.
//
// It wires configuration, the cookie store, the HTTP client and the session
// coordinator, then runs a REPL. On start it tries to restore a session from
// a refresh cookie saved by a previous run; the prompt shows the signed-in
// user and follows every change, including a forced logout after a failed
// refresh.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli

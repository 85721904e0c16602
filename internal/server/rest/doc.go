// Package rest exposes the authentication API over HTTP using gin.
//
// Routes
//
//	POST /auth/register   create an account, returns an access token and sets the refresh cookie
//	POST /auth/login      same as register for an existing account
//	POST /auth/refresh    new access token from the refresh cookie
//	POST /auth/logout     forget the refresh token and clear the cookie
//	GET  /me              current user, requires "Authorization: Bearer <access token>"
//	GET  /health          liveness
//	GET  /readyz          readiness, pings the store
//	GET  /metrics         prometheus
//
// Every failure is answered with {"error": <message>, "code": <code>}.
package rest

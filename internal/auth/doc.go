// Package auth provides authentication for the host-facing API.
//
// Hosts authenticate with HS256-signed JWTs carrying the host identity in
// the "sub" claim. JWTVerifier both issues and verifies tokens against a
// shared secret; HTTPAuthMiddleware guards API routes and propagates the
// verified subject through the request context via WithSubject and
// SubjectFromContext.
//
// Authentication is optional: when no secret is configured, the server
// mounts its routes without the middleware.
package auth

// Package auth authenticates API clients of the lumend daemon.
//
// Accounts are declared in the security.users configuration section with
// an Argon2id password hash. A successful login yields a short-lived HS256
// JWT access token carrying the account's role, which the API checks
// against a static role-permission table:
//
//	viewer   ──▶ device:read
//	operator ──▶ device:read, device:operate
//	admin    ──▶ everything, including device:configure and system:admin
//
// Use HashPassword (or `lumend hash-password`) to produce the stored hash.
package auth

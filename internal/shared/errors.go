package shared

import "errors"

// Sentinels shared across the platform packages. Handlers translate
// these into problem responses; services return them unwrapped so
// callers can match with errors.Is.
var (
	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials covers unknown users, wrong passwords and
	// inactive accounts alike so login failures stay indistinguishable.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrCSRFTokenMissing occurs when no CSRF token accompanies a
	// mutating session request.
	ErrCSRFTokenMissing = errors.New("csrf token missing")
	// ErrCSRFTokenMismatch occurs when the supplied CSRF token does not
	// match the session token.
	ErrCSRFTokenMismatch = errors.New("csrf token mismatch")
)

package auth

import "errors"

// Session invalidity reasons. The HTTP surface collapses all of them
// into a single "not authenticated" outcome; they stay distinct here so
// the audit trail can tell ordinary expiry from forgery.
var (
	// ErrSessionExpired indicates the session passed its absolute expiry
	ErrSessionExpired = errors.New("session expired")
	// ErrSessionIdle indicates the idle timeout elapsed since the last activity
	ErrSessionIdle = errors.New("session idle timeout")
	// ErrSessionTampered indicates the stored signature does not match the
	// token. This is a security event, not an ordinary timeout.
	ErrSessionTampered = errors.New("session token tampered")
)

package session

import "errors"

// Session and registry errors (spec.md §7).
var (
	// ErrParse wraps malformed-frame and malformed-value failures.
	ErrParse = errors.New("session: parse error")

	// ErrAuth is returned when a device-auth thumbprint does not match.
	ErrAuth = errors.New("session: auth thumbprint mismatch")

	// ErrUnexpectedMessage is returned when a message type is not valid
	// for the session's current state.
	ErrUnexpectedMessage = errors.New("session: unexpected message for current state")

	// ErrSessionIDMismatch is returned when an inbound frame's SessionId
	// does not match the session it was routed to.
	ErrSessionIDMismatch = errors.New("session: session id mismatch")

	// ErrDisposed is returned when an operation is attempted on a
	// disposed session.
	ErrDisposed = errors.New("session: disposed")

	// Registry lookup errors (spec.md §4.4).
	ErrUnknownSession = errors.New("session: unknown local session id")
	ErrWrongRemote    = errors.New("session: remote session id does not match registration")
	ErrWrongDevice    = errors.New("session: device address does not match registration")
)

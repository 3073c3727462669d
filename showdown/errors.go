package showdown

import "errors"

var (
	// ErrUnknownRank is returned when a rank outside the fixed scale is
	// passed to an authority query. This is a caller bug, not a runtime
	// condition, so it is surfaced loudly instead of being absorbed.
	ErrUnknownRank = errors.New("rank is not on the authority scale")

	// ErrNoTransport is returned by outbound operations on a session
	// that was built without a transport.
	ErrNoTransport = errors.New("session has no transport")

	// ErrNoLoginClient is returned when a challstr arrives but the
	// session has no login collaborator to exchange it with.
	ErrNoLoginClient = errors.New("session has no login client")
)

// Per-message parse anomalies. These end up on Event.Err; they never
// abort the session.
var (
	errShortFrame   = errors.New("frame has no message type field")
	errMissingField = errors.New("frame is missing a required field")
	errUnknownRoom  = errors.New("message references an unknown room")
)

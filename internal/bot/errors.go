package bot

import "errors"

var (
	// ErrNoServers means the availability search came back empty.
	ErrNoServers = errors.New("no servers available")
	// ErrSelectionTimeout means the requester never reacted or answered
	// within the interaction window.
	ErrSelectionTimeout = errors.New("selection timed out")
	// ErrDMBlocked means a private prompt could not be delivered.
	ErrDMBlocked = errors.New("direct message blocked")
	// ErrAuthorizationDenied means the RCON secret confirmation failed.
	ErrAuthorizationDenied = errors.New("authorization denied")
	// ErrNoReservation means a command was issued with no matching record.
	ErrNoReservation = errors.New("no active reservation")
)

// ParseError is a malformed time/date/argument. Always user-correctable: the
// hint carries the expected grammar and is shown as-is.
type ParseError struct {
	Hint string
}

func (e *ParseError) Error() string {
	return "parse error: " + e.Hint
}

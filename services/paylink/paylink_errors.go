package paylink

import "fmt"

// ParseError carries the user-displayable reason a link was refused. Parse
// never returns any other error type.
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string {
	return e.Reason
}

func NewParseError(format string, args ...interface{}) *ParseError {
	return &ParseError{Reason: fmt.Sprintf(format, args...)}
}

var (
	ErrEmptyLink          = &ParseError{Reason: "link is empty"}
	ErrMalformedLink      = &ParseError{Reason: "link could not be read"}
	ErrUnrecognizedScheme = &ParseError{Reason: "unrecognized link scheme"}
	ErrUnrecognizedAction = &ParseError{Reason: "unrecognized link action"}
	ErrBadRecipient       = &ParseError{Reason: "bad recipient address"}
	ErrMissingAddress     = &ParseError{Reason: "link is missing a wallet address"}
	ErrBadAmount          = &ParseError{Reason: "amount must be a positive decimal number"}
	ErrUnsupportedToken   = &ParseError{Reason: "unsupported token mint"}
	ErrBadInvite          = &ParseError{Reason: "invite code is not valid"}
)

package service

import "errors"

// Sentinels for the three failure kinds. Every *Error unwraps to one of them.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
)

// Reasons carried by *Error.
const (
	ReasonBook             = "Book"
	ReasonMember           = "Member"
	ReasonTransaction      = "Transaction"
	ReasonDuplicateISBN    = "DuplicateISBN"
	ReasonDuplicateEmail   = "DuplicateEmail"
	ReasonBookUnavailable  = "BookUnavailable"
	ReasonAlreadyReturned  = "AlreadyReturned"
	ReasonTotalBelowIssued = "TotalBelowIssued"
	ReasonBusy             = "Busy"
)

// Error is a business-rule failure reported to the caller.
type Error struct {
	Kind    error
	Reason  string
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

func notFound(reason, msg string) error {
	return &Error{Kind: ErrNotFound, Reason: reason, Message: msg}
}

func conflict(reason, msg string) error {
	return &Error{Kind: ErrConflict, Reason: reason, Message: msg}
}

func invalidState(reason, msg string) error {
	return &Error{Kind: ErrInvalidState, Reason: reason, Message: msg}
}

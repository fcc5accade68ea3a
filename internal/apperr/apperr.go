// Package apperr defines the named error kinds returned by the payment group engine.
//
// Every core operation either succeeds or fails with exactly one *Error carrying a Code.
// Callers compare kinds with errors.Is against a sentinel built by New, or read the
// code directly with CodeOf.
package apperr

import (
	"errors"

	"connectrpc.com/connect"
)

// Code is a machine-readable error kind.
type Code string

const (
	CodeValidation            Code = "validation"
	CodeCapacityExceeded      Code = "capacity_exceeded"
	CodeDuplicatePending      Code = "duplicate_pending"
	CodeInvitationNotPending  Code = "invitation_not_pending"
	CodeGroupTerminated       Code = "group_terminated"
	CodeGroupNotActive        Code = "group_not_active"
	CodeGroupNotMatured       Code = "group_not_matured"
	CodeInvalidDeadline       Code = "invalid_deadline"
	CodeNotConfirmed          Code = "not_confirmed"
	CodeAlreadyReversed       Code = "already_reversed"
	CodeUnknownReference      Code = "unknown_reference"
	CodeAnonymousNotAllowed   Code = "anonymous_not_allowed"
	CodeAlreadyMember         Code = "already_member"
	CodeUnauthorized          Code = "unauthorized"
	CodeNotFound              Code = "not_found"
	CodeInsufficientFunds     Code = "insufficient_funds"
	CodeDependencyUnavailable Code = "dependency_unavailable"
	CodeConflict              Code = "conflict"
	CodeInternal              Code = "internal"
)

// Sentinels for errors.Is comparisons. Matching is by code only.
var (
	ErrValidation            = New(CodeValidation, "validation failed")
	ErrCapacityExceeded      = New(CodeCapacityExceeded, "capacity exceeded")
	ErrDuplicatePending      = New(CodeDuplicatePending, "duplicate pending invitation")
	ErrInvitationNotPending  = New(CodeInvitationNotPending, "invitation not pending")
	ErrGroupTerminated       = New(CodeGroupTerminated, "group terminated")
	ErrGroupNotActive        = New(CodeGroupNotActive, "group not active")
	ErrGroupNotMatured       = New(CodeGroupNotMatured, "group not matured")
	ErrInvalidDeadline       = New(CodeInvalidDeadline, "invalid deadline")
	ErrNotConfirmed          = New(CodeNotConfirmed, "contribution not confirmed")
	ErrAlreadyReversed       = New(CodeAlreadyReversed, "contribution already reversed")
	ErrUnknownReference      = New(CodeUnknownReference, "unknown external reference")
	ErrAnonymousNotAllowed   = New(CodeAnonymousNotAllowed, "anonymous membership not allowed")
	ErrAlreadyMember         = New(CodeAlreadyMember, "already a member")
	ErrUnauthorized          = New(CodeUnauthorized, "unauthorized")
	ErrNotFound              = New(CodeNotFound, "not found")
	ErrInsufficientFunds     = New(CodeInsufficientFunds, "insufficient funds")
	ErrDependencyUnavailable = New(CodeDependencyUnavailable, "dependency unavailable")
	ErrConflict              = New(CodeConflict, "concurrent modification")
)

// Error is a domain error with a named kind.
type Error struct {
	Code    Code   // Machine-readable kind
	Message string // Internal message (for logs)
	Cause   error  // Wrapped underlying error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// New creates a domain error with a code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap creates a domain error that wraps an underlying cause.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// CodeOf returns the code of the first *Error in err's chain, or CodeInternal.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// ConnectCode maps an error kind to the Connect status returned to RPC callers.
func (c Code) ConnectCode() connect.Code {
	switch c {
	case CodeValidation, CodeInvalidDeadline:
		return connect.CodeInvalidArgument
	case CodeCapacityExceeded, CodeInsufficientFunds:
		return connect.CodeResourceExhausted
	case CodeDuplicatePending, CodeAlreadyMember:
		return connect.CodeAlreadyExists
	case CodeInvitationNotPending, CodeGroupTerminated, CodeGroupNotActive, CodeGroupNotMatured,
		CodeNotConfirmed, CodeAlreadyReversed, CodeAnonymousNotAllowed:
		return connect.CodeFailedPrecondition
	case CodeUnknownReference, CodeNotFound:
		return connect.CodeNotFound
	case CodeUnauthorized:
		return connect.CodePermissionDenied
	case CodeDependencyUnavailable:
		return connect.CodeUnavailable
	case CodeConflict:
		return connect.CodeAborted
	default:
		return connect.CodeInternal
	}
}

// UserMessage returns an actionable message suitable for display.
func (c Code) UserMessage() string {
	switch c {
	case CodeValidation:
		return "some of the details you entered are not valid"
	case CodeCapacityExceeded:
		return "this would exceed the group's member capacity"
	case CodeDuplicatePending:
		return "an invitation to this address is already pending"
	case CodeInvitationNotPending:
		return "this invitation has already been answered or has expired"
	case CodeGroupTerminated:
		return "this group has been terminated"
	case CodeGroupNotActive:
		return "this can only be done while the group is active"
	case CodeGroupNotMatured:
		return "termination votes open once the group reaches its deadline"
	case CodeInvalidDeadline:
		return "the new deadline must be in the future"
	case CodeNotConfirmed:
		return "only confirmed contributions can be reversed"
	case CodeAlreadyReversed:
		return "this contribution has already been reversed"
	case CodeUnknownReference:
		return "no contribution matches this payment reference"
	case CodeAnonymousNotAllowed:
		return "this group does not allow anonymous members"
	case CodeAlreadyMember:
		return "already a member of this group"
	case CodeUnauthorized:
		return "you are not allowed to do this"
	case CodeNotFound:
		return "not found"
	case CodeInsufficientFunds:
		return "your wallet balance is too low for this contribution"
	case CodeDependencyUnavailable:
		return "a required service is unavailable, please try again later"
	case CodeConflict:
		return "the group changed while saving, please retry"
	default:
		return "something went wrong"
	}
}

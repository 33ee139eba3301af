// Package apperr carries the typed errors returned for business-rule
// rejections. Handlers translate codes to HTTP statuses; services never
// panic on an expected rejection.
package apperr

import (
	"errors"
	"fmt"
)

type Code string

const (
	CodeInvalidArgument    Code = "INVALID_ARGUMENT"
	CodeQuotaExceeded      Code = "QUOTA_EXCEEDED"
	CodeUnauthenticated    Code = "UNAUTHENTICATED"
	CodeNotApproved        Code = "NOT_APPROVED"
	CodeRecipientBlocked   Code = "RECIPIENT_BLOCKED"
	CodeContentRejected    Code = "CONTENT_REJECTED"
	CodeNotFound           Code = "NOT_FOUND"
	CodeFailedPrecondition Code = "FAILED_PRECONDITION"
	CodeUnavailable        Code = "UNAVAILABLE"
)

type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Cause   error  `json:"-"`
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

func Newf(code Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

func Wrap(code Code, message string, cause error) error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// Constructors
func InvalidArgument(msg string) error    { return New(CodeInvalidArgument, msg) }
func QuotaExceeded(msg string) error      { return New(CodeQuotaExceeded, msg) }
func Unauthenticated(msg string) error    { return New(CodeUnauthenticated, msg) }
func NotApproved(msg string) error        { return New(CodeNotApproved, msg) }
func RecipientBlocked(msg string) error   { return New(CodeRecipientBlocked, msg) }
func ContentRejected(msg string) error    { return New(CodeContentRejected, msg) }
func NotFound(msg string) error           { return New(CodeNotFound, msg) }
func FailedPrecondition(msg string) error { return New(CodeFailedPrecondition, msg) }

// Unavailable wraps an infrastructure failure so callers can tell
// "denied" apart from "try again".
func Unavailable(msg string, cause error) error {
	return Wrap(CodeUnavailable, msg, cause)
}

// CodeOf extracts the code, or CodeUnavailable for untyped errors.
func CodeOf(err error) Code {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code
	}
	return CodeUnavailable
}

func Is(err error, code Code) bool { return err != nil && CodeOf(err) == code }

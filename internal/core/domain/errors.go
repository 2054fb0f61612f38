package domain

import (
	"errors"
	"fmt"
)

// Error families. Every error the core returns to the HTTP boundary is one of
// these, or wraps one of them.
var (
	ErrValidation      = errors.New("validation failed")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("access forbidden")
	ErrConflict        = errors.New("resource conflict")
	ErrNotFound        = errors.New("not found")
	ErrAccountLocked   = errors.New("account locked")
)

// classified is a concrete error that belongs to a family. Its message is
// safe to return to callers.
type classified struct {
	msg    string
	family error
}

func (e *classified) Error() string { return e.msg }
func (e *classified) Unwrap() error { return e.family }

// Message returns the caller-facing message.
func (e *classified) Message() string { return e.msg }

func classify(family error, msg string) error {
	return &classified{msg: msg, family: family}
}

// Authentication errors.
var (
	ErrInvalidCredentials = classify(ErrUnauthenticated, "invalid credentials")
	ErrMissingCredentials = classify(ErrUnauthenticated, "authentication required")
	ErrTokenInvalid       = classify(ErrUnauthenticated, "invalid token")
	ErrTokenExpired       = classify(ErrUnauthenticated, "token expired")

	ErrTokenMalformed = classify(ErrTokenInvalid, "invalid token")
	ErrTokenSignature = classify(ErrTokenInvalid, "invalid token")
	ErrTokenClaims    = classify(ErrTokenInvalid, "invalid token")
)

// Resource errors.
var (
	ErrUserNotFound = classify(ErrNotFound, "user not found")
	ErrUserExists   = classify(ErrConflict, "user already exists")
	ErrRoleNotFound = classify(ErrNotFound, "role not found")
	ErrRoleExists   = classify(ErrConflict, "role already exists")
)

// Invalidf builds a validation error whose message is returned verbatim.
func Invalidf(format string, args ...any) error {
	return classify(ErrValidation, fmt.Sprintf(format, args...))
}

// Forbiddenf builds an authorization error whose message is returned verbatim.
func Forbiddenf(format string, args ...any) error {
	return classify(ErrForbidden, fmt.Sprintf(format, args...))
}

// PublicMessage returns the caller-facing message of the outermost classified
// error in err's chain.
func PublicMessage(err error) (string, bool) {
	var ce *classified
	if errors.As(err, &ce) {
		return ce.Message(), true
	}
	return "", false
}

// VerificationFailure is returned by credential verification. Callers only
// ever see "invalid credentials"; Reason is for the audit trail.
type VerificationFailure struct {
	Reason string
}

func (f *VerificationFailure) Error() string { return ErrInvalidCredentials.Error() }
func (f *VerificationFailure) Unwrap() error { return ErrInvalidCredentials }

const (
	ReasonUserNotFound     = "user_not_found"
	ReasonAccountInactive  = "account_inactive"
	ReasonPasswordMismatch = "password_mismatch"
	ReasonUnknownRole      = "unknown_role"
	ReasonStoreError       = "store_error"
	ReasonTokenIssue       = "token_issue_failed"
)

// Package derrors carries a machine-readable code on every domain error so
// callers branch on failure kind instead of string matching. Collaborator
// failures are wrapped, never swallowed: the underlying message stays
// reachable through errors.Unwrap for display.
package derrors

import (
	"errors"
	"fmt"
)

type Code string

const (
	// CodeValidation marks missing or malformed input. Nothing was created.
	CodeValidation Code = "validation_failed"
	// CodeDuplicate marks an email that already belongs to a profile or
	// identity. Nothing was created.
	CodeDuplicate Code = "duplicate_identity"
	// CodeUnauthorized marks a request with no authenticated caller.
	CodeUnauthorized Code = "unauthenticated"
	// CodeForbidden marks a caller lacking the required permission or role.
	CodeForbidden Code = "permission_denied"
	// CodeNotFound marks a missing record.
	CodeNotFound Code = "not_found"
	// CodeIdentityCreate marks a credential store failure at step one of
	// provisioning. Nothing needs rolling back.
	CodeIdentityCreate Code = "identity_creation_failed"
	// CodeProfileWrite marks a profile upsert failure. The identity created
	// before it has been rolled back by the time the caller sees this.
	CodeProfileWrite Code = "profile_write_failed"
	// CodeRecordWrite marks a domain record insert failure. Identity and
	// profile have been rolled back by the time the caller sees this.
	CodeRecordWrite Code = "domain_record_write_failed"
	// CodeLinkFailed marks a relationship link failure. Non-fatal: it is
	// surfaced as a warning on a success result, never as an error return.
	CodeLinkFailed Code = "linking_failed"
	// CodeConflict marks a concurrent-modification or uniqueness conflict
	// outside the identity path.
	CodeConflict Code = "conflict"
	// CodeInternal marks unexpected infrastructure failures.
	CodeInternal Code = "internal"
)

// Error is the concrete domain error. Construct through New or Wrap.
type Error struct {
	code Code
	msg  string
	err  error
}

func New(code Code, msg string) *Error {
	return &Error{code: code, msg: msg}
}

// Wrap attaches a code and message to an underlying collaborator error.
func Wrap(err error, code Code, msg string) *Error {
	return &Error{code: code, msg: msg, err: err}
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.err)
	}
	return e.msg
}

func (e *Error) Unwrap() error { return e.err }

// CodeOf returns the code carried by err, or CodeInternal when err carries
// none. A nil err has no code.
func CodeOf(err error) Code {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.code
	}
	return CodeInternal
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code Code) bool {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.code == code
	}
	return false
}

// Message returns the human-readable message without the wrapped cause. Used
// by the HTTP layer to keep internal details out of user-facing payloads.
func Message(err error) string {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.msg
	}
	return "internal error"
}

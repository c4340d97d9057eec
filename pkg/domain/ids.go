// Package domain defines the typed identifiers shared across the core.
//
// Each ID wraps uuid.UUID with a distinct type so the compiler rejects
// cross-entity assignment (a StudentID can never be passed where a UserID is
// expected). Parse* functions enforce the trust-boundary invariant: IDs must
// be valid, non-empty, non-nil UUIDs.
package domain

import (
	"github.com/google/uuid"

	dErrors "scolara/pkg/domain-errors"
)

// UserID identifies an authentication identity and its profile. A Profile's
// ID always equals the Identity ID it belongs to.
type UserID uuid.UUID

// TeacherID identifies a teacher domain record.
type TeacherID uuid.UUID

// StudentID identifies a student domain record.
type StudentID uuid.UUID

// OperatorID identifies an operator domain record.
type OperatorID uuid.UUID

// LinkID identifies a guardian-student relationship link.
type LinkID uuid.UUID

// AcademicSessionID identifies the academic session (school year) a student
// record is enrolled under. Resolved by the caller, never a global.
type AcademicSessionID uuid.UUID

func (id UserID) String() string            { return uuid.UUID(id).String() }
func (id TeacherID) String() string         { return uuid.UUID(id).String() }
func (id StudentID) String() string         { return uuid.UUID(id).String() }
func (id OperatorID) String() string        { return uuid.UUID(id).String() }
func (id LinkID) String() string            { return uuid.UUID(id).String() }
func (id AcademicSessionID) String() string { return uuid.UUID(id).String() }

// The text round-trip is what lands in JSON payloads and database scans;
// wrapping uuid.UUID drops its methods, so each type carries its own.
func (id UserID) MarshalText() ([]byte, error)            { return []byte(id.String()), nil }
func (id TeacherID) MarshalText() ([]byte, error)         { return []byte(id.String()), nil }
func (id StudentID) MarshalText() ([]byte, error)         { return []byte(id.String()), nil }
func (id OperatorID) MarshalText() ([]byte, error)        { return []byte(id.String()), nil }
func (id LinkID) MarshalText() ([]byte, error)            { return []byte(id.String()), nil }
func (id AcademicSessionID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

func unmarshalText(b []byte) (uuid.UUID, error) { return uuid.Parse(string(b)) }

func (id *UserID) UnmarshalText(b []byte) error {
	parsed, err := unmarshalText(b)
	*id = UserID(parsed)
	return err
}

func (id *TeacherID) UnmarshalText(b []byte) error {
	parsed, err := unmarshalText(b)
	*id = TeacherID(parsed)
	return err
}

func (id *StudentID) UnmarshalText(b []byte) error {
	parsed, err := unmarshalText(b)
	*id = StudentID(parsed)
	return err
}

func (id *OperatorID) UnmarshalText(b []byte) error {
	parsed, err := unmarshalText(b)
	*id = OperatorID(parsed)
	return err
}

func (id *LinkID) UnmarshalText(b []byte) error {
	parsed, err := unmarshalText(b)
	*id = LinkID(parsed)
	return err
}

func (id *AcademicSessionID) UnmarshalText(b []byte) error {
	parsed, err := unmarshalText(b)
	*id = AcademicSessionID(parsed)
	return err
}

func (id UserID) IsNil() bool            { return uuid.UUID(id) == uuid.Nil }
func (id TeacherID) IsNil() bool         { return uuid.UUID(id) == uuid.Nil }
func (id StudentID) IsNil() bool         { return uuid.UUID(id) == uuid.Nil }
func (id OperatorID) IsNil() bool        { return uuid.UUID(id) == uuid.Nil }
func (id LinkID) IsNil() bool            { return uuid.UUID(id) == uuid.Nil }
func (id AcademicSessionID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

// NewUserID returns a fresh random user ID.
func NewUserID() UserID { return UserID(uuid.New()) }

// NewTeacherID returns a fresh random teacher ID.
func NewTeacherID() TeacherID { return TeacherID(uuid.New()) }

// NewStudentID returns a fresh random student ID.
func NewStudentID() StudentID { return StudentID(uuid.New()) }

// NewOperatorID returns a fresh random operator ID.
func NewOperatorID() OperatorID { return OperatorID(uuid.New()) }

// NewLinkID returns a fresh random link ID.
func NewLinkID() LinkID { return LinkID(uuid.New()) }

func parse(raw, what string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeValidation, what+" is required")
	}
	parsed, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeValidation, what+" is not a valid UUID")
	}
	if parsed == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeValidation, what+" must not be the nil UUID")
	}
	return parsed, nil
}

// ParseUserID parses and validates a user ID received at a trust boundary.
func ParseUserID(raw string) (UserID, error) {
	parsed, err := parse(raw, "user ID")
	return UserID(parsed), err
}

// ParseStudentID parses and validates a student ID received at a trust boundary.
func ParseStudentID(raw string) (StudentID, error) {
	parsed, err := parse(raw, "student ID")
	return StudentID(parsed), err
}

// ParseAcademicSessionID parses and validates an academic session ID.
func ParseAcademicSessionID(raw string) (AcademicSessionID, error) {
	parsed, err := parse(raw, "academic session ID")
	return AcademicSessionID(parsed), err
}

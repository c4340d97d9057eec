// Package guardian finds existing guardian identities by national-ID match
// so enrolling a sibling reuses the family's login instead of creating a
// duplicate account.
package guardian

import (
	"context"
	"errors"
	"strings"

	"scolara/internal/profile"
	"scolara/internal/records"
	id "scolara/pkg/domain"
	dErrors "scolara/pkg/domain-errors"
	"scolara/pkg/platform/sentinel"
)

// minNationalIDLen is the shortest input worth querying. National IDs are a
// fixed 13-digit shape (with or without dashes); anything shorter is a
// partially-typed value and matching on it would produce false positives.
const minNationalIDLen = 13

// StudentFinder is the slice of the record store the linker needs.
type StudentFinder interface {
	ListStudentsByNationalID(ctx context.Context, nid string) ([]records.Student, error)
}

// LinkReader resolves and counts guardian links.
type LinkReader interface {
	FindPrimaryGuardian(ctx context.Context, studentID id.StudentID) (id.UserID, error)
	CountByGuardian(ctx context.Context, guardianID id.UserID) (int, error)
}

// ProfileReader loads the matched guardian's profile for display.
type ProfileReader interface {
	FindByID(ctx context.Context, userID id.UserID) (*profile.Profile, error)
}

// Match describes an existing guardian found by national-ID search.
type Match struct {
	GuardianID     id.UserID `json:"guardian_id"`
	Email          string    `json:"email"`
	DisplayName    string    `json:"display_name"`
	LinkedStudents int       `json:"linked_students"`
}

// Linker implements guardian lookup over the student, relationship and
// profile stores.
type Linker struct {
	students StudentFinder
	links    LinkReader
	profiles ProfileReader
}

func NewLinker(students StudentFinder, links LinkReader, profiles ProfileReader) *Linker {
	return &Linker{students: students, links: links, profiles: profiles}
}

// FindByNationalID searches student records for a father or mother
// national-ID equal to nid and resolves the guardian linked to the first
// match. Returns (nil, nil) when nothing matches or the input is too short
// to query safely.
//
// When several students with different guardians share the ID value, the
// first match found wins. That ambiguity is inherited from the source data;
// which guardian "should" win is a product decision still open.
func (l *Linker) FindByNationalID(ctx context.Context, nid string) (*Match, error) {
	nid = strings.TrimSpace(nid)
	if len(strings.ReplaceAll(nid, "-", "")) < minNationalIDLen {
		return nil, nil
	}

	students, err := l.students.ListStudentsByNationalID(ctx, nid)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not search student records")
	}

	for _, student := range students {
		guardianID, err := l.links.FindPrimaryGuardian(ctx, student.ID)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				// Matched student has no guardian link; keep looking.
				continue
			}
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not resolve guardian link")
		}

		guardianProfile, err := l.profiles.FindByID(ctx, guardianID)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				continue
			}
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not load guardian profile")
		}

		count, err := l.links.CountByGuardian(ctx, guardianID)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not count linked students")
		}

		return &Match{
			GuardianID:     guardianID,
			Email:          guardianProfile.Email,
			DisplayName:    guardianProfile.DisplayName,
			LinkedStudents: count,
		}, nil
	}
	return nil, nil
}

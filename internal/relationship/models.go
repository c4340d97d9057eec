// Package relationship links guardian profiles to student records. Multiple
// students may link to one guardian profile (siblings).
package relationship

import (
	"time"

	id "scolara/pkg/domain"
)

// Relation enumerates the kind of guardian a link represents.
type Relation string

const (
	RelationFather   Relation = "father"
	RelationMother   Relation = "mother"
	RelationGuardian Relation = "guardian"
)

// Valid reports whether r is one of the enumerated relations.
func (r Relation) Valid() bool {
	switch r {
	case RelationFather, RelationMother, RelationGuardian:
		return true
	}
	return false
}

// Link is one guardian-student edge.
type Link struct {
	ID         id.LinkID    `json:"id"`
	GuardianID id.UserID    `json:"guardian_id"`
	StudentID  id.StudentID `json:"student_id"`
	Relation   Relation     `json:"relation"`
	Primary    bool         `json:"primary"`
	CreatedAt  time.Time    `json:"created_at"`
}

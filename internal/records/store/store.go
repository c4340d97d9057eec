package store

import (
	"context"
	"time"

	"scolara/internal/records"
)

// Store is the domain record persistence contract. CountSince backs the
// sequential code generator; it is a plain count, not a sequence, so two
// concurrent writers can observe the same value (accepted, codes are
// advisory).
type Store interface {
	InsertTeacher(ctx context.Context, t records.Teacher) error
	InsertStudent(ctx context.Context, st records.Student) error
	InsertOperator(ctx context.Context, op records.Operator) error
	CountSince(ctx context.Context, kind records.Kind, since time.Time) (int, error)
	// ListStudentsByNationalID returns students whose father OR mother
	// national-ID equals nid, oldest first. Backs guardian matching.
	ListStudentsByNationalID(ctx context.Context, nid string) ([]records.Student, error)
}

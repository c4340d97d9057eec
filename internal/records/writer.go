package records

import (
	"context"
	"fmt"
	"time"

	id "scolara/pkg/domain"
	dErrors "scolara/pkg/domain-errors"
	"scolara/pkg/requestcontext"
)

// CountingStore is the slice of the record store the writer needs.
type CountingStore interface {
	InsertTeacher(ctx context.Context, t Teacher) error
	InsertStudent(ctx context.Context, st Student) error
	InsertOperator(ctx context.Context, op Operator) error
	CountSince(ctx context.Context, kind Kind, since time.Time) (int, error)
}

// Writer persists domain records and derives their display codes. Codes come
// from a count-then-insert with no transactional guard: two concurrent
// writers can compute the same number. The business treats codes as advisory
// display fields, never keys, so the race is accepted rather than locked
// around.
type Writer struct {
	store CountingStore
}

func NewWriter(store CountingStore) *Writer {
	return &Writer{store: store}
}

// TeacherFields are the caller-supplied teacher attributes.
type TeacherFields struct {
	DisplayName  string
	Email        string
	Phone        string
	Salary       int64
	ContractType ContractType
}

// StudentFields are the caller-supplied student attributes.
type StudentFields struct {
	DisplayName       string
	FatherName        string
	MotherName        string
	FatherNationalID  string
	MotherNationalID  string
	ClassName         string
	Section           string
	AcademicSessionID id.AcademicSessionID
}

// OperatorFields are the caller-supplied operator attributes.
type OperatorFields struct {
	DisplayName string
	Email       string
	Phone       string
}

func (w *Writer) WriteTeacher(ctx context.Context, fields TeacherFields, userID *id.UserID) (*Teacher, error) {
	now := requestcontext.Now(ctx)
	code, err := w.nextCode(ctx, KindTeacher, "EMP", now)
	if err != nil {
		return nil, err
	}
	teacher := Teacher{
		ID:           id.NewTeacherID(),
		UserID:       userID,
		EmployeeCode: code,
		DisplayName:  fields.DisplayName,
		Email:        fields.Email,
		Phone:        fields.Phone,
		Salary:       fields.Salary,
		ContractType: fields.ContractType,
		CreatedAt:    now,
	}
	if err := w.store.InsertTeacher(ctx, teacher); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeRecordWrite, "could not write teacher record")
	}
	return &teacher, nil
}

func (w *Writer) WriteStudent(ctx context.Context, fields StudentFields) (*Student, error) {
	now := requestcontext.Now(ctx)
	code, err := w.nextCode(ctx, KindStudent, "REG", now)
	if err != nil {
		return nil, err
	}
	student := Student{
		ID:                 id.NewStudentID(),
		RegistrationNumber: code,
		DisplayName:        fields.DisplayName,
		FatherName:         fields.FatherName,
		MotherName:         fields.MotherName,
		FatherNationalID:   fields.FatherNationalID,
		MotherNationalID:   fields.MotherNationalID,
		ClassName:          fields.ClassName,
		Section:            fields.Section,
		AcademicSessionID:  fields.AcademicSessionID,
		CreatedAt:          now,
	}
	if err := w.store.InsertStudent(ctx, student); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeRecordWrite, "could not write student record")
	}
	return &student, nil
}

func (w *Writer) WriteOperator(ctx context.Context, fields OperatorFields, userID *id.UserID) (*Operator, error) {
	now := requestcontext.Now(ctx)
	code, err := w.nextCode(ctx, KindOperator, "OPR", now)
	if err != nil {
		return nil, err
	}
	operator := Operator{
		ID:          id.NewOperatorID(),
		UserID:      userID,
		StaffCode:   code,
		DisplayName: fields.DisplayName,
		Email:       fields.Email,
		Phone:       fields.Phone,
		CreatedAt:   now,
	}
	if err := w.store.InsertOperator(ctx, operator); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeRecordWrite, "could not write operator record")
	}
	return &operator, nil
}

// nextCode derives a code like EMP-2026-0007 from the count of records
// written since the start of the year.
func (w *Writer) nextCode(ctx context.Context, kind Kind, prefix string, now time.Time) (string, error) {
	startOfYear := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
	count, err := w.store.CountSince(ctx, kind, startOfYear)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeRecordWrite, "could not derive record code")
	}
	return fmt.Sprintf("%s-%d-%04d", prefix, now.Year(), count+1), nil
}

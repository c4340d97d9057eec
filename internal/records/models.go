// Package records holds the teacher, student and operator business records
// and the writer that derives their human-readable codes.
package records

import (
	"time"

	id "scolara/pkg/domain"
)

// Kind discriminates record types in count queries and metrics labels.
type Kind string

const (
	KindTeacher  Kind = "teacher"
	KindStudent  Kind = "student"
	KindOperator Kind = "operator"
)

// ContractType enumerates teacher employment contracts.
type ContractType string

const (
	ContractPermanent ContractType = "permanent"
	ContractTerm      ContractType = "term"
	ContractVisiting  ContractType = "visiting"
)

// Teacher is a teaching staff record. UserID is nil when no login was
// provisioned.
type Teacher struct {
	ID           id.TeacherID `json:"id"`
	UserID       *id.UserID   `json:"user_id,omitempty"`
	EmployeeCode string       `json:"employee_code"`
	DisplayName  string       `json:"display_name"`
	Email        string       `json:"email,omitempty"`
	Phone        string       `json:"phone,omitempty"`
	Salary       int64        `json:"salary"`
	ContractType ContractType `json:"contract_type"`
	CreatedAt    time.Time    `json:"created_at"`
}

// Student is an enrolled student record. Students never carry their own
// login; guardian access goes through the relationship link. The two raw
// national-ID fields exist only for guardian matching, never authentication.
type Student struct {
	ID                 id.StudentID         `json:"id"`
	RegistrationNumber string               `json:"registration_number"`
	DisplayName        string               `json:"display_name"`
	FatherName         string               `json:"father_name,omitempty"`
	MotherName         string               `json:"mother_name,omitempty"`
	FatherNationalID   string               `json:"father_national_id,omitempty"`
	MotherNationalID   string               `json:"mother_national_id,omitempty"`
	ClassName          string               `json:"class_name"`
	Section            string               `json:"section,omitempty"`
	AcademicSessionID  id.AcademicSessionID `json:"academic_session_id"`
	CreatedAt          time.Time            `json:"created_at"`
}

// Operator is a back-office staff record (operator or accountant).
type Operator struct {
	ID          id.OperatorID `json:"id"`
	UserID      *id.UserID    `json:"user_id,omitempty"`
	StaffCode   string        `json:"staff_code"`
	DisplayName string        `json:"display_name"`
	Email       string        `json:"email,omitempty"`
	Phone       string        `json:"phone,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
}

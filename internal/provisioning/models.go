package provisioning

import (
	"strings"

	"scolara/internal/profile"
	"scolara/internal/records"
	"scolara/internal/relationship"
	id "scolara/pkg/domain"
	dErrors "scolara/pkg/domain-errors"
	"scolara/pkg/email"
)

// TeacherInput carries everything needed to provision a teacher. Email and
// Password are required only when CreateLogin is set.
type TeacherInput struct {
	DisplayName  string               `json:"display_name"`
	Phone        string               `json:"phone"`
	Salary       int64                `json:"salary"`
	ContractType records.ContractType `json:"contract_type"`
	CreateLogin  bool                 `json:"create_login"`
	Email        string               `json:"email"`
	Password     string               `json:"password"`
}

func (in *TeacherInput) validate() error {
	if strings.TrimSpace(in.DisplayName) == "" {
		return dErrors.New(dErrors.CodeValidation, "display name is required")
	}
	if in.ContractType == "" {
		in.ContractType = records.ContractPermanent
	}
	switch in.ContractType {
	case records.ContractPermanent, records.ContractTerm, records.ContractVisiting:
	default:
		return dErrors.New(dErrors.CodeValidation, "unknown contract type")
	}
	if in.CreateLogin {
		if strings.TrimSpace(in.Email) == "" {
			return dErrors.New(dErrors.CodeValidation, "email is required when a login is requested")
		}
		if in.Password == "" {
			return dErrors.New(dErrors.CodeValidation, "password is required when a login is requested")
		}
	}
	return nil
}

// TeacherResult is the success payload of the teacher flow.
type TeacherResult struct {
	Teacher    *records.Teacher `json:"teacher"`
	IdentityID *id.UserID       `json:"identity_id,omitempty"`
}

// StudentInput carries everything needed to provision a student and,
// optionally, a guardian login. Exactly one of CreateGuardianLogin and
// LinkExistingGuardianID may be used; the latter is the sibling path fed by
// the guardian lookup and never creates an identity.
type StudentInput struct {
	DisplayName       string               `json:"display_name"`
	FatherName        string               `json:"father_name"`
	MotherName        string               `json:"mother_name"`
	FatherNationalID  string               `json:"father_national_id"`
	MotherNationalID  string               `json:"mother_national_id"`
	ClassName         string               `json:"class_name"`
	Section           string               `json:"section"`
	AcademicSessionID id.AcademicSessionID `json:"academic_session_id"`

	CreateGuardianLogin    bool                  `json:"create_guardian_login"`
	GuardianDisplayName    string                `json:"guardian_display_name"`
	GuardianEmail          string                `json:"guardian_email"`
	GuardianPassword       string                `json:"guardian_password"`
	GuardianPhone          string                `json:"guardian_phone"`
	GuardianRelation       relationship.Relation `json:"guardian_relation"`
	LinkExistingGuardianID *id.UserID            `json:"link_existing_guardian_id,omitempty"`
}

func (in *StudentInput) validate() error {
	if strings.TrimSpace(in.DisplayName) == "" {
		return dErrors.New(dErrors.CodeValidation, "display name is required")
	}
	if strings.TrimSpace(in.ClassName) == "" {
		return dErrors.New(dErrors.CodeValidation, "class is required")
	}
	if in.AcademicSessionID.IsNil() {
		return dErrors.New(dErrors.CodeValidation, "academic session is required")
	}
	if in.CreateGuardianLogin && in.LinkExistingGuardianID != nil {
		return dErrors.New(dErrors.CodeValidation, "choose either a new guardian login or an existing guardian, not both")
	}
	if in.CreateGuardianLogin {
		if strings.TrimSpace(in.GuardianEmail) == "" {
			return dErrors.New(dErrors.CodeValidation, "guardian email is required when a login is requested")
		}
		if in.GuardianPassword == "" {
			return dErrors.New(dErrors.CodeValidation, "guardian password is required when a login is requested")
		}
		if strings.TrimSpace(in.GuardianDisplayName) == "" {
			// Enrollment forms often carry only the guardian's email.
			in.GuardianDisplayName = email.DeriveDisplayName(in.GuardianEmail)
		}
	}
	if in.CreateGuardianLogin || in.LinkExistingGuardianID != nil {
		if in.GuardianRelation == "" {
			in.GuardianRelation = relationship.RelationGuardian
		}
		if !in.GuardianRelation.Valid() {
			return dErrors.New(dErrors.CodeValidation, "unknown guardian relation")
		}
	}
	return nil
}

// StudentResult is the success payload of the student flow. Warning is
// non-empty when the guardian link failed after the student record was
// written; the record is kept and the operator can re-link manually.
type StudentResult struct {
	Student    *records.Student `json:"student"`
	GuardianID *id.UserID       `json:"guardian_id,omitempty"`
	Warning    string           `json:"warning,omitempty"`
}

// OperatorInput carries everything needed to provision an operator. The
// profile role is chosen by the caller, restricted to back-office roles.
type OperatorInput struct {
	DisplayName string       `json:"display_name"`
	Phone       string       `json:"phone"`
	Role        profile.Role `json:"role"`
	CreateLogin bool         `json:"create_login"`
	Email       string       `json:"email"`
	Password    string       `json:"password"`
}

func (in *OperatorInput) validate() error {
	if strings.TrimSpace(in.DisplayName) == "" {
		return dErrors.New(dErrors.CodeValidation, "display name is required")
	}
	if in.Role == "" {
		in.Role = profile.RoleOperator
	}
	if in.Role != profile.RoleOperator && in.Role != profile.RoleAccountant {
		return dErrors.New(dErrors.CodeValidation, "operator role must be operator or accountant")
	}
	if in.CreateLogin {
		if strings.TrimSpace(in.Email) == "" {
			return dErrors.New(dErrors.CodeValidation, "email is required when a login is requested")
		}
		if in.Password == "" {
			return dErrors.New(dErrors.CodeValidation, "password is required when a login is requested")
		}
	}
	return nil
}

// OperatorResult is the success payload of the operator flow.
type OperatorResult struct {
	Operator   *records.Operator `json:"operator"`
	IdentityID *id.UserID        `json:"identity_id,omitempty"`
}

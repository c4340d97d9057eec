// Package permission answers "may this caller perform action X". The
// effective permission set of a caller is the union of the static table for
// their role and any per-user override grants.
package permission

import "scolara/internal/profile"

// Permission names one guarded action.
type Permission string

const (
	TeacherCreate  Permission = "teacher:create"
	StudentCreate  Permission = "student:create"
	OperatorManage Permission = "operator:manage"
	FeeManage      Permission = "fee:manage"
	FeeRecord      Permission = "fee:record"
	AttendanceMark Permission = "attendance:mark"
	ReportView     Permission = "report:view"
	OverrideManage Permission = "override:manage"
	GuardianLookup Permission = "guardian:lookup"
)

// Valid reports whether p names a known permission. Used at the trust
// boundary before override grants are written.
func (p Permission) Valid() bool {
	switch p {
	case TeacherCreate, StudentCreate, OperatorManage,
		FeeManage, FeeRecord, AttendanceMark, ReportView,
		OverrideManage, GuardianLookup:
		return true
	}
	return false
}

// Set is an unordered collection of permissions.
type Set map[Permission]struct{}

// NewSet builds a Set from its members.
func NewSet(perms ...Permission) Set {
	set := make(Set, len(perms))
	for _, p := range perms {
		set[p] = struct{}{}
	}
	return set
}

// Has reports membership.
func (s Set) Has(p Permission) bool {
	_, ok := s[p]
	return ok
}

// Union returns a new set containing every member of s and other. Neither
// input is modified.
func (s Set) Union(other Set) Set {
	out := make(Set, len(s)+len(other))
	for p := range s {
		out[p] = struct{}{}
	}
	for p := range other {
		out[p] = struct{}{}
	}
	return out
}

// roleTable is the static role-to-permission matrix. Per-user overrides are
// additive on top; nothing subtracts from this table.
var roleTable = map[profile.Role]Set{
	profile.RoleSuperAdmin: NewSet(
		TeacherCreate, StudentCreate, OperatorManage,
		FeeManage, FeeRecord, AttendanceMark, ReportView,
		OverrideManage, GuardianLookup,
	),
	profile.RoleAdmin: NewSet(
		TeacherCreate, StudentCreate, OperatorManage,
		FeeManage, FeeRecord, AttendanceMark, ReportView, GuardianLookup,
	),
	profile.RoleAccountant: NewSet(FeeManage, FeeRecord, ReportView),
	profile.RoleTeacher:    NewSet(AttendanceMark, ReportView),
	profile.RoleOperator:   NewSet(FeeRecord),
	profile.RoleStudent:    NewSet(),
	profile.RoleParent:     NewSet(),
}

// RolePermissions returns the static permission set for a role. Unknown
// roles get the empty set.
func RolePermissions(role profile.Role) Set {
	if set, ok := roleTable[role]; ok {
		return set
	}
	return Set{}
}

// Effective computes the caller's effective permission set: the static table
// for their role unioned with their override grants. Pure function.
func Effective(role profile.Role, overrides Set) Set {
	return RolePermissions(role).Union(overrides)
}

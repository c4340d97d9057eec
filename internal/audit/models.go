package audit

import "time"

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	ActorID   string    `json:"actor_id,omitempty"`
	Subject   string    `json:"subject,omitempty"`
	Action    string    `json:"action"`
	Reason    string    `json:"reason,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
	UserAgent string    `json:"user_agent,omitempty"`
}

// Actions recorded by the provisioning core.
const (
	EventTeacherProvisioned  = "teacher_provisioned"
	EventStudentProvisioned  = "student_provisioned"
	EventOperatorProvisioned = "operator_provisioned"
	EventGuardianLinked      = "guardian_linked"
	EventIdentityRolledBack  = "identity_rolled_back"
	EventOverrideGranted     = "permission_override_granted"
	EventOverrideRevoked     = "permission_override_revoked"
)

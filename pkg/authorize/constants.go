package authorize

import "github.com/Alijeyrad/pms_backend/internal/enum"

type Action string
type Resource string
type Role string

// ----------------------------
// Actions
// ----------------------------

const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionList   Action = "list"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"

	WildcardAction Action = "*"
)

var KnownActions = map[Action]struct{}{
	ActionCreate: {}, ActionRead: {}, ActionList: {}, ActionUpdate: {}, ActionDelete: {},
}

// ----------------------------
// Resources
// ----------------------------

const (
	WildcardResource Resource = "*"

	ResourceUser         Resource = "user"
	ResourcePatient      Resource = "patient"
	ResourcePractitioner Resource = "practitioner"

	ResourceAssessment     Resource = "assessment"
	ResourceAssessmentType Resource = "assessment_type"
	ResourceQuestion       Resource = "question"
	ResourceAnswer         Resource = "answer"

	// Profile catalogs
	ResourceSpecialization Resource = "specialization"
	ResourceAllergy        Resource = "allergy"
	ResourceMedication     Resource = "medication"

	ResourceSystem Resource = "system"
)

var KnownResources = map[Resource]struct{}{
	ResourceUser: {}, ResourcePatient: {}, ResourcePractitioner: {},
	ResourceAssessment: {}, ResourceAssessmentType: {}, ResourceQuestion: {}, ResourceAnswer: {},
	ResourceSpecialization: {}, ResourceAllergy: {}, ResourceMedication: {},
	ResourceSystem: {},
}

// ----------------------------
// Roles
// ----------------------------
//
// A role is the casbin subject. Every user holds exactly one, derived from
// users.user_role.

const (
	RoleUser         Role = "role:user"
	RolePractitioner Role = "role:practitioner"
	RoleAdmin        Role = "role:admin"
)

var KnownRoles = map[Role]struct{}{
	RoleUser:         {},
	RolePractitioner: {},
	RoleAdmin:        {},
}

// RoleFor maps a stored user type to its policy role.
func RoleFor(t enum.UserType) Role {
	switch t {
	case enum.UserTypePractitioner:
		return RolePractitioner
	case enum.UserTypeAdmin:
		return RoleAdmin
	default:
		return RoleUser
	}
}

// ----------------------------
// Casbin tuple helpers
// ----------------------------

type PolicyEffect string

const (
	EffectAllow PolicyEffect = "allow"
	EffectDeny  PolicyEffect = "deny"
)

// Permission rows: p, role, resource, action, eft
type PermissionPolicy struct {
	Subject Role
	Object  Resource
	Action  Action
	Effect  PolicyEffect
}

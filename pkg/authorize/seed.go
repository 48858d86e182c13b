package authorize

import (
	"context"
	"fmt"
	"log/slog"
)

func allow(role Role, object Resource, actions ...Action) []PermissionPolicy {
	out := make([]PermissionPolicy, len(actions))
	for i, act := range actions {
		out[i] = PermissionPolicy{role, object, act, EffectAllow}
	}
	return out
}

// DefaultPolicies is the baseline RBAC policy set.
func DefaultPolicies() []PermissionPolicy {
	var p []PermissionPolicy

	// Admin: everything.
	p = append(p, PermissionPolicy{RoleAdmin, WildcardResource, WildcardAction, EffectAllow})

	// Practitioner: runs assessments and curates their catalog.
	p = append(p, allow(RolePractitioner, ResourceAssessment, WildcardAction)...)
	p = append(p, allow(RolePractitioner, ResourceAssessmentType, WildcardAction)...)
	p = append(p, allow(RolePractitioner, ResourceQuestion, WildcardAction)...)
	p = append(p, allow(RolePractitioner, ResourceAnswer, WildcardAction)...)
	p = append(p, allow(RolePractitioner, ResourceUser, ActionRead, ActionUpdate)...)
	p = append(p, allow(RolePractitioner, ResourcePractitioner, ActionRead, ActionList, ActionUpdate)...)
	p = append(p, allow(RolePractitioner, ResourcePatient, ActionRead, ActionList)...)
	p = append(p, allow(RolePractitioner, ResourceSpecialization, ActionList, ActionCreate)...)
	p = append(p, allow(RolePractitioner, ResourceAllergy, ActionList)...)
	p = append(p, allow(RolePractitioner, ResourceMedication, ActionList)...)

	// User (patient): reads their own assessments and keeps their profile.
	p = append(p, allow(RoleUser, ResourceAssessment, ActionRead, ActionList)...)
	p = append(p, allow(RoleUser, ResourceAssessmentType, ActionRead, ActionList)...)
	p = append(p, allow(RoleUser, ResourceQuestion, ActionRead, ActionList)...)
	p = append(p, allow(RoleUser, ResourceAnswer, ActionRead, ActionList)...)
	p = append(p, allow(RoleUser, ResourceUser, ActionRead, ActionUpdate)...)
	p = append(p, allow(RoleUser, ResourcePatient, ActionRead, ActionUpdate)...)
	p = append(p, allow(RoleUser, ResourcePractitioner, ActionRead, ActionList)...)
	p = append(p, allow(RoleUser, ResourceSpecialization, ActionList)...)
	p = append(p, allow(RoleUser, ResourceAllergy, ActionList, ActionCreate)...)
	p = append(p, allow(RoleUser, ResourceMedication, ActionList, ActionCreate)...)

	return p
}

// SeedDefaultPolicies writes DefaultPolicies. Existing rows are kept, so
// seeding is idempotent.
func SeedDefaultPolicies(ctx context.Context, auth IAuthorization) error {
	added := 0
	for _, p := range DefaultPolicies() {
		ok, err := auth.AddPermission(ctx, p.Subject, p.Object, p.Action, p.Effect)
		if err != nil {
			return fmt.Errorf("seed %s %s %s: %w", p.Subject, p.Object, p.Action, err)
		}
		if ok {
			added++
		}
	}
	slog.InfoContext(ctx, "casbin default policies seeded", "added", added)
	return nil
}

package authorize

import (
	"context"
	"errors"
	"fmt"

	casbin "github.com/casbin/casbin/v2"
)

var (
	ErrForbidden   = errors.New("forbidden")
	ErrInvalidArgs = errors.New("invalid authorization arguments")
)

// IAuthorization is the only thing services/middleware should depend on.
type IAuthorization interface {
	// Enforce answers: "May role act on object?"
	Enforce(ctx context.Context, role Role, object Resource, action Action) (bool, error)

	// MustEnforce returns ErrForbidden if not allowed.
	MustEnforce(ctx context.Context, role Role, object Resource, action Action) error

	// Permission management (policies): p, role, object, action, eft
	AddPermission(ctx context.Context, role Role, object Resource, action Action, effect PolicyEffect) (bool, error)
	RemovePermission(ctx context.Context, role Role, object Resource, action Action, effect PolicyEffect) (bool, error)

	Raw() *casbin.DistributedEnforcer
}

// Authorization is a thin typed wrapper around casbin.Enforcer.
type Authorization struct {
	enforcer *casbin.DistributedEnforcer
}

// NewAuthorization wraps an already-configured Enforcer and loads its policy.
func NewAuthorization(e *casbin.DistributedEnforcer) (IAuthorization, error) {
	if e == nil {
		return nil, fmt.Errorf("%w: enforcer is nil", ErrInvalidArgs)
	}
	if err := e.LoadPolicy(); err != nil {
		return nil, err
	}
	return &Authorization{enforcer: e}, nil
}

func (a *Authorization) Raw() *casbin.DistributedEnforcer { return a.enforcer }

func validate(role Role, object Resource, action Action) error {
	if _, ok := KnownRoles[role]; !ok {
		return fmt.Errorf("%w: unknown role: %q", ErrInvalidArgs, role)
	}
	if _, ok := KnownResources[object]; !ok && object != WildcardResource {
		return fmt.Errorf("%w: unknown resource: %q", ErrInvalidArgs, object)
	}
	if _, ok := KnownActions[action]; !ok && action != WildcardAction {
		return fmt.Errorf("%w: unknown action: %q", ErrInvalidArgs, action)
	}
	return nil
}

func (a *Authorization) Enforce(_ context.Context, role Role, object Resource, action Action) (bool, error) {
	if object == WildcardResource || action == WildcardAction {
		return false, fmt.Errorf("%w: wildcards are not valid in requests", ErrInvalidArgs)
	}
	if err := validate(role, object, action); err != nil {
		return false, err
	}
	return a.enforcer.Enforce(string(role), string(object), string(action))
}

func (a *Authorization) MustEnforce(ctx context.Context, role Role, object Resource, action Action) error {
	ok, err := a.Enforce(ctx, role, object, action)
	if err != nil {
		return err
	}
	if !ok {
		return ErrForbidden
	}
	return nil
}

// ---- Permissions (p rules) ----

func (a *Authorization) AddPermission(_ context.Context, role Role, object Resource, action Action, effect PolicyEffect) (bool, error) {
	if err := validate(role, object, action); err != nil {
		return false, err
	}
	if effect != EffectAllow && effect != EffectDeny {
		return false, fmt.Errorf("%w: invalid effect: %q", ErrInvalidArgs, effect)
	}
	return a.enforcer.AddPolicy(string(role), string(object), string(action), string(effect))
}

func (a *Authorization) RemovePermission(_ context.Context, role Role, object Resource, action Action, effect PolicyEffect) (bool, error) {
	if role == "" || object == "" || action == "" || effect == "" {
		return false, fmt.Errorf("%w: empty permission fields", ErrInvalidArgs)
	}
	return a.enforcer.RemovePolicy(string(role), string(object), string(action), string(effect))
}

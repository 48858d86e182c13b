package authorize

import (
	"fmt"

	"github.com/casbin/casbin/v2/model"
)

// DefaultModel is used when no model file is configured. Requests are
// (role, resource, action); deny rules win over allow rules.
const DefaultModel = `[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act, eft

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow)) && !some(where (p.eft == deny))

[matchers]
m = g(r.sub, p.sub) && (p.obj == "*" || r.obj == p.obj) && (p.act == "*" || r.act == p.act)
`

// LoadModel reads the model at path, or DefaultModel when path is empty.
func LoadModel(path string) (model.Model, error) {
	if path == "" {
		return model.NewModelFromString(DefaultModel)
	}
	m, err := model.NewModelFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("load casbin model %q: %w", path, err)
	}
	return m, nil
}

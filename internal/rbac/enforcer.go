package rbac

import (
	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
)

const modelText = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && r.obj == p.obj && r.act == p.act
`

// NewEnforcer builds the in-memory enforcer for the single-organization
// role model. Roles chain upward: manager inherits employee, director
// inherits manager, admin inherits director.
func NewEnforcer() (*casbin.Enforcer, error) {
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}

	e, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, err
	}

	policies := [][]string{
		{"employee", "leave", "read"},
		{"employee", "leave", "create"},
		{"employee", "balance", "read"},
		// every role can pull a report; the leave service narrows the
		// scope to self, team, or all based on who is asking
		{"employee", "report", "read"},
		{"manager", "leave", "approve"},
		{"admin", "employee", "write"},
		{"admin", "organization", "write"},
		{"admin", "yearend", "run"},
	}
	for _, p := range policies {
		if _, err := e.AddPolicy(p[0], p[1], p[2]); err != nil {
			return nil, err
		}
	}

	groupings := [][]string{
		{"manager", "employee"},
		{"director", "manager"},
		{"admin", "director"},
	}
	for _, g := range groupings {
		if _, err := e.AddGroupingPolicy(g[0], g[1]); err != nil {
			return nil, err
		}
	}

	return e, nil
}

package infra

import (
	"go-attendance/internal/rbac"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
)

// NewEnforcer builds the in-memory enforcer with the built-in role policies.
func NewEnforcer() (*casbin.Enforcer, error) {
	m, err := model.NewModelFromString(rbac.ModelText)
	if err != nil {
		return nil, err
	}
	e, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, err
	}
	for _, p := range rbac.DefaultPolicies {
		if _, err := e.AddPolicy(p.Role, p.Resource, p.Action); err != nil {
			return nil, err
		}
	}
	for _, g := range rbac.RoleInheritance {
		if _, err := e.AddGroupingPolicy(g[0], g[1]); err != nil {
			return nil, err
		}
	}
	return e, nil
}

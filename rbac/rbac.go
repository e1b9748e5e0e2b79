// Package rbac holds the role permission table, enforced with casbin.
package rbac

import (
	"fmt"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"

	"ecohub-backend/log"
)

const ActionView = "view"
const ActionManage = "manage"
const ActionClaim = "claim"
const ActionSignup = "signup"

const ResourceAdmin = "admin"
const ResourceOrganiser = "organiser"
const ResourceUsers = "users"
const ResourceRewards = "rewards"
const ResourceEvents = "events"

// built-in roles, matching models.RoleName
const RoleUser = "user"
const RoleAdmin = "admin"
const RoleOrganiser = "organiser"

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

// Enforcer answers whether a role may perform an action on a resource.
type Enforcer struct {
	e *casbin.Enforcer
}

func NewEnforcer() (*Enforcer, error) {
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, fmt.Errorf("rbac model: %w", err)
	}
	e, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("rbac enforcer: %w", err)
	}
	en := &Enforcer{e: e}
	if err := en.initRolePerms(); err != nil {
		return nil, err
	}
	return en, nil
}

func (en *Enforcer) initRolePerms() error {
	log.DebugLog("init roleperms")
	policies := [][]string{
		{RoleUser, ResourceRewards, ActionClaim},
		{RoleUser, ResourceEvents, ActionSignup},
		{RoleUser, ResourceRewards, ActionView},

		{RoleOrganiser, ResourceOrganiser, ActionManage},

		{RoleAdmin, ResourceAdmin, ActionManage},
		{RoleAdmin, ResourceUsers, ActionView},
		{RoleAdmin, ResourceUsers, ActionManage},
		{RoleAdmin, ResourceRewards, ActionManage},
		{RoleAdmin, ResourceEvents, ActionManage},
	}
	if _, err := en.e.AddPolicies(policies); err != nil {
		return fmt.Errorf("rbac policies: %w", err)
	}
	// every elevated role can still do what a normal user does
	for _, role := range []string{RoleAdmin, RoleOrganiser} {
		if _, err := en.e.AddGroupingPolicy(role, RoleUser); err != nil {
			return fmt.Errorf("rbac grouping: %w", err)
		}
	}
	return nil
}

// Enforce reports whether role may perform act on obj. Errors deny.
func (en *Enforcer) Enforce(role, obj, act string) bool {
	if role == "" {
		return false
	}
	ok, err := en.e.Enforce(role, obj, act)
	if err != nil {
		log.WarnLog("rbac enforce failed", "role", role, "obj", obj, "act", act, "err", err)
		return false
	}
	return ok
}

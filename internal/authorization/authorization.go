package authorization

import (
	"context"
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/casbin/casbin/v2"
	casbinmodel "github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Community roles, most to least privileged.
const (
	RoleOwner     = "owner"
	RoleAdmin     = "admin"
	RoleCollector = "collector"
	RoleMember    = "member"
)

const rbacModel = `
[request_definition]
r = sub, dom, obj, act

[policy_definition]
p = sub, dom, obj, act

[role_definition]
g = _, _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub, r.dom) && (p.dom == "*" || r.dom == p.dom) && r.obj == p.obj && r.act == p.act
`

// Role-wide policies, domain "*" so they apply in every community.
var defaultPolicies = [][]string{
	{RoleOwner, "*", "*", "*"},
	{RoleAdmin, "*", "event", "write"},
	{RoleAdmin, "*", "distribution", "write"},
	{RoleAdmin, "*", "payment", "write"},
	{RoleAdmin, "*", "payment", "delete"},
	{RoleAdmin, "*", "commission", "write"},
	{RoleAdmin, "*", "member", "write"},
	{RoleAdmin, "*", "campaign", "write"},
	{RoleAdmin, "*", "report", "import"},
	{RoleCollector, "*", "payment", "write"},
	{RoleCollector, "*", "distribution", "write"},
}

type Service interface {
	Enforce(ctx context.Context, userID, communityID snowflake.ID, object, action string) (bool, error)
	AssignRole(ctx context.Context, userID, communityID snowflake.ID, role string) error
	RolesFor(ctx context.Context, userID, communityID snowflake.ID) ([]string, error)
}

var Module = fx.Module("authorization",
	fx.Provide(New),
)

type service struct {
	enforcer *casbin.Enforcer
	log      *zap.Logger
}

type Params struct {
	fx.In

	DB  *gorm.DB
	Log *zap.Logger
}

func New(p Params) (Service, error) {
	adapter, err := gormadapter.NewAdapterByDB(p.DB)
	if err != nil {
		return nil, fmt.Errorf("create casbin adapter: %w", err)
	}

	m, err := casbinmodel.NewModelFromString(rbacModel)
	if err != nil {
		return nil, fmt.Errorf("parse casbin model: %w", err)
	}

	enforcer, err := casbin.NewEnforcer(m, adapter)
	if err != nil {
		return nil, fmt.Errorf("create casbin enforcer: %w", err)
	}

	for _, policy := range defaultPolicies {
		if _, err := enforcer.AddPolicy(policy[0], policy[1], policy[2], policy[3]); err != nil {
			return nil, fmt.Errorf("seed policy %v: %w", policy, err)
		}
	}

	return &service{
		enforcer: enforcer,
		log:      p.Log.Named("authorization"),
	}, nil
}

func (s *service) Enforce(ctx context.Context, userID, communityID snowflake.ID, object, action string) (bool, error) {
	return s.enforcer.Enforce(userID.String(), communityID.String(), object, action)
}

func (s *service) AssignRole(ctx context.Context, userID, communityID snowflake.ID, role string) error {
	switch role {
	case RoleOwner, RoleAdmin, RoleCollector, RoleMember:
	default:
		return fmt.Errorf("unknown role %q", role)
	}

	_, err := s.enforcer.AddRoleForUserInDomain(userID.String(), role, communityID.String())
	return err
}

func (s *service) RolesFor(ctx context.Context, userID, communityID snowflake.ID) ([]string, error) {
	return s.enforcer.GetRolesForUserInDomain(userID.String(), communityID.String()), nil
}

package policy

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strconv"

	"github.com/open-policy-agent/opa/rego"

	"logviewer/pkg/identity"
	"logviewer/pkg/logs"
	"logviewer/pkg/tenants"
)

//go:embed access.rego
var accessModule string

type DecisionStatus string

const (
	Allow DecisionStatus = "ALLOW"
	Deny  DecisionStatus = "DENY"
)

type Reason string

const (
	ReasonAuthDisabled     Reason = "auth_disabled"
	ReasonWhitelisted      Reason = "whitelisted"
	ReasonRole             Reason = "role"
	ReasonMustAuthenticate Reason = "must_authenticate"
	ReasonTenantMismatch   Reason = "tenant_mismatch"
	ReasonNotWhitelisted   Reason = "not_whitelisted"
	ReasonPolicyError      Reason = "policy_error"
)

type Decision struct {
	Status DecisionStatus `json:"status"`
	Reason Reason         `json:"reason"`
}

func (d Decision) Allowed() bool { return d.Status == Allow }

func allow(r Reason) Decision { return Decision{Status: Allow, Reason: r} }
func deny(r Reason) Decision  { return Decision{Status: Deny, Reason: r} }

// ErrRoleLookup means the decision depended on roles that could not be fetched.
var ErrRoleLookup = errors.New("role lookup unavailable")

type Options struct {
	// Enabled switches from "every found log is public" to whitelist checks.
	Enabled bool
	// Roles resolves member roles when the identity does not carry them.
	Roles identity.RoleResolver
}

// Policy decides whether an identity may read a tenant's log. It holds no
// per-request state; Evaluate is safe for concurrent use.
type Policy struct {
	enabled bool
	roles   identity.RoleResolver
	query   rego.PreparedEvalQuery
}

func New(ctx context.Context, opts Options) (*Policy, error) {
	pq, err := rego.New(
		rego.Query("data.logviewer.access.allow"),
		rego.Module("access.rego", accessModule),
	).PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("prepare access policy: %w", err)
	}
	return &Policy{enabled: opts.Enabled, roles: opts.Roles, query: pq}, nil
}

func (p *Policy) Enabled() bool { return p.enabled }

// Evaluate applies, in order: login required, bot_id tag match, user id or
// "everyone" in the union of config and document whitelists, then role ids.
// doc is nil when the log does not exist; only the config whitelist applies.
//
// An error is returned only when the answer could not be computed (role
// lookup failed, context expired); callers must not read it as a denial.
func (p *Policy) Evaluate(ctx context.Context, ident identity.Identity, tenant tenants.Tenant, cfg logs.TenantConfig, doc *logs.LogDocument) (Decision, error) {
	if !p.enabled {
		return allow(ReasonAuthDisabled), nil
	}
	if !ident.Authenticated {
		return deny(ReasonMustAuthenticate), nil
	}
	if err := ctx.Err(); err != nil {
		return Decision{}, err
	}
	if doc != nil {
		tag := tenant.BotTag()
		if tag == "" || doc.BotID != tag {
			return deny(ReasonTenantMismatch), nil
		}
	}

	wl := cfg.Whitelist
	if doc != nil {
		wl = wl.Union(doc.Whitelist)
	}
	entries := wl.Entries()
	if len(entries) == 0 {
		return deny(ReasonNotWhitelisted), nil
	}

	ok, err := p.eval(ctx, ident.UserID(), nil, entries)
	if err != nil {
		return p.evalFailure(ctx, err)
	}
	if ok {
		return allow(ReasonWhitelisted), nil
	}

	roles := ident.RoleIDs
	if roles == nil {
		if p.roles == nil {
			return deny(ReasonNotWhitelisted), nil
		}
		roles, err = p.roles.RoleIDs(ctx, uint64(tenant.ID), ident.UserID())
		if err != nil {
			return Decision{}, fmt.Errorf("%w: %v", ErrRoleLookup, err)
		}
	}
	if len(roles) == 0 {
		return deny(ReasonNotWhitelisted), nil
	}

	ok, err = p.eval(ctx, ident.UserID(), roles, entries)
	if err != nil {
		return p.evalFailure(ctx, err)
	}
	if ok {
		return allow(ReasonRole), nil
	}
	return deny(ReasonNotWhitelisted), nil
}

func (p *Policy) eval(ctx context.Context, userID uint64, roles []uint64, whitelist []string) (bool, error) {
	roleIDs := make([]string, 0, len(roles))
	for _, r := range roles {
		roleIDs = append(roleIDs, strconv.FormatUint(r, 10))
	}
	rs, err := p.query.Eval(ctx, rego.EvalInput(map[string]any{
		"user_id":   strconv.FormatUint(userID, 10),
		"role_ids":  roleIDs,
		"whitelist": whitelist,
	}))
	if err != nil {
		return false, err
	}
	if len(rs) == 0 || len(rs[0].Expressions) == 0 {
		return false, errors.New("access policy returned no result")
	}
	ok, isBool := rs[0].Expressions[0].Value.(bool)
	if !isBool {
		return false, fmt.Errorf("access policy returned %T", rs[0].Expressions[0].Value)
	}
	return ok, nil
}

// evalFailure fails closed, except that an expired request context is
// surfaced as an error so it is reported as unavailable rather than forbidden.
func (p *Policy) evalFailure(ctx context.Context, err error) (Decision, error) {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return Decision{}, ctxErr
	}
	return deny(ReasonPolicyError), nil
}

package rbac

// RuleKind discriminates the guard rule variants.
type RuleKind string

const (
	RuleUnguarded         RuleKind = "unguarded"
	RuleAllowRoles        RuleKind = "allow_roles"
	RuleRequireCapability RuleKind = "require_capability"
)

// GuardRule is the closed set of ways a UI subtree can be protected. The
// variant is fixed at construction, which makes the precedence question
// (role allow-list versus capability) impossible to pose: a rule is one or
// the other, never both.
type GuardRule struct {
	kind       RuleKind
	roles      []Role
	capability Capability
}

// AllowRoles guards by an explicit role allow-list. An empty list degrades
// to Unguarded, matching the behavior of an absent list.
func AllowRoles(roles ...Role) GuardRule {
	if len(roles) == 0 {
		return Unguarded()
	}
	rs := make([]Role, len(roles))
	copy(rs, roles)
	return GuardRule{kind: RuleAllowRoles, roles: rs}
}

// RequireCapability guards by a single capability.
func RequireCapability(cap Capability) GuardRule {
	return GuardRule{kind: RuleRequireCapability, capability: cap}
}

// Unguarded is the no-op rule: access is granted unconditionally.
func Unguarded() GuardRule {
	return GuardRule{kind: RuleUnguarded}
}

// Kind returns the rule variant.
func (r GuardRule) Kind() RuleKind {
	if r.kind == "" {
		return RuleUnguarded
	}
	return r.kind
}

// Roles returns the allow-list for RuleAllowRoles rules.
func (r GuardRule) Roles() []Role {
	out := make([]Role, len(r.roles))
	copy(out, r.roles)
	return out
}

// Capability returns the required capability for RuleRequireCapability rules.
func (r GuardRule) Capability() Capability {
	return r.capability
}

// Outcome is the rendering decision produced by a guard evaluation.
type Outcome string

const (
	// OutcomeAllow renders the protected content.
	OutcomeAllow Outcome = "allow"
	// OutcomeFallback renders the caller-supplied fallback.
	OutcomeFallback Outcome = "fallback"
	// OutcomeDenialView renders the standard denial explanation.
	OutcomeDenialView Outcome = "denial_view"
	// OutcomeHidden renders nothing. An intentional silent gate, not an
	// error state.
	OutcomeHidden Outcome = "hidden"
)

// Denial explains a denied evaluation: who was denied, what the rule
// demanded, and everything the role can actually do. Denials are shown to
// the user, so they enumerate held capabilities rather than hiding them.
type Denial struct {
	Role             Role         `json:"role"`
	RoleDisplayName  string       `json:"role_display_name"`
	Rule             RuleKind     `json:"rule"`
	RequiredRoles    []Role       `json:"required_roles,omitempty"`
	RequiredCap      Capability   `json:"required_capability,omitempty"`
	HeldCapabilities []Capability `json:"held_capabilities"`
}

// Decision is the result of a guard evaluation.
type Decision struct {
	Outcome Outcome `json:"outcome"`
	Denial  *Denial `json:"denial,omitempty"`
}

// Allowed reports whether the protected content should render.
func (d Decision) Allowed() bool {
	return d.Outcome == OutcomeAllow
}

// GuardOptions tune what a denial renders as. The zero value means no
// fallback and a visible denial view.
type GuardOptions struct {
	// HasFallback indicates the caller supplied fallback content.
	HasFallback bool
	// SilentDeny suppresses the denial view so nothing renders on denial.
	SilentDeny bool
}

// Guard evaluates guard rules against the permission table. Evaluations
// are pure; the guard never mutates session or table state.
type Guard struct {
	table *Table
}

// NewGuard constructs a Guard over the permission table.
func NewGuard(table *Table) *Guard {
	return &Guard{table: table}
}

// Evaluate applies a rule to the current role and decides what renders.
func (g *Guard) Evaluate(role Role, rule GuardRule, opts GuardOptions) Decision {
	if g.permits(role, rule) {
		return Decision{Outcome: OutcomeAllow}
	}

	denial := &Denial{
		Role:             role,
		RoleDisplayName:  role.DisplayName(),
		Rule:             rule.Kind(),
		HeldCapabilities: g.table.PermissionsFor(role),
	}
	switch rule.Kind() {
	case RuleAllowRoles:
		denial.RequiredRoles = rule.Roles()
	case RuleRequireCapability:
		denial.RequiredCap = rule.Capability()
	}

	switch {
	case opts.HasFallback:
		return Decision{Outcome: OutcomeFallback, Denial: denial}
	case opts.SilentDeny:
		return Decision{Outcome: OutcomeHidden, Denial: denial}
	default:
		return Decision{Outcome: OutcomeDenialView, Denial: denial}
	}
}

func (g *Guard) permits(role Role, rule GuardRule) bool {
	switch rule.Kind() {
	case RuleAllowRoles:
		for _, allowed := range rule.roles {
			if role == allowed {
				return true
			}
		}
		return false
	case RuleRequireCapability:
		return g.table.HasPermission(role, rule.capability)
	default:
		return true
	}
}

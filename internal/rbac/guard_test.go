package rbac

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestGuard() *Guard {
	return NewGuard(NewTable())
}

func TestAllowRolesAdmitsListedRoleOnly(t *testing.T) {
	guard := newTestGuard()
	rule := AllowRoles(RoleAdmin, RoleEcoDefender)

	if !guard.Evaluate(RoleAdmin, rule, GuardOptions{}).Allowed() {
		t.Fatal("admin is on the allow-list and must pass")
	}
	if !guard.Evaluate(RoleEcoDefender, rule, GuardOptions{}).Allowed() {
		t.Fatal("eco defender is on the allow-list and must pass")
	}
	if guard.Evaluate(RoleTrashHero, rule, GuardOptions{}).Allowed() {
		t.Fatal("trash hero is not on the allow-list")
	}
}

func TestRequireCapabilityConsultsTable(t *testing.T) {
	guard := newTestGuard()
	rule := RequireCapability(CapViewEarnings)

	if !guard.Evaluate(RoleTrashHero, rule, GuardOptions{}).Allowed() {
		t.Fatal("trash hero holds earnings access")
	}
	if guard.Evaluate(RoleImpactWarrior, rule, GuardOptions{}).Allowed() {
		t.Fatal("impact warrior must not hold earnings access")
	}
}

func TestEmptyAllowListDegradesToUnguarded(t *testing.T) {
	guard := newTestGuard()
	rule := AllowRoles()

	require.Equal(t, RuleUnguarded, rule.Kind())
	for _, role := range AllRoles() {
		require.True(t, guard.Evaluate(role, rule, GuardOptions{}).Allowed())
	}
}

func TestUnguardedAdmitsUnknownRole(t *testing.T) {
	guard := newTestGuard()
	if !guard.Evaluate(Role("ghost"), Unguarded(), GuardOptions{}).Allowed() {
		t.Fatal("unguarded content renders for any role")
	}
}

func TestDenialOutcomePrecedence(t *testing.T) {
	guard := newTestGuard()
	rule := RequireCapability(CapManageUsers)

	cases := []struct {
		name string
		opts GuardOptions
		want Outcome
	}{
		{"default renders denial view", GuardOptions{}, OutcomeDenialView},
		{"fallback wins when supplied", GuardOptions{HasFallback: true}, OutcomeFallback},
		{"silent hides content", GuardOptions{SilentDeny: true}, OutcomeHidden},
		{"fallback wins over silent", GuardOptions{HasFallback: true, SilentDeny: true}, OutcomeFallback},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			decision := guard.Evaluate(RoleTrashHero, rule, tc.opts)
			require.Equal(t, tc.want, decision.Outcome)
			require.False(t, decision.Allowed())
			require.NotNil(t, decision.Denial)
		})
	}
}

func TestDenialExplainsRoleAndRequirement(t *testing.T) {
	guard := newTestGuard()

	decision := guard.Evaluate(RoleImpactWarrior, RequireCapability(CapManageUsers), GuardOptions{})
	require.Equal(t, OutcomeDenialView, decision.Outcome)

	denial := decision.Denial
	require.Equal(t, RoleImpactWarrior, denial.Role)
	require.Equal(t, "Impact Warrior", denial.RoleDisplayName)
	require.Equal(t, RuleRequireCapability, denial.Rule)
	require.Equal(t, CapManageUsers, denial.RequiredCap)
	require.Empty(t, denial.RequiredRoles)
	require.ElementsMatch(t, NewTable().PermissionsFor(RoleImpactWarrior), denial.HeldCapabilities)

	decision = guard.Evaluate(RoleTrashHero, AllowRoles(RoleAdmin), GuardOptions{})
	denial = decision.Denial
	require.Equal(t, RuleAllowRoles, denial.Rule)
	require.Equal(t, []Role{RoleAdmin}, denial.RequiredRoles)
	require.Empty(t, denial.RequiredCap)
}

func TestAllowRolesCopiesInput(t *testing.T) {
	roles := []Role{RoleAdmin}
	rule := AllowRoles(roles...)
	roles[0] = RoleTrashHero

	require.Equal(t, []Role{RoleAdmin}, rule.Roles())
}

package rbac

import (
	"log/slog"
	"testing"
)

func newTestGate(t *testing.T) *Gate {
	t.Helper()
	return NewGate(NewTable(), slog.Default())
}

func TestScreenAccessFollowsSingleCapabilityGate(t *testing.T) {
	gate := newTestGate(t)

	cases := []struct {
		role   Role
		screen ScreenName
		want   bool
	}{
		{RoleAdmin, ScreenUserManagement, true},
		{RoleAdmin, ScreenWallet, false},
		{RoleTrashHero, ScreenWallet, true},
		{RoleTrashHero, ScreenUserManagement, false},
		{RoleTrashHero, ScreenMissionList, true},
		{RoleEcoDefender, ScreenPostMission, true},
		{RoleEcoDefender, ScreenWallet, false},
		{RoleImpactWarrior, ScreenVolunteerMissions, true},
		{RoleImpactWarrior, ScreenWallet, false},
		{RoleImpactWarrior, ScreenSuggestCleanup, true},
	}
	for _, tc := range cases {
		if got := gate.CanAccessScreen(tc.role, tc.screen); got != tc.want {
			t.Fatalf("CanAccessScreen(%s, %s) = %v, want %v", tc.role, tc.screen, got, tc.want)
		}
	}
}

func TestUnregisteredScreenIsDeniedForEveryRole(t *testing.T) {
	gate := newTestGate(t)

	for _, role := range AllRoles() {
		if gate.CanAccessScreen(role, ScreenName("secret_lab")) {
			t.Fatalf("unregistered screen must be denied for %s", role)
		}
	}
}

func TestRequiredCapability(t *testing.T) {
	gate := newTestGate(t)

	cap, ok := gate.RequiredCapability(ScreenWallet)
	if !ok || cap != CapViewEarnings {
		t.Fatalf("RequiredCapability(wallet) = (%s, %v), want (%s, true)", cap, ok, CapViewEarnings)
	}
	if _, ok := gate.RequiredCapability(ScreenName("secret_lab")); ok {
		t.Fatal("unregistered screen must report ok=false")
	}
}

func TestValidateAcceptsDefaultTable(t *testing.T) {
	gate := newTestGate(t)
	if err := gate.Validate(); err != nil {
		t.Fatalf("default table must validate: %v", err)
	}
}

func TestValidateRejectsDeadCapability(t *testing.T) {
	// A table where nobody holds earnings access leaves the wallet screen
	// unreachable for every role.
	table := NewTableWithGrants(map[Role][]Capability{
		RoleAdmin: {CapManageUsers, CapSystemSettings, CapViewAnalytics, CapManageContent, CapApproveSubmissions, CapAccountSettings},
	})
	gate := NewGate(table, slog.Default())

	if err := gate.Validate(); err == nil {
		t.Fatal("expected validation error for capability no role holds")
	}
}

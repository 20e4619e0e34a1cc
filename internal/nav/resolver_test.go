package nav

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/greenloop/greenloop/internal/rbac"
)

func newTestResolver() *Resolver {
	return NewResolver(rbac.NewGate(rbac.NewTable(), slog.Default()))
}

func slots(tabs []Tab) []Slot {
	out := make([]Slot, 0, len(tabs))
	for _, tab := range tabs {
		out = append(out, tab.Slot)
	}
	return out
}

func TestAdminMissionsSlotBecomesUsers(t *testing.T) {
	tabs := newTestResolver().Tabs(rbac.RoleAdmin)

	require.Equal(t, []Slot{SlotDashboard, SlotMissions, SlotProfile}, slots(tabs))

	missions := tabs[1]
	require.Equal(t, "Users", missions.Label)
	require.Equal(t, rbac.ScreenUserManagement, missions.Screen)
	require.Equal(t, []rbac.ScreenName{rbac.ScreenUserManagement}, missions.Screens)
}

func TestTrashHeroSeesAllFiveSlots(t *testing.T) {
	tabs := newTestResolver().Tabs(rbac.RoleTrashHero)

	require.Equal(t, []Slot{SlotDashboard, SlotMissions, SlotMap, SlotWallet, SlotProfile}, slots(tabs))

	missions := tabs[1]
	require.Equal(t, "Missions", missions.Label)
	require.Equal(t, rbac.ScreenMissionList, missions.Screen)

	// Suggest-cleanup is not a trash hero capability; the map tab narrows
	// to the map screen alone.
	require.Equal(t, []rbac.ScreenName{rbac.ScreenMap}, tabs[2].Screens)
}

func TestImpactWarriorWalletIsHidden(t *testing.T) {
	tabs := newTestResolver().Tabs(rbac.RoleImpactWarrior)

	require.Equal(t, []Slot{SlotDashboard, SlotMissions, SlotMap, SlotProfile}, slots(tabs))

	missions := tabs[1]
	require.Equal(t, "Missions", missions.Label)
	require.Equal(t, rbac.ScreenVolunteerMissions, missions.Screen)
	require.Equal(t, []rbac.ScreenName{rbac.ScreenVolunteerMissions, rbac.ScreenMissionList}, missions.Screens)
}

func TestEcoDefenderMissionsIncludePosting(t *testing.T) {
	tabs := newTestResolver().Tabs(rbac.RoleEcoDefender)

	require.Equal(t, []Slot{SlotDashboard, SlotMissions, SlotMap, SlotProfile}, slots(tabs))
	require.Equal(t,
		[]rbac.ScreenName{rbac.ScreenMissionList, rbac.ScreenPostMission, rbac.ScreenSubmissionReview},
		tabs[1].Screens)

	// No badge capability, so the profile tab opens account settings.
	require.Equal(t, rbac.ScreenAccountSettings, tabs[3].Screen)
}

func TestUnknownRoleGetsNoTabs(t *testing.T) {
	tabs := newTestResolver().Tabs(rbac.Role("ghost"))
	require.Empty(t, tabs)
}

func TestOrderIsStableAcrossRoles(t *testing.T) {
	resolver := newTestResolver()
	order := map[Slot]int{SlotDashboard: 0, SlotMissions: 1, SlotMap: 2, SlotWallet: 3, SlotProfile: 4}

	for _, role := range rbac.AllRoles() {
		tabs := resolver.Tabs(role)
		last := -1
		for _, tab := range tabs {
			idx, ok := order[tab.Slot]
			if !ok {
				t.Fatalf("unexpected slot %s", tab.Slot)
			}
			if idx <= last {
				t.Fatalf("slot %s out of order for %s", tab.Slot, role)
			}
			last = idx
		}
	}
}

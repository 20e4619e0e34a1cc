// Package nav resolves the primary navigation for a role. Destinations are
// fixed and ordered; which ones show, which concrete screen they open, and
// what label they carry all depend on the session role.
package nav

import "github.com/greenloop/greenloop/internal/rbac"

// Slot identifies a position in the primary navigation.
type Slot string

const (
	SlotDashboard Slot = "dashboard"
	SlotMissions  Slot = "missions"
	SlotMap       Slot = "map"
	SlotWallet    Slot = "wallet"
	SlotProfile   Slot = "profile"
)

// Destination describes one primary navigation entry. Screens lists the
// concrete screens reachable under the destination; ScreensFor overrides
// the set for specific roles (the admin Missions slot opens user
// management instead of a mission list). LabelFor overrides the label the
// same way.
type Destination struct {
	Slot       Slot
	Label      string
	LabelFor   map[rbac.Role]string
	Screens    []rbac.ScreenName
	ScreensFor map[rbac.Role][]rbac.ScreenName
}

// Destinations returns the fixed, ordered primary navigation. The order is
// part of the contract: resolvers must never reorder entries.
func Destinations() []Destination {
	return []Destination{
		{
			Slot:  SlotDashboard,
			Label: "Dashboard",
			ScreensFor: map[rbac.Role][]rbac.ScreenName{
				rbac.RoleAdmin:         {rbac.ScreenAdminDashboard, rbac.ScreenAnalytics},
				rbac.RoleEcoDefender:   {rbac.ScreenEcoDefenderDashboard, rbac.ScreenImpactReports},
				rbac.RoleTrashHero:     {rbac.ScreenTrashHeroDashboard},
				rbac.RoleImpactWarrior: {rbac.ScreenImpactWarriorDashboard},
			},
		},
		{
			Slot:    SlotMissions,
			Label:   "Missions",
			Screens: []rbac.ScreenName{rbac.ScreenMissionList, rbac.ScreenMissionDetail},
			LabelFor: map[rbac.Role]string{
				rbac.RoleAdmin: "Users",
			},
			ScreensFor: map[rbac.Role][]rbac.ScreenName{
				rbac.RoleAdmin:         {rbac.ScreenUserManagement},
				rbac.RoleEcoDefender:   {rbac.ScreenMissionList, rbac.ScreenPostMission, rbac.ScreenSubmissionReview},
				rbac.RoleImpactWarrior: {rbac.ScreenVolunteerMissions, rbac.ScreenMissionList},
			},
		},
		{
			Slot:    SlotMap,
			Label:   "Map",
			Screens: []rbac.ScreenName{rbac.ScreenMap, rbac.ScreenSuggestCleanup},
		},
		{
			Slot:    SlotWallet,
			Label:   "Wallet",
			Screens: []rbac.ScreenName{rbac.ScreenWallet},
		},
		{
			Slot:    SlotProfile,
			Label:   "Profile",
			Screens: []rbac.ScreenName{rbac.ScreenProfile, rbac.ScreenBadges, rbac.ScreenAccountSettings},
		},
	}
}

package rbac

import (
	"fmt"
	"log/slog"
)

// ScreenName identifies an application screen gated by exactly one
// capability.
type ScreenName string

const (
	ScreenAdminDashboard      ScreenName = "admin_dashboard"
	ScreenUserManagement      ScreenName = "user_management"
	ScreenAnalytics           ScreenName = "analytics"
	ScreenContentModeration   ScreenName = "content_moderation"
	ScreenSubmissionApprovals ScreenName = "submission_approvals"

	ScreenEcoDefenderDashboard ScreenName = "eco_defender_dashboard"
	ScreenPostMission          ScreenName = "post_mission"
	ScreenSubmissionReview     ScreenName = "submission_review"
	ScreenImpactReports        ScreenName = "impact_reports"

	ScreenTrashHeroDashboard ScreenName = "trash_hero_dashboard"
	ScreenMissionList        ScreenName = "mission_list"
	ScreenMissionDetail      ScreenName = "mission_detail"
	ScreenMap                ScreenName = "map"
	ScreenWallet             ScreenName = "wallet"

	ScreenImpactWarriorDashboard ScreenName = "impact_warrior_dashboard"
	ScreenVolunteerMissions      ScreenName = "volunteer_missions"
	ScreenCommunityEvents        ScreenName = "community_events"
	ScreenSuggestCleanup         ScreenName = "suggest_cleanup"
	ScreenReportIssue            ScreenName = "report_issue"

	ScreenProfile         ScreenName = "profile"
	ScreenBadges          ScreenName = "badges"
	ScreenAccountSettings ScreenName = "account_settings"
)

// Every registered screen requires exactly one capability. There is no
// AND/OR composition at the screen level.
var screenGates = map[ScreenName]Capability{
	ScreenAdminDashboard:      CapSystemSettings,
	ScreenUserManagement:      CapManageUsers,
	ScreenAnalytics:           CapViewAnalytics,
	ScreenContentModeration:   CapManageContent,
	ScreenSubmissionApprovals: CapApproveSubmissions,

	ScreenEcoDefenderDashboard: CapPostMissions,
	ScreenPostMission:          CapPostMissions,
	ScreenSubmissionReview:     CapReviewSubmissions,
	ScreenImpactReports:        CapViewImpactReports,

	ScreenTrashHeroDashboard: CapAcceptMissions,
	ScreenMissionList:        CapViewMissions,
	ScreenMissionDetail:      CapViewMissions,
	ScreenMap:                CapViewMissions,
	ScreenWallet:             CapViewEarnings,

	ScreenImpactWarriorDashboard: CapImpactWarriorImpact,
	ScreenVolunteerMissions:      CapImpactWarriorMissions,
	ScreenCommunityEvents:        CapCommunityVolunteer,
	ScreenSuggestCleanup:         CapSuggestCleanup,
	ScreenReportIssue:            CapReportIssues,

	ScreenProfile:         CapEarnBadges,
	ScreenBadges:          CapEarnBadges,
	ScreenAccountSettings: CapAccountSettings,
}

// Gate resolves screen access by looking up the screen's required
// capability in the permission table. Queries for unregistered screens are
// configuration defects: the gate denies them and logs once per query.
type Gate struct {
	table  *Table
	logger *slog.Logger
}

// NewGate constructs a Gate over the permission table.
func NewGate(table *Table, logger *slog.Logger) *Gate {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gate{table: table, logger: logger}
}

// RequiredCapability returns the capability gating a screen, with ok=false
// for unregistered screens.
func (g *Gate) RequiredCapability(screen ScreenName) (Capability, bool) {
	cap, ok := screenGates[screen]
	return cap, ok
}

// CanAccessScreen reports whether the role may open the screen. An
// unregistered screen is never accessible.
func (g *Gate) CanAccessScreen(role Role, screen ScreenName) bool {
	cap, ok := screenGates[screen]
	if !ok {
		g.logger.Warn("screen gate query for unregistered screen",
			slog.String("screen", string(screen)),
			slog.String("role", string(role)))
		return false
	}
	return g.table.HasPermission(role, cap)
}

// RegisteredScreens lists every screen known to the gate.
func (g *Gate) RegisteredScreens() []ScreenName {
	out := make([]ScreenName, 0, len(screenGates))
	for s := range screenGates {
		out = append(out, s)
	}
	return out
}

// Validate asserts that every capability referenced by a screen gate is
// held by at least one role. A dead capability is a build defect and fails
// startup rather than silently locking a screen for everyone.
func (g *Gate) Validate() error {
	for screen, cap := range screenGates {
		if !g.table.anyoneHolds(cap) {
			return fmt.Errorf("rbac: screen %s gated by capability %s that no role holds", screen, cap)
		}
	}
	return nil
}

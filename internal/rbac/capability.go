package rbac

// Capability is an opaque named permission. A role either holds a
// capability or it does not; capabilities are never parameterized or
// scoped to a resource instance.
type Capability string

const (
	CapManageUsers        Capability = "users.manage"
	CapSystemSettings     Capability = "system.settings"
	CapViewAnalytics      Capability = "analytics.view"
	CapManageContent      Capability = "content.manage"
	CapApproveSubmissions Capability = "submissions.approve"

	CapPostMissions       Capability = "missions.post"
	CapReviewSubmissions  Capability = "submissions.review"
	CapViewImpactReports  Capability = "reports.impact"

	CapViewMissions   Capability = "missions.view"
	CapAcceptMissions Capability = "missions.accept"
	CapViewEarnings   Capability = "earnings.view"
	CapEarnBadges     Capability = "badges.earn"
	CapReportIssues   Capability = "issues.report"

	CapImpactWarriorMissions Capability = "impact_warrior.missions"
	CapImpactWarriorImpact   Capability = "impact_warrior.impact"
	CapCommunityVolunteer    Capability = "community.volunteer"
	CapSuggestCleanup        Capability = "cleanup.suggest"

	CapAccountSettings Capability = "account.settings"
)

// AllCapabilities lists every capability in the closed enumeration.
func AllCapabilities() []Capability {
	return []Capability{
		CapManageUsers,
		CapSystemSettings,
		CapViewAnalytics,
		CapManageContent,
		CapApproveSubmissions,
		CapPostMissions,
		CapReviewSubmissions,
		CapViewImpactReports,
		CapViewMissions,
		CapAcceptMissions,
		CapViewEarnings,
		CapEarnBadges,
		CapReportIssues,
		CapImpactWarriorMissions,
		CapImpactWarriorImpact,
		CapCommunityVolunteer,
		CapSuggestCleanup,
		CapAccountSettings,
	}
}

package rbac

import "sort"

// Table answers role-to-capability queries from a fixed mapping built at
// construction time. It holds no mutable state and is safe for concurrent
// use. Unknown roles resolve to the empty capability set, so every check
// against them fails closed.
type Table struct {
	grants map[Role]map[Capability]struct{}
}

// Capability sets are enumerated independently per role. Sets may overlap;
// there is deliberately no inheritance between roles.
var defaultGrants = map[Role][]Capability{
	RoleAdmin: {
		CapManageUsers,
		CapSystemSettings,
		CapViewAnalytics,
		CapManageContent,
		CapApproveSubmissions,
		CapAccountSettings,
	},
	RoleEcoDefender: {
		CapPostMissions,
		CapViewMissions,
		CapReviewSubmissions,
		CapViewImpactReports,
		CapAccountSettings,
	},
	RoleTrashHero: {
		CapViewMissions,
		CapAcceptMissions,
		CapViewEarnings,
		CapEarnBadges,
		CapReportIssues,
	},
	RoleImpactWarrior: {
		CapViewMissions,
		CapReportIssues,
		CapEarnBadges,
		CapImpactWarriorMissions,
		CapImpactWarriorImpact,
		CapCommunityVolunteer,
		CapSuggestCleanup,
	},
}

// NewTable builds the permission table from the built-in grants.
func NewTable() *Table {
	return NewTableWithGrants(defaultGrants)
}

// NewTableWithGrants builds a permission table from an explicit mapping.
// Used by tests that need a reduced table.
func NewTableWithGrants(grants map[Role][]Capability) *Table {
	t := &Table{grants: make(map[Role]map[Capability]struct{}, len(grants))}
	for role, caps := range grants {
		set := make(map[Capability]struct{}, len(caps))
		for _, c := range caps {
			set[c] = struct{}{}
		}
		t.grants[role] = set
	}
	return t
}

// PermissionsFor returns the sorted capability set held by a role. The
// result is a copy; callers may mutate it freely. Unknown roles yield an
// empty, non-nil slice.
func (t *Table) PermissionsFor(role Role) []Capability {
	set := t.grants[role]
	out := make([]Capability, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// HasPermission reports whether the role holds the capability.
func (t *Table) HasPermission(role Role, cap Capability) bool {
	_, ok := t.grants[role][cap]
	return ok
}

// anyoneHolds reports whether at least one role holds the capability.
func (t *Table) anyoneHolds(cap Capability) bool {
	for _, set := range t.grants {
		if _, ok := set[cap]; ok {
			return true
		}
	}
	return false
}

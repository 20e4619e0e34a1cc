package nav

import "github.com/greenloop/greenloop/internal/rbac"

// Tab is a resolved navigation entry for one role. Screen is the first
// permitted screen under the destination and is what the tab opens;
// Screens lists every permitted screen reachable from it.
type Tab struct {
	Slot    Slot              `json:"slot"`
	Label   string            `json:"label"`
	Screen  rbac.ScreenName   `json:"screen"`
	Screens []rbac.ScreenName `json:"screens"`
}

// Resolver decides per-destination visibility by asking the screen gate.
// Resolution is pure and re-evaluated on every call, so a role change
// simply produces a different tab set on the next request.
type Resolver struct {
	gate         *rbac.Gate
	destinations []Destination
}

// NewResolver builds a Resolver over the default destination list.
func NewResolver(gate *rbac.Gate) *Resolver {
	return &Resolver{gate: gate, destinations: Destinations()}
}

// Tabs returns the visible navigation for a role in fixed destination
// order. A destination is shown when at least one of its reachable screens
// is permitted; destinations with no permitted screens are omitted.
func (r *Resolver) Tabs(role rbac.Role) []Tab {
	tabs := make([]Tab, 0, len(r.destinations))
	for _, dest := range r.destinations {
		screens := dest.Screens
		if override, ok := dest.ScreensFor[role]; ok {
			screens = override
		}

		permitted := make([]rbac.ScreenName, 0, len(screens))
		for _, screen := range screens {
			if r.gate.CanAccessScreen(role, screen) {
				permitted = append(permitted, screen)
			}
		}
		if len(permitted) == 0 {
			continue
		}

		label := dest.Label
		if override, ok := dest.LabelFor[role]; ok {
			label = override
		}

		tabs = append(tabs, Tab{
			Slot:    dest.Slot,
			Label:   label,
			Screen:  permitted[0],
			Screens: permitted,
		})
	}
	return tabs
}

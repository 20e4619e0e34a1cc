package rbac

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Role identifies one of the fixed account types. Roles are assigned at
// login and never change for the lifetime of a session.
type Role string

const (
	RoleAdmin         Role = "admin"
	RoleEcoDefender   Role = "eco_defender"
	RoleTrashHero     Role = "trash_hero"
	RoleImpactWarrior Role = "impact_warrior"
)

// RoleMeta carries the display attributes for a role. All role-dependent
// presentation is driven from this table instead of ad hoc string switches.
type RoleMeta struct {
	DisplayName string `json:"display_name"`
	Color       string `json:"color"`
	Icon        string `json:"icon"`
}

var roleOrder = []Role{RoleAdmin, RoleEcoDefender, RoleTrashHero, RoleImpactWarrior}

var titleCaser = cases.Title(language.English)

var roleMeta = map[Role]RoleMeta{
	RoleAdmin:         {DisplayName: displayName(RoleAdmin), Color: "#B71C1C", Icon: "shield"},
	RoleEcoDefender:   {DisplayName: displayName(RoleEcoDefender), Color: "#1B5E20", Icon: "briefcase"},
	RoleTrashHero:     {DisplayName: displayName(RoleTrashHero), Color: "#0D47A1", Icon: "truck"},
	RoleImpactWarrior: {DisplayName: displayName(RoleImpactWarrior), Color: "#E65100", Icon: "leaf"},
}

func displayName(r Role) string {
	return titleCaser.String(strings.ReplaceAll(string(r), "_", " "))
}

// Valid reports whether r belongs to the closed role enumeration.
func (r Role) Valid() bool {
	_, ok := roleMeta[r]
	return ok
}

// Meta returns the display metadata for a role. Unknown roles get a zero
// RoleMeta so callers never branch on validity for presentation.
func (r Role) Meta() RoleMeta {
	return roleMeta[r]
}

// DisplayName returns the human readable role name.
func (r Role) DisplayName() string {
	return roleMeta[r].DisplayName
}

// ParseRole maps a stored identifier onto the closed enumeration. Unknown
// values are returned as-is with ok=false so that permission checks fail
// closed further down the chain.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	return r, r.Valid()
}

// AllRoles returns the roles in their fixed display order.
func AllRoles() []Role {
	out := make([]Role, len(roleOrder))
	copy(out, roleOrder)
	return out
}

package members

import (
	"sort"
	"strings"
)

// Role is a named capability grant
type Role = string

const (
	// RoleAdmin absorbs every other role
	RoleAdmin Role = "admin"
	// RoleCalendar manages the events calendar
	RoleCalendar Role = "calendar"
	// RoleEditor edits articles and news
	RoleEditor Role = "editor"
	// RoleInspector reviews game uploads
	RoleInspector Role = "inspector"
	// RoleMembership manages member records
	RoleMembership Role = "membership"
	// RoleTester sees functionality before general release
	RoleTester Role = "tester"
	// RoleTranslator maintains translations
	RoleTranslator Role = "translator"
	// RoleTreasurer handles payments and refunds
	RoleTreasurer Role = "treasurer"
)

// AllRoles returns the fixed role enumeration in canonical (sorted) order.
func AllRoles() []Role {
	return []Role{
		RoleAdmin,
		RoleCalendar,
		RoleEditor,
		RoleInspector,
		RoleMembership,
		RoleTester,
		RoleTranslator,
		RoleTreasurer,
	}
}

// ValidRole reports whether the token is part of the fixed enumeration.
func ValidRole(role string) bool {
	for _, r := range AllRoles() {
		if r == role {
			return true
		}
	}
	return false
}

// ParseRoleSet splits a canonical roles string into a set. Unrecognized
// tokens are dropped.
func ParseRoleSet(roles string) map[Role]struct{} {
	set := map[Role]struct{}{}
	for _, token := range strings.Fields(roles) {
		if ValidRole(token) {
			set[token] = struct{}{}
		}
	}
	return set
}

// CanonicalRoles normalizes loosely-typed role input into the canonical
// storage representation: recognized tokens only, deduplicated, sorted and
// space-joined. The admin role absorbs all others; an empty result is the
// empty string (no roles).
func CanonicalRoles(tokens ...string) string {
	set := map[Role]struct{}{}
	for _, raw := range tokens {
		for _, token := range strings.FieldsFunc(raw, notWordRune) {
			if ValidRole(token) {
				set[token] = struct{}{}
			}
		}
	}

	if _, ok := set[RoleAdmin]; ok {
		return RoleAdmin
	}

	if len(set) == 0 {
		return ""
	}

	out := make([]string, 0, len(set))
	for role := range set {
		out = append(out, role)
	}
	sort.Strings(out)

	return strings.Join(out, " ")
}

func notWordRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
		return false
	}
	return true
}

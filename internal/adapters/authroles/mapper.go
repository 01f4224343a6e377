// Package authroles maps identity provider groups to dashboard roles.
package authroles

import (
	"strings"

	domainauth "github.com/target/grailed-admin/internal/domain/auth"
)

// GroupMapper grants the highest role whose group list intersects the user's groups.
// Group names compare case-insensitively; LDAP distinguished names match on their CN.
type GroupMapper struct {
	AdminGroups    []string
	OperatorGroups []string
	// Default is granted when no group matches. Zero means guest.
	Default domainauth.Role
}

// Map implements ports.RoleMapper.
func (m GroupMapper) Map(groups []string) domainauth.Role {
	have := make(map[string]struct{}, len(groups))
	for _, g := range groups {
		have[normalizeGroup(g)] = struct{}{}
	}
	if anyIn(have, m.AdminGroups) {
		return domainauth.RoleAdmin
	}
	if anyIn(have, m.OperatorGroups) {
		return domainauth.RoleOperator
	}
	if m.Default != "" {
		return m.Default
	}
	return domainauth.RoleGuest
}

func anyIn(have map[string]struct{}, wanted []string) bool {
	for _, w := range wanted {
		if w = normalizeGroup(w); w == "" {
			continue
		}
		if _, ok := have[w]; ok {
			return true
		}
	}
	return false
}

// normalizeGroup lowercases g and reduces "CN=Ops,OU=Groups,DC=corp" to "ops".
func normalizeGroup(g string) string {
	g = strings.TrimSpace(g)
	if len(g) > 3 && strings.EqualFold(g[:3], "cn=") {
		g = g[3:]
		if i := strings.IndexByte(g, ','); i >= 0 {
			g = g[:i]
		}
	}
	return strings.ToLower(strings.TrimSpace(g))
}

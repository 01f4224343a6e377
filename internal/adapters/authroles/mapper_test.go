package authroles

import (
	"testing"

	"github.com/stretchr/testify/assert"

	domainauth "github.com/target/grailed-admin/internal/domain/auth"
)

func TestGroupMapper_Map(t *testing.T) {
	m := GroupMapper{
		AdminGroups:    []string{"Grailed-Admins"},
		OperatorGroups: []string{"scraper-ops", ""},
	}

	tests := []struct {
		name   string
		groups []string
		want   domainauth.Role
	}{
		{"admin wins over operator", []string{"scraper-ops", "grailed-admins"}, domainauth.RoleAdmin},
		{"operator", []string{"SCRAPER-OPS"}, domainauth.RoleOperator},
		{"ldap dn", []string{"CN=Grailed-Admins,OU=Groups,DC=corp,DC=example"}, domainauth.RoleAdmin},
		{"no match", []string{"finance"}, domainauth.RoleGuest},
		{"empty", nil, domainauth.RoleGuest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, m.Map(tt.groups))
		})
	}
}

func TestGroupMapper_Default(t *testing.T) {
	m := GroupMapper{Default: domainauth.RoleOperator}
	assert.Equal(t, domainauth.RoleOperator, m.Map([]string{"anyone"}))
}

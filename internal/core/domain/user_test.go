package domain_test

import (
	"testing"

	"github.com/lorrc/helpdesk-core/internal/core/domain"
	"github.com/stretchr/testify/assert"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		raw  string
		want domain.Role
	}{
		{"gestor", domain.RoleManager},
		{"MANAGER", domain.RoleManager},
		{"ROLE_GESTOR", domain.RoleManager},
		{"Técnico", domain.RoleTechnician},
		{"tecnico", domain.RoleTechnician},
		{"technician", domain.RoleTechnician},
		{"Administrador", domain.RoleAdmin},
		{"admin", domain.RoleAdmin},
		{"usuario", domain.RoleUser},
		{"Solicitante", domain.RoleUser},
		{"", domain.RoleUser},
		{"superuser", domain.RoleUser},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.ParseRole(tt.raw))
		})
	}
}

func TestRole_Capabilities(t *testing.T) {
	assert.False(t, domain.RoleUser.IsStaff())
	assert.True(t, domain.RoleTechnician.IsStaff())
	assert.True(t, domain.RoleManager.IsStaff())
	assert.True(t, domain.RoleAdmin.IsStaff())

	assert.False(t, domain.RoleTechnician.CanAssignOthers())
	assert.True(t, domain.RoleManager.CanAssignOthers())
	assert.True(t, domain.RoleAdmin.CanAssignOthers())
}

func TestUser_Membership(t *testing.T) {
	team := int64(7)
	u := &domain.User{Login: "Ana", TeamID: &team}

	assert.True(t, u.HasTeam())
	assert.True(t, u.InTeam(7))
	assert.False(t, u.InTeam(8))
	assert.True(t, u.HasLogin("ana"))
	assert.False(t, u.HasLogin(""))

	var nobody *domain.User
	assert.False(t, nobody.HasTeam())
	assert.False(t, nobody.HasLogin("ana"))
}

func TestParseTeamScope(t *testing.T) {
	id := func(v int64) *int64 { return &v }

	assert.True(t, domain.ParseTeamScope(nil).IsAll())
	assert.True(t, domain.ParseTeamScope(id(0)).IsAll())
	assert.True(t, domain.ParseTeamScope(id(-1)).IsNone())

	scope := domain.ParseTeamScope(id(4))
	teamID, ok := scope.TeamID()
	assert.True(t, ok)
	assert.Equal(t, int64(4), teamID)
	assert.Equal(t, int64(4), *scope.Param())

	assert.True(t, domain.OwnTeamScope(&domain.User{}).IsNone())
	assert.Equal(t, domain.NoTeamSentinel, *domain.NoTeam().Param())
	assert.Nil(t, domain.AllTeams().Param())
}

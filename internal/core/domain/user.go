package domain

import "strings"

// Role is the normalized access role of a user. Raw role strings coming
// from the directory or a token are resolved once with ParseRole.
type Role string

const (
	RoleUser       Role = "USER"
	RoleTechnician Role = "TECHNICIAN"
	RoleManager    Role = "MANAGER"
	RoleAdmin      Role = "ADMIN"
)

var roleSynonyms = map[string]Role{
	"user":          RoleUser,
	"usuario":       RoleUser,
	"requester":     RoleUser,
	"solicitante":   RoleUser,
	"cliente":       RoleUser,
	"technician":    RoleTechnician,
	"tecnico":       RoleTechnician,
	"tech":          RoleTechnician,
	"analyst":       RoleTechnician,
	"analista":      RoleTechnician,
	"manager":       RoleManager,
	"gestor":        RoleManager,
	"gerente":       RoleManager,
	"admin":         RoleAdmin,
	"administrator": RoleAdmin,
	"administrador": RoleAdmin,
}

// ParseRole resolves a raw, possibly localized role name. Matching ignores
// case, accents and a leading "ROLE_" prefix. Anything unrecognized is a
// plain user, which grants the narrowest visibility.
func ParseRole(raw string) Role {
	key := Fold(raw)
	key = strings.TrimPrefix(key, "role_")
	key = strings.TrimPrefix(key, "role ")
	if role, ok := roleSynonyms[key]; ok {
		return role
	}
	return RoleUser
}

func (r Role) IsValid() bool {
	switch r {
	case RoleUser, RoleTechnician, RoleManager, RoleAdmin:
		return true
	}
	return false
}

// IsStaff reports whether the role works tickets rather than only raising them.
func (r Role) IsStaff() bool {
	return r == RoleTechnician || r == RoleManager || r == RoleAdmin
}

// CanAssignOthers reports whether the role may hand tickets to someone else.
func (r Role) CanAssignOthers() bool {
	return r == RoleManager || r == RoleAdmin
}

// User is an identity resolved from the user directory. It is also the
// caller type threaded through every core operation.
type User struct {
	ID     int64
	Name   string
	Login  string
	Email  string
	Role   Role
	TeamID *int64
}

// HasTeam reports whether the user belongs to a team.
func (u *User) HasTeam() bool {
	return u != nil && u.TeamID != nil
}

// InTeam reports whether the user belongs to the given team.
func (u *User) InTeam(teamID int64) bool {
	return u.HasTeam() && *u.TeamID == teamID
}

// HasLogin reports whether the user's login matches, ignoring case.
func (u *User) HasLogin(login string) bool {
	return u != nil && login != "" && strings.EqualFold(u.Login, login)
}

// Team groups users for queue routing and reporting.
type Team struct {
	ID   int64
	Name string
}

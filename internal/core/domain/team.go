package domain

// NoTeamSentinel is the team id meaning "the caller has no team".
const NoTeamSentinel int64 = -1

type scopeKind int

const (
	scopeAll scopeKind = iota
	scopeTeam
	scopeNone
)

// TeamScope restricts aggregates to a team. The zero value covers all teams.
type TeamScope struct {
	kind   scopeKind
	teamID int64
}

func AllTeams() TeamScope { return TeamScope{kind: scopeAll} }

func OnlyTeam(id int64) TeamScope { return TeamScope{kind: scopeTeam, teamID: id} }

// NoTeam yields an empty view, distinct from AllTeams.
func NoTeam() TeamScope { return TeamScope{kind: scopeNone} }

// ParseTeamScope maps a raw team id parameter: absent or zero means all
// teams, a negative id (the -1 sentinel) means an empty view.
func ParseTeamScope(id *int64) TeamScope {
	switch {
	case id == nil || *id == 0:
		return AllTeams()
	case *id < 0:
		return NoTeam()
	default:
		return OnlyTeam(*id)
	}
}

// OwnTeamScope scopes a user to their own team, or to nothing.
func OwnTeamScope(u *User) TeamScope {
	if !u.HasTeam() {
		return NoTeam()
	}
	return OnlyTeam(*u.TeamID)
}

func (s TeamScope) IsAll() bool  { return s.kind == scopeAll }
func (s TeamScope) IsNone() bool { return s.kind == scopeNone }

// TeamID returns the scoped team, if the scope names one.
func (s TeamScope) TeamID() (int64, bool) {
	return s.teamID, s.kind == scopeTeam
}

// Param renders the scope back into the raw parameter form.
func (s TeamScope) Param() *int64 {
	switch s.kind {
	case scopeTeam:
		id := s.teamID
		return &id
	case scopeNone:
		id := NoTeamSentinel
		return &id
	}
	return nil
}

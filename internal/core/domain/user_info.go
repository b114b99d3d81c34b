package domain

// UserInfo is a lightweight projection for displaying user details.
type UserInfo struct {
	ID     *int64 `json:"id"`
	Name   string `json:"name"`
	TeamID *int64 `json:"teamId"`
}

// Placeholder names used by views when a reference is missing.
const (
	UnknownRequester  = "Unknown"
	PendingTechnician = "Pending"
	NoCategory        = "Uncategorized"
	NoProblem         = "Other"
)

func newUserInfo(u *User, placeholder string) UserInfo {
	if u == nil {
		return UserInfo{Name: placeholder}
	}
	id := u.ID
	return UserInfo{ID: &id, Name: u.Name, TeamID: u.TeamID}
}

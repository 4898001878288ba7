package models

// Role is a user's rank in the room. Higher roles include the lower ones.
type Role int

const (
	RoleUser Role = iota
	RoleSpecial
	RoleModerator
	RoleManager
	RoleAdmin
)

type User struct {
	ID       string `json:"_id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
	Avatar   string `json:"avatar,omitempty"`
}

func (u User) IsModerator() bool {
	return u.Role >= RoleModerator
}

type Media struct {
	ID       string `json:"_id"`
	Artist   string `json:"artist"`
	Title    string `json:"title"`
	Duration int    `json:"duration"`
	Start    int    `json:"start,omitempty"`
	End      int    `json:"end,omitempty"`
}

// NowResponse is the bootstrap snapshot returned by GET /v1/now.
type NowResponse struct {
	User     *User    `json:"user"`
	Users    []User   `json:"users"`
	Waitlist []string `json:"waitlist"`
	Locked   bool     `json:"waitlistLocked"`
	Booth    *Advance `json:"booth"`
	MOTD     string   `json:"motd"`
}

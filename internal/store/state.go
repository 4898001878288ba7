package store

// Slice names one independent part of State.
type Slice int

const (
	SliceChat Slice = iota
	SliceWaitlist
	SliceBooth
	SliceVotes
	SliceUsers
	SliceAuth
	SliceSettings
	SliceConfig
)

func (s Slice) String() string {
	switch s {
	case SliceChat:
		return "chat"
	case SliceWaitlist:
		return "waitlist"
	case SliceBooth:
		return "booth"
	case SliceVotes:
		return "votes"
	case SliceUsers:
		return "users"
	case SliceAuth:
		return "auth"
	case SliceSettings:
		return "settings"
	case SliceConfig:
		return "config"
	}
	return "unknown"
}

// State is the whole client state. Every slice is reduced on its own and
// none reads another.
type State struct {
	Chat     ChatState
	Waitlist WaitlistState
	Booth    BoothState
	Votes    VotesState
	Users    UsersState
	Auth     AuthState
	Settings SettingsState
	Config   ConfigState
}

func InitialState() State {
	return State{Settings: DefaultSettings()}
}

// Reduce applies in to every slice.
func Reduce(s State, in Intent) State {
	return State{
		Chat:     reduceChat(s.Chat, in),
		Waitlist: reduceWaitlist(s.Waitlist, in),
		Booth:    reduceBooth(s.Booth, in),
		Votes:    reduceVotes(s.Votes, in),
		Users:    reduceUsers(s.Users, in),
		Auth:     reduceAuth(s.Auth, in),
		Settings: reduceSettings(s.Settings, in),
		Config:   reduceConfig(s.Config, in),
	}
}

// Revision changes whenever the slice changes.
func (s State) Revision(sl Slice) uint64 {
	switch sl {
	case SliceChat:
		return s.Chat.Rev
	case SliceWaitlist:
		return s.Waitlist.Rev
	case SliceBooth:
		return s.Booth.Rev
	case SliceVotes:
		return s.Votes.Rev
	case SliceUsers:
		return s.Users.Rev
	case SliceAuth:
		return s.Auth.Rev
	case SliceSettings:
		return s.Settings.Rev
	case SliceConfig:
		return s.Config.Rev
	}
	return 0
}

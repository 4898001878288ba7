package selectors

import (
	"strings"

	"room-client/internal/markup"
	"room-client/internal/models"
	"room-client/internal/store"
)

func Users(st store.State) map[string]models.User {
	return st.Users.ByID
}

// CurrentUser prefers the live users entry over the session copy, so role
// and name changes show up.
func CurrentUser(st store.State) *models.User {
	if st.Auth.User == nil {
		return nil
	}
	if u, ok := st.Users.ByID[st.Auth.User.ID]; ok {
		return &u
	}
	u := *st.Auth.User
	return &u
}

func Token(st store.State) string {
	return st.Auth.Token
}

func IsModerator(st store.State) bool {
	u := CurrentUser(st)
	return u != nil && u.IsModerator()
}

func UserByName(st store.State, name string) *models.User {
	name = strings.TrimPrefix(name, "@")
	for _, u := range st.Users.ByID {
		if strings.EqualFold(u.Username, name) {
			return &u
		}
	}
	return nil
}

func NotificationSettings(st store.State) store.NotificationSettings {
	return st.Settings.Notifications
}

// Viewer is the identity incoming messages are checked against for
// mentions, or nil before the session is known.
func Viewer(st store.State) *markup.Viewer {
	u := CurrentUser(st)
	if u == nil {
		return nil
	}
	return &markup.Viewer{
		User:       *u,
		InWaitlist: WaitlistPosition(st) >= 0,
		IsDJ:       st.Booth.DJID != "" && st.Booth.DJID == u.ID,
	}
}

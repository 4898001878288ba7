package selectors

import (
	"slices"

	"room-client/internal/models"
	"room-client/internal/store"
)

func (s *Selectors) initWaitlist() {
	s.waitlistUsers = createSelector(revs(store.SliceWaitlist, store.SliceUsers), func(st store.State) []models.User {
		out := make([]models.User, 0, len(st.Waitlist.UserIDs))
		for _, id := range st.Waitlist.UserIDs {
			u, ok := st.Users.ByID[id]
			if !ok {
				u = models.User{ID: id}
			}
			out = append(out, u)
		}
		return out
	})
}

func WaitlistUserIDs(st store.State) []string {
	return st.Waitlist.UserIDs
}

func (s *Selectors) WaitlistUsers(st store.State) []models.User {
	return s.waitlistUsers(st)
}

// WaitlistPosition is the viewer's index in the waitlist, or -1.
func WaitlistPosition(st store.State) int {
	if st.Auth.User == nil {
		return -1
	}
	return slices.Index(st.Waitlist.UserIDs, st.Auth.User.ID)
}

func IsWaitlistLocked(st store.State) bool {
	return st.Waitlist.Locked
}

package selectors

import (
	"room-client/internal/models"
	"room-client/internal/store"
)

func CurrentDJID(st store.State) string {
	return st.Booth.DJID
}

// DJ returns the user in the booth, or nil when it is empty. A DJ missing
// from the users list is returned with only the ID set.
func DJ(st store.State) *models.User {
	id := st.Booth.DJID
	if id == "" {
		return nil
	}
	if u, ok := st.Users.ByID[id]; ok {
		return &u
	}
	return &models.User{ID: id}
}

func Media(st store.State) *models.Media {
	return st.Booth.Media
}

type VoteCounts struct {
	Upvotes   int `json:"upvotes"`
	Downvotes int `json:"downvotes"`
	Favorites int `json:"favorites"`
}

func VoteStats(st store.State) VoteCounts {
	return VoteCounts{
		Upvotes:   len(st.Votes.Upvotes),
		Downvotes: len(st.Votes.Downvotes),
		Favorites: len(st.Votes.Favorites),
	}
}

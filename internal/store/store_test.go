package store

import (
	"sync"
	"testing"

	"room-client/internal/models"
)

func TestStore_SubscribeOnlyNotifiesChangedSlice(t *testing.T) {
	s := New(InitialState())

	var chatCalls, boothCalls int
	s.Subscribe(SliceChat, func(State, Intent) { chatCalls++ })
	s.Subscribe(SliceBooth, func(State, Intent) { boothCalls++ })

	s.Dispatch(Intent{Kind: KindLog, Payload: models.ChatMessage{ID: "1", Text: "x"}})
	s.Dispatch(Intent{Kind: KindAdvance, Payload: models.Advance{DJID: "dj"}})

	if chatCalls != 1 || boothCalls != 1 {
		t.Fatalf("chat=%d booth=%d, want 1 and 1", chatCalls, boothCalls)
	}
}

func TestStore_Unsubscribe(t *testing.T) {
	s := New(InitialState())
	calls := 0
	unsubscribe := s.Subscribe(SliceChat, func(State, Intent) { calls++ })

	s.Dispatch(Intent{Kind: KindLog, Payload: models.ChatMessage{ID: "1"}})
	unsubscribe()
	unsubscribe()
	s.Dispatch(Intent{Kind: KindLog, Payload: models.ChatMessage{ID: "2"}})

	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
}

func TestStore_ReentrantDispatchKeepsOrder(t *testing.T) {
	s := New(InitialState())
	var seen []string
	s.Subscribe(SliceChat, func(st State, in Intent) {
		msg := in.Payload.(models.ChatMessage)
		seen = append(seen, msg.ID)
		if msg.ID == "1" {
			s.Dispatch(Intent{Kind: KindLog, Payload: models.ChatMessage{ID: "2"}})
			// reduced synchronously even while listeners drain
			if n := len(s.State().Chat.Messages); n != 2 {
				t.Errorf("expected 2 messages after nested dispatch, got %d", n)
			}
		}
	})

	s.Dispatch(Intent{Kind: KindLog, Payload: models.ChatMessage{ID: "1"}})

	if len(seen) != 2 || seen[0] != "1" || seen[1] != "2" {
		t.Fatalf("unexpected notification order %v", seen)
	}
}

func TestStore_ConcurrentDispatch(t *testing.T) {
	s := New(InitialState())
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				s.Dispatch(Intent{Kind: KindLog, Payload: models.ChatMessage{ID: string(rune('a'+g)) + "-" + string(rune('0'+i%10)) + string(rune('0'+i/10))}})
			}
		}(g)
	}
	wg.Wait()

	if n := len(s.State().Chat.Messages); n != 400 {
		t.Fatalf("expected 400 messages, got %d", n)
	}
}

func TestStore_ClosedStoreIgnoresIntents(t *testing.T) {
	s := New(InitialState())
	calls := 0
	s.Subscribe(SliceChat, func(State, Intent) { calls++ })
	s.Close()

	s.Dispatch(Intent{Kind: KindLog, Payload: models.ChatMessage{ID: "1"}})

	if calls != 0 || len(s.State().Chat.Messages) != 0 {
		t.Fatal("closed store should ignore intents")
	}
}

func TestStore_LoadNowPopulatesSlices(t *testing.T) {
	s := New(InitialState())
	me := models.User{ID: "me", Username: "Me", Role: models.RoleModerator}
	s.Dispatch(Intent{Kind: KindLoadNow, Payload: models.NowResponse{
		User:     &me,
		Users:    []models.User{{ID: "dj", Username: "DJ"}},
		Waitlist: []string{"a", "b"},
		Booth:    &models.Advance{DJID: "dj", HistoryID: "h1"},
		MOTD:     "welcome",
	}})

	st := s.State()
	if st.Booth.DJID != "dj" || st.Chat.MOTD != "welcome" || len(st.Waitlist.UserIDs) != 2 {
		t.Fatalf("unexpected state %+v", st)
	}
	if st.Auth.User == nil || st.Auth.User.ID != "me" || len(st.Users.ByID) != 2 {
		t.Fatalf("viewer not loaded: %+v %+v", st.Auth, st.Users)
	}
}

func TestVotes_ResetOnAdvance(t *testing.T) {
	s := New(InitialState())
	s.Dispatch(Intent{Kind: KindUpvote, Payload: VotePayload{UserID: "a"}})
	s.Dispatch(Intent{Kind: KindDownvote, Payload: VotePayload{UserID: "a"}})
	s.Dispatch(Intent{Kind: KindFavorite, Payload: VotePayload{UserID: "b"}})
	s.Dispatch(Intent{Kind: KindFavorite, Payload: VotePayload{UserID: "b"}})

	v := s.State().Votes
	if len(v.Upvotes) != 0 || len(v.Downvotes) != 1 || len(v.Favorites) != 1 {
		t.Fatalf("unexpected votes %+v", v)
	}

	s.Dispatch(Intent{Kind: KindAdvance, Payload: models.Advance{DJID: "next"}})
	v = s.State().Votes
	if len(v.Upvotes)+len(v.Downvotes)+len(v.Favorites) != 0 {
		t.Fatalf("votes not reset: %+v", v)
	}
}

func TestStore_ObserveSeesEveryIntent(t *testing.T) {
	s := New(InitialState())
	var kinds []Kind
	stop := s.Observe(func(_ State, in Intent) { kinds = append(kinds, in.Kind) })

	s.Dispatch(Intent{Kind: KindRequestFailed})
	s.Dispatch(Intent{Kind: KindLog, Payload: chatMessage("l", "", "x")})
	stop()
	s.Dispatch(Intent{Kind: KindRequestFailed})

	if len(kinds) != 2 || kinds[0] != KindRequestFailed || kinds[1] != KindLog {
		t.Fatalf("observed %v", kinds)
	}
}

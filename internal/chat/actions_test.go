package chat

import (
	"errors"
	"testing"
	"time"

	"room-client/internal/clock"
	"room-client/internal/models"
	"room-client/internal/selectors"
	"room-client/internal/store"
)

type fakeSender struct {
	sent []string
	err  error
}

func (f *fakeSender) SendChat(text string) error {
	f.sent = append(f.sent, text)
	return f.err
}

var epoch = time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC)

func setup(t *testing.T, me *models.User) (*Actions, *store.Store, *clock.Fake, *fakeSender) {
	t.Helper()
	s := store.New(store.InitialState())
	if me != nil {
		s.Dispatch(store.Intent{Kind: store.KindLoadNow, Payload: models.NowResponse{
			User:  me,
			Users: []models.User{{ID: "b", Username: "bob", Role: models.RoleManager}},
		}})
	}
	c := clock.NewFake(epoch)
	sender := &fakeSender{}
	return New(s, selectors.New(), c, sender), s, c, sender
}

func TestSend_AppendsInFlightAndForwards(t *testing.T) {
	a, s, _, sender := setup(t, &models.User{ID: "me", Username: "me"})

	if err := a.Send("  hello **there**  "); err != nil {
		t.Fatalf("send: %v", err)
	}
	msgs := s.State().Chat.Messages
	if len(msgs) != 1 || !msgs[0].InFlight || msgs[0].Text != "hello **there**" {
		t.Fatalf("unexpected feed: %+v", msgs)
	}
	if msgs[0].Timestamp != epoch.UnixMilli() {
		t.Fatalf("timestamp = %d", msgs[0].Timestamp)
	}
	if len(sender.sent) != 1 || sender.sent[0] != "hello **there**" {
		t.Fatalf("sent = %v", sender.sent)
	}

	a.Receive(models.IncomingMessage{ID: "srv-1", UserID: "me", Text: "hello **there**", Timestamp: 5})
	msgs = s.State().Chat.Messages
	if len(msgs) != 1 || msgs[0].ID != "srv-1" || msgs[0].InFlight {
		t.Fatalf("echo should confirm in place: %+v", msgs)
	}
}

func TestSend_FailureDropsInFlightEntry(t *testing.T) {
	a, s, _, sender := setup(t, &models.User{ID: "me", Username: "me"})
	sender.err = errors.New("socket closed")

	if err := a.Send("hi"); err == nil {
		t.Fatal("expected error")
	}
	if n := len(s.State().Chat.Messages); n != 0 {
		t.Fatalf("expected empty feed, got %d", n)
	}
}

func TestSend_Refusals(t *testing.T) {
	a, _, _, _ := setup(t, nil)
	if err := a.Send("hi"); !errors.Is(err, ErrNoSession) {
		t.Fatalf("err = %v", err)
	}

	a, s, _, sender := setup(t, &models.User{ID: "me", Username: "me"})
	if err := a.Send("   "); !errors.Is(err, ErrEmpty) {
		t.Fatalf("err = %v", err)
	}

	a.Mute("me", "b", 0)
	if err := a.Send("hi"); !errors.Is(err, ErrMuted) {
		t.Fatalf("err = %v", err)
	}
	msgs := s.State().Chat.Messages
	if len(msgs) != 1 || msgs[0].Kind != models.MessageKindLog || msgs[0].Text != mutedNotice {
		t.Fatalf("expected muted notice, got %+v", msgs)
	}
	if len(sender.sent) != 0 {
		t.Fatal("muted send must not reach the server")
	}
}

func TestReceive_MentionIsFrozen(t *testing.T) {
	a, s, _, _ := setup(t, &models.User{ID: "me", Username: "Me"})

	a.Receive(models.IncomingMessage{ID: "1", UserID: "b", Text: "hey @me"})
	a.Receive(models.IncomingMessage{ID: "2", UserID: "b", Text: "@everyone listen"})
	a.Receive(models.IncomingMessage{ID: "3", UserID: "b", Text: "@staff only"})

	msgs := s.State().Chat.Messages
	if !msgs[0].IsMention || !msgs[1].IsMention || msgs[2].IsMention {
		t.Fatalf("mentions = %v %v %v", msgs[0].IsMention, msgs[1].IsMention, msgs[2].IsMention)
	}
	if msgs[0].Username != "bob" {
		t.Fatalf("username = %q", msgs[0].Username)
	}

	// the viewer's name changes; earlier flags stay as they were
	s.Dispatch(store.Intent{Kind: store.KindChangeUsername, Payload: store.ChangeUsernamePayload{UserID: "me", Username: "other"}})
	if !s.State().Chat.Messages[0].IsMention {
		t.Fatal("mention flag was recomputed")
	}
}

func TestReceiveStored_DetectsMentionsForViewer(t *testing.T) {
	a, s, _, _ := setup(t, &models.User{ID: "me", Username: "me"})

	a.ReceiveStored(models.ChatMessage{ID: "old-1", UserID: "b", Text: "ping @me", Timestamp: 7, InFlight: true})
	a.ReceiveStored(models.ChatMessage{ID: "old-2", UserID: "b", Text: "no one here"})

	msgs := s.State().Chat.Messages
	if len(msgs) != 2 || !msgs[0].IsMention || msgs[1].IsMention {
		t.Fatalf("restored = %+v", msgs)
	}
	if msgs[0].InFlight || msgs[0].Timestamp != 7 || msgs[0].Kind != models.MessageKindChat {
		t.Fatalf("restored message = %+v", msgs[0])
	}
}

func TestLog_BurstKeepsEveryEntry(t *testing.T) {
	a, s, _, _ := setup(t, nil)
	for i := 0; i < 100; i++ {
		a.Log("same line")
	}
	if n := len(s.State().Chat.Messages); n != 100 {
		t.Fatalf("expected 100 entries, got %d", n)
	}
}

func TestMute_ExpiresOnSchedule(t *testing.T) {
	a, s, c, _ := setup(t, &models.User{ID: "me", Username: "me"})

	a.Mute("b", "me", epoch.Add(time.Minute).UnixMilli())
	if _, ok := s.State().Chat.Mutes["b"]; !ok {
		t.Fatal("expected mute")
	}

	c.Advance(59 * time.Second)
	if _, ok := s.State().Chat.Mutes["b"]; !ok {
		t.Fatal("mute expired early")
	}
	c.Advance(time.Second)
	if _, ok := s.State().Chat.Mutes["b"]; ok {
		t.Fatal("mute should have expired")
	}
}

func TestMute_RenewalCancelsOldExpiry(t *testing.T) {
	a, s, c, _ := setup(t, &models.User{ID: "me", Username: "me"})

	a.Mute("b", "me", epoch.Add(time.Minute).UnixMilli())
	a.Mute("b", "me", epoch.Add(5*time.Minute).UnixMilli())
	if c.Pending() != 1 {
		t.Fatalf("expected one pending expiry, got %d", c.Pending())
	}

	c.Advance(2 * time.Minute)
	if _, ok := s.State().Chat.Mutes["b"]; !ok {
		t.Fatal("old expiry removed the renewed mute")
	}
	c.Advance(3 * time.Minute)
	if _, ok := s.State().Chat.Mutes["b"]; ok {
		t.Fatal("renewed mute should have expired")
	}
}

func TestMute_AlreadyExpired(t *testing.T) {
	a, s, c, _ := setup(t, &models.User{ID: "me", Username: "me"})
	a.Mute("b", "me", epoch.Add(-time.Second).UnixMilli())
	if _, ok := s.State().Chat.Mutes["b"]; ok {
		t.Fatal("expired mute recorded")
	}
	if c.Pending() != 0 {
		t.Fatal("nothing should be scheduled")
	}
}

func TestUnmuteAndStopTimers(t *testing.T) {
	a, s, c, _ := setup(t, &models.User{ID: "me", Username: "me"})

	a.Mute("b", "me", epoch.Add(time.Minute).UnixMilli())
	a.Unmute("b")
	if _, ok := s.State().Chat.Mutes["b"]; ok {
		t.Fatal("unmute left the mute")
	}
	if c.Pending() != 0 {
		t.Fatal("unmute should cancel the expiry")
	}

	a.Mute("b", "me", epoch.Add(time.Minute).UnixMilli())
	a.Mute("me", "b", epoch.Add(time.Hour).UnixMilli())
	a.StopTimers()
	if c.Pending() != 0 {
		t.Fatalf("expected no pending tasks, got %d", c.Pending())
	}
	if len(s.State().Chat.Mutes) != 2 {
		t.Fatal("stopping timers must not lift mutes")
	}

	a.Mute("c", "me", epoch.Add(time.Minute).UnixMilli())
	if c.Pending() != 0 || len(s.State().Chat.Mutes) != 2 {
		t.Fatal("mute after StopTimers scheduled an expiry")
	}
}

func TestNotices(t *testing.T) {
	a, _, _, _ := setup(t, nil)
	bob := models.User{ID: "b", Username: "bob"}

	n := a.NameChangeNotice(bob, "robert")
	if n.Kind != models.MessageKindUserNameChanged || n.PreviousName != "bob" || n.Username != "robert" {
		t.Fatalf("name change notice = %+v", n)
	}
	s := a.SkipNotice(bob, "m", "bad song")
	if s.Kind != models.MessageKindSkip || s.ModeratorID != "m" || s.Reason != "bad song" {
		t.Fatalf("skip notice = %+v", s)
	}
	if a.JoinNotice(bob).ID == a.LeaveNotice(bob).ID {
		t.Fatal("notices need distinct ids")
	}
}

package database

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"room-client/internal/chat"
	"room-client/internal/clock"
	"room-client/internal/metrics"
	"room-client/internal/models"
	"room-client/internal/selectors"
	"room-client/internal/store"
)

type memoryRepo struct {
	mu      sync.Mutex
	saved   []models.ChatMessage
	ops     []string
	failAll bool
}

func (r *memoryRepo) SaveMessage(_ context.Context, msg models.ChatMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saved = append(r.saved, msg)
	r.ops = append(r.ops, "save:"+msg.ID)
	return nil
}

func (r *memoryRepo) DeleteMessage(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops = append(r.ops, "delete:"+id)
	return nil
}

func (r *memoryRepo) DeleteUserMessages(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops = append(r.ops, "deleteUser:"+userID)
	return nil
}

func (r *memoryRepo) DeleteAllMessages(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll {
		return errors.New("db down")
	}
	r.ops = append(r.ops, "deleteAll")
	return nil
}

func (r *memoryRepo) LoadRecentMessages(_ context.Context, limit int) ([]models.ChatMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.saved) > limit {
		return r.saved[len(r.saved)-limit:], nil
	}
	return r.saved, nil
}

func (r *memoryRepo) Close() error { return nil }

func (r *memoryRepo) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.ops...)
}

func chatMsg(id, userID string) models.ChatMessage {
	return models.ChatMessage{ID: id, Kind: models.MessageKindChat, UserID: userID, Text: "text " + id}
}

func runArchiver(t *testing.T, repo *memoryRepo) (*store.Store, *Archiver, context.CancelFunc) {
	t.Helper()
	s := store.New(store.InitialState())
	a := NewArchiver(repo, metrics.New(nil))
	s.Observe(a.Observe)
	ctx, cancel := context.WithCancel(context.Background())
	go a.Run(ctx)
	return s, a, cancel
}

func stop(t *testing.T, a *Archiver, cancel context.CancelFunc) {
	t.Helper()
	cancel()
	select {
	case <-a.Stopped():
	case <-time.After(2 * time.Second):
		t.Fatal("archiver did not stop")
	}
}

func TestArchiver_MirrorsConfirmedChat(t *testing.T) {
	repo := &memoryRepo{}
	s, a, cancel := runArchiver(t, repo)

	s.Dispatch(store.Intent{Kind: store.KindSendMessage, Payload: chatMsg("local", "me")})
	s.Dispatch(store.Intent{Kind: store.KindReceiveMessage, Payload: chatMsg("1", "b")})
	s.Dispatch(store.Intent{Kind: store.KindLog, Payload: models.ChatMessage{ID: "log", Text: "x"}})
	s.Dispatch(store.Intent{Kind: store.KindReceiveMessage, Payload: chatMsg("2", "c")})
	s.Dispatch(store.Intent{Kind: store.KindRemoveMessage, Payload: store.RemoveMessagePayload{ID: "1"}})
	s.Dispatch(store.Intent{Kind: store.KindRemoveUserMessages, Payload: store.RemoveUserMessagesPayload{UserID: "c"}})
	s.Dispatch(store.Intent{Kind: store.KindRemoveAllMessages})
	stop(t, a, cancel)

	want := []string{"save:1", "save:2", "delete:1", "deleteUser:c", "deleteAll"}
	got := repo.snapshot()
	if len(got) != len(want) {
		t.Fatalf("ops = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ops = %v, want %v", got, want)
		}
	}
	if n := testutil.ToFloat64(a.metrics.ArchiveWrites.WithLabelValues("success")); n != 5 {
		t.Fatalf("successful writes = %v", n)
	}
}

func TestArchiver_CountsFailures(t *testing.T) {
	repo := &memoryRepo{failAll: true}
	s, a, cancel := runArchiver(t, repo)

	s.Dispatch(store.Intent{Kind: store.KindRemoveAllMessages})
	stop(t, a, cancel)

	if n := testutil.ToFloat64(a.metrics.ArchiveWrites.WithLabelValues("error")); n != 1 {
		t.Fatalf("failed writes = %v", n)
	}
}

func TestArchiver_DropsWhenQueueIsFull(t *testing.T) {
	repo := &memoryRepo{}
	a := NewArchiver(repo, nil)
	s := store.New(store.InitialState())
	s.Observe(a.Observe)

	for i := 0; i < cap(a.jobs)+3; i++ {
		s.Dispatch(store.Intent{Kind: store.KindRemoveAllMessages})
	}
	if n := testutil.ToFloat64(a.metrics.ArchiveWrites.WithLabelValues("dropped")); n != 3 {
		t.Fatalf("dropped = %v", n)
	}
}

func TestRestore(t *testing.T) {
	mentioned := chatMsg("3", "b")
	mentioned.Text = "hey @me"
	repo := &memoryRepo{saved: []models.ChatMessage{chatMsg("1", "a"), chatMsg("2", "b"), mentioned}}

	s := store.New(store.InitialState())
	me := models.User{ID: "me", Username: "me"}
	s.Dispatch(store.Intent{Kind: store.KindLoadNow, Payload: models.NowResponse{
		User:  &me,
		Users: []models.User{me, {ID: "b", Username: "bob"}},
	}})
	actions := chat.New(s, selectors.New(), clock.NewFake(time.Unix(0, 0)), nil)

	if err := Restore(context.Background(), repo, actions, 2); err != nil {
		t.Fatal(err)
	}
	msgs := s.State().Chat.Messages
	if len(msgs) != 2 || msgs[0].ID != "2" || msgs[1].ID != "3" {
		t.Fatalf("messages = %+v", msgs)
	}
	if msgs[0].IsMention || !msgs[1].IsMention {
		t.Fatalf("mentions = %v %v", msgs[0].IsMention, msgs[1].IsMention)
	}
	if msgs[1].Username != "bob" || len(msgs[1].ParsedText) == 0 {
		t.Fatalf("restored message = %+v", msgs[1])
	}
	if err := Restore(context.Background(), repo, actions, 0); err != nil {
		t.Fatal(err)
	}
}

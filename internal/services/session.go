package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"room-client/internal/chat"
	"room-client/internal/clock"
	"room-client/internal/handlers"
	"room-client/internal/metrics"
	"room-client/internal/models"
	"room-client/internal/moderation"
	"room-client/internal/selectors"
	"room-client/internal/store"
	"room-client/pkg/logger"
)

var ErrNotConnected = errors.New("push channel not connected")

// Gateway is the server API a session talks to.
type Gateway interface {
	moderation.Gateway
	Now(ctx context.Context) (*models.NowResponse, error)
}

type Options struct {
	Gateway Gateway
	Clock   clock.Clock
	Metrics *metrics.Metrics
	// Viewer and Token identify the signed in user until the bootstrap
	// snapshot arrives.
	Viewer *models.User
	Token  string
}

// Session owns the state of one connection to a room: its store, timers and
// in-flight moderation requests. Nothing in it is global; Close releases it.
type Session struct {
	Store      *store.Store
	Selectors  *selectors.Selectors
	Chat       *chat.Actions
	Moderation *moderation.Coordinator
	Push       *handlers.PushHandlers

	gateway Gateway

	mu     sync.RWMutex
	sender chat.Sender

	unsubscribe []func()
	closeOnce   sync.Once
}

func NewSession(opts Options) *Session {
	if opts.Clock == nil {
		opts.Clock = clock.System()
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.New(nil)
	}

	s := &Session{
		Store:     store.New(store.InitialState()),
		Selectors: selectors.New(),
		gateway:   opts.Gateway,
	}
	s.Chat = chat.New(s.Store, s.Selectors, opts.Clock, s)
	s.Moderation = moderation.NewCoordinator(s.Store, opts.Gateway, opts.Metrics)
	s.Push = handlers.NewPushHandlers(s.Store, s.Chat, opts.Metrics)

	if opts.Viewer != nil {
		s.Store.Dispatch(store.Intent{Kind: store.KindSetSession, Payload: store.SetSessionPayload{User: opts.Viewer, Token: opts.Token}})
	}
	s.unsubscribe = append(s.unsubscribe, s.Store.Observe(s.reportFailures))
	return s
}

// Bootstrap loads the room snapshot.
func (s *Session) Bootstrap(ctx context.Context) error {
	now, err := s.gateway.Now(ctx)
	if err != nil {
		return fmt.Errorf("load room state: %w", err)
	}
	s.Store.Dispatch(store.Intent{Kind: store.KindLoadNow, Payload: *now})
	logger.Info("Joined room: %d users, %d waiting", len(now.Users), len(now.Waitlist))
	return nil
}

// AttachSender sets where outgoing chat goes. A nil sender detaches.
func (s *Session) AttachSender(sender chat.Sender) {
	s.mu.Lock()
	s.sender = sender
	s.mu.Unlock()
}

func (s *Session) SendChat(text string) error {
	s.mu.RLock()
	sender := s.sender
	s.mu.RUnlock()
	if sender == nil {
		return ErrNotConnected
	}
	return sender.SendChat(text)
}

// Subscribe forwards to the store.
func (s *Session) Subscribe(slice store.Slice, fn store.Listener) func() {
	return s.Store.Subscribe(slice, fn)
}

// reportFailures shows failed moderation requests in the feed.
func (s *Session) reportFailures(_ store.State, in store.Intent) {
	if !in.Failed() {
		return
	}
	var what string
	switch in.Kind {
	case store.KindSkipDJComplete:
		what = "skip the DJ"
	case store.KindRemoveUserComplete:
		what = "remove user from the waitlist"
		if p, ok := in.Meta.(store.RemoveUserPayload); ok {
			what = fmt.Sprintf("remove %s from the waitlist", displayName(p.User))
		}
	case store.KindMoveUserComplete:
		what = "move user in the waitlist"
		if p, ok := in.Meta.(store.MoveUserPayload); ok {
			what = fmt.Sprintf("move %s to position %d", displayName(p.User), p.Position+1)
		}
	case store.KindRequestFailed:
		what = "delete chat messages"
		if p, ok := in.Meta.(store.RequestFailedMeta); ok && p.Operation == moderation.OpDeleteMessage {
			what = "delete the message"
		}
	default:
		return
	}
	s.Chat.Log(fmt.Sprintf("Could not %s: %v", what, in.Err))
}

func displayName(u models.User) string {
	if u.Username != "" {
		return u.Username
	}
	return u.ID
}

// Close waits for moderation requests, stops timers and shuts the store.
// Timers go last so a mute pushed while requests drain is still cancelled.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.AttachSender(nil)
		s.Moderation.Close()
		s.Chat.StopTimers()
		for _, unsubscribe := range s.unsubscribe {
			unsubscribe()
		}
		s.Store.Close()
	})
}

// Package chat builds chat intents: outgoing and incoming messages, local
// log lines, system notices and timed mutes.
package chat

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"room-client/internal/clock"
	"room-client/internal/markup"
	"room-client/internal/models"
	"room-client/internal/selectors"
	"room-client/internal/store"
	"room-client/pkg/logger"
)

var (
	ErrMuted     = errors.New("chat: you are muted")
	ErrNoSession = errors.New("chat: not signed in")
	ErrEmpty     = errors.New("chat: empty message")
)

const mutedNotice = "You have been muted and cannot chat."

// Sender delivers outgoing chat text to the server.
type Sender interface {
	SendChat(text string) error
}

type Actions struct {
	store  *store.Store
	sel    *selectors.Selectors
	clock  clock.Clock
	sender Sender

	// held while a mute is scheduled and dispatched, so its expiry cannot
	// be reduced before it
	muteMu  sync.Mutex
	stopped bool
}

func New(s *store.Store, sel *selectors.Selectors, c clock.Clock, sender Sender) *Actions {
	return &Actions{store: s, sel: sel, clock: c, sender: sender}
}

func (a *Actions) now() int64 {
	return a.clock.Now().UnixMilli()
}

// Send appends text to the feed as in flight and hands it to the sender.
// The server echo later confirms it in place.
func (a *Actions) Send(text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmpty
	}
	st := a.store.State()
	user := selectors.CurrentUser(st)
	if user == nil {
		return ErrNoSession
	}
	if selectors.CurrentUserMute(st) != nil {
		a.Log(mutedNotice)
		return ErrMuted
	}

	msg := models.ChatMessage{
		ID:         "local-" + uuid.NewString(),
		Kind:       models.MessageKindChat,
		UserID:     user.ID,
		Username:   user.Username,
		Text:       text,
		ParsedText: markup.Parse(text, a.sel.ParseOptions(st)),
		Timestamp:  a.now(),
		InFlight:   true,
	}
	a.store.Dispatch(store.Intent{Kind: store.KindSendMessage, Payload: msg})

	if err := a.sender.SendChat(text); err != nil {
		a.store.Dispatch(store.Intent{Kind: store.KindRemoveMessage, Payload: store.RemoveMessagePayload{ID: msg.ID}})
		return fmt.Errorf("send chat: %w", err)
	}
	return nil
}

// Receive adds a message pushed by the server. Whether it mentions the
// viewer is decided here, against the current state, and never revisited.
func (a *Actions) Receive(in models.IncomingMessage) {
	a.receive(models.ChatMessage{
		ID:        in.ID,
		Kind:      models.MessageKindChat,
		UserID:    in.UserID,
		Text:      in.Text,
		Timestamp: in.Timestamp,
	})
}

// ReceiveStored adds a confirmed chat message kept from an earlier run. Its
// markup and mention flag are computed again for the current viewer.
func (a *Actions) ReceiveStored(msg models.ChatMessage) {
	msg.Kind = models.MessageKindChat
	msg.InFlight = false
	a.receive(msg)
}

func (a *Actions) receive(msg models.ChatMessage) {
	st := a.store.State()
	msg.ParsedText = markup.Parse(msg.Text, a.sel.ParseOptions(st))
	var sender *models.User
	if u, ok := st.Users.ByID[msg.UserID]; ok {
		sender = &u
		msg.Username = u.Username
	}
	msg.IsMention = markup.IsMention(msg.ParsedText, selectors.Viewer(st), sender)
	if msg.Timestamp == 0 {
		msg.Timestamp = a.now()
	}
	a.store.Dispatch(store.Intent{Kind: store.KindReceiveMessage, Payload: msg})
}

// Log adds a local line to the feed. Every call is a distinct entry.
func (a *Actions) Log(text string) {
	a.store.Dispatch(store.Intent{Kind: store.KindLog, Payload: models.ChatMessage{
		ID:         uuid.NewString(),
		Kind:       models.MessageKindLog,
		Text:       text,
		ParsedText: []models.TextToken{{Kind: models.TokenText, Text: text}},
		Timestamp:  a.now(),
	}})
}

// Mute records a mute for userID. A non-zero expiresAt (unix ms) schedules
// its removal; any earlier schedule for the same user is cancelled.
func (a *Actions) Mute(userID, moderatorID string, expiresAt int64) {
	if userID == "" {
		return
	}
	a.muteMu.Lock()
	defer a.muteMu.Unlock()
	if a.stopped {
		logger.Debug("ignoring mute for %s after teardown", userID)
		return
	}

	if prev, ok := a.store.State().Chat.Mutes[userID]; ok && prev.Expiry != nil {
		prev.Expiry.Stop()
	}

	p := store.MutePayload{
		UserID:      userID,
		ModeratorID: moderatorID,
		ExpiresAt:   expiresAt,
		Token:       uuid.NewString(),
	}
	if expiresAt != 0 {
		delay := time.UnixMilli(expiresAt).Sub(a.clock.Now())
		if delay <= 0 {
			logger.Debug("mute for %s already expired", userID)
			a.Unmute(userID)
			return
		}
		token := p.Token
		p.Expiry = a.clock.AfterFunc(delay, func() {
			a.muteMu.Lock()
			a.muteMu.Unlock()
			a.store.Dispatch(store.Intent{Kind: store.KindUnmuteUser, Payload: store.UnmutePayload{UserID: userID, Token: token}})
		})
	}
	a.store.Dispatch(store.Intent{Kind: store.KindMuteUser, Payload: p})
}

// Unmute lifts userID's mute and cancels its expiry.
func (a *Actions) Unmute(userID string) {
	if m, ok := a.store.State().Chat.Mutes[userID]; ok && m.Expiry != nil {
		m.Expiry.Stop()
	}
	a.store.Dispatch(store.Intent{Kind: store.KindUnmuteUser, Payload: store.UnmutePayload{UserID: userID}})
}

// StopTimers cancels every pending mute expiry and refuses new mutes.
// Mutes stay in the state.
func (a *Actions) StopTimers() {
	a.muteMu.Lock()
	defer a.muteMu.Unlock()
	a.stopped = true
	for userID, task := range a.sel.MuteTimeouts(a.store.State()) {
		if task.Stop() {
			logger.Debug("cancelled mute expiry for %s", userID)
		}
	}
}

package selectors

import (
	"sort"

	"room-client/internal/clock"
	"room-client/internal/markup"
	"room-client/internal/models"
	"room-client/internal/store"
)

// MaxMessages is the number of chat entries presented.
const MaxMessages = 500

type EmojiCompletion struct {
	Shortcode string `json:"shortcode"`
	Image     string `json:"image"`
}

type MarkupCompilerOptions struct {
	AvailableEmoji []string          `json:"availableEmoji"`
	EmojiImages    map[string]string `json:"emojiImages"`
}

func (s *Selectors) initChat() {
	s.filteredMessages = createSelector(revs(store.SliceChat, store.SliceSettings), func(st store.State) []models.ChatMessage {
		n := st.Settings.Notifications
		out := make([]models.ChatMessage, 0, len(st.Chat.Messages))
		for _, m := range st.Chat.Messages {
			switch m.Kind {
			case models.MessageKindUserJoin:
				if !n.UserJoin {
					continue
				}
			case models.MessageKindUserLeave:
				if !n.UserLeave {
					continue
				}
			case models.MessageKindUserNameChanged:
				if !n.UserNameChanged {
					continue
				}
			}
			out = append(out, m)
		}
		return out
	})

	s.messages = createSelector(revs(store.SliceChat, store.SliceSettings), func(st store.State) []models.ChatMessage {
		msgs := s.filteredMessages(st)
		if len(msgs) > MaxMessages {
			msgs = msgs[len(msgs)-MaxMessages:]
		}
		return msgs[:len(msgs):len(msgs)]
	})

	s.muteTimeouts = createSelector(revs(store.SliceChat), func(st store.State) map[string]clock.Task {
		out := make(map[string]clock.Task, len(st.Chat.Mutes))
		for id, m := range st.Chat.Mutes {
			if m.Expiry != nil {
				out[id] = m.Expiry
			}
		}
		return out
	})

	s.mutedUserIDs = createSelector(revs(store.SliceChat), func(st store.State) []string {
		ids := make([]string, 0, len(st.Chat.Mutes))
		for id := range st.Chat.Mutes {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		return ids
	})

	s.mutedUsers = createSelector(revs(store.SliceChat, store.SliceUsers), func(st store.State) []models.User {
		out := []models.User{}
		for _, id := range s.mutedUserIDs(st) {
			if u, ok := st.Users.ByID[id]; ok {
				out = append(out, u)
			}
		}
		return out
	})

	s.availableGroupMentions = createSelector(revs(store.SliceAuth, store.SliceUsers), func(st store.State) []string {
		return markup.AvailableGroupMentions(CurrentUser(st))
	})

	s.emojiCompletions = createSelector(revs(store.SliceConfig), func(st store.State) []EmojiCompletion {
		out := make([]EmojiCompletion, 0, len(st.Config.Emoji))
		for name, image := range st.Config.Emoji {
			out = append(out, EmojiCompletion{Shortcode: name, Image: image})
		}
		sort.Slice(out, func(i, j int) bool { return out[i].Shortcode < out[j].Shortcode })
		return out
	})

	s.markupOptions = createSelector(revs(store.SliceConfig), func(st store.State) MarkupCompilerOptions {
		names := make([]string, 0, len(st.Config.Emoji))
		for name := range st.Config.Emoji {
			names = append(names, name)
		}
		sort.Strings(names)
		return MarkupCompilerOptions{AvailableEmoji: names, EmojiImages: st.Config.Emoji}
	})
}

func MOTD(st store.State) string {
	return st.Chat.MOTD
}

// AllMessages is the canonical log, unfiltered.
func AllMessages(st store.State) []models.ChatMessage {
	return st.Chat.Messages
}

// Messages returns at most MaxMessages entries, oldest first, after hiding
// the notice kinds switched off in the notification settings.
func (s *Selectors) Messages(st store.State) []models.ChatMessage {
	return s.messages(st)
}

func (s *Selectors) MarkupCompilerOptions(st store.State) MarkupCompilerOptions {
	return s.markupOptions(st)
}

// ParseOptions is the markup.Options matching MarkupCompilerOptions.
func (s *Selectors) ParseOptions(st store.State) markup.Options {
	return markup.Options{Emoji: s.markupOptions(st).EmojiImages}
}

func (s *Selectors) MuteTimeouts(st store.State) map[string]clock.Task {
	return s.muteTimeouts(st)
}

func (s *Selectors) MutedUserIDs(st store.State) []string {
	return s.mutedUserIDs(st)
}

func (s *Selectors) MutedUsers(st store.State) []models.User {
	return s.mutedUsers(st)
}

// CurrentUserMute returns the viewer's mute, or nil.
func CurrentUserMute(st store.State) *store.Mute {
	u := CurrentUser(st)
	if u == nil {
		return nil
	}
	m, ok := st.Chat.Mutes[u.ID]
	if !ok {
		return nil
	}
	return &m
}

func (s *Selectors) AvailableGroupMentions(st store.State) []string {
	return s.availableGroupMentions(st)
}

func (s *Selectors) EmojiCompletions(st store.State) []EmojiCompletion {
	return s.emojiCompletions(st)
}

func CanDeleteMessages(st store.State) bool {
	return IsModerator(st)
}

package handlers

import (
	"encoding/json"

	"room-client/internal/chat"
	"room-client/internal/metrics"
	"room-client/internal/models"
	"room-client/internal/store"
	"room-client/pkg/logger"
)

// PushHandlers turns push channel events into intents.
type PushHandlers struct {
	store   *store.Store
	chat    *chat.Actions
	metrics *metrics.Metrics
}

func NewPushHandlers(s *store.Store, actions *chat.Actions, m *metrics.Metrics) *PushHandlers {
	if m == nil {
		m = metrics.New(nil)
	}
	return &PushHandlers{store: s, chat: actions, metrics: m}
}

func (h *PushHandlers) dispatch(kind store.Kind, payload any) {
	h.store.Dispatch(store.Intent{Kind: kind, Payload: payload})
}

// user returns the known user with id, or one carrying only the id.
func (h *PushHandlers) user(id string) models.User {
	if u, ok := h.store.State().Users.ByID[id]; ok {
		return u
	}
	return models.User{ID: id}
}

func (h *PushHandlers) HandleEvent(ev models.Event) {
	h.metrics.PushEvents.WithLabelValues(string(ev.Command)).Inc()
	if err := h.handle(ev); err != nil {
		logger.Warn("Bad %s event: %v", ev.Command, err)
	}
}

func (h *PushHandlers) handle(ev models.Event) error {
	switch ev.Command {
	case models.CommandChatMessage:
		var msg models.IncomingMessage
		if err := json.Unmarshal(ev.Data, &msg); err != nil {
			return err
		}
		h.chat.Receive(msg)

	case models.CommandChatDelete:
		h.dispatch(store.KindRemoveAllMessages, nil)

	case models.CommandChatDeleteByID:
		var del models.ChatDeleteEvent
		if err := json.Unmarshal(ev.Data, &del); err != nil {
			return err
		}
		h.dispatch(store.KindRemoveMessage, store.RemoveMessagePayload{ID: del.ID})

	case models.CommandChatDeleteByUser:
		var del models.ChatDeleteEvent
		if err := json.Unmarshal(ev.Data, &del); err != nil {
			return err
		}
		h.dispatch(store.KindRemoveUserMessages, store.RemoveUserMessagesPayload{UserID: del.UserID})

	case models.CommandChatMute:
		var mute models.MuteEvent
		if err := json.Unmarshal(ev.Data, &mute); err != nil {
			return err
		}
		h.chat.Mute(mute.UserID, mute.ModeratorID, mute.ExpiresAt)

	case models.CommandChatUnmute:
		var mute models.MuteEvent
		if err := json.Unmarshal(ev.Data, &mute); err != nil {
			return err
		}
		h.chat.Unmute(mute.UserID)

	case models.CommandJoin:
		var join models.JoinEvent
		if err := json.Unmarshal(ev.Data, &join); err != nil {
			return err
		}
		h.dispatch(store.KindUserJoin, store.UserJoinPayload{User: join.User, Notice: h.chat.JoinNotice(join.User)})

	case models.CommandLeave:
		var userID string
		if err := json.Unmarshal(ev.Data, &userID); err != nil {
			return err
		}
		h.dispatch(store.KindUserLeave, store.UserLeavePayload{UserID: userID, Notice: h.chat.LeaveNotice(h.user(userID))})

	case models.CommandNameChange:
		var change models.NameChangeEvent
		if err := json.Unmarshal(ev.Data, &change); err != nil {
			return err
		}
		h.dispatch(store.KindChangeUsername, store.ChangeUsernamePayload{
			UserID:   change.UserID,
			Username: change.Username,
			Notice:   h.chat.NameChangeNotice(h.user(change.UserID), change.Username),
		})

	case models.CommandRoleChange:
		var change models.RoleChangeEvent
		if err := json.Unmarshal(ev.Data, &change); err != nil {
			return err
		}
		h.dispatch(store.KindChangeRole, store.ChangeRolePayload{UserID: change.UserID, Role: change.Role})

	case models.CommandAdvance:
		var adv *models.Advance
		if err := json.Unmarshal(ev.Data, &adv); err != nil {
			return err
		}
		if adv == nil {
			adv = &models.Advance{}
		}
		h.dispatch(store.KindAdvance, *adv)

	case models.CommandSkip:
		var skip models.SkipEvent
		if err := json.Unmarshal(ev.Data, &skip); err != nil {
			return err
		}
		h.dispatch(store.KindBoothSkip, store.BoothSkipPayload{
			Notice: h.chat.SkipNotice(h.user(skip.UserID), skip.ModeratorID, skip.Reason),
		})

	case models.CommandWaitlistJoin, models.CommandWaitlistLeave, models.CommandWaitlistMove:
		var wl models.WaitlistEvent
		if err := json.Unmarshal(ev.Data, &wl); err != nil {
			return err
		}
		h.dispatch(store.KindSetWaitlist, store.SetWaitlistPayload{UserIDs: wl.Waitlist})

	case models.CommandWaitlistUpdate:
		var ids []string
		if err := json.Unmarshal(ev.Data, &ids); err != nil {
			return err
		}
		h.dispatch(store.KindSetWaitlist, store.SetWaitlistPayload{UserIDs: ids})

	case models.CommandWaitlistClear:
		h.dispatch(store.KindSetWaitlist, store.SetWaitlistPayload{UserIDs: []string{}})

	case models.CommandWaitlistLock:
		var lock models.WaitlistLockEvent
		if err := json.Unmarshal(ev.Data, &lock); err != nil {
			return err
		}
		h.dispatch(store.KindWaitlistLock, store.WaitlistLockPayload{Locked: lock.Locked})

	case models.CommandVote:
		var vote models.VoteEvent
		if err := json.Unmarshal(ev.Data, &vote); err != nil {
			return err
		}
		if vote.Value > 0 {
			h.dispatch(store.KindUpvote, store.VotePayload{UserID: vote.UserID})
		} else if vote.Value < 0 {
			h.dispatch(store.KindDownvote, store.VotePayload{UserID: vote.UserID})
		}

	case models.CommandFavorite:
		var fav models.FavoriteEvent
		if err := json.Unmarshal(ev.Data, &fav); err != nil {
			return err
		}
		h.dispatch(store.KindFavorite, store.VotePayload{UserID: fav.UserID})

	case models.CommandMOTD:
		var motd string
		if err := json.Unmarshal(ev.Data, &motd); err != nil {
			return err
		}
		h.dispatch(store.KindSetMOTD, store.SetMOTDPayload{MOTD: motd})

	default:
		logger.Debug("Ignoring push command %q", ev.Command)
	}
	return nil
}

package store

import (
	"slices"

	"room-client/internal/clock"
	"room-client/internal/models"
)

// MaxRetained bounds the canonical chat log. Presented views are bounded
// separately and more tightly.
const MaxRetained = 2000

type Mute struct {
	UserID      string
	ModeratorID string
	ExpiresAt   int64
	Token       string
	Expiry      clock.Task
}

type ChatState struct {
	Rev      uint64
	MOTD     string
	Messages []models.ChatMessage
	Mutes    map[string]Mute
}

func reduceChat(s ChatState, in Intent) ChatState {
	switch in.Kind {
	case KindSendMessage:
		msg, ok := in.Payload.(models.ChatMessage)
		if !ok {
			return s
		}
		msg.InFlight = true
		return s.appendMessage(msg)

	case KindReceiveMessage:
		msg, ok := in.Payload.(models.ChatMessage)
		if !ok {
			return s
		}
		msg.InFlight = false
		return s.receive(msg)

	case KindLog:
		msg, ok := in.Payload.(models.ChatMessage)
		if !ok {
			return s
		}
		msg.Kind = models.MessageKindLog
		return s.appendMessage(msg)

	case KindUserJoin:
		if p, ok := in.Payload.(UserJoinPayload); ok {
			return s.appendMessage(p.Notice)
		}
	case KindUserLeave:
		if p, ok := in.Payload.(UserLeavePayload); ok {
			return s.appendMessage(p.Notice)
		}
	case KindChangeUsername:
		if p, ok := in.Payload.(ChangeUsernamePayload); ok {
			return s.appendMessage(p.Notice)
		}
	case KindBoothSkip:
		if p, ok := in.Payload.(BoothSkipPayload); ok {
			return s.appendMessage(p.Notice)
		}

	case KindRemoveMessage:
		if p, ok := in.Payload.(RemoveMessagePayload); ok {
			return s.filter(func(m models.ChatMessage) bool { return m.ID != p.ID })
		}
	case KindRemoveUserMessages:
		if p, ok := in.Payload.(RemoveUserMessagesPayload); ok {
			return s.filter(func(m models.ChatMessage) bool {
				return m.Kind != models.MessageKindChat || m.UserID != p.UserID
			})
		}
	case KindRemoveAllMessages:
		if len(s.Messages) == 0 {
			return s
		}
		s.Messages = nil
		s.Rev++
		return s

	case KindMuteUser:
		p, ok := in.Payload.(MutePayload)
		if !ok || p.UserID == "" {
			return s
		}
		mutes := cloneMutes(s.Mutes)
		mutes[p.UserID] = Mute{
			UserID:      p.UserID,
			ModeratorID: p.ModeratorID,
			ExpiresAt:   p.ExpiresAt,
			Token:       p.Token,
			Expiry:      p.Expiry,
		}
		s.Mutes = mutes
		s.Rev++
		return s

	case KindUnmuteUser:
		p, ok := in.Payload.(UnmutePayload)
		if !ok {
			return s
		}
		cur, exists := s.Mutes[p.UserID]
		if !exists || (p.Token != "" && cur.Token != p.Token) {
			return s
		}
		mutes := cloneMutes(s.Mutes)
		delete(mutes, p.UserID)
		s.Mutes = mutes
		s.Rev++
		return s

	case KindSetMOTD:
		if p, ok := in.Payload.(SetMOTDPayload); ok && p.MOTD != s.MOTD {
			s.MOTD = p.MOTD
			s.Rev++
		}
	case KindLoadNow:
		if p, ok := in.Payload.(models.NowResponse); ok && p.MOTD != s.MOTD {
			s.MOTD = p.MOTD
			s.Rev++
		}
	}
	return s
}

func (s ChatState) indexOf(id string) int {
	for i := range s.Messages {
		if s.Messages[i].ID == id {
			return i
		}
	}
	return -1
}

// appendMessage adds msg at the end unless its ID is already present.
// Reduction history is linear, so appending into spare capacity never
// clobbers a slice another state can still observe.
func (s ChatState) appendMessage(msg models.ChatMessage) ChatState {
	if msg.ID == "" || s.indexOf(msg.ID) >= 0 {
		return s
	}
	msgs := append(s.Messages, msg)
	if over := len(msgs) - MaxRetained; over > 0 {
		msgs = msgs[over:]
	}
	s.Messages = msgs
	s.Rev++
	return s
}

// receive confirms the oldest in-flight message of the same user with the
// same text, in place, or appends msg when nothing matches.
func (s ChatState) receive(msg models.ChatMessage) ChatState {
	pending := -1
	for i, m := range s.Messages {
		if m.InFlight && m.UserID == msg.UserID && m.Text == msg.Text {
			pending = i
			break
		}
	}

	if s.indexOf(msg.ID) >= 0 {
		if pending < 0 {
			return s
		}
		// Already confirmed under this ID; the in-flight copy is redundant.
		s.Messages = slices.Delete(slices.Clone(s.Messages), pending, pending+1)
		s.Rev++
		return s
	}

	if pending < 0 {
		return s.appendMessage(msg)
	}
	msgs := slices.Clone(s.Messages)
	msgs[pending] = msg
	s.Messages = msgs
	s.Rev++
	return s
}

func (s ChatState) filter(keep func(models.ChatMessage) bool) ChatState {
	var out []models.ChatMessage
	for i, m := range s.Messages {
		if keep(m) {
			if out != nil {
				out = append(out, m)
			}
			continue
		}
		if out == nil {
			out = make([]models.ChatMessage, i, len(s.Messages))
			copy(out, s.Messages[:i])
		}
	}
	if out == nil {
		return s
	}
	s.Messages = out
	s.Rev++
	return s
}

func cloneMutes(m map[string]Mute) map[string]Mute {
	out := make(map[string]Mute, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	return out
}

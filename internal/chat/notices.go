package chat

import (
	"github.com/google/uuid"

	"room-client/internal/models"
)

func (a *Actions) notice(kind models.MessageKind, user models.User) models.ChatMessage {
	return models.ChatMessage{
		ID:        uuid.NewString(),
		Kind:      kind,
		UserID:    user.ID,
		Username:  user.Username,
		Timestamp: a.now(),
	}
}

func (a *Actions) JoinNotice(user models.User) models.ChatMessage {
	return a.notice(models.MessageKindUserJoin, user)
}

func (a *Actions) LeaveNotice(user models.User) models.ChatMessage {
	return a.notice(models.MessageKindUserLeave, user)
}

// NameChangeNotice is shown under the new name with the old one kept in
// PreviousName.
func (a *Actions) NameChangeNotice(user models.User, newName string) models.ChatMessage {
	n := a.notice(models.MessageKindUserNameChanged, user)
	n.PreviousName = user.Username
	n.Username = newName
	return n
}

func (a *Actions) SkipNotice(dj models.User, moderatorID, reason string) models.ChatMessage {
	n := a.notice(models.MessageKindSkip, dj)
	n.ModeratorID = moderatorID
	n.Reason = reason
	return n
}

package store

import (
	"room-client/internal/clock"
	"room-client/internal/models"
)

type Kind string

const (
	KindLoadNow Kind = "LOAD_NOW"

	// chat
	KindSendMessage        Kind = "chat/SEND_MESSAGE"
	KindReceiveMessage     Kind = "chat/RECEIVE_MESSAGE"
	KindLog                Kind = "chat/LOG"
	KindRemoveMessage      Kind = "chat/REMOVE_MESSAGE"
	KindRemoveUserMessages Kind = "chat/REMOVE_USER_MESSAGES"
	KindRemoveAllMessages  Kind = "chat/REMOVE_ALL_MESSAGES"
	KindMuteUser           Kind = "chat/MUTE_USER"
	KindUnmuteUser         Kind = "chat/UNMUTE_USER"
	KindSetMOTD            Kind = "chat/SET_MOTD"

	// users
	KindSetUsers       Kind = "users/SET_USERS"
	KindUserJoin       Kind = "users/JOIN"
	KindUserLeave      Kind = "users/LEAVE"
	KindChangeUsername Kind = "users/CHANGE_USERNAME"
	KindChangeRole     Kind = "users/CHANGE_ROLE"
	KindSetSession     Kind = "auth/SET_SESSION"

	// booth
	KindAdvance   Kind = "booth/ADVANCE"
	KindBoothSkip Kind = "booth/SKIP"

	// waitlist, pushed by the server
	KindSetWaitlist  Kind = "waitlist/UPDATE"
	KindWaitlistLock Kind = "waitlist/LOCK"

	// votes
	KindLoadVotes Kind = "votes/LOAD_VOTES"
	KindUpvote    Kind = "votes/UPVOTE"
	KindDownvote  Kind = "votes/DOWNVOTE"
	KindFavorite  Kind = "votes/FAVORITE"

	// settings and config
	KindSetNotificationSettings Kind = "settings/SET_NOTIFICATIONS"
	KindSetEmoji                Kind = "config/SET_EMOJI"

	// moderation
	KindSkipDJStart        Kind = "moderation/SKIP_DJ_START"
	KindSkipDJComplete     Kind = "moderation/SKIP_DJ_COMPLETE"
	KindRemoveUserStart    Kind = "moderation/REMOVE_USER_START"
	KindRemoveUserComplete Kind = "moderation/REMOVE_USER_COMPLETE"
	KindMoveUserStart      Kind = "moderation/MOVE_USER_START"
	KindMoveUserComplete   Kind = "moderation/MOVE_USER_COMPLETE"
	KindRequestFailed      Kind = "moderation/REQUEST_FAILED"
)

// Intent describes something that happened or is requested. It is never
// modified after Dispatch.
//
// A failed completion carries Err and, in Meta, the payload of the
// operation it completes. OpID correlates the START and COMPLETE intents of
// one moderation operation.
type Intent struct {
	Kind    Kind
	Payload any
	Meta    any
	Err     error
	OpID    string
}

func (i Intent) Failed() bool {
	return i.Err != nil
}

// Payloads

type UserJoinPayload struct {
	User   models.User
	Notice models.ChatMessage
}

type UserLeavePayload struct {
	UserID string
	Notice models.ChatMessage
}

type ChangeUsernamePayload struct {
	UserID   string
	Username string
	Notice   models.ChatMessage
}

type ChangeRolePayload struct {
	UserID string
	Role   models.Role
}

type SetUsersPayload struct {
	Users []models.User
}

type SetSessionPayload struct {
	User  *models.User
	Token string
}

type BoothSkipPayload struct {
	Notice models.ChatMessage
}

type RemoveMessagePayload struct {
	ID string
}

type RemoveUserMessagesPayload struct {
	UserID string
}

type MutePayload struct {
	UserID      string
	ModeratorID string
	ExpiresAt   int64
	Token       string
	Expiry      clock.Task
}

// UnmutePayload removes a mute. A non-empty Token only matches the mute
// instance it was issued for, so a stale expiry leaves a newer mute alone.
type UnmutePayload struct {
	UserID string
	Token  string
}

type SetMOTDPayload struct {
	MOTD string
}

type SetWaitlistPayload struct {
	UserIDs []string
}

type WaitlistLockPayload struct {
	Locked bool
}

type LoadVotesPayload struct {
	Upvotes   []string
	Downvotes []string
	Favorites []string
}

type VotePayload struct {
	UserID string
}

type NotificationSettings struct {
	UserJoin        bool `json:"userJoin"`
	UserLeave       bool `json:"userLeave"`
	UserNameChanged bool `json:"userNameChanged"`
}

type SetEmojiPayload struct {
	Emoji map[string]string
}

type SkipDJPayload struct {
	UserID string `json:"userID"`
	Reason string `json:"reason"`
	Remove bool   `json:"remove"`
}

type RemoveUserPayload struct {
	User models.User
}

type MoveUserPayload struct {
	User     models.User
	Position int
}

// RequestFailedMeta identifies the operation behind a KindRequestFailed intent.
type RequestFailedMeta struct {
	Operation string
	ID        string
	UserID    string
}

package models

import "encoding/json"

type Command string

const (
	CommandChatMessage      Command = "chatMessage"
	CommandChatDelete       Command = "chatDelete"
	CommandChatDeleteByID   Command = "chatDeleteByID"
	CommandChatDeleteByUser Command = "chatDeleteByUser"
	CommandChatMute         Command = "chatMute"
	CommandChatUnmute       Command = "chatUnmute"
	CommandJoin             Command = "join"
	CommandLeave            Command = "leave"
	CommandNameChange       Command = "nameChange"
	CommandRoleChange       Command = "roleChange"
	CommandAdvance          Command = "advance"
	CommandSkip             Command = "skip"
	CommandWaitlistJoin     Command = "waitlistJoin"
	CommandWaitlistLeave    Command = "waitlistLeave"
	CommandWaitlistUpdate   Command = "waitlistUpdate"
	CommandWaitlistMove     Command = "waitlistMove"
	CommandWaitlistClear    Command = "waitlistClear"
	CommandWaitlistLock     Command = "waitlistLock"
	CommandVote             Command = "vote"
	CommandFavorite         Command = "favorite"
	CommandMOTD             Command = "motd"

	// outbound
	CommandSendChat Command = "sendChat"
)

// Event is one frame of the push channel.
type Event struct {
	Command Command         `json:"command"`
	Data    json.RawMessage `json:"data"`
}

type IncomingMessage struct {
	ID        string `json:"id"`
	UserID    string `json:"userID"`
	Text      string `json:"message"`
	Timestamp int64  `json:"timestamp"`
}

type ChatDeleteEvent struct {
	ID          string `json:"_id,omitempty"`
	UserID      string `json:"userID,omitempty"`
	ModeratorID string `json:"moderatorID,omitempty"`
}

type MuteEvent struct {
	UserID      string `json:"userID"`
	ModeratorID string `json:"moderatorID"`
	ExpiresAt   int64  `json:"expiresAt,omitempty"`
}

type JoinEvent struct {
	User User `json:"user"`
}

type NameChangeEvent struct {
	UserID   string `json:"userID"`
	Username string `json:"username"`
}

type RoleChangeEvent struct {
	UserID string `json:"userID"`
	Role   Role   `json:"role"`
}

type Advance struct {
	HistoryID string `json:"historyID"`
	DJID      string `json:"userID"`
	Media     *Media `json:"media"`
	PlayedAt  int64  `json:"playedAt"`
}

type SkipEvent struct {
	UserID      string `json:"userID"`
	ModeratorID string `json:"moderatorID,omitempty"`
	Reason      string `json:"reason,omitempty"`
}

type WaitlistEvent struct {
	UserID      string   `json:"userID"`
	ModeratorID string   `json:"moderatorID,omitempty"`
	Position    int      `json:"position,omitempty"`
	Waitlist    []string `json:"waitlist"`
}

type WaitlistLockEvent struct {
	Locked bool `json:"locked"`
}

type VoteEvent struct {
	UserID string `json:"_id"`
	Value  int    `json:"value"`
}

type FavoriteEvent struct {
	UserID string `json:"userID"`
}

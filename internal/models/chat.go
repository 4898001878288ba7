package models

type MessageKind string

const (
	MessageKindChat            MessageKind = "chat"
	MessageKindLog             MessageKind = "log"
	MessageKindUserJoin        MessageKind = "userJoin"
	MessageKindUserLeave       MessageKind = "userLeave"
	MessageKindUserNameChanged MessageKind = "userNameChanged"
	MessageKindSkip            MessageKind = "skip"
)

type TokenKind string

const (
	TokenText         TokenKind = "text"
	TokenMention      TokenKind = "mention"
	TokenGroupMention TokenKind = "groupMention"
	TokenEmoji        TokenKind = "emoji"
	TokenLink         TokenKind = "link"
	TokenCode         TokenKind = "code"
	TokenBold         TokenKind = "bold"
	TokenItalic       TokenKind = "italic"
)

// TextToken is one piece of parsed chat markup. Text is the raw source,
// Value the mention name, emoji shortcode, URL or inner text.
type TextToken struct {
	Kind  TokenKind `json:"type"`
	Text  string    `json:"text"`
	Value string    `json:"value,omitempty"`
}

type ChatMessage struct {
	ID         string      `json:"_id"`
	Kind       MessageKind `json:"type"`
	UserID     string      `json:"userID,omitempty"`
	Username   string      `json:"username,omitempty"`
	Text       string      `json:"text"`
	ParsedText []TextToken `json:"parsedText"`
	Timestamp  int64       `json:"timestamp"`
	IsMention  bool        `json:"isMention"`
	InFlight   bool        `json:"inFlight"`

	PreviousName string `json:"previousName,omitempty"`
	ModeratorID  string `json:"moderatorID,omitempty"`
	Reason       string `json:"reason,omitempty"`
}

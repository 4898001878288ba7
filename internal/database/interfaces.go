package database

import (
	"context"

	"room-client/internal/models"
)

// TranscriptRepository keeps confirmed chat messages beyond the session.
type TranscriptRepository interface {
	SaveMessage(ctx context.Context, msg models.ChatMessage) error
	DeleteMessage(ctx context.Context, id string) error
	DeleteUserMessages(ctx context.Context, userID string) error
	DeleteAllMessages(ctx context.Context) error
	LoadRecentMessages(ctx context.Context, limit int) ([]models.ChatMessage, error)
	Close() error
}

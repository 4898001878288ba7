package database

import (
	"context"
	"time"

	"room-client/internal/metrics"
	"room-client/internal/models"
	"room-client/internal/store"
	"room-client/pkg/logger"
)

const writeTimeout = 5 * time.Second

type job struct {
	name string
	run  func(ctx context.Context) error
}

// Archiver mirrors confirmed chat messages and deletions into a
// TranscriptRepository. Writes happen on its own goroutine, in intent order.
type Archiver struct {
	repo    TranscriptRepository
	metrics *metrics.Metrics
	jobs    chan job
	stopped chan struct{}
}

func NewArchiver(repo TranscriptRepository, m *metrics.Metrics) *Archiver {
	if m == nil {
		m = metrics.New(nil)
	}
	return &Archiver{
		repo:    repo,
		metrics: m,
		jobs:    make(chan job, 256),
		stopped: make(chan struct{}),
	}
}

// Observe is a store listener. It never blocks; when the queue is full the
// write is dropped.
func (a *Archiver) Observe(_ store.State, in store.Intent) {
	var j job
	switch in.Kind {
	case store.KindReceiveMessage:
		msg, ok := in.Payload.(models.ChatMessage)
		if !ok || msg.Kind != models.MessageKindChat {
			return
		}
		j = job{"save", func(ctx context.Context) error { return a.repo.SaveMessage(ctx, msg) }}
	case store.KindRemoveMessage:
		p, ok := in.Payload.(store.RemoveMessagePayload)
		if !ok {
			return
		}
		j = job{"delete", func(ctx context.Context) error { return a.repo.DeleteMessage(ctx, p.ID) }}
	case store.KindRemoveUserMessages:
		p, ok := in.Payload.(store.RemoveUserMessagesPayload)
		if !ok {
			return
		}
		j = job{"deleteUser", func(ctx context.Context) error { return a.repo.DeleteUserMessages(ctx, p.UserID) }}
	case store.KindRemoveAllMessages:
		j = job{"deleteAll", a.repo.DeleteAllMessages}
	default:
		return
	}

	select {
	case a.jobs <- j:
	default:
		a.metrics.ArchiveWrites.WithLabelValues("dropped").Inc()
		logger.Warn("Archive queue full, dropping %s", j.name)
	}
}

// Run writes queued jobs until ctx ends, then drains what is left.
func (a *Archiver) Run(ctx context.Context) {
	defer close(a.stopped)
	for {
		select {
		case <-ctx.Done():
			for {
				select {
				case j := <-a.jobs:
					a.write(context.Background(), j)
				default:
					return
				}
			}
		case j := <-a.jobs:
			a.write(ctx, j)
		}
	}
}

// Stopped is closed once Run has returned.
func (a *Archiver) Stopped() <-chan struct{} {
	return a.stopped
}

func (a *Archiver) write(ctx context.Context, j job) {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	if err := j.run(ctx); err != nil {
		a.metrics.ArchiveWrites.WithLabelValues("error").Inc()
		logger.Error("Archive %s failed: %v", j.name, err)
		return
	}
	a.metrics.ArchiveWrites.WithLabelValues("success").Inc()
}

// MessageReceiver takes archived messages back into the chat feed.
type MessageReceiver interface {
	ReceiveStored(msg models.ChatMessage)
}

// Restore feeds the most recent archived messages into the chat feed. Call
// it once the viewer is known so mentions are detected.
func Restore(ctx context.Context, repo TranscriptRepository, r MessageReceiver, limit int) error {
	if limit <= 0 {
		return nil
	}
	messages, err := repo.LoadRecentMessages(ctx, limit)
	if err != nil {
		return err
	}
	for _, msg := range messages {
		r.ReceiveStored(msg)
	}
	logger.Info("Restored %d archived messages", len(messages))
	return nil
}

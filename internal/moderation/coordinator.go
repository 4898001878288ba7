// Package moderation runs moderator requests against the server and
// reports each as START and COMPLETE intents.
//
// Waitlist removals and moves are applied optimistically on START and
// reverted by a failed COMPLETE. Chat deletions only touch the feed once the
// server accepted them.
package moderation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"room-client/internal/metrics"
	"room-client/internal/models"
	"room-client/internal/selectors"
	"room-client/internal/store"
	"room-client/pkg/logger"
)

var (
	// ErrOperationPending rejects a request while the same one is in flight.
	ErrOperationPending = errors.New("moderation: operation already pending")
	ErrClosed           = errors.New("moderation: coordinator closed")
)

// Operation names, used for pending keys, metrics and failure reports.
const (
	OpSkipDJ             = "skipDJ"
	OpRemoveUser         = "removeUser"
	OpMoveUser           = "moveUser"
	OpDeleteMessage      = "deleteMessage"
	OpDeleteUserMessages = "deleteUserMessages"
	OpDeleteAllMessages  = "deleteAllMessages"
)

// Gateway is the part of the server API moderation needs.
type Gateway interface {
	SkipBooth(ctx context.Context, userID, reason string, remove bool) error
	RemoveFromWaitlist(ctx context.Context, userID string) error
	MoveInWaitlist(ctx context.Context, userID string, position int) error
	DeleteChatMessage(ctx context.Context, id string) error
	DeleteChatByUser(ctx context.Context, userID string) error
	DeleteAllChat(ctx context.Context) error
}

type pendingKey struct {
	op     string
	target string
}

type Coordinator struct {
	store   *store.Store
	gw      Gateway
	metrics *metrics.Metrics

	mu      sync.Mutex
	pending map[pendingKey]struct{}
	closed  bool
	wg      sync.WaitGroup
}

func NewCoordinator(s *store.Store, gw Gateway, m *metrics.Metrics) *Coordinator {
	if m == nil {
		m = metrics.New(nil)
	}
	return &Coordinator{
		store:   s,
		gw:      gw,
		metrics: m,
		pending: make(map[pendingKey]struct{}),
	}
}

// request is one moderation call. start runs synchronously before the
// call, finish after it with its result.
type request struct {
	op     string
	target string
	start  func(opID string)
	call   func(ctx context.Context) error
	finish func(opID string, err error)
}

// launch starts r. The call outlives ctx's cancellation, since callers
// such as HTTP handlers return before the server answers; ctx values are
// kept.
func (c *Coordinator) launch(ctx context.Context, r request) *Operation {
	ctx = context.WithoutCancel(ctx)
	key := pendingKey{op: r.op, target: r.target}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return finished(ErrClosed)
	}
	if _, busy := c.pending[key]; busy {
		c.mu.Unlock()
		c.metrics.ModerationRejected.WithLabelValues(r.op).Inc()
		logger.Warn("%s %s already pending", r.op, r.target)
		return finished(ErrOperationPending)
	}
	c.pending[key] = struct{}{}
	c.wg.Add(1)
	c.mu.Unlock()

	op := newOperation(uuid.NewString())
	if r.start != nil {
		r.start(op.ID)
	}

	go func() {
		defer c.wg.Done()

		begin := time.Now()
		err := safeCall(ctx, r.call)
		c.metrics.ModerationDuration.WithLabelValues(r.op).Observe(time.Since(begin).Seconds())
		outcome := "success"
		if err != nil {
			outcome = "error"
			logger.Error("%s %s failed: %v", r.op, r.target, err)
		}
		c.metrics.ModerationRequests.WithLabelValues(r.op, outcome).Inc()

		r.finish(op.ID, err)

		c.mu.Lock()
		delete(c.pending, key)
		c.mu.Unlock()
		op.finish(err)
	}()
	return op
}

func safeCall(ctx context.Context, call func(context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return call(ctx)
}

// complete dispatches the COMPLETE intent for payload, failed when err is
// set.
func (c *Coordinator) complete(kind store.Kind, opID string, payload any, err error) {
	if err != nil {
		c.store.Dispatch(store.Intent{Kind: kind, Err: err, Meta: payload, OpID: opID})
		return
	}
	c.store.Dispatch(store.Intent{Kind: kind, Payload: payload, OpID: opID})
}

// SkipCurrentDJ ends the current play. With no DJ in the booth it does
// nothing and returns a finished operation.
func (c *Coordinator) SkipCurrentDJ(ctx context.Context, reason string, remove bool) *Operation {
	djID := selectors.CurrentDJID(c.store.State())
	if djID == "" {
		logger.Debug("skip requested with an empty booth")
		return finished(nil)
	}
	return c.skip(ctx, djID, reason, remove)
}

// RemoveCurrentDJ skips the current DJ and takes them out of the waitlist.
func (c *Coordinator) RemoveCurrentDJ(ctx context.Context, reason string) *Operation {
	return c.SkipCurrentDJ(ctx, reason, true)
}

func (c *Coordinator) skip(ctx context.Context, djID, reason string, remove bool) *Operation {
	p := store.SkipDJPayload{UserID: djID, Reason: reason, Remove: remove}
	return c.launch(ctx, request{
		op:     OpSkipDJ,
		target: djID,
		start: func(opID string) {
			c.store.Dispatch(store.Intent{Kind: store.KindSkipDJStart, Payload: p, OpID: opID})
		},
		call: func(ctx context.Context) error {
			return c.gw.SkipBooth(ctx, p.UserID, p.Reason, p.Remove)
		},
		finish: func(opID string, err error) {
			c.complete(store.KindSkipDJComplete, opID, p, err)
		},
	})
}

// RemoveWaitlistUser takes user out of the waitlist right away. The
// current DJ is removed through a skip instead.
func (c *Coordinator) RemoveWaitlistUser(ctx context.Context, user models.User) *Operation {
	p := store.RemoveUserPayload{User: user}
	isDJ := selectors.CurrentDJID(c.store.State()) == user.ID
	return c.launch(ctx, request{
		op:     OpRemoveUser,
		target: user.ID,
		start: func(opID string) {
			c.store.Dispatch(store.Intent{Kind: store.KindRemoveUserStart, Payload: p, OpID: opID})
		},
		call: func(ctx context.Context) error {
			if isDJ {
				skip := c.skip(ctx, user.ID, "", true)
				<-skip.Done()
				return skip.Err()
			}
			return c.gw.RemoveFromWaitlist(ctx, user.ID)
		},
		finish: func(opID string, err error) {
			c.complete(store.KindRemoveUserComplete, opID, p, err)
		},
	})
}

// MoveWaitlistUser moves user to position right away.
func (c *Coordinator) MoveWaitlistUser(ctx context.Context, user models.User, position int) *Operation {
	p := store.MoveUserPayload{User: user, Position: position}
	return c.launch(ctx, request{
		op:     OpMoveUser,
		target: user.ID,
		start: func(opID string) {
			c.store.Dispatch(store.Intent{Kind: store.KindMoveUserStart, Payload: p, OpID: opID})
		},
		call: func(ctx context.Context) error {
			return c.gw.MoveInWaitlist(ctx, user.ID, position)
		},
		finish: func(opID string, err error) {
			c.complete(store.KindMoveUserComplete, opID, p, err)
		},
	})
}

func (c *Coordinator) DeleteChatMessage(ctx context.Context, id string) *Operation {
	return c.deleteChat(ctx, OpDeleteMessage, id,
		func(ctx context.Context) error { return c.gw.DeleteChatMessage(ctx, id) },
		store.Intent{Kind: store.KindRemoveMessage, Payload: store.RemoveMessagePayload{ID: id}},
		store.RequestFailedMeta{Operation: OpDeleteMessage, ID: id},
	)
}

func (c *Coordinator) DeleteChatMessagesByUser(ctx context.Context, userID string) *Operation {
	return c.deleteChat(ctx, OpDeleteUserMessages, userID,
		func(ctx context.Context) error { return c.gw.DeleteChatByUser(ctx, userID) },
		store.Intent{Kind: store.KindRemoveUserMessages, Payload: store.RemoveUserMessagesPayload{UserID: userID}},
		store.RequestFailedMeta{Operation: OpDeleteUserMessages, UserID: userID},
	)
}

func (c *Coordinator) DeleteAllChatMessages(ctx context.Context) *Operation {
	return c.deleteChat(ctx, OpDeleteAllMessages, "",
		c.gw.DeleteAllChat,
		store.Intent{Kind: store.KindRemoveAllMessages},
		store.RequestFailedMeta{Operation: OpDeleteAllMessages},
	)
}

func (c *Coordinator) deleteChat(ctx context.Context, op, target string, call func(context.Context) error, onSuccess store.Intent, meta store.RequestFailedMeta) *Operation {
	return c.launch(ctx, request{
		op:     op,
		target: target,
		call:   call,
		finish: func(opID string, err error) {
			if err != nil {
				c.store.Dispatch(store.Intent{Kind: store.KindRequestFailed, Err: err, Meta: meta, OpID: opID})
				return
			}
			onSuccess.OpID = opID
			c.store.Dispatch(onSuccess)
		},
	})
}

// Wait blocks until every launched request has completed.
func (c *Coordinator) Wait() {
	c.wg.Wait()
}

// Close refuses new requests and waits for the running ones.
func (c *Coordinator) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	c.wg.Wait()
}

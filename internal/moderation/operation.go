package moderation

import (
	"context"
	"sync"
)

// Operation is the handle of one moderation request. Its outcome is also
// dispatched as intents, so callers only need it to wait.
type Operation struct {
	ID string

	done chan struct{}
	once sync.Once
	err  error
}

func newOperation(id string) *Operation {
	return &Operation{ID: id, done: make(chan struct{})}
}

func finished(err error) *Operation {
	op := newOperation("")
	op.finish(err)
	return op
}

func (o *Operation) finish(err error) {
	o.once.Do(func() {
		o.err = err
		close(o.done)
	})
}

func (o *Operation) Done() <-chan struct{} {
	return o.done
}

// Err returns the request error once Done is closed, nil before.
func (o *Operation) Err() error {
	select {
	case <-o.done:
		return o.err
	default:
		return nil
	}
}

// Wait blocks until the operation finishes or ctx ends.
func (o *Operation) Wait(ctx context.Context) error {
	select {
	case <-o.done:
		return o.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

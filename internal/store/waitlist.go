package store

import (
	"slices"

	"room-client/internal/models"
)

// WaitlistState presents the confirmed order with every unsettled
// optimistic operation replayed on top of it, in START order.
type WaitlistState struct {
	Rev     uint64
	UserIDs []string
	Locked  bool

	// last order known to the server
	base    []string
	pending []pendingOp
}

// pendingOp is an optimistic remove or move awaiting its COMPLETE.
type pendingOp struct {
	id       string
	userID   string
	remove   bool
	position int
}

func (op pendingOp) apply(ids []string) []string {
	idx := slices.Index(ids, op.userID)
	if idx < 0 {
		return ids
	}
	if op.remove {
		return slices.Delete(slices.Clone(ids), idx, idx+1)
	}
	return moveTo(ids, idx, op.position)
}

// PendingOperations reports how many optimistic operations are unsettled.
func (s WaitlistState) PendingOperations() int {
	return len(s.pending)
}

func reduceWaitlist(s WaitlistState, in Intent) WaitlistState {
	switch in.Kind {
	case KindLoadNow:
		p, ok := in.Payload.(models.NowResponse)
		if !ok {
			return s
		}
		s.Locked = p.Locked
		s.base = slices.Clone(p.Waitlist)
		return s.replay()

	case KindSetWaitlist:
		p, ok := in.Payload.(SetWaitlistPayload)
		if !ok || slices.Equal(p.UserIDs, s.base) {
			return s
		}
		s.base = slices.Clone(p.UserIDs)
		return s.replay()

	case KindWaitlistLock:
		p, ok := in.Payload.(WaitlistLockPayload)
		if !ok || p.Locked == s.Locked {
			return s
		}
		s.Locked = p.Locked
		s.Rev++
		return s

	case KindUserLeave:
		p, ok := in.Payload.(UserLeavePayload)
		if !ok || !slices.Contains(s.base, p.UserID) {
			return s
		}
		s.base = without(s.base, p.UserID)
		return s.replay()

	case KindRemoveUserStart:
		p, ok := in.Payload.(RemoveUserPayload)
		if !ok {
			return s
		}
		return s.start(in.OpID, pendingOp{userID: p.User.ID, remove: true})

	case KindMoveUserStart:
		p, ok := in.Payload.(MoveUserPayload)
		if !ok {
			return s
		}
		return s.start(in.OpID, pendingOp{userID: p.User.ID, position: p.Position})

	case KindRemoveUserComplete, KindMoveUserComplete:
		return s.complete(in.OpID, !in.Failed())
	}
	return s
}

// start records op and shows its prediction. Without an OpID nothing can
// settle it later, so it is taken as confirmed.
func (s WaitlistState) start(opID string, op pendingOp) WaitlistState {
	if opID == "" {
		s.base = op.apply(s.base)
		return s.replay()
	}
	op.id = opID
	s.pending = append(slices.Clone(s.pending), op)
	return s.replay()
}

// complete settles opID: a success is folded into the confirmed order, a
// failure is dropped. Either way the remaining operations are replayed.
func (s WaitlistState) complete(opID string, ok bool) WaitlistState {
	idx := slices.IndexFunc(s.pending, func(op pendingOp) bool { return op.id == opID })
	if idx < 0 {
		return s
	}
	if ok {
		s.base = s.pending[idx].apply(s.base)
	}
	s.pending = slices.Delete(slices.Clone(s.pending), idx, idx+1)
	return s.replay()
}

func (s WaitlistState) replay() WaitlistState {
	ids := slices.Clone(s.base)
	for _, op := range s.pending {
		ids = op.apply(ids)
	}
	s.UserIDs = ids
	s.Rev++
	return s
}

func moveTo(ids []string, from, to int) []string {
	out := slices.Clone(ids)
	id := out[from]
	out = slices.Delete(out, from, from+1)
	to = min(max(to, 0), len(out))
	return slices.Insert(out, to, id)
}

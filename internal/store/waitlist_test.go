package store

import (
	"errors"
	"slices"
	"testing"

	"room-client/internal/models"
)

var errBoom = errors.New("boom")

func waitlistStore(ids ...string) *Store {
	s := New(InitialState())
	s.Dispatch(Intent{Kind: KindSetWaitlist, Payload: SetWaitlistPayload{UserIDs: ids}})
	return s
}

func moveStart(op, userID string, pos int) Intent {
	return Intent{Kind: KindMoveUserStart, OpID: op, Payload: MoveUserPayload{User: models.User{ID: userID}, Position: pos}}
}

func moveDone(op, userID string, pos int, err error) Intent {
	in := Intent{Kind: KindMoveUserComplete, OpID: op}
	p := MoveUserPayload{User: models.User{ID: userID}, Position: pos}
	if err != nil {
		in.Err = err
		in.Meta = p
	} else {
		in.Payload = p
	}
	return in
}

func removeStart(op, userID string) Intent {
	return Intent{Kind: KindRemoveUserStart, OpID: op, Payload: RemoveUserPayload{User: models.User{ID: userID}}}
}

func removeDone(op, userID string, err error) Intent {
	in := Intent{Kind: KindRemoveUserComplete, OpID: op}
	p := RemoveUserPayload{User: models.User{ID: userID}}
	if err != nil {
		in.Err = err
		in.Meta = p
	} else {
		in.Payload = p
	}
	return in
}

func assertOrder(t *testing.T, s *Store, want ...string) {
	t.Helper()
	if got := s.State().Waitlist.UserIDs; !slices.Equal(got, want) {
		t.Fatalf("waitlist = %v, want %v", got, want)
	}
}

func TestWaitlist_MoveIsOptimistic(t *testing.T) {
	s := waitlistStore("a", "b", "c")
	s.Dispatch(moveStart("op1", "a", 2))
	assertOrder(t, s, "b", "c", "a")

	s.Dispatch(moveDone("op1", "a", 2, nil))
	assertOrder(t, s, "b", "c", "a")
	if n := s.State().Waitlist.PendingOperations(); n != 0 {
		t.Fatalf("expected no pending operations, got %d", n)
	}
}

func TestWaitlist_FailedMoveRestoresOrder(t *testing.T) {
	s := waitlistStore("a", "b", "c", "d")
	s.Dispatch(moveStart("op1", "b", 3))
	assertOrder(t, s, "a", "c", "d", "b")

	s.Dispatch(moveDone("op1", "b", 3, errBoom))
	assertOrder(t, s, "a", "b", "c", "d")
}

func TestWaitlist_FailedMoveKeepsUnrelatedSuccessfulMove(t *testing.T) {
	s := waitlistStore("a", "b", "c", "d")
	s.Dispatch(moveStart("op1", "a", 2))
	assertOrder(t, s, "b", "c", "a", "d")

	s.Dispatch(moveStart("op2", "c", 0))
	s.Dispatch(moveDone("op2", "c", 0, nil))
	assertOrder(t, s, "c", "b", "a", "d")

	// the server only ever applied op2 to [a b c d]
	s.Dispatch(moveDone("op1", "a", 2, errBoom))
	assertOrder(t, s, "c", "a", "b", "d")
}

func TestWaitlist_FailureRebasesOnConfirmedOrder(t *testing.T) {
	s := waitlistStore("a", "b", "c", "d")
	s.Dispatch(moveStart("op1", "c", 0))
	s.Dispatch(moveStart("op2", "b", 3))
	assertOrder(t, s, "c", "a", "d", "b")

	s.Dispatch(moveDone("op2", "b", 3, nil))
	assertOrder(t, s, "c", "a", "d", "b")

	s.Dispatch(moveDone("op1", "c", 0, errBoom))
	assertOrder(t, s, "a", "c", "d", "b")
	if n := s.State().Waitlist.PendingOperations(); n != 0 {
		t.Fatalf("expected no pending operations, got %d", n)
	}
}

func TestWaitlist_FailedRemoveAfterOtherSuccess(t *testing.T) {
	s := waitlistStore("a", "b", "c", "d")
	s.Dispatch(removeStart("op1", "a"))
	s.Dispatch(moveStart("op2", "d", 0))
	assertOrder(t, s, "d", "b", "c")

	s.Dispatch(moveDone("op2", "d", 0, nil))
	s.Dispatch(removeDone("op1", "a", errBoom))
	assertOrder(t, s, "d", "a", "b", "c")
}

func TestWaitlist_ServerUpdateKeepsPendingPrediction(t *testing.T) {
	s := waitlistStore("a", "b", "c")
	s.Dispatch(moveStart("op1", "a", 2))
	assertOrder(t, s, "b", "c", "a")

	s.Dispatch(Intent{Kind: KindSetWaitlist, Payload: SetWaitlistPayload{UserIDs: []string{"a", "b", "c", "e"}}})
	assertOrder(t, s, "b", "c", "a", "e")

	s.Dispatch(moveDone("op1", "a", 2, errBoom))
	assertOrder(t, s, "a", "b", "c", "e")
}

func TestWaitlist_OutOfOrderCompletionsForSameUser(t *testing.T) {
	s := waitlistStore("a", "b", "c")
	s.Dispatch(moveStart("op1", "a", 2))
	s.Dispatch(moveStart("op2", "a", 1))
	assertOrder(t, s, "b", "a", "c")

	// The first request fails after the second already re-positioned "a".
	s.Dispatch(moveDone("op1", "a", 2, errBoom))
	assertOrder(t, s, "b", "a", "c")

	s.Dispatch(moveDone("op2", "a", 1, errBoom))
	assertOrder(t, s, "a", "b", "c")
}

func TestWaitlist_LaterFailureWithEarlierSuccess(t *testing.T) {
	s := waitlistStore("a", "b", "c")
	s.Dispatch(moveStart("op1", "a", 2))
	s.Dispatch(moveStart("op2", "a", 1))

	s.Dispatch(moveDone("op2", "a", 1, errBoom))
	assertOrder(t, s, "b", "c", "a")

	s.Dispatch(moveDone("op1", "a", 2, nil))
	assertOrder(t, s, "b", "c", "a")
}

func TestWaitlist_FailedRemoveReinserts(t *testing.T) {
	s := waitlistStore("a", "b", "c")
	s.Dispatch(removeStart("op1", "b"))
	assertOrder(t, s, "a", "c")

	s.Dispatch(removeDone("op1", "b", errBoom))
	assertOrder(t, s, "a", "b", "c")
}

func TestWaitlist_FailedRemoveDoesNotDuplicate(t *testing.T) {
	s := waitlistStore("a", "b", "c")
	s.Dispatch(removeStart("op1", "b"))
	s.Dispatch(Intent{Kind: KindSetWaitlist, Payload: SetWaitlistPayload{UserIDs: []string{"a", "b", "c"}}})

	s.Dispatch(removeDone("op1", "b", errBoom))
	assertOrder(t, s, "a", "b", "c")
}

func TestWaitlist_FailedMoveOfDepartedUser(t *testing.T) {
	s := waitlistStore("a", "b", "c")
	s.Dispatch(moveStart("op1", "b", 0))
	s.Dispatch(Intent{Kind: KindUserLeave, Payload: UserLeavePayload{UserID: "b"}})
	assertOrder(t, s, "a", "c")

	s.Dispatch(moveDone("op1", "b", 0, errBoom))
	assertOrder(t, s, "a", "c")
}

func TestWaitlist_RemoveOfAbsentUserIsHarmless(t *testing.T) {
	s := waitlistStore("a", "b")
	s.Dispatch(removeStart("op1", "dj"))
	assertOrder(t, s, "a", "b")
	s.Dispatch(removeDone("op1", "dj", errBoom))
	assertOrder(t, s, "a", "b")
}

func TestWaitlist_UnknownCompletionIgnored(t *testing.T) {
	s := waitlistStore("a", "b")
	rev := s.State().Waitlist.Rev
	s.Dispatch(moveDone("nope", "a", 1, errBoom))
	if s.State().Waitlist.Rev != rev {
		t.Fatal("completion without a pending operation changed the waitlist")
	}
}

func TestWaitlist_MovePositionIsClamped(t *testing.T) {
	s := waitlistStore("a", "b", "c")
	s.Dispatch(moveStart("op1", "a", 99))
	assertOrder(t, s, "b", "c", "a")
	s.Dispatch(moveStart("op2", "c", -4))
	assertOrder(t, s, "c", "b", "a")
}

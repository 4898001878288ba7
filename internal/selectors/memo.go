// Package selectors holds derived, read-only views of store.State.
//
// Memoized views live on a Selectors value owned by one session: they are
// keyed by slice revisions, and revisions are only meaningful within a
// single store.
package selectors

import (
	"sync"

	"room-client/internal/clock"
	"room-client/internal/models"
	"room-client/internal/store"
)

// createSelector returns fn memoized on key. The same key yields the same
// result value, so callers may compare slices by identity.
func createSelector[K comparable, R any](key func(store.State) K, fn func(store.State) R) func(store.State) R {
	var (
		mu   sync.Mutex
		ok   bool
		last K
		val  R
	)
	return func(s store.State) R {
		k := key(s)
		mu.Lock()
		defer mu.Unlock()
		if ok && k == last {
			return val
		}
		val, last, ok = fn(s), k, true
		return val
	}
}

func revs(slices ...store.Slice) func(store.State) [4]uint64 {
	return func(s store.State) [4]uint64 {
		var k [4]uint64
		for i, sl := range slices {
			k[i] = s.Revision(sl)
		}
		return k
	}
}

type Selectors struct {
	filteredMessages       func(store.State) []models.ChatMessage
	messages               func(store.State) []models.ChatMessage
	mutedUserIDs           func(store.State) []string
	mutedUsers             func(store.State) []models.User
	muteTimeouts           func(store.State) map[string]clock.Task
	availableGroupMentions func(store.State) []string
	emojiCompletions       func(store.State) []EmojiCompletion
	markupOptions          func(store.State) MarkupCompilerOptions
	waitlistUsers          func(store.State) []models.User
}

func New() *Selectors {
	s := &Selectors{}
	s.initChat()
	s.initWaitlist()
	return s
}

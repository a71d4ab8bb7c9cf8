package guard

import (
	"fmt"
	"sync"
	"time"
)

// ActionGuard provides at-most-once semantics for user-triggered mutations
// within one running process. A key moves Free -> Held -> Free; a second
// acquire while held fails instead of queueing. Keys are never persisted,
// so a restart clears every guard — the store's unique constraints remain
// the backstop against true duplicate writes.
type ActionGuard struct {
	mu   sync.Mutex
	held map[string]time.Time
}

func NewActionGuard() *ActionGuard {
	return &ActionGuard{
		held: make(map[string]time.Time),
	}
}

// TryAcquire marks key held and returns true, or returns false when the key
// is already held. It never blocks.
func (g *ActionGuard) TryAcquire(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, busy := g.held[key]; busy {
		return false
	}
	g.held[key] = time.Now()
	return true
}

// Release clears key unconditionally. It must run on every exit path of the
// guarded operation, success or failure.
func (g *ActionGuard) Release(key string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.held, key)
}

// IsHeld reports whether key is currently held.
func (g *ActionGuard) IsHeld(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, busy := g.held[key]
	return busy
}

// HeldCount returns the number of keys currently held.
func (g *ActionGuard) HeldCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.held)
}

// Do runs fn under the guard for key, releasing on every exit path. When the
// key is already held it returns ErrDuplicateAction without running fn.
func (g *ActionGuard) Do(key string, fn func() error) error {
	if !g.TryAcquire(key) {
		return ErrDuplicateAction
	}
	defer g.Release(key)

	return fn()
}

// Stable guard keys for the mutations the product dedupes.

func ContactAddKey(userID int64, walletAddress string) string {
	return fmt.Sprintf("contact-add:%d:%s", userID, walletAddress)
}

func FavoriteToggleKey(contactID int64) string {
	return fmt.Sprintf("favorite-toggle:%d", contactID)
}

func NotificationActionKey(notificationID int64, action string) string {
	return fmt.Sprintf("notification-action:%d:%s", notificationID, action)
}

func GroupJoinKey(userID int64, inviteID string) string {
	return fmt.Sprintf("group-join:%d:%s", userID, inviteID)
}

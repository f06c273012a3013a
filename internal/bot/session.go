package bot

import (
	"strconv"
	"time"

	"github.com/patrickmn/go-cache"
)

// State is the position of a chat session in the menu conversation.
type State int

const (
	StateAwaitingSecret State = iota
	StateAwaitingTargetID
	StatePendingProvision
	StateCategoryMenu
	StateSubcategoryMenu
	StateFileMenu
	StateAdminMenu
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateAwaitingSecret:
		return "awaiting_secret"
	case StateAwaitingTargetID:
		return "awaiting_target_id"
	case StatePendingProvision:
		return "pending_provision"
	case StateCategoryMenu:
		return "category_menu"
	case StateSubcategoryMenu:
		return "subcategory_menu"
	case StateFileMenu:
		return "file_menu"
	case StateAdminMenu:
		return "admin_menu"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Session is the ephemeral per-chat conversational state. It is UI state,
// not data of record: losing it across a restart only forces the operator
// back through /start.
type Session struct {
	ChatID  int64
	ActorID int64
	State   State

	Target      string    // selected target id; empty until chosen
	Category    *Category // selected category; nil outside sub/file menus
	Subcategory string    // selected subcategory label; empty if none

	// AwaitingUpload marks that the next document in the file menu is an
	// upload requested via the upload button.
	AwaitingUpload bool

	// WaitingMessageID is the provider id of the "please wait" notice shown
	// during provisioning, kept so it can be deleted when the delay elapses.
	WaitingMessageID int
}

// clearSelection drops target and menu position, keeping chat identity.
func (s *Session) clearSelection() {
	s.Target = ""
	s.Category = nil
	s.Subcategory = ""
	s.AwaitingUpload = false
	s.WaitingMessageID = 0
}

// Sessions is the in-memory session registry. Entries expire after an idle
// TTL and are purged in the background; an expired session is simply treated
// as a brand-new chat.
type Sessions struct {
	c *cache.Cache
}

// NewSessions creates a registry whose entries expire after ttl of
// inactivity.
func NewSessions(ttl time.Duration) *Sessions {
	return &Sessions{c: cache.New(ttl, 10*time.Minute)}
}

func sessionKey(chatID int64) string {
	return strconv.FormatInt(chatID, 10)
}

// Get returns the session for a chat, or nil if none exists.
func (r *Sessions) Get(chatID int64) *Session {
	if x, found := r.c.Get(sessionKey(chatID)); found {
		return x.(*Session)
	}
	return nil
}

// Put saves a session, refreshing its expiration.
func (r *Sessions) Put(s *Session) {
	r.c.Set(sessionKey(s.ChatID), s, cache.DefaultExpiration)
}

// Delete removes a chat's session.
func (r *Sessions) Delete(chatID int64) {
	r.c.Delete(sessionKey(chatID))
}

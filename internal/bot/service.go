package bot

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Reporter renders activity log exports. The CSV/PDF methods return the path
// of the produced file; Dashboard methods return ready-to-send text.
type Reporter interface {
	ExportCSV(target string) (string, error)
	ExportPDF(target string) (string, error)
	Dashboard(topN int) (string, error)
	DashboardByActor(n int) (string, error)
}

// Options carries the conversation tunables for a Service.
type Options struct {
	// Password is the shared secret gating session entry. Empty disables the
	// secret prompt and sessions start at the target id prompt.
	Password string

	// AdminIDs is the allow-list of actor ids for admin operations.
	AdminIDs []int64

	// ProvisionDelay is how long a newly created target sits in the pending
	// provisioning state before the category menu is shown.
	ProvisionDelay time.Duration

	// SendAttempts and SendDelay bound the retry loop around outbound sends.
	SendAttempts int
	SendDelay    time.Duration

	// DashboardTopN is how many targets the statistics dashboard ranks.
	DashboardTopN int
}

// Service is the conversational core: it owns the per-chat sessions and
// routes inbound events through the state transition table to the handler
// for the session's current state.
type Service struct {
	password       string
	admins         map[int64]struct{}
	provisionDelay time.Duration
	topN           int

	// mu serializes event dispatch with provisioning timer callbacks, which
	// fire on their own goroutine and mutate the same sessions.
	mu sync.Mutex

	store    Store
	db       Database
	reporter Reporter
	sessions *Sessions
	sched    Scheduler
	sender   *retrySender
	logger   Logger
	clock    Clock
}

// NewService creates a Service with the provided dependencies.
func NewService(opts Options, store Store, db Database, reporter Reporter, transport Transport, sessions *Sessions, sched Scheduler, logger Logger, clock Clock) *Service {
	admins := make(map[int64]struct{}, len(opts.AdminIDs))
	for _, id := range opts.AdminIDs {
		admins[id] = struct{}{}
	}
	topN := opts.DashboardTopN
	if topN <= 0 {
		topN = 10
	}
	return &Service{
		password:       opts.Password,
		admins:         admins,
		provisionDelay: opts.ProvisionDelay,
		topN:           topN,
		store:          store,
		db:             db,
		reporter:       reporter,
		sessions:       sessions,
		sched:          sched,
		sender:         newRetrySender(transport, opts.SendAttempts, opts.SendDelay, logger),
		logger:         logger,
		clock:          clock,
	}
}

// handlerFunc processes one event for a session and returns the next state.
type handlerFunc func(*Service, *Session, Event) (State, error)

// transitions is the state machine: (current state, event kind) selects the
// handler. Pairs absent from the table re-render the current state with an
// "option not recognized" notice instead of transitioning.
var transitions = map[State]map[EventKind]handlerFunc{
	StateAwaitingSecret: {
		EventText: (*Service).handleSecret,
	},
	StateAwaitingTargetID: {
		EventText: (*Service).handleTargetID,
	},
	StatePendingProvision: {
		EventText:     (*Service).handleWaiting,
		EventDocument: (*Service).handleWaiting,
	},
	StateCategoryMenu: {
		EventText: (*Service).handleCategory,
	},
	StateSubcategoryMenu: {
		EventText: (*Service).handleSubcategory,
	},
	StateFileMenu: {
		EventText:     (*Service).handleFileChoice,
		EventDocument: (*Service).handleFileUpload,
	},
	StateAdminMenu: {
		EventText: (*Service).handleAdminChoice,
	},
}

// HandleEvent is the dispatch loop entry point. It never panics: anything a
// handler throws is caught here, logged, and answered with the generic
// critical error notice.
func (s *Service) HandleEvent(ev Event) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("handler panic", "chat", ev.ChatID, "state_event", ev.Kind.String(), "panic", r)
			s.sender.SendMessage(ev.ChatID, msgCriticalError, nil)
			s.endConversation(ev.ChatID)
		}
	}()

	s.mu.Lock()
	defer s.mu.Unlock()

	if ev.Kind == EventCommand {
		s.handleCommand(ev)
		return
	}

	sess := s.sessions.Get(ev.ChatID)
	if sess == nil || sess.State == StateTerminated {
		s.sender.SendMessage(ev.ChatID, msgUseStart, nil)
		return
	}

	handler := transitions[sess.State][ev.Kind]
	if handler == nil {
		s.renderState(sess, msgUnrecognized)
		return
	}

	next, err := handler(s, sess, ev)
	if err != nil {
		// Outbound delivery failed even after retries: give up on this
		// conversation rather than leaving it silently stuck.
		s.logger.Error("handler failed", "chat", ev.ChatID, "state", sess.State.String(), "error", err)
		s.endConversation(ev.ChatID)
		return
	}

	sess.State = next
	s.sessions.Put(sess)
}

// handleCommand routes slash-commands. Commands work regardless of session
// state, so admin commands re-check the allow-list on every invocation.
func (s *Service) handleCommand(ev Event) {
	switch strings.ToLower(ev.Text) {
	case "start", "reset":
		s.startSession(ev.ChatID, ev.ActorID)
	case "cancel":
		s.sched.Cancel(ev.ChatID)
		s.sessions.Delete(ev.ChatID)
		s.sender.SendMessage(ev.ChatID, "✅ Opération annulée. Tapez /start pour recommencer.", nil)
	case "admin":
		s.enterAdminMenu(ev)
	case "delete_target":
		s.adminDeleteTarget(ev)
	case "export":
		s.adminExport(ev)
	case "dashboard":
		s.adminDashboard(ev)
	default:
		s.sender.SendMessage(ev.ChatID, "❌ Commande inconnue. Utilisez /start.", nil)
	}
}

// startSession resets the chat to the entry state: the secret prompt when a
// shared secret is configured, the target id prompt otherwise. Any pending
// provisioning timer for the chat is cancelled so it cannot fire into the
// new session.
func (s *Service) startSession(chatID, actorID int64) {
	s.sched.Cancel(chatID)

	sess := &Session{ChatID: chatID, ActorID: actorID}
	if s.password != "" {
		sess.State = StateAwaitingSecret
		s.sessions.Put(sess)
		s.sender.SendMessage(chatID, "🔒 Veuillez entrer le mot de passe pour accéder au bot.", nil)
		return
	}
	sess.State = StateAwaitingTargetID
	s.sessions.Put(sess)
	s.sender.SendMessage(chatID, msgEnterIdentifier, nil)
}

// endConversation drops all per-chat state.
func (s *Service) endConversation(chatID int64) {
	s.sched.Cancel(chatID)
	s.sessions.Delete(chatID)
}

// expireSession is the universal guard response when a handler finds a
// required session field missing (e.g. lost across a restart): force a full
// reset and tell the operator to /start again.
func (s *Service) expireSession(sess *Session) (State, error) {
	sess.clearSelection()
	s.sched.Cancel(sess.ChatID)
	s.sender.SendMessage(sess.ChatID, msgSessionExpired, nil)
	if s.password != "" {
		return StateAwaitingSecret, nil
	}
	return StateAwaitingTargetID, nil
}

// renderState re-issues the options of the session's current state, prefixed
// with an optional notice. Keyboards carry no implicit memory: every render
// sends the full option set again.
func (s *Service) renderState(sess *Session, notice string) {
	text := func(body string) string {
		if notice == "" {
			return body
		}
		return notice + "\n" + body
	}

	switch sess.State {
	case StateAwaitingSecret:
		s.sender.SendMessage(sess.ChatID, text("🔒 Veuillez entrer le mot de passe pour accéder au bot."), nil)
	case StateAwaitingTargetID:
		s.sender.SendMessage(sess.ChatID, text(msgEnterIdentifier), nil)
	case StatePendingProvision:
		s.sender.SendMessage(sess.ChatID, text("⏳ Veuillez patienter, le traitement est en cours."), nil)
	case StateCategoryMenu:
		s.sender.SendMessage(sess.ChatID, text(fmt.Sprintf("Sélectionnez une catégorie pour %s :", sess.Target)), categoryKeyboard())
	case StateSubcategoryMenu:
		kb := categoryKeyboard()
		body := fmt.Sprintf("Sélectionnez une catégorie pour %s :", sess.Target)
		if sess.Category != nil {
			kb = subcategoryKeyboard(sess.Category)
			body = fmt.Sprintf("🔽 Sous-catégories pour %s :", sess.Category.Label)
		}
		s.sender.SendMessage(sess.ChatID, text(body), kb)
	case StateFileMenu:
		s.showFileMenu(sess, notice)
	case StateAdminMenu:
		s.sender.SendMessage(sess.ChatID, text("🛠️ Panel Admin - Sélectionnez une option:"), adminKeyboard())
	default:
		s.sender.SendMessage(sess.ChatID, text(msgUseStart), nil)
	}
}

// isAdmin reports whether the actor is on the admin allow-list.
func (s *Service) isAdmin(actorID int64) bool {
	_, ok := s.admins[actorID]
	return ok
}

// record appends an activity log record and mirrors it into the target's
// plain-text activity file. Both writes are best-effort: the audit trail is
// not a transactional ledger and must never fail the user-facing action.
func (s *Service) record(actorID int64, target, category, subcategory, action, fileRef string) {
	rec := &LogRecord{
		ActorID:     actorID,
		TargetID:    target,
		Category:    category,
		Subcategory: subcategory,
		Action:      action,
		FileRef:     fileRef,
		CreatedAt:   s.clock.Now(),
	}
	if err := s.db.Record(rec); err != nil {
		s.logger.Warn("activity log append failed", "target", target, "action", action, "error", err)
	}
	if target == "" {
		return
	}
	ref := fileRef
	if ref == "" {
		ref = "N/A"
	}
	line := fmt.Sprintf("[%s] %s: %s", rec.CreatedAt.Format("2006-01-02 15:04:05"), strings.ToUpper(action), ref)
	if err := s.store.AppendActivity(target, line); err != nil {
		s.logger.Warn("activity mirror append failed", "target", target, "error", err)
	}
}

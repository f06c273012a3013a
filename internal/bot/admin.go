package bot

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// enterAdminMenu handles /admin: allow-listed actors get the admin keyboard,
// everyone else is refused.
func (s *Service) enterAdminMenu(ev Event) {
	if !s.isAdmin(ev.ActorID) {
		s.sender.SendMessage(ev.ChatID, msgAccessDenied, nil)
		return
	}

	sess := s.sessions.Get(ev.ChatID)
	if sess == nil {
		sess = &Session{ChatID: ev.ChatID, ActorID: ev.ActorID}
	}
	sess.State = StateAdminMenu
	s.sessions.Put(sess)
	s.sender.SendMessage(ev.ChatID, "🛠️ Panel Admin - Sélectionnez une option:", adminKeyboard())
}

// handleAdminChoice routes an admin menu selection. Membership is re-checked
// on every invocation, not just on menu entry, because the same labels are
// reachable from the category menu keyboard.
func (s *Service) handleAdminChoice(sess *Session, ev Event) (State, error) {
	if !s.isAdmin(ev.ActorID) {
		if _, err := s.sender.SendMessage(sess.ChatID, msgAccessDenied, nil); err != nil {
			return sess.State, err
		}
		return sess.State, nil
	}

	switch ev.Text {
	case btnAdminTargets:
		if err := s.adminListTargets(sess.ChatID); err != nil {
			return sess.State, err
		}
	case btnAdminDelete:
		if _, err := s.sender.SendMessage(sess.ChatID, "Usage: /delete_target <id>", adminKeyboard()); err != nil {
			return sess.State, err
		}
	case btnAdminStats:
		text, err := s.reporter.Dashboard(s.topN)
		if err != nil {
			s.logger.Error("building statistics", "error", err)
			text = "❌ Erreur lors de l'affichage des statistiques."
		}
		if _, err := s.sender.SendMessage(sess.ChatID, text, adminKeyboard()); err != nil {
			return sess.State, err
		}
	case btnAdminExport:
		if _, err := s.sender.SendMessage(sess.ChatID, "Usage: /export <id> [csv|pdf]", adminKeyboard()); err != nil {
			return sess.State, err
		}
	case btnAdminDashboard:
		text, err := s.reporter.DashboardByActor(s.topN)
		if err != nil {
			s.logger.Error("building dashboard", "error", err)
			text = "❌ Erreur lors de l'affichage du tableau de bord."
		}
		if _, err := s.sender.SendMessage(sess.ChatID, text, adminKeyboard()); err != nil {
			return sess.State, err
		}
	case btnBackMain:
		return s.restart(sess)
	default:
		if _, err := s.sender.SendMessage(sess.ChatID, msgUnrecognized, adminKeyboard()); err != nil {
			return sess.State, err
		}
	}
	return StateAdminMenu, nil
}

// adminListTargets sends the list of provisioned targets.
func (s *Service) adminListTargets(chatID int64) error {
	targets, err := s.store.ListTargets()
	if err != nil {
		s.logger.Error("listing targets", "error", err)
		_, serr := s.sender.SendMessage(chatID, msgStoreFailure, adminKeyboard())
		return serr
	}

	var text string
	if len(targets) == 0 {
		text = "ℹ️ Aucune cible enregistrée."
	} else {
		var b strings.Builder
		b.WriteString("📋 Cibles enregistrées:")
		for _, t := range targets {
			b.WriteString("\n- ")
			b.WriteString(t)
		}
		text = b.String()
	}
	_, err = s.sender.SendMessage(chatID, text, adminKeyboard())
	return err
}

// adminDeleteTarget handles /delete_target <id>: removes the container tree,
// cascades the registry row and its log records, then records the deletion
// itself so the audit trail keeps one trace of it.
func (s *Service) adminDeleteTarget(ev Event) {
	if !s.isAdmin(ev.ActorID) {
		s.sender.SendMessage(ev.ChatID, msgAccessDenied, nil)
		return
	}
	if len(ev.Args) != 1 {
		s.sender.SendMessage(ev.ChatID, "Usage: /delete_target <id>", nil)
		return
	}

	id := ev.Args[0]
	removed, err := s.store.DeleteTarget(id)
	if err != nil {
		s.logger.Error("deleting target tree", "target", id, "error", err)
		s.sender.SendMessage(ev.ChatID, fmt.Sprintf("❌ Erreur lors de la suppression de %s.", id), nil)
		return
	}
	if !removed {
		s.sender.SendMessage(ev.ChatID, fmt.Sprintf("❌ Cible %s introuvable.", id), nil)
		return
	}

	if err := s.db.DeleteTarget(id); err != nil {
		s.logger.Error("deleting target records", "target", id, "error", err)
	}
	s.record(ev.ActorID, id, "", "", ActionDeleteFolder, "")

	s.sender.SendMessage(ev.ChatID, fmt.Sprintf("✅ Cible %s supprimée.", id), nil)
}

// adminExport handles /export <id> [csv|pdf]: renders the target's log as a
// file and sends it to the chat.
func (s *Service) adminExport(ev Event) {
	if !s.isAdmin(ev.ActorID) {
		s.sender.SendMessage(ev.ChatID, msgAccessDenied, nil)
		return
	}
	if len(ev.Args) == 0 {
		s.sender.SendMessage(ev.ChatID, "Usage: /export <id> [csv|pdf]", nil)
		return
	}

	id := ev.Args[0]
	format := "csv"
	if len(ev.Args) > 1 {
		format = strings.ToLower(ev.Args[1])
	}

	var (
		path string
		err  error
	)
	switch format {
	case "csv":
		path, err = s.reporter.ExportCSV(id)
	case "pdf":
		path, err = s.reporter.ExportPDF(id)
	default:
		s.sender.SendMessage(ev.ChatID, "❌ Format non supporté. Utilisez 'csv' ou 'pdf'.", nil)
		return
	}
	if err != nil {
		s.logger.Error("generating export", "target", id, "format", format, "error", err)
		s.sender.SendMessage(ev.ChatID, "❌ Erreur lors de la génération du rapport.", nil)
		return
	}
	defer os.Remove(path)

	data, err := os.ReadFile(path)
	if err != nil {
		s.logger.Error("reading export", "path", path, "error", err)
		s.sender.SendMessage(ev.ChatID, "❌ Erreur lors de la génération du rapport.", nil)
		return
	}

	if err := s.sender.SendDocument(ev.ChatID, filepath.Base(path), data); err != nil {
		s.logger.Error("sending export", "target", id, "error", err)
	}
}

// adminDashboard handles /dashboard: the per-actor view of recent access
// records.
func (s *Service) adminDashboard(ev Event) {
	if !s.isAdmin(ev.ActorID) {
		s.sender.SendMessage(ev.ChatID, msgAccessDenied, nil)
		return
	}

	text, err := s.reporter.DashboardByActor(s.topN)
	if err != nil {
		s.logger.Error("building dashboard", "error", err)
		s.sender.SendMessage(ev.ChatID, "❌ Erreur lors de l'affichage du tableau de bord.", nil)
		return
	}
	s.sender.SendMessage(ev.ChatID, text, nil)
}

package bot

import (
	"fmt"
	"strings"
)

// Shared user-facing notices.
const (
	msgEnterIdentifier = "🔍 Entrez un IMEI, numéro de série (SN) ou numéro de téléphone (format international) pour commencer."
	msgSessionExpired  = "❌ Session expirée. Utilisez /start pour recommencer."
	msgCriticalError   = "❌ Erreur critique. Utilisez /start pour réinitialiser."
	msgUseStart        = "ℹ️ Utilisez /start pour démarrer une session."
	msgUnrecognized    = "❌ Option non reconnue. Veuillez choisir une option valide :"
	msgAccessDenied    = "❌ Accès refusé."
	msgStoreFailure    = "❌ Erreur d'accès au stockage. Veuillez réessayer."
)

// handleSecret checks the shared secret. Wrong attempts stay at the prompt;
// there is no lockout or backoff.
func (s *Service) handleSecret(sess *Session, ev Event) (State, error) {
	if strings.TrimSpace(ev.Text) != s.password {
		s.record(ev.ActorID, "", "", "", ActionLoginFailure, "")
		if _, err := s.sender.SendMessage(sess.ChatID, "❌ Mot de passe incorrect. Veuillez réessayer ou utiliser /cancel pour annuler.", nil); err != nil {
			return sess.State, err
		}
		return StateAwaitingSecret, nil
	}

	s.record(ev.ActorID, "", "", "", ActionLoginSuccess, "")
	if _, err := s.sender.SendMessage(sess.ChatID, "✅ Mot de passe correct.\n"+msgEnterIdentifier, nil); err != nil {
		return sess.State, err
	}
	return StateAwaitingTargetID, nil
}

// handleTargetID validates the submitted identifier and either provisions a
// new target (entering the pending state for the configured delay) or jumps
// straight to the category menu for an existing one.
func (s *Service) handleTargetID(sess *Session, ev Event) (State, error) {
	id := strings.TrimSpace(ev.Text)

	if !ValidateIdentifier(id) {
		if _, err := s.sender.SendMessage(sess.ChatID, "❌ Format invalide. Veuillez entrer un IMEI (15 chiffres), SN (alphanumérique) ou numéro international (ex: +33612345678).", nil); err != nil {
			return sess.State, err
		}
		return StateAwaitingTargetID, nil
	}

	// Per-actor access record, read back by the dashboard.
	s.record(ev.ActorID, id, "", "", ActionDeviceAccess, "")

	created, err := s.store.EnsureTarget(id)
	if err != nil {
		s.logger.Error("ensuring target tree", "target", id, "error", err)
		if _, serr := s.sender.SendMessage(sess.ChatID, msgStoreFailure, nil); serr != nil {
			return sess.State, serr
		}
		return StateAwaitingTargetID, nil
	}

	sess.Target = id
	sess.Category = nil
	sess.Subcategory = ""

	if !created {
		// The tree may predate the registry row (e.g. created before a
		// restart); AddTarget is insert-or-ignore either way.
		if err := s.db.AddTarget(id, "unknown"); err != nil {
			s.logger.Warn("registering existing target", "target", id, "error", err)
		}
		if _, err := s.sender.SendMessage(sess.ChatID,
			fmt.Sprintf("✅ Accès direct au dossier existant : %s\nSélectionnez une catégorie :", id),
			categoryKeyboard()); err != nil {
			return sess.State, err
		}
		return StateCategoryMenu, nil
	}

	s.record(ev.ActorID, id, "", "", ActionCreateFolder, "")

	msgID, err := s.sender.SendMessage(sess.ChatID,
		fmt.Sprintf("Veuillez patienter le temps que nous localisons le numéro %s...", id), nil)
	if err != nil {
		return sess.State, err
	}
	sess.WaitingMessageID = msgID

	chatID, actorID := sess.ChatID, ev.ActorID
	s.sched.Schedule(chatID, s.provisionDelay, func() {
		s.provisionComplete(chatID, actorID, id)
	})

	return StatePendingProvision, nil
}

// provisionComplete fires when the artificial provisioning delay elapses. If
// the session moved on or reset in the meantime the callback does nothing;
// normally Schedule/Cancel bookkeeping already prevents it from firing.
func (s *Service) provisionComplete(chatID, actorID int64, target string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.sessions.Get(chatID)
	if sess == nil || sess.State != StatePendingProvision || sess.Target != target {
		return
	}

	if sess.WaitingMessageID != 0 {
		if err := s.sender.DeleteMessage(chatID, sess.WaitingMessageID); err != nil {
			s.logger.Warn("deleting waiting notice", "chat", chatID, "error", err)
		}
		sess.WaitingMessageID = 0
	}

	if err := s.db.AddTarget(target, "unknown"); err != nil {
		s.logger.Warn("registering target", "target", target, "error", err)
	}

	if _, err := s.sender.SendMessage(chatID,
		fmt.Sprintf("Traitement du n°%s terminé.\n✅ Dossier créé pour : %s\nSélectionnez une catégorie :", target, target),
		categoryKeyboard()); err != nil {
		s.logger.Error("sending provision completion", "chat", chatID, "error", err)
		s.endConversation(chatID)
		return
	}

	sess.State = StateCategoryMenu
	s.sessions.Put(sess)
}

// handleWaiting answers anything received during the provisioning delay.
func (s *Service) handleWaiting(sess *Session, _ Event) (State, error) {
	if _, err := s.sender.SendMessage(sess.ChatID,
		"⏳ Veuillez patienter, le traitement est en cours. "+
			"Vous pourrez continuer à interagir avec le bot après la fin du traitement.", nil); err != nil {
		return sess.State, err
	}
	return StatePendingProvision, nil
}

// handleCategory routes a category menu selection.
func (s *Service) handleCategory(sess *Session, ev Event) (State, error) {
	if sess.Target == "" {
		return s.expireSession(sess)
	}

	label := ev.Text

	switch label {
	case btnBackToTargets:
		sess.clearSelection()
		if _, err := s.sender.SendMessage(sess.ChatID, "🔍 Entrez un nouvel identifiant (IMEI, SN ou numéro) :", nil); err != nil {
			return sess.State, err
		}
		return StateAwaitingTargetID, nil
	case btnBackMain:
		return s.restart(sess)
	}

	if isAdminMenuLabel(label) {
		return s.handleAdminChoice(sess, ev)
	}

	cat := CategoryByLabel(label)
	if cat == nil {
		if _, err := s.sender.SendMessage(sess.ChatID, msgUnrecognized, categoryKeyboard()); err != nil {
			return sess.State, err
		}
		return StateCategoryMenu, nil
	}

	sess.Category = cat
	sess.Subcategory = ""

	if len(cat.Subcategories) == 0 {
		return s.enterFileMenu(sess)
	}

	if _, err := s.sender.SendMessage(sess.ChatID,
		fmt.Sprintf("🔽 Sous-catégories pour %s :", cat.Label),
		subcategoryKeyboard(cat)); err != nil {
		return sess.State, err
	}
	return StateSubcategoryMenu, nil
}

// handleSubcategory routes a subcategory menu selection.
func (s *Service) handleSubcategory(sess *Session, ev Event) (State, error) {
	if sess.Target == "" || sess.Category == nil {
		return s.expireSession(sess)
	}

	label := ev.Text

	switch label {
	case btnBackCategories:
		return s.returnToCategories(sess)
	case btnBackMain:
		return s.restart(sess)
	}

	if !sess.Category.HasSubcategory(label) {
		if _, err := s.sender.SendMessage(sess.ChatID, "❌ Sous-catégorie non valide. Veuillez réessayer.", subcategoryKeyboard(sess.Category)); err != nil {
			return sess.State, err
		}
		return StateSubcategoryMenu, nil
	}

	sess.Subcategory = label
	return s.enterFileMenu(sess)
}

// enterFileMenu lists the selected container's files and renders the file
// menu. A container that has never been written to simply lists as empty.
func (s *Service) enterFileMenu(sess *Session) (State, error) {
	if err := s.showFileMenu(sess, ""); err != nil {
		return sess.State, err
	}
	return StateFileMenu, nil
}

// showFileMenu sends the file menu for the current selection.
func (s *Service) showFileMenu(sess *Session, notice string) error {
	files, err := s.store.ListFiles(sess.Target, sess.Category.Folder, SlugSubcategory(sess.Subcategory))
	if err != nil {
		s.logger.Error("listing files", "target", sess.Target, "category", sess.Category.Folder, "error", err)
		files = nil
	}

	where := sess.Subcategory
	if where == "" {
		where = sess.Category.Label
	}

	var body string
	if len(files) > 0 {
		body = fmt.Sprintf("📂 Fichiers disponibles dans %s:\nSélectionnez un fichier pour le visualiser ou téléchargez-en un nouveau.", where)
	} else {
		body = fmt.Sprintf("ℹ️ Aucun fichier dans %s.\nVous pouvez télécharger un fichier avec le bouton ci-dessous.", where)
	}
	if notice != "" {
		body = notice + "\n" + body
	}

	_, err = s.sender.SendMessage(sess.ChatID, body, fileKeyboard(files))
	return err
}

// handleFileChoice routes a file menu selection: a navigation button, the
// upload affordance, or an existing file name to consult.
func (s *Service) handleFileChoice(sess *Session, ev Event) (State, error) {
	if sess.Target == "" || sess.Category == nil {
		return s.expireSession(sess)
	}

	choice := ev.Text

	switch choice {
	case btnBackCategories:
		return s.returnToCategories(sess)
	case btnBackMain:
		return s.restart(sess)
	case btnUploadFile:
		sess.AwaitingUpload = true
		if _, err := s.sender.SendMessage(sess.ChatID,
			"⬆️ Envoyez le fichier que vous souhaitez télécharger dans cette catégorie.",
			[][]string{{btnBackCategories, btnBackMain}}); err != nil {
			return sess.State, err
		}
		return StateFileMenu, nil
	}

	data, err := s.store.FetchFile(sess.Target, sess.Category.Folder, SlugSubcategory(sess.Subcategory), choice)
	if err != nil {
		if err == ErrNotFound {
			if _, serr := s.sender.SendMessage(sess.ChatID, "❌ Fichier introuvable. Veuillez choisir un fichier valide.", nil); serr != nil {
				return sess.State, serr
			}
			return StateFileMenu, nil
		}
		s.logger.Error("fetching file", "target", sess.Target, "file", choice, "error", err)
		if _, serr := s.sender.SendMessage(sess.ChatID, msgStoreFailure, nil); serr != nil {
			return sess.State, serr
		}
		return StateFileMenu, nil
	}

	s.record(ev.ActorID, sess.Target, sess.Category.Folder, SlugSubcategory(sess.Subcategory), ActionConsult, choice)

	if err := s.sender.SendDocument(sess.ChatID, choice, data); err != nil {
		return sess.State, err
	}
	if err := s.showFileMenu(sess, "Sélectionnez une autre action:"); err != nil {
		return sess.State, err
	}
	return StateFileMenu, nil
}

// handleFileUpload stores a document sent after the upload button was
// pressed, then automatically returns to the category menu. Documents sent
// without requesting an upload are refused.
func (s *Service) handleFileUpload(sess *Session, ev Event) (State, error) {
	if sess.Target == "" || sess.Category == nil {
		return s.expireSession(sess)
	}
	if !sess.AwaitingUpload {
		if _, err := s.sender.SendMessage(sess.ChatID,
			fmt.Sprintf("ℹ️ Utilisez d'abord le bouton %s pour télécharger un fichier.", btnUploadFile), nil); err != nil {
			return sess.State, err
		}
		return StateFileMenu, nil
	}
	if ev.Doc == nil || ev.Doc.Name == "" {
		if _, err := s.sender.SendMessage(sess.ChatID, "❌ Format de fichier non reconnu. Veuillez envoyer un document.", nil); err != nil {
			return sess.State, err
		}
		return StateFileMenu, nil
	}

	slug := SlugSubcategory(sess.Subcategory)
	if err := s.store.StoreFile(sess.Target, sess.Category.Folder, slug, ev.Doc.Name, ev.Doc.Data); err != nil {
		s.logger.Error("storing upload", "target", sess.Target, "file", ev.Doc.Name, "error", err)
		if _, serr := s.sender.SendMessage(sess.ChatID, msgStoreFailure, nil); serr != nil {
			return sess.State, serr
		}
		return StateFileMenu, nil
	}

	s.record(ev.ActorID, sess.Target, sess.Category.Folder, slug, ActionUpload, ev.Doc.Name)
	sess.AwaitingUpload = false

	if _, err := s.sender.SendMessage(sess.ChatID,
		fmt.Sprintf("✅ Fichier %s téléchargé avec succès.", ev.Doc.Name), nil); err != nil {
		return sess.State, err
	}
	return s.returnToCategories(sess)
}

// returnToCategories drops the category selection and re-renders the
// category menu.
func (s *Service) returnToCategories(sess *Session) (State, error) {
	sess.Category = nil
	sess.Subcategory = ""
	sess.AwaitingUpload = false
	if _, err := s.sender.SendMessage(sess.ChatID,
		fmt.Sprintf("Retour au menu des catégories pour %s:", sess.Target),
		categoryKeyboard()); err != nil {
		return sess.State, err
	}
	return StateCategoryMenu, nil
}

// restart performs the full /start reset from within a handler.
func (s *Service) restart(sess *Session) (State, error) {
	s.sched.Cancel(sess.ChatID)
	sess.clearSelection()
	if s.password != "" {
		if _, err := s.sender.SendMessage(sess.ChatID, "🔒 Veuillez entrer le mot de passe pour accéder au bot.", nil); err != nil {
			return sess.State, err
		}
		return StateAwaitingSecret, nil
	}
	if _, err := s.sender.SendMessage(sess.ChatID, msgEnterIdentifier, nil); err != nil {
		return sess.State, err
	}
	return StateAwaitingTargetID, nil
}

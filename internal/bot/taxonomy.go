package bot

import (
	"strings"
	"unicode"
)

// Category is one node of the fixed two-level taxonomy provisioned for every
// target. The set of categories and their subcategory labels is identical for
// all targets and fixed at deploy time.
type Category struct {
	Label         string   // menu button label shown to the operator
	Folder        string   // container name under the target root
	Subcategories []string // subcategory menu labels; may be empty
}

// LogsFolder holds the per-target plain-text activity mirror.
const LogsFolder = "logs"

// Categories is the canonical taxonomy, in menu order.
var Categories = []Category{
	{
		Label:  "📱 SMS/MMS",
		Folder: "sms_mms",
		Subcategories: []string{
			"Suivi des SMS et MMS",
			"Alerte SMS",
		},
	},
	{
		Label:  "📞 Appels",
		Folder: "appels",
		Subcategories: []string{
			"Suivi des journaux d'appels",
			"Enregistrement des appels",
			"Blocage des appels",
		},
	},
	{
		Label:  "📍 Localisation",
		Folder: "localisations",
		Subcategories: []string{
			"Historique des positions GPS",
			"Suivi en temps réel",
		},
	},
	{
		Label:  "🖼️ Photos & Vidéos",
		Folder: "photos",
		Subcategories: []string{
			"Visualiser les photos et images",
		},
	},
	{
		Label:  "💬 Messagerie instantanée",
		Folder: "messageries",
		Subcategories: []string{
			"WhatsApp", "Facebook Messenger", "Skype", "Hangouts", "LINE",
			"Kik", "Viber", "Gmail", "Tango", "Snapchat", "Telegram",
		},
	},
	{
		Label:  "🎙️ Contrôle à distance",
		Folder: "controle_distance",
		Subcategories: []string{
			"Enregistrement audio",
			"Prendre une photo",
			"Commande SMS",
			"Faire vibrer/sonner",
			"Envoyer message vocal",
			"Envoyer popup texte",
			"Envoyer SMS externe",
			"Position GPS",
			"Capture d'écran",
			"Récupérer données",
			"Info téléphone",
			"Cacher/Voir icône",
			"Activer/Désactiver Wi-Fi",
			"Redémarrer téléphone",
			"Formater téléphone",
			"Bloquer téléphone",
		},
	},
	{
		Label:  "📺 Visualisation en direct",
		Folder: "visualisation_directe",
		Subcategories: []string{
			"Audio/Vidéo/Screen",
		},
	},
	{
		Label:  "📁 Gestionnaire de fichiers",
		Folder: "fichiers",
		Subcategories: []string{
			"Explorateur de fichiers",
		},
	},
	{
		Label:  "⏱ Restriction d'horaire",
		Folder: "restrictions",
		Subcategories: []string{
			"Restreindre utilisation",
		},
	},
	{
		Label:  "📱 Applications",
		Folder: "applications",
		Subcategories: []string{
			"Suivi applications installées",
			"Blocage des applications",
		},
	},
	{
		Label:  "🌐 Sites Web",
		Folder: "sites_web",
		Subcategories: []string{
			"Historique des sites",
			"Blocage des sites",
		},
	},
	{
		Label:  "📅 Calendrier",
		Folder: "calendrier",
		Subcategories: []string{
			"Historique des événements",
		},
	},
	{
		Label:  "👤 Contacts",
		Folder: "contacts",
		Subcategories: []string{
			"Suivi des nouveaux contacts",
		},
	},
	{
		Label:  "📊 Outils d'analyse",
		Folder: "analyse",
		Subcategories: []string{
			"Statistiques",
			"Rapport PDF/Excel/CSV",
		},
	},
}

// CategoryByLabel returns the category with the given menu label, or nil.
func CategoryByLabel(label string) *Category {
	for i := range Categories {
		if Categories[i].Label == label {
			return &Categories[i]
		}
	}
	return nil
}

// HasSubcategory reports whether label is one of the category's subcategories.
func (c *Category) HasSubcategory(label string) bool {
	for _, s := range c.Subcategories {
		if s == label {
			return true
		}
	}
	return false
}

// TargetFolders returns every container name provisioned under a new target:
// one per category plus the logs mirror folder.
func TargetFolders() []string {
	folders := make([]string, 0, len(Categories)+1)
	for _, c := range Categories {
		folders = append(folders, c.Folder)
	}
	return append(folders, LogsFolder)
}

// SlugSubcategory derives the container name for a subcategory label:
// letters and digits only, lowercased, capped at 20 runes.
func SlugSubcategory(label string) string {
	var b strings.Builder
	n := 0
	for _, r := range label {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			continue
		}
		b.WriteRune(unicode.ToLower(r))
		n++
		if n >= 20 {
			break
		}
	}
	return b.String()
}

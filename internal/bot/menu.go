package bot

// Menu button labels. The taxonomy labels live in taxonomy.go; these are the
// navigation and admin affordances around them.
const (
	btnBackToTargets  = "📋 Retour"
	btnBackCategories = "⬅️ Retour aux catégories"
	btnBackMain       = "⬅️ Retour au menu principal"
	btnUploadFile     = "⬆️ Télécharger un fichier"
	btnAdminTargets   = "📋 Liste des cibles"
	btnAdminDelete    = "🗑️ Supprimer une cible"
	btnAdminStats     = "📈 Statistiques"
	btnAdminExport    = "📤 Exporter les logs"
	btnAdminDashboard = "📊 Tableau de bord"
)

// categoryKeyboard lays the taxonomy out three buttons per row, with the
// back button filling the last cell.
func categoryKeyboard() [][]string {
	labels := make([]string, 0, len(Categories)+1)
	for _, c := range Categories {
		labels = append(labels, c.Label)
	}
	labels = append(labels, btnBackToTargets)

	var rows [][]string
	for i := 0; i < len(labels); i += 3 {
		end := i + 3
		if end > len(labels) {
			end = len(labels)
		}
		rows = append(rows, labels[i:end])
	}
	return rows
}

// subcategoryKeyboard lays subcategories out two per row, followed by the
// navigation row.
func subcategoryKeyboard(c *Category) [][]string {
	var rows [][]string
	for i := 0; i < len(c.Subcategories); i += 2 {
		end := i + 2
		if end > len(c.Subcategories) {
			end = len(c.Subcategories)
		}
		rows = append(rows, c.Subcategories[i:end])
	}
	return append(rows, []string{btnBackCategories, btnBackMain})
}

// fileKeyboard lists each file on its own row, then the upload and
// navigation rows.
func fileKeyboard(files []string) [][]string {
	var rows [][]string
	for _, f := range files {
		rows = append(rows, []string{f})
	}
	rows = append(rows, []string{btnUploadFile})
	return append(rows, []string{btnBackCategories, btnBackMain})
}

func adminKeyboard() [][]string {
	return [][]string{
		{btnAdminTargets, btnAdminDelete},
		{btnAdminStats, btnAdminExport},
		{btnAdminDashboard, btnBackMain},
	}
}

// isAdminMenuLabel reports whether label is one of the admin menu entries
// reachable from the category menu keyboard.
func isAdminMenuLabel(label string) bool {
	switch label {
	case btnAdminTargets, btnAdminDelete, btnAdminStats, btnAdminExport, btnAdminDashboard:
		return true
	}
	return false
}

package bot

import "testing"

func TestCategories(t *testing.T) {
	if len(Categories) != 14 {
		t.Fatalf("got %d categories, want 14", len(Categories))
	}

	seenFolders := make(map[string]bool)
	for _, c := range Categories {
		if c.Label == "" || c.Folder == "" {
			t.Errorf("category %+v has empty label or folder", c)
		}
		if seenFolders[c.Folder] {
			t.Errorf("duplicate folder name %q", c.Folder)
		}
		seenFolders[c.Folder] = true
	}
}

func TestCategoryByLabel(t *testing.T) {
	for _, c := range Categories {
		found := CategoryByLabel(c.Label)
		if found == nil {
			t.Errorf("CategoryByLabel(%q) = nil", c.Label)
			continue
		}
		if found.Folder != c.Folder {
			t.Errorf("CategoryByLabel(%q).Folder = %q, want %q", c.Label, found.Folder, c.Folder)
		}
	}

	if CategoryByLabel("❓ Inconnu") != nil {
		t.Error("expected nil for unknown label")
	}
}

func TestHasSubcategory(t *testing.T) {
	var withSubs *Category
	for i := range Categories {
		if len(Categories[i].Subcategories) > 0 {
			withSubs = &Categories[i]
			break
		}
	}
	if withSubs == nil {
		t.Fatal("no category with subcategories")
	}

	if !withSubs.HasSubcategory(withSubs.Subcategories[0]) {
		t.Errorf("expected %q to have subcategory %q", withSubs.Label, withSubs.Subcategories[0])
	}
	if withSubs.HasSubcategory("❓ Inconnu") {
		t.Error("expected unknown subcategory to be rejected")
	}
}

func TestTargetFolders(t *testing.T) {
	folders := TargetFolders()
	if len(folders) != len(Categories)+1 {
		t.Fatalf("got %d folders, want %d", len(folders), len(Categories)+1)
	}

	hasLogs := false
	for _, f := range folders {
		if f == LogsFolder {
			hasLogs = true
		}
	}
	if !hasLogs {
		t.Errorf("expected %q folder in target tree", LogsFolder)
	}
}

func TestSlugSubcategory(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"plain word", "Galerie", "galerie"},
		{"spaces dropped", "Capture d'écran", "capturedécran"},
		{"emoji dropped", "📍 Position actuelle", "positionactuelle"},
		{"digits kept", "Top 10", "top10"},
		{"capped at twenty runes", "Historique de navigation privée", "historiquedenavigati"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SlugSubcategory(tt.in); got != tt.want {
				t.Errorf("SlugSubcategory(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

package report

import (
	"fmt"
	"strings"
)

// Dashboard summarizes the whole activity log: target count, record count,
// and the n most active targets.
func (e *Exporter) Dashboard(topN int) (string, error) {
	targets, err := e.db.CountTargets()
	if err != nil {
		return "", fmt.Errorf("counting targets: %w", err)
	}
	records, err := e.db.CountRecords()
	if err != nil {
		return "", fmt.Errorf("counting records: %w", err)
	}
	top, err := e.db.TopTargets(topN)
	if err != nil {
		return "", fmt.Errorf("ranking targets: %w", err)
	}

	var b strings.Builder
	b.WriteString("📊 Tableau de bord\n\n")
	fmt.Fprintf(&b, "Cibles enregistrées : %d\n", targets)
	fmt.Fprintf(&b, "Entrées de journal : %d\n", records)
	if len(top) > 0 {
		b.WriteString("\nCibles les plus actives :\n")
		for i, tc := range top {
			fmt.Fprintf(&b, "%d. %s — %d entrées\n", i+1, tc.TargetID, tc.Records)
		}
	}
	return b.String(), nil
}

// DashboardByActor lists, per operator, their n most recent actions.
func (e *Exporter) DashboardByActor(n int) (string, error) {
	records, err := e.db.RecentByActor(n)
	if err != nil {
		return "", fmt.Errorf("loading recent records: %w", err)
	}
	if len(records) == 0 {
		return "Aucune activité enregistrée.", nil
	}

	var b strings.Builder
	b.WriteString("👥 Activité par opérateur\n")
	var current int64
	first := true
	for _, rec := range records {
		if first || rec.ActorID != current {
			current = rec.ActorID
			first = false
			fmt.Fprintf(&b, "\nOpérateur %d :\n", current)
		}
		target := rec.TargetID
		if target == "" {
			target = "-"
		}
		fmt.Fprintf(&b, "  [%s] %s (%s)\n",
			rec.CreatedAt.Format("2006-01-02 15:04"), rec.Action, target)
	}
	return b.String(), nil
}

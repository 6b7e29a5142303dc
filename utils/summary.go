package utils

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/raushankrgupta/vehicle-catalog-importer/models"
)

// FormatAutoFillSummary renders a run result as an aligned text table.
// Widths are measured in terminal cells so accented names line up.
func FormatAutoFillSummary(result models.AutoFillResult) string {
	header := []string{"Catégorie", "Cible", "Existant", "Manquant", "Importés", "Ignorés", "Erreurs", "Statut"}
	rows := [][]string{header}
	for _, c := range result.Categories {
		rows = append(rows, []string{
			c.Name,
			fmt.Sprint(c.Target),
			fmt.Sprint(c.ExistingCount),
			fmt.Sprint(c.NeededCount),
			fmt.Sprint(c.ImportedCount),
			fmt.Sprint(c.SkippedCount),
			fmt.Sprint(c.ErrorCount),
			string(c.Status),
		})
	}

	widths := make([]int, len(header))
	for _, row := range rows {
		for i, cell := range row {
			if w := runewidth.StringWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}

	var b strings.Builder
	for r, row := range rows {
		for i, cell := range row {
			if i > 0 {
				b.WriteString("  ")
			}
			b.WriteString(runewidth.FillRight(cell, widths[i]))
		}
		b.WriteString("\n")
		if r == 0 {
			total := 2 * (len(widths) - 1)
			for _, w := range widths {
				total += w
			}
			b.WriteString(strings.Repeat("-", total))
			b.WriteString("\n")
		}
	}

	fmt.Fprintf(&b, "\nTotal manquant: %d  importés: %d  ignorés: %d  erreurs: %d\n",
		result.TotalNeeded, result.TotalImported, result.TotalSkipped, result.TotalErrors)
	if failed := formatErrors(result); failed != "" {
		fmt.Fprintf(&b, "Catégories en erreur: %s\n", failed)
	}
	if result.Aborted {
		b.WriteString("Exécution interrompue.\n")
	}
	return b.String()
}

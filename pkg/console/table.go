package console

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/usefultrainer/freeze/pkg/styles"
)

// TableConfig describes a table rendered by RenderTable.
type TableConfig struct {
	Title     string
	Headers   []string
	Rows      [][]string
	ShowTotal bool
	TotalRow  []string
}

// RenderTable renders a bordered table. It returns an empty string when there
// are no headers.
func RenderTable(config TableConfig) string {
	if len(config.Headers) == 0 {
		return ""
	}

	rows := config.Rows
	if config.ShowTotal && len(config.TotalRow) > 0 {
		rows = append(append([][]string{}, rows...), config.TotalRow)
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(styles.TableBorder).
		Headers(config.Headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styles.TableHeader
			}
			return styles.TableCell
		})

	var b strings.Builder
	if config.Title != "" {
		b.WriteString(applyStyle(styles.TableTitle, config.Title))
		b.WriteString("\n")
	}
	b.WriteString(t.Render())
	b.WriteString("\n")
	return b.String()
}

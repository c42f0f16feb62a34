// internal/app/render.go
package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rovshanmuradov/solana-assets/internal/storage/irys"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#2AFFAA")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5555")).Bold(true)
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7280"))
	valueStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ECEFF4"))
	boxStyle     = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#3B82F6")).
			Padding(0, 1)
)

// renderUploadResult formats an upload result for the terminal.
func renderUploadResult(result *irys.UploadResult) string {
	var b strings.Builder

	if result.Success {
		b.WriteString(successStyle.Render("✓ upload verified"))
	} else {
		b.WriteString(errorStyle.Render("✗ upload failed"))
	}
	b.WriteString("\n")

	if result.URI != "" {
		b.WriteString(renderField("uri", result.URI) + "\n")
	}
	if result.TxID != "" {
		b.WriteString(renderField("tx", result.TxID) + "\n")
	}
	if result.Error != "" {
		b.WriteString(renderField("error", result.Error) + "\n")
	}

	return boxStyle.Render(strings.TrimRight(b.String(), "\n"))
}

func renderField(label, value string) string {
	return fmt.Sprintf("%s %s", labelStyle.Render(label+":"), valueStyle.Render(value))
}

func renderSignatures(title string, signatures []string) string {
	var b strings.Builder
	b.WriteString(successStyle.Render("✓ " + title))
	b.WriteString("\n")
	for _, sig := range signatures {
		b.WriteString(renderField("tx", sig) + "\n")
	}
	return boxStyle.Render(strings.TrimRight(b.String(), "\n"))
}

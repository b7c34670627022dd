package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
)

// Styled status lines for the human-facing summary. lipgloss degrades to
// plain text automatically when stdout is not a terminal.
var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
)

func printSuccess(format string, args ...any) {
	fmt.Fprintln(os.Stdout, successStyle.Render(fmt.Sprintf(format, args...)))
}

func printWarning(format string, args ...any) {
	fmt.Fprintln(os.Stderr, warningStyle.Render(fmt.Sprintf(format, args...)))
}

package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

var (
	successColor = lipgloss.Color("#04B575")
	warningColor = lipgloss.Color("#FFA500")
	errorColor   = lipgloss.Color("#FF4B4B")
	mutedColor   = lipgloss.Color("#666666")
	accentColor  = lipgloss.Color("#7D56F4")

	successStyle = lipgloss.NewStyle().Foreground(successColor).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(warningColor).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(errorColor).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(mutedColor)
	headerStyle  = lipgloss.NewStyle().Foreground(accentColor).Bold(true)
	labelStyle   = lipgloss.NewStyle().Width(16)
)

// render applies style unless color is disabled.
func render(style lipgloss.Style, text string) string {
	if noColor {
		return text
	}
	return style.Render(text)
}

// field renders one "label value" summary row.
func field(label string, value any) string {
	l := label + ":"
	if !noColor {
		l = labelStyle.Render(l)
	} else {
		l = fmt.Sprintf("%-16s", l)
	}
	return fmt.Sprintf("  %s %v\n", l, value)
}

package ui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func Title(s string) string   { return titleStyle.Render(s) }
func Success(s string) string { return successStyle.Render(s) }
func Error(s string) string   { return errorStyle.Render(s) }
func Warning(s string) string { return warningStyle.Render(s) }
func Muted(s string) string   { return mutedStyle.Render(s) }

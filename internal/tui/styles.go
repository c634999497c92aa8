package tui

import "github.com/charmbracelet/lipgloss"

// Styles groups the lipgloss styles used by the form view.
type Styles struct {
	Title          lipgloss.Style
	Label          lipgloss.Style
	Button         lipgloss.Style
	ButtonFocused  lipgloss.Style
	ButtonDisabled lipgloss.Style
	Hint           lipgloss.Style
	Success        lipgloss.Style
	Error          lipgloss.Style
	Muted          lipgloss.Style
}

func DefaultStyles() Styles {
	button := lipgloss.NewStyle().Padding(0, 2).Border(lipgloss.RoundedBorder())
	return Styles{
		Title:          lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")).MarginBottom(1),
		Label:          lipgloss.NewStyle().Width(8),
		Button:         button,
		ButtonFocused:  button.BorderForeground(lipgloss.Color("39")).Bold(true),
		ButtonDisabled: button.Foreground(lipgloss.Color("240")).BorderForeground(lipgloss.Color("240")),
		Hint:           lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("214")),
		Success:        lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		Error:          lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		Muted:          lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	}
}

package tui

import "github.com/charmbracelet/lipgloss"

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("230")).Background(lipgloss.Color("24")).Padding(0, 1)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))

	laneStyle        = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("238")).Padding(0, 1)
	laneFocusedStyle = laneStyle.BorderForeground(lipgloss.Color("33"))

	cardStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	cardSelectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("24"))
	cardMutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	cardFailedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))

	overdueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	dueSoonStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))

	statusErrorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	statusSuccessStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))

	detailStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("33")).Padding(0, 1)
	labelStyle  = lipgloss.NewStyle().Bold(true)
	bannerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("1")).Padding(0, 1)
)

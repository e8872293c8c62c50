package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/ashishacharya123/pkms-todos/internal/board"
	"github.com/ashishacharya123/pkms-todos/internal/dto"
	"github.com/ashishacharya123/pkms-todos/internal/models"
	"github.com/ashishacharya123/pkms-todos/internal/store"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"
)

func (m model) View() string {
	header := m.renderHeader()
	status := m.renderStatusLine()
	var detail string
	if m.detail != nil {
		detail = m.renderDetail()
	}

	sections := []string{header, m.renderBoard(m.laneBodyHeight(header, detail, status))}
	if detail != "" {
		sections = append(sections, detail)
	}
	sections = append(sections, status)
	return strings.Join(sections, "\n")
}

// laneBodyHeight is the number of card lines each lane can show, or zero
// when the terminal size is not known yet.
func (m model) laneBodyHeight(header, detail, status string) int {
	if m.height == 0 {
		return 0
	}
	// Lane border and title take three lines.
	h := m.height - lipgloss.Height(header) - lipgloss.Height(status) - 3
	if detail != "" {
		h -= lipgloss.Height(detail)
	}
	if h < 1 {
		h = 1
	}
	return h
}

func (m model) renderHeader() string {
	title := headerStyle.Render("Todos")
	stats := m.store.Stats()
	if stats == nil {
		return title
	}
	summary := fmt.Sprintf(" %d total · %d overdue · %d due today · %d completed today",
		stats.Total, stats.Overdue, stats.DueToday, stats.CompletedToday)
	return title + helpStyle.Render(summary)
}

func (m model) laneWidth() int {
	if m.width == 0 || len(m.lanes) == 0 {
		return 28
	}
	// Each lane adds a border and padding of two columns per side.
	width := m.width/len(m.lanes) - 4
	if width < 12 {
		width = 12
	}
	return width
}

func (m model) renderBoard(bodyHeight int) string {
	width := m.laneWidth()
	now := time.Now()
	panes := make([]string, len(m.lanes))
	for i, lane := range m.lanes {
		panes[i] = m.renderLane(i, lane, width, bodyHeight, now)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, panes...)
}

// renderLane draws a lane. When its cards do not fit in bodyHeight they are
// shown through a viewport scrolled to keep the selected card visible.
func (m model) renderLane(index int, lane board.Lane, width, bodyHeight int, now time.Time) string {
	title := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(lane.Color)).
		Render(fmt.Sprintf("%s (%d)", lane.Title, len(lane.Todos)))

	var cards []string
	lineCount, selectedEnd := 0, -1
	for pos, todo := range lane.Todos {
		focused := m.focus.Lane == index && m.focus.Pos == pos
		card := m.renderCard(todo, width, focused && m.detail == nil, now)
		cards = append(cards, card)
		lineCount += lipgloss.Height(card)
		if focused {
			selectedEnd = lineCount - 1
		}
	}
	if len(lane.Todos) == 0 {
		cards = append(cards, cardMutedStyle.Render("empty"))
	}

	body := strings.Join(cards, "\n")
	if bodyHeight > 0 && lineCount > bodyHeight {
		vp := viewport.New(width, bodyHeight)
		vp.SetContent(body)
		if selectedEnd >= bodyHeight {
			vp.SetYOffset(selectedEnd - bodyHeight + 1)
		}
		body = vp.View()
	}

	style := laneStyle
	if m.focus.Lane == index {
		style = laneFocusedStyle
	}
	return style.Width(width).Render(title + "\n" + body)
}

func (m model) renderCard(todo dto.TodoDTO, width int, selected bool, now time.Time) string {
	var badges []string
	badgeStyle := cardMutedStyle
	switch {
	case todo.IsOverdue(now):
		badges = append(badges, "overdue")
		badgeStyle = overdueStyle
	case todo.IsDueSoon(now):
		badges = append(badges, "due soon")
		badgeStyle = dueSoonStyle
	}
	if len(todo.BlockedByTodos) > 0 {
		badges = append(badges, fmt.Sprintf("blocked by %d", len(todo.BlockedByTodos)))
	}

	marker := priorityMarker(todo.Priority)
	if todo.IsFavorite {
		marker += "★"
	}
	line := truncate(fmt.Sprintf("%s %s", marker, todo.Title), width)

	style := cardStyle
	if entry, ok := m.store.Entry(todo.UUID); ok {
		switch entry.State {
		case store.StatePending:
			style = cardMutedStyle
		case store.StateFailed:
			style = cardFailedStyle
			badges = append(badges, "failed: "+entry.Reason)
			badgeStyle = cardFailedStyle
		}
	}
	if selected {
		style = cardSelectedStyle
	}

	card := style.Render(line)
	if len(badges) > 0 {
		card += "\n" + badgeStyle.Render("  "+truncate(strings.Join(badges, " · "), width-2))
	}
	return card
}

func (m model) renderDetail() string {
	d := m.detail
	lines := []string{labelStyle.Render(d.todo.Title)}
	if message, visible := d.manager.Banner().Message(); visible {
		lines = append(lines, bannerStyle.Render(message))
	}

	blocking := d.manager.Blocking()
	if len(blocking) > 0 {
		titles := make([]string, len(blocking))
		for i, b := range blocking {
			titles[i] = b.Title
		}
		lines = append(lines, "Blocking: "+strings.Join(titles, ", "))
	}

	if len(d.picker.Items()) == 0 {
		lines = append(lines, cardMutedStyle.Render("No dependencies"))
	} else {
		lines = append(lines, d.picker.View())
	}
	return detailStyle.Render(strings.Join(lines, "\n"))
}

func (m model) renderStatusLine() string {
	help := boardHelp
	if m.detail != nil {
		help = detailHelp
	}
	switch m.statusLevel {
	case statusError:
		return statusErrorStyle.Render(m.status) + "  " + helpStyle.Render(help)
	case statusInfo:
		return statusSuccessStyle.Render(m.status) + "  " + helpStyle.Render(help)
	}
	return helpStyle.Render(help)
}

func priorityMarker(p models.TodoPriority) string {
	switch p {
	case models.TodoPriorityUrgent:
		return "!!"
	case models.TodoPriorityHigh:
		return "! "
	case models.TodoPriorityLow:
		return "· "
	default:
		return "  "
	}
}

func truncate(s string, width int) string {
	if width <= 0 || lipgloss.Width(s) <= width {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes))+1 > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "…"
}

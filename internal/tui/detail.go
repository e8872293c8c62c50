package tui

import (
	"fmt"
	"io"

	"github.com/ashishacharya123/pkms-todos/internal/dependencies"
	"github.com/ashishacharya123/pkms-todos/internal/dto"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
)

const maxPickerRows = 10

// detailModel is the dependency editor for one todo. Its picker lists the
// current blockers followed by the todos that could become blockers.
type detailModel struct {
	todo    dto.TodoDTO
	manager *dependencies.Manager
	picker  list.Model
}

type detailRow struct {
	uuid    string
	title   string
	blocker bool
}

func (r detailRow) FilterValue() string { return r.title }

type detailRowDelegate struct{}

func (d detailRowDelegate) Height() int                             { return 1 }
func (d detailRowDelegate) Spacing() int                            { return 0 }
func (d detailRowDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d detailRowDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	row, ok := listItem.(detailRow)
	if !ok {
		return
	}
	prefix := "+ "
	if row.blocker {
		prefix = "✗ "
	}
	line := truncate(prefix+row.title, m.Width())
	style := cardStyle
	if index == m.Index() {
		style = cardSelectedStyle
	}
	fmt.Fprint(w, style.Render(line))
}

func newDetailModel(todo dto.TodoDTO, manager *dependencies.Manager) *detailModel {
	picker := list.New(nil, detailRowDelegate{}, 0, 0)
	picker.SetShowTitle(false)
	picker.SetShowStatusBar(false)
	picker.SetFilteringEnabled(false)
	picker.SetShowHelp(false)
	picker.SetShowPagination(false)
	return &detailModel{todo: todo, manager: manager, picker: picker}
}

func (d *detailModel) rows(all []dto.TodoDTO) []detailRow {
	var rows []detailRow
	for _, b := range d.manager.BlockedBy() {
		rows = append(rows, detailRow{uuid: b.UUID, title: b.Title, blocker: true})
	}
	for _, t := range d.manager.AvailableTodos(all) {
		rows = append(rows, detailRow{uuid: t.UUID, title: t.Title})
	}
	return rows
}

// refresh rebuilds the picker from the manager's sets and sizes it to the
// terminal. The selection keeps its index, clamped to the new rows.
func (d *detailModel) refresh(all []dto.TodoDTO, width, height int) {
	rows := d.rows(all)
	items := make([]list.Item, len(rows))
	for i, row := range rows {
		items[i] = row
	}
	index := d.picker.Index()
	d.picker.SetItems(items)

	pickerRows := len(rows)
	limit := maxPickerRows
	if height > 0 && height/3 < limit {
		limit = height / 3
	}
	if pickerRows > limit {
		pickerRows = limit
	}
	if pickerRows < 1 {
		pickerRows = 1
	}
	if width <= 0 {
		width = 40
	}
	d.picker.SetSize(width, pickerRows)

	if len(rows) == 0 {
		return
	}
	if index >= len(rows) {
		index = len(rows) - 1
	}
	if index < 0 {
		index = 0
	}
	d.picker.Select(index)
}

func (d *detailModel) selected() (detailRow, bool) {
	row, ok := d.picker.SelectedItem().(detailRow)
	return row, ok
}

func (d *detailModel) close() {
	d.manager.Close()
}

func (m *model) refreshDetail() {
	if m.detail == nil {
		return
	}
	m.detail.refresh(m.store.Todos(), m.width-4, m.height)
}

func (m model) openDetail(uuid string) (tea.Model, tea.Cmd) {
	if m.deps == nil {
		m.setStatus("Dependencies are not available", statusError)
		return m, nil
	}
	todo, _ := m.selected()
	manager := dependencies.New(m.ctx, m.deps, uuid,
		dependencies.WithTodos(m.store.Todos),
		dependencies.WithLocalCycleCheck(),
		dependencies.WithNotifier(m.toasts),
		dependencies.WithLogger(m.logger),
	)
	m.detail = newDetailModel(todo, manager)
	m.refreshDetail()

	st := m.store
	ctx := m.ctx
	return m, func() tea.Msg {
		if _, err := st.LoadTodo(ctx, uuid); err != nil {
			return depsMsg{err: err}
		}
		return depsMsg{err: manager.Load(ctx)}
	}
}

func (m model) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	d := m.detail
	switch msg.String() {
	case "q":
		return m.quit()
	case "esc":
		if _, visible := d.manager.Banner().Message(); visible {
			d.manager.Banner().Dismiss()
			return m, nil
		}
		d.close()
		m.detail = nil
		m.store.CloseTodo()
		return m, nil
	case "enter":
		row, ok := d.selected()
		if !ok {
			return m, nil
		}
		manager := d.manager
		ctx := m.ctx
		return m, func() tea.Msg {
			if row.blocker {
				return depsMsg{err: manager.Remove(ctx, row.uuid), changed: true}
			}
			return depsMsg{err: manager.Add(ctx, row.uuid), changed: true}
		}
	}

	var cmd tea.Cmd
	d.picker, cmd = d.picker.Update(msg)
	return m, cmd
}

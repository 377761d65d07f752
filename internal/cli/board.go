package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/valter-silva-au/taskboard/internal/core"
	"github.com/valter-silva-au/taskboard/pkg/models"
)

type boardMode int

const (
	modeBoard boardMode = iota
	modeForm
	modeMove
)

// Form fields in tab order.
const (
	fieldTitle = iota
	fieldDescription
	fieldPriority
	fieldCount
)

var boardTabs = models.AllStatuses()

type boardModel struct {
	session *core.Session
	mode    boardMode
	cursor  int
	width   int
	height  int

	title       textinput.Model
	description textarea.Model
	field       int

	notice string
	err    error
}

// Style definitions.
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	tabStyle       = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("245"))
	activeTabStyle = lipgloss.NewStyle().Padding(0, 1).Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62"))

	panelStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	activePanelStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("62")).
				Padding(0, 1)

	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("230"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))

	priorityHigh   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	priorityMedium = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
	priorityLow    = lipgloss.NewStyle().Foreground(lipgloss.Color("69"))

	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

func newBoardModel(session *core.Session) boardModel {
	title := textinput.New()
	title.Placeholder = "Title"
	title.CharLimit = 200
	title.Prompt = ""

	description := textarea.New()
	description.Placeholder = "Description"
	description.CharLimit = 2000
	description.ShowLineNumbers = false
	description.SetWidth(50)
	description.SetHeight(3)

	return boardModel{
		session:     session,
		title:       title,
		description: description,
	}
}

func (m boardModel) Init() tea.Cmd {
	return nil
}

func (m boardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.mode {
		case modeForm:
			return m.updateForm(msg)
		case modeMove:
			return m.updateMove(msg)
		default:
			return m.updateBoard(msg)
		}
	}
	return m, nil
}

func (m boardModel) updateBoard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.err = nil
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "1", "2", "3":
		m.selectTab(int(msg.String()[0] - '1'))
	case "tab":
		m.selectTab((m.tabIndex() + 1) % len(boardTabs))
	case "shift+tab":
		m.selectTab((m.tabIndex() - 1 + len(boardTabs)) % len(boardTabs))
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.session.VisibleTasks())-1 {
			m.cursor++
		}
	case "n":
		if _, editing := m.session.Editing(); editing {
			m.session.CancelEdit()
		}
		m.notice = ""
		cmd := m.openForm()
		return m, cmd
	case "e":
		task, ok := m.selected()
		if !ok {
			return m, nil
		}
		m.session.BeginEdit(task)
		m.notice = ""
		cmd := m.openForm()
		return m, cmd
	case "d":
		task, ok := m.selected()
		if !ok {
			return m, nil
		}
		m.session.Delete(task.ID)
		m.notice = fmt.Sprintf("Deleted %q", task.Title)
		m.clampCursor()
	case "m":
		task, ok := m.selected()
		if !ok {
			return m, nil
		}
		m.session.BeginMove(task)
		m.mode = modeMove
		m.notice = ""
	}
	return m, nil
}

func (m boardModel) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.closeForm()
		return m, nil
	case "ctrl+x":
		m.session.CancelEdit()
		m.closeForm()
		m.notice = "Edit cancelled"
		return m, nil
	case "ctrl+s":
		res, err := m.session.Commit()
		m.closeForm()
		if err != nil {
			m.err = err
			return m, nil
		}
		if res.Created {
			m.notice = fmt.Sprintf("Added %q", res.Task.Title)
		} else {
			m.notice = fmt.Sprintf("Updated %q", res.Task.Title)
		}
		m.clampCursor()
		return m, nil
	case "tab":
		cmd := m.focusField((m.field + 1) % fieldCount)
		return m, cmd
	case "shift+tab":
		cmd := m.focusField((m.field - 1 + fieldCount) % fieldCount)
		return m, cmd
	}

	var cmd tea.Cmd
	switch m.field {
	case fieldTitle:
		m.title, cmd = m.title.Update(msg)
		m.session.SetTitle(m.title.Value())
	case fieldDescription:
		m.description, cmd = m.description.Update(msg)
		m.session.SetDescription(m.description.Value())
	case fieldPriority:
		switch msg.String() {
		case "left", "h":
			m.session.SetPriority(stepPriority(m.session.Draft().Priority, -1))
		case "right", "l":
			m.session.SetPriority(stepPriority(m.session.Draft().Priority, 1))
		}
	}
	return m, cmd
}

func (m boardModel) updateMove(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var target models.TaskStatus
	switch msg.String() {
	case "esc":
		m.session.CancelMove()
		m.mode = modeBoard
		return m, nil
	case "p":
		target = models.StatusPending
	case "o":
		target = models.StatusOverdue
	default:
		return m, nil
	}

	task, _ := m.session.MoveTarget()
	if _, err := m.session.Move(target); err != nil {
		m.err = err
	} else {
		m.notice = fmt.Sprintf("Moved %q to %s", task.Title, target)
	}
	m.mode = modeBoard
	m.clampCursor()
	return m, nil
}

// openForm loads the session draft into the inputs and focuses the title.
func (m *boardModel) openForm() tea.Cmd {
	draft := m.session.Draft()
	m.title.SetValue(draft.Title)
	m.title.CursorEnd()
	m.description.SetValue(draft.Description)
	m.mode = modeForm
	return m.focusField(fieldTitle)
}

func (m *boardModel) closeForm() {
	m.title.Blur()
	m.description.Blur()
	m.mode = modeBoard
}

func (m *boardModel) focusField(field int) tea.Cmd {
	m.field = field
	m.title.Blur()
	m.description.Blur()
	switch field {
	case fieldTitle:
		return m.title.Focus()
	case fieldDescription:
		return m.description.Focus()
	}
	return nil
}

func (m *boardModel) selectTab(i int) {
	if i < 0 || i >= len(boardTabs) {
		return
	}
	_ = m.session.SetActiveTab(boardTabs[i])
	m.cursor = 0
}

func (m boardModel) tabIndex() int {
	active := m.session.ActiveTab()
	for i, s := range boardTabs {
		if s == active {
			return i
		}
	}
	return 0
}

func (m boardModel) selected() (models.Task, bool) {
	tasks := m.session.VisibleTasks()
	if m.cursor < 0 || m.cursor >= len(tasks) {
		return models.Task{}, false
	}
	return tasks[m.cursor], true
}

func (m *boardModel) clampCursor() {
	n := len(m.session.VisibleTasks())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// stepPriority moves p by delta through AllPriorities, stopping at the ends.
func stepPriority(p models.Priority, delta int) models.Priority {
	all := models.AllPriorities()
	idx := 0
	for i, candidate := range all {
		if candidate == p {
			idx = i
		}
	}
	idx += delta
	if idx < 0 {
		idx = 0
	}
	if idx >= len(all) {
		idx = len(all) - 1
	}
	return all[idx]
}

func (m boardModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("taskboard"))
	b.WriteString("\n\n")
	b.WriteString(m.renderTabs())
	b.WriteString("\n")

	style := panelStyle
	if m.mode == modeBoard {
		style = activePanelStyle
	}
	b.WriteString(style.Render(m.renderTasks()))
	b.WriteString("\n")

	switch m.mode {
	case modeForm:
		b.WriteString(activePanelStyle.Render(m.renderForm()))
		b.WriteString("\n")
	case modeMove:
		b.WriteString(activePanelStyle.Render(m.renderMovePrompt()))
		b.WriteString("\n")
	}

	if m.err != nil {
		b.WriteString(errorStyle.Render("Error: " + m.err.Error()))
		b.WriteString("\n")
	} else if m.notice != "" {
		b.WriteString(noticeStyle.Render(m.notice))
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render(m.helpText()))
	return b.String()
}

func (m boardModel) renderTabs() string {
	buckets := m.session.Buckets()
	active := m.session.ActiveTab()
	tabs := make([]string, len(boardTabs))
	for i, status := range boardTabs {
		label := fmt.Sprintf("%d %s (%d)", i+1, statusLabel(status), len(buckets[status]))
		if status == active {
			tabs[i] = activeTabStyle.Render(label)
		} else {
			tabs[i] = tabStyle.Render(label)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m boardModel) renderTasks() string {
	tasks := m.session.VisibleTasks()
	if len(tasks) == 0 {
		return dimStyle.Render("No tasks")
	}

	var b strings.Builder
	for i, task := range tasks {
		cursor := "  "
		title := task.Title
		if title == "" {
			title = dimStyle.Render("(untitled)")
		}
		if i == m.cursor {
			cursor = "> "
			title = selectedStyle.Render(title)
		}
		fmt.Fprintf(&b, "%s%s %s", cursor, renderPriority(task.Priority), title)
		if task.Description != "" {
			fmt.Fprintf(&b, "\n    %s", dimStyle.Render(firstLine(task.Description)))
		}
		if i < len(tasks)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (m boardModel) renderForm() string {
	var b strings.Builder
	heading := "New Task"
	if task, ok := m.session.Editing(); ok {
		heading = "Edit " + task.ID
	}
	b.WriteString(selectedStyle.Render(heading))
	b.WriteString("\n\n")

	marker := func(field int) string {
		if m.field == field {
			return "▶ "
		}
		return "  "
	}
	fmt.Fprintf(&b, "%sTitle: %s\n", marker(fieldTitle), m.title.View())
	fmt.Fprintf(&b, "%sDescription:\n%s\n", marker(fieldDescription), m.description.View())

	var prios []string
	draft := m.session.Draft()
	for _, p := range models.AllPriorities() {
		if p == draft.Priority {
			prios = append(prios, renderPriority(p))
		} else {
			prios = append(prios, dimStyle.Render(string(p)))
		}
	}
	fmt.Fprintf(&b, "%sPriority: %s\n\n", marker(fieldPriority), strings.Join(prios, " "))
	b.WriteString(activeTabStyle.Render(m.commitLabel()))
	return b.String()
}

func (m boardModel) renderMovePrompt() string {
	task, _ := m.session.MoveTarget()
	return fmt.Sprintf("Move %q to: [p] pending  [o] overdue  [esc] cancel", task.Title)
}

// commitLabel names what ctrl+s will do in the current mode.
func (m boardModel) commitLabel() string {
	if _, ok := m.session.Editing(); ok {
		return "Update Task"
	}
	return "Add Task"
}

func (m boardModel) helpText() string {
	switch m.mode {
	case modeForm:
		return "tab: next field • ←/→: priority • ctrl+s: " + strings.ToLower(m.commitLabel()) + " • esc: close • ctrl+x: cancel edit"
	case modeMove:
		return "p: pending • o: overdue • esc: cancel"
	}
	return "1-3/tab: switch bucket • ↑/↓: select • n: new • e: edit • d: delete • m: move • q: quit"
}

func renderPriority(p models.Priority) string {
	label := "[" + string(p) + "]"
	switch p {
	case models.PriorityHigh:
		return priorityHigh.Render(label)
	case models.PriorityMedium:
		return priorityMedium.Render(label)
	default:
		return priorityLow.Render(label)
	}
}

func statusLabel(s models.TaskStatus) string {
	switch s {
	case models.StatusToday:
		return "Today"
	case models.StatusPending:
		return "Pending"
	case models.StatusOverdue:
		return "Overdue"
	}
	return string(s)
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + " …"
	}
	return s
}

var boardCmd = &cobra.Command{
	Use:   "board",
	Short: "Open the interactive task board",
	Long: `Open the interactive task board.

Tasks are grouped into today, pending and overdue. Press n to add a task,
e to edit the selected task, m to move it and d to delete it. The board is
held in memory and is gone when the program exits.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if NewSession == nil {
			return fmt.Errorf("session factory not initialized")
		}
		p := tea.NewProgram(newBoardModel(NewSession()), tea.WithAltScreen())
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("running board: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(boardCmd)
}

// ABOUTME: Manager console showing the team roster beside the selected employee's feedback
// ABOUTME: Owns the roster data version, the feedback request sequence and the mutation guards
package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/amanks009/feedback-client/api"
	"github.com/amanks009/feedback-client/models"
)

type managerPane int

const (
	paneRoster managerPane = iota
	paneFeedback
)

const rosterPaneWidth = 72

type managerView struct {
	id     int
	ctx    context.Context
	cancel context.CancelFunc
	store  Store
	logger *zap.Logger

	roster        []models.RosterEntry
	rosterVersion int
	rosterLoading bool
	table         table.Model

	selected        *models.Employee
	feedback        []models.FeedbackItem
	feedbackSeq     int
	feedbackLoading bool
	feedbackCursor  int

	focus    managerPane
	err      string
	editor   editorModel
	confirm  *models.FeedbackItem
	deleting map[int64]bool
}

func newManagerView(id int, store Store, logger *zap.Logger) *managerView {
	ctx, cancel := context.WithCancel(context.Background())

	columns := []table.Column{
		{Title: "Name", Width: 20},
		{Title: "Email", Width: 24},
		{Title: "Count", Width: 5},
		{Title: "+ / ~ / -", Width: 11},
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(10),
	)

	return &managerView{
		id:       id,
		ctx:      ctx,
		cancel:   cancel,
		store:    store,
		logger:   logger.With(zap.String("view", "manager")),
		table:    t,
		editor:   newEditor(),
		deleting: make(map[int64]bool),
	}
}

func (v *managerView) init() tea.Cmd {
	return v.fetchRoster()
}

// close cancels every outstanding request of this view.
func (v *managerView) close() {
	v.cancel()
}

func (v *managerView) fetchRoster() tea.Cmd {
	v.rosterLoading = true
	ctx, store, tag, version := v.ctx, v.store, viewTag{v.id}, v.rosterVersion
	return func() tea.Msg {
		team, err := store.Team(ctx)
		if ctx.Err() != nil {
			return nil
		}
		return rosterLoadedMsg{viewTag: tag, version: version, team: team, err: err}
	}
}

// invalidateRoster marks the current roster stale and refetches it. Results
// requested for an older version are ignored.
func (v *managerView) invalidateRoster() tea.Cmd {
	v.rosterVersion++
	return v.fetchRoster()
}

func (v *managerView) selectEmployee(e models.Employee) tea.Cmd {
	if v.selected == nil || v.selected.ID != e.ID {
		v.feedback = nil
		v.feedbackCursor = 0
	}
	v.selected = &e
	return v.fetchFeedback()
}

// fetchFeedback loads the selected employee's feedback. Only the latest
// request's result is applied.
func (v *managerView) fetchFeedback() tea.Cmd {
	if v.selected == nil {
		return nil
	}
	v.feedbackSeq++
	v.feedbackLoading = true
	ctx, store, tag, seq, employeeID := v.ctx, v.store, viewTag{v.id}, v.feedbackSeq, v.selected.ID
	return func() tea.Msg {
		items, err := store.EmployeeFeedback(ctx, employeeID)
		if ctx.Err() != nil {
			return nil
		}
		return feedbackLoadedMsg{viewTag: tag, seq: seq, employeeID: employeeID, items: items, err: err}
	}
}

func (v *managerView) handleMsg(msg viewMsg) tea.Cmd {
	switch msg := msg.(type) {
	case rosterLoadedMsg:
		if msg.version != v.rosterVersion {
			return nil
		}
		v.rosterLoading = false
		if msg.err != nil {
			v.logger.Error("failed to load team data", zap.Error(msg.err))
			v.err = "Failed to load team data"
			return nil
		}
		v.roster = msg.team
		v.syncTable()

	case feedbackLoadedMsg:
		if msg.seq != v.feedbackSeq {
			return nil
		}
		v.feedbackLoading = false
		if msg.err != nil {
			v.logger.Error("failed to load feedback", zap.Int64("employee_id", msg.employeeID), zap.Error(msg.err))
			v.err = "Failed to load feedback"
			return nil
		}
		v.feedback = msg.items
		v.clampFeedbackCursor()

	case feedbackSavedMsg:
		v.editor.settle(msg)
		if msg.err != nil {
			v.logger.Error("failed to save feedback", zap.Bool("editing", msg.editing), zap.Error(msg.err))
			return nil
		}
		return v.onEditorSuccess()

	case feedbackDeletedMsg:
		delete(v.deleting, msg.feedbackID)
		if msg.err != nil {
			v.logger.Error("failed to delete feedback", zap.Int64("feedback_id", msg.feedbackID), zap.Error(msg.err))
			v.err = api.ErrorMessage(msg.err, "Failed to delete feedback")
			return nil
		}
		return tea.Batch(v.fetchFeedback(), v.invalidateRoster())
	}
	return nil
}

// onEditorSuccess closes the editor and refreshes everything the saved item
// can affect.
func (v *managerView) onEditorSuccess() tea.Cmd {
	v.editor.Close()
	v.err = ""
	return tea.Batch(v.invalidateRoster(), v.fetchFeedback())
}

func (v *managerView) syncTable() {
	rows := make([]table.Row, 0, len(v.roster))
	for _, entry := range v.roster {
		rows = append(rows, table.Row{
			entry.Employee.Name,
			entry.Employee.Email,
			strconv.Itoa(entry.FeedbackCount),
			fmt.Sprintf("%d / %d / %d", entry.Sentiments.Positive, entry.Sentiments.Neutral, entry.Sentiments.Negative),
		})
	}
	cursor := v.table.Cursor()
	v.table.SetRows(rows)
	switch {
	case len(rows) == 0:
		v.table.SetCursor(0)
	case cursor >= len(rows):
		v.table.SetCursor(len(rows) - 1)
	case cursor < 0:
		v.table.SetCursor(0)
	}
}

func (v *managerView) clampFeedbackCursor() {
	if v.feedbackCursor >= len(v.feedback) {
		v.feedbackCursor = len(v.feedback) - 1
	}
	if v.feedbackCursor < 0 {
		v.feedbackCursor = 0
	}
}

func (v *managerView) highlightedEmployee() (models.Employee, bool) {
	i := v.table.Cursor()
	if i < 0 || i >= len(v.roster) {
		return models.Employee{}, false
	}
	return v.roster[i].Employee, true
}

func (v *managerView) highlightedFeedback() (models.FeedbackItem, bool) {
	if v.feedbackCursor < 0 || v.feedbackCursor >= len(v.feedback) {
		return models.FeedbackItem{}, false
	}
	return v.feedback[v.feedbackCursor], true
}

func (v *managerView) handleKeys(msg tea.KeyMsg) tea.Cmd {
	if v.editor.open {
		return v.handleEditorKeys(msg)
	}
	if v.confirm != nil {
		return v.handleConfirmDeleteKeys(msg)
	}

	switch msg.String() {
	case "tab":
		if v.focus == paneRoster {
			v.focus = paneFeedback
		} else {
			v.focus = paneRoster
		}

	case "up", "k":
		if v.focus == paneRoster {
			v.table.MoveUp(1)
		} else if v.feedbackCursor > 0 {
			v.feedbackCursor--
		}

	case "down", "j":
		if v.focus == paneRoster {
			v.table.MoveDown(1)
		} else if v.feedbackCursor < len(v.feedback)-1 {
			v.feedbackCursor++
		}

	case "enter", "v":
		if v.focus == paneRoster {
			if e, ok := v.highlightedEmployee(); ok {
				v.err = ""
				return v.selectEmployee(e)
			}
		}

	case "a":
		return v.openCreate()

	case "e":
		if v.focus == paneFeedback && v.selected != nil {
			if item, ok := v.highlightedFeedback(); ok {
				v.editor.Open(*v.selected, &item)
			}
		}

	case "d":
		if v.focus == paneFeedback {
			if item, ok := v.highlightedFeedback(); ok {
				v.requestDelete(item)
			}
		}

	case "r":
		v.err = ""
		return tea.Batch(v.invalidateRoster(), v.fetchFeedback())
	}

	return nil
}

// openCreate binds an empty editor to the employee under the roster cursor,
// or to the selected employee when the feedback pane has focus.
func (v *managerView) openCreate() tea.Cmd {
	var cmd tea.Cmd
	if v.focus == paneRoster {
		e, ok := v.highlightedEmployee()
		if !ok {
			return nil
		}
		if v.selected == nil || v.selected.ID != e.ID {
			cmd = v.selectEmployee(e)
		}
	}
	if v.selected == nil {
		return cmd
	}
	v.editor.Open(*v.selected, nil)
	return cmd
}

func (v *managerView) handleEditorKeys(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "ctrl+s":
		return v.editor.submit(v.ctx, v.store, v.id)
	case "esc":
		v.editor.Close()
		return nil
	}
	return v.editor.handleKeys(msg)
}

func (v *managerView) view(spin string, width, height int) string {
	if v.editor.open {
		return v.editor.view(spin, width, height-2)
	}
	if v.confirm != nil {
		return v.renderConfirmDelete(width, height-2)
	}

	var s strings.Builder

	if v.err != "" {
		s.WriteString(errorStyle.Render("Error: " + v.err))
		s.WriteString("\n\n")
	}

	v.table.SetHeight(max(height-12, 5))

	roster := v.renderRosterPane(spin)
	feedbackWidth := max(width-rosterPaneWidth-6, 40)
	feedback := v.renderFeedbackPane(spin, feedbackWidth)

	rosterStyle, feedbackStyle := paneFocusedStyle, paneStyle
	if v.focus == paneFeedback {
		rosterStyle, feedbackStyle = paneStyle, paneFocusedStyle
	}

	s.WriteString(lipgloss.JoinHorizontal(
		lipgloss.Top,
		rosterStyle.Width(rosterPaneWidth).Render(roster),
		feedbackStyle.Width(feedbackWidth).Render(feedback),
	))
	s.WriteString("\n\n")
	s.WriteString(v.renderHelp())

	return s.String()
}

func (v *managerView) renderRosterPane(spin string) string {
	var s strings.Builder

	title := paneTitleStyle.Render("Team")
	if v.rosterLoading {
		title += " " + spin
	}
	s.WriteString(title)
	s.WriteString("\n\n")

	switch {
	case v.rosterLoading && len(v.roster) == 0:
		s.WriteString(helpStyle.Render("Loading team..."))
	case len(v.roster) == 0:
		s.WriteString(helpStyle.Render("No team members found"))
	default:
		s.WriteString(v.table.View())
	}
	return s.String()
}

func (v *managerView) renderFeedbackPane(spin string, width int) string {
	var s strings.Builder

	if v.selected == nil {
		s.WriteString(paneTitleStyle.Render("Feedback"))
		s.WriteString("\n\n")
		s.WriteString(helpStyle.Render("Select an employee to view feedback"))
		return s.String()
	}

	title := paneTitleStyle.Render("Feedback for " + v.selected.Name)
	if v.feedbackLoading {
		title += " " + spin
	}
	s.WriteString(title)
	s.WriteString("\n\n")

	switch {
	case v.feedbackLoading && len(v.feedback) == 0:
		s.WriteString(helpStyle.Render("Loading feedback..."))
		return s.String()
	case len(v.feedback) == 0:
		s.WriteString(helpStyle.Render("No feedback yet for this employee"))
		return s.String()
	}

	textWidth := max(width-16, 20)
	for i, item := range v.feedback {
		marker := "  "
		if v.focus == paneFeedback && i == v.feedbackCursor {
			marker = "> "
		}

		status := statusBadge(item)
		if v.deleting[item.ID] {
			status = pendingStyle.Render("Deleting...")
		}

		header := fmt.Sprintf("%s%s %s  %s", marker, sentimentBadge(item.Sentiment), helpStyle.Render(formatDate(item.CreatedAt)), status)
		if v.focus == paneFeedback && i == v.feedbackCursor {
			header = selectedStyle.Render(header)
		}
		s.WriteString(header)
		s.WriteString("\n")
		s.WriteString("    " + labelStyle.Render("Strengths: ") + truncate(item.Strengths, textWidth))
		s.WriteString("\n")
		s.WriteString("    " + labelStyle.Render("Improve:   ") + truncate(item.AreasToImprove, textWidth))
		s.WriteString("\n\n")
	}
	return s.String()
}

func (v *managerView) renderHelp() string {
	help := []string{
		"↑/↓: Navigate",
		"Tab: Switch pane",
		"Enter: Select",
		"a: Give feedback",
	}
	if v.focus == paneFeedback {
		help = append(help, "e: Edit", "d: Delete")
	}
	help = append(help, "r: Refresh", "q: Quit")
	return helpStyle.Render(strings.Join(help, " • "))
}

// ABOUTME: Delete confirmation dialog for the manager console
// ABOUTME: Nothing is sent until the manager confirms; cancelling leaves state untouched
package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/amanks009/feedback-client/models"
)

var (
	confirmBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("9")).
			Padding(1, 2).
			Width(60).
			Align(lipgloss.Center)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Bold(true)

	confirmButtonStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("9")).
				Padding(0, 2).
				MarginRight(2)

	cancelButtonStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("8")).
				Padding(0, 2)
)

// requestDelete opens the confirmation dialog for item unless a delete for
// it is already running.
func (v *managerView) requestDelete(item models.FeedbackItem) {
	if v.deleting[item.ID] {
		return
	}
	v.confirm = &item
}

func (v *managerView) handleConfirmDeleteKeys(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "y", "Y":
		item := *v.confirm
		v.confirm = nil
		return v.performDelete(item)
	case "n", "N", "esc":
		v.confirm = nil
	}
	return nil
}

func (v *managerView) performDelete(item models.FeedbackItem) tea.Cmd {
	if v.deleting[item.ID] {
		return nil
	}
	v.deleting[item.ID] = true
	v.err = ""

	ctx, store, tag := v.ctx, v.store, viewTag{v.id}
	v.logger.Info("deleting feedback", zap.Int64("feedback_id", item.ID), zap.Int64("employee_id", item.EmployeeID))
	return func() tea.Msg {
		err := store.DeleteFeedback(ctx, item.ID)
		if ctx.Err() != nil {
			return nil
		}
		return feedbackDeletedMsg{viewTag: tag, feedbackID: item.ID, err: err}
	}
}

func (v *managerView) renderConfirmDelete(width, height int) string {
	employee := "this employee"
	if v.selected != nil {
		employee = v.selected.Name
	}

	item := v.confirm
	title := warningStyle.Render("⚠  DELETE CONFIRMATION  ⚠")
	message := "Are you sure you want to delete this feedback?"
	info := fmt.Sprintf("\n%s %s for %s\n%s\n",
		sentimentBadge(item.Sentiment),
		formatDate(item.CreatedAt),
		employee,
		truncate(item.Strengths, 50),
	)
	warning := "\nThis action cannot be undone!"

	buttons := lipgloss.JoinHorizontal(
		lipgloss.Left,
		confirmButtonStyle.Render("Yes, Delete (y)"),
		cancelButtonStyle.Render("Cancel (n/esc)"),
	)

	content := lipgloss.JoinVertical(
		lipgloss.Center,
		title,
		"",
		message,
		info,
		warning,
		"",
		buttons,
	)

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, confirmBoxStyle.Render(content))
}

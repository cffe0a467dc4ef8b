// ABOUTME: Feedback editor modal for creating and updating feedback
// ABOUTME: Resets on every open, validates before any request and blocks closing mid-submit
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/amanks009/feedback-client/api"
	"github.com/amanks009/feedback-client/models"
)

const (
	fieldStrengths = iota
	fieldImprove
	fieldSentiment
	fieldCount
)

var (
	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("170")).
			Padding(1, 2).
			Width(70)

	fieldFocusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("170")).
			Bold(true)

	optionActiveStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("62")).
				Padding(0, 1)

	optionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Padding(0, 1)
)

// editorModel is the create/update form. It is in edit mode iff editing is set.
type editorModel struct {
	open       bool
	employee   models.Employee
	editing    *models.FeedbackItem
	strengths  textarea.Model
	improve    textarea.Model
	sentiment  models.Sentiment
	focus      int
	submitting bool
	err        string
}

func newEditor() editorModel {
	return editorModel{
		strengths: newTextarea("What are this employee's key strengths?"),
		improve:   newTextarea("What areas could this employee work on?"),
	}
}

func newTextarea(placeholder string) textarea.Model {
	ta := textarea.New()
	ta.Placeholder = placeholder
	ta.CharLimit = 2000
	ta.ShowLineNumbers = false
	ta.SetWidth(64)
	ta.SetHeight(3)
	ta.Cursor.SetMode(cursor.CursorStatic)
	return ta
}

func (e *editorModel) isEditing() bool {
	return e.editing != nil
}

// Open binds the form to employee and resets every field: populated from
// item when editing, cleared when creating. Nothing carries over from a
// previous session.
func (e *editorModel) Open(employee models.Employee, item *models.FeedbackItem) {
	e.open = true
	e.employee = employee
	e.submitting = false
	e.err = ""

	if item != nil {
		copied := *item
		e.editing = &copied
		e.strengths.SetValue(strings.TrimSpace(item.Strengths))
		e.improve.SetValue(strings.TrimSpace(item.AreasToImprove))
		e.sentiment = item.Sentiment
		if !e.sentiment.Valid() {
			e.sentiment = ""
		}
	} else {
		e.editing = nil
		e.strengths.Reset()
		e.improve.Reset()
		e.sentiment = ""
	}

	e.focus = fieldStrengths
	e.applyFocus()
}

// Close dismisses the form. It is a no-op while a submission is in flight.
func (e *editorModel) Close() bool {
	if e.submitting {
		return false
	}
	e.open = false
	e.strengths.Blur()
	e.improve.Blur()
	return true
}

func (e *editorModel) applyFocus() {
	e.strengths.Blur()
	e.improve.Blur()
	switch e.focus {
	case fieldStrengths:
		e.strengths.Focus()
	case fieldImprove:
		e.improve.Focus()
	}
}

// payload validates the form. A validation failure never reaches the network.
func (e *editorModel) payload() (models.FeedbackPayload, error) {
	if strings.TrimSpace(e.strengths.Value()) == "" ||
		strings.TrimSpace(e.improve.Value()) == "" ||
		e.sentiment == "" {
		return models.FeedbackPayload{}, fmt.Errorf("%w: %s", models.ErrInvalidPayload, models.MsgFillAllFields)
	}
	return models.NewFeedbackPayload(e.employee.ID, e.strengths.Value(), e.improve.Value(), e.sentiment)
}

// submit validates and returns the request command, or nil when validation
// fails or a submission is already running.
func (e *editorModel) submit(ctx context.Context, store Store, view int) tea.Cmd {
	if e.submitting {
		return nil
	}

	p, err := e.payload()
	if err != nil {
		e.err = models.MsgFillAllFields
		return nil
	}

	e.submitting = true
	e.err = ""

	editing := e.isEditing()
	var feedbackID int64
	if editing {
		feedbackID = e.editing.ID
	}

	return func() tea.Msg {
		var err error
		if editing {
			_, err = store.UpdateFeedback(ctx, feedbackID, p)
		} else {
			_, err = store.CreateFeedback(ctx, p)
		}
		if ctx.Err() != nil {
			return nil
		}
		return feedbackSavedMsg{viewTag: viewTag{view}, editing: editing, err: err}
	}
}

// settle records the outcome of a submission. On failure the form stays open
// with its values intact.
func (e *editorModel) settle(msg feedbackSavedMsg) {
	e.submitting = false
	if msg.err == nil {
		return
	}

	fallback := "Failed to create feedback"
	if msg.editing {
		fallback = "Failed to update feedback"
	}
	if errors.Is(msg.err, models.ErrInvalidPayload) {
		e.err = models.MsgFillAllFields
		return
	}
	e.err = api.ErrorMessage(msg.err, fallback)
}

// handleKeys edits the focused field. Submit and close are handled by the
// owning view because they need its lifetime.
func (e *editorModel) handleKeys(msg tea.KeyMsg) tea.Cmd {
	if e.submitting {
		return nil
	}

	switch msg.String() {
	case "tab":
		e.focus = (e.focus + 1) % fieldCount
		e.applyFocus()
		return nil
	case "shift+tab":
		e.focus = (e.focus + fieldCount - 1) % fieldCount
		e.applyFocus()
		return nil
	}

	var cmd tea.Cmd
	switch e.focus {
	case fieldStrengths:
		e.strengths, cmd = e.strengths.Update(msg)
	case fieldImprove:
		e.improve, cmd = e.improve.Update(msg)
	case fieldSentiment:
		e.handleSentimentKeys(msg)
	}
	return cmd
}

func (e *editorModel) handleSentimentKeys(msg tea.KeyMsg) {
	idx := -1
	for i, s := range models.Sentiments {
		if s == e.sentiment {
			idx = i
		}
	}

	switch msg.String() {
	case "left", "h":
		if idx <= 0 {
			idx = len(models.Sentiments)
		}
		e.sentiment = models.Sentiments[idx-1]
	case "right", "l", " ":
		e.sentiment = models.Sentiments[(idx+1)%len(models.Sentiments)]
	case "1", "2", "3":
		e.sentiment = models.Sentiments[int(msg.String()[0]-'1')]
	case "backspace", "delete":
		e.sentiment = ""
	}
}

func (e editorModel) title() string {
	verb := "Give"
	if e.isEditing() {
		verb = "Edit"
	}
	return fmt.Sprintf("%s Feedback - %s", verb, e.employee.Name)
}

func (e editorModel) view(spin string, width, height int) string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(e.title()))
	s.WriteString("\n\n")

	if e.err != "" {
		s.WriteString(errorStyle.Render(e.err))
		s.WriteString("\n\n")
	}

	s.WriteString(e.fieldLabel("Strengths", fieldStrengths))
	s.WriteString("\n")
	s.WriteString(e.strengths.View())
	s.WriteString("\n\n")

	s.WriteString(e.fieldLabel("Areas to Improve", fieldImprove))
	s.WriteString("\n")
	s.WriteString(e.improve.View())
	s.WriteString("\n\n")

	s.WriteString(e.fieldLabel("Overall Sentiment", fieldSentiment))
	s.WriteString("\n")
	var options []string
	for i, sentiment := range models.Sentiments {
		label := fmt.Sprintf("%d %s", i+1, sentiment.Label())
		if sentiment == e.sentiment {
			options = append(options, optionActiveStyle.Render(label))
		} else {
			options = append(options, optionStyle.Render(label))
		}
	}
	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, options...))
	s.WriteString("\n\n")

	if e.submitting {
		verb := "Submitting"
		if e.isEditing() {
			verb = "Updating"
		}
		s.WriteString(spin + " " + helpStyle.Render(verb+" feedback..."))
	} else {
		action := "Submit Feedback"
		if e.isEditing() {
			action = "Update Feedback"
		}
		help := []string{
			"Tab: Next field",
			"←/→ or 1-3: Sentiment",
			"Ctrl+S: " + action,
			"Esc: Cancel",
		}
		s.WriteString(helpStyle.Render(strings.Join(help, " • ")))
	}

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, modalStyle.Render(s.String()))
}

func (e editorModel) fieldLabel(label string, field int) string {
	if e.focus == field {
		return fieldFocusStyle.Render("> " + label)
	}
	return labelStyle.Render("  " + label)
}

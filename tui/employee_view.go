// ABOUTME: Employee viewer listing feedback received in the order the server returns it
// ABOUTME: Acknowledging patches a single item only after the server confirms
package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/amanks009/feedback-client/api"
	"github.com/amanks009/feedback-client/models"
)

type employeeView struct {
	id     int
	ctx    context.Context
	cancel context.CancelFunc
	store  Store
	logger *zap.Logger

	timeline []models.FeedbackItem
	loading  bool
	cursor   int
	acking   map[int64]bool
	err      string
}

func newEmployeeView(id int, store Store, logger *zap.Logger) *employeeView {
	ctx, cancel := context.WithCancel(context.Background())
	return &employeeView{
		id:     id,
		ctx:    ctx,
		cancel: cancel,
		store:  store,
		logger: logger.With(zap.String("view", "employee")),
		acking: make(map[int64]bool),
	}
}

func (v *employeeView) init() tea.Cmd {
	return v.fetchTimeline()
}

func (v *employeeView) close() {
	v.cancel()
}

func (v *employeeView) fetchTimeline() tea.Cmd {
	v.loading = true
	ctx, store, tag := v.ctx, v.store, viewTag{v.id}
	return func() tea.Msg {
		timeline, err := store.Timeline(ctx)
		if ctx.Err() != nil {
			return nil
		}
		return timelineLoadedMsg{viewTag: tag, timeline: timeline, err: err}
	}
}

// acknowledge sends the acknowledgment for item. It does nothing for items
// already acknowledged or with a request in flight.
func (v *employeeView) acknowledge(item models.FeedbackItem) tea.Cmd {
	if item.Acknowledged || v.acking[item.ID] {
		return nil
	}
	v.acking[item.ID] = true
	v.err = ""

	ctx, store, tag := v.ctx, v.store, viewTag{v.id}
	return func() tea.Msg {
		err := store.Acknowledge(ctx, item.ID)
		if ctx.Err() != nil {
			return nil
		}
		return acknowledgedMsg{viewTag: tag, feedbackID: item.ID, err: err}
	}
}

func (v *employeeView) handleMsg(msg viewMsg) tea.Cmd {
	switch msg := msg.(type) {
	case timelineLoadedMsg:
		v.loading = false
		if msg.err != nil {
			v.logger.Error("failed to load feedback", zap.Error(msg.err))
			v.err = "Failed to load feedback"
			return nil
		}
		v.timeline = msg.timeline
		if v.cursor >= len(v.timeline) {
			v.cursor = max(len(v.timeline)-1, 0)
		}

	case acknowledgedMsg:
		delete(v.acking, msg.feedbackID)
		if msg.err != nil {
			v.logger.Error("failed to acknowledge feedback", zap.Int64("feedback_id", msg.feedbackID), zap.Error(msg.err))
			v.err = api.ErrorMessage(msg.err, "Failed to acknowledge feedback")
			return nil
		}
		for i := range v.timeline {
			if v.timeline[i].ID == msg.feedbackID {
				v.timeline[i].Acknowledged = true
				break
			}
		}
	}
	return nil
}

func (v *employeeView) handleKeys(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "up", "k":
		if v.cursor > 0 {
			v.cursor--
		}
	case "down", "j":
		if v.cursor < len(v.timeline)-1 {
			v.cursor++
		}
	case "enter", "a":
		if v.cursor >= 0 && v.cursor < len(v.timeline) {
			return v.acknowledge(v.timeline[v.cursor])
		}
	case "r":
		if !v.loading {
			v.err = ""
			return v.fetchTimeline()
		}
	}
	return nil
}

func (v *employeeView) view(spin string, width int) string {
	var s strings.Builder

	title := paneTitleStyle.Render("Your Feedback")
	if v.loading {
		title += " " + spin
	}
	s.WriteString(title)
	s.WriteString("\n\n")

	if v.err != "" {
		s.WriteString(errorStyle.Render("Error: " + v.err))
		s.WriteString("\n\n")
	}

	switch {
	case v.loading && len(v.timeline) == 0:
		s.WriteString(helpStyle.Render("Loading feedback..."))
		s.WriteString("\n")
	case len(v.timeline) == 0:
		s.WriteString(helpStyle.Render("No feedback received yet"))
		s.WriteString("\n")
	}

	textWidth := max(width-20, 30)
	for i, item := range v.timeline {
		marker := "  "
		if i == v.cursor {
			marker = "> "
		}

		status := statusBadge(item)
		if v.acking[item.ID] {
			status = pendingStyle.Render("Acknowledging...")
		}

		header := fmt.Sprintf("%s%s %s  %s", marker, sentimentBadge(item.Sentiment), helpStyle.Render(formatDate(item.CreatedAt)), status)
		if i == v.cursor {
			header = selectedStyle.Render(header)
		}
		s.WriteString(header)
		s.WriteString("\n")
		s.WriteString("    " + labelStyle.Render("Strengths:        ") + truncate(item.Strengths, textWidth))
		s.WriteString("\n")
		s.WriteString("    " + labelStyle.Render("Areas to Improve: ") + truncate(item.AreasToImprove, textWidth))
		s.WriteString("\n\n")
	}

	help := []string{"↑/↓: Navigate", "Enter/a: Acknowledge", "r: Refresh", "q: Quit"}
	s.WriteString(helpStyle.Render(strings.Join(help, " • ")))
	return s.String()
}

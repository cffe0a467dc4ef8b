// ABOUTME: Terminal User Interface using bubbletea framework
// ABOUTME: Navigation shell that gates the manager console and employee viewer by role
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/amanks009/feedback-client/models"
)

// Store is the remote feedback store as the views use it.
type Store interface {
	Team(ctx context.Context) ([]models.RosterEntry, error)
	EmployeeFeedback(ctx context.Context, employeeID int64) ([]models.FeedbackItem, error)
	CreateFeedback(ctx context.Context, p models.FeedbackPayload) (*models.FeedbackItem, error)
	UpdateFeedback(ctx context.Context, feedbackID int64, p models.FeedbackPayload) (*models.FeedbackItem, error)
	DeleteFeedback(ctx context.Context, feedbackID int64) error
	Timeline(ctx context.Context) ([]models.FeedbackItem, error)
	Acknowledge(ctx context.Context, feedbackID int64) error
}

// ViewMode represents the current TUI view
type ViewMode int

const (
	ViewSignedOut ViewMode = iota
	ViewManager
	ViewEmployee
)

// Options wires the TUI to its collaborators.
type Options struct {
	Store  Store
	User   *models.User
	Logger *zap.Logger

	// SignOut clears the stored session; nil disables sign-out.
	SignOut func() error
}

// Model is the main bubbletea model
type Model struct {
	store   Store
	logger  *zap.Logger
	user    *models.User
	signOut func() error

	viewMode ViewMode
	nextView int

	manager  *managerView
	employee *employeeView

	spinner spinner.Model
	notice  string

	width  int
	height int
}

// NewModel creates a new TUI model with the view the user's role allows.
func NewModel(opts Options) Model {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	m := Model{
		store:   opts.Store,
		logger:  logger,
		user:    opts.User,
		signOut: opts.SignOut,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(spinnerStyle)),
		width:   100,
		height:  30,
	}
	m.viewMode = viewFor(opts.User)
	m.mountView()
	return m
}

// Run starts the full-screen program and blocks until it exits.
func Run(opts Options) error {
	p := tea.NewProgram(NewModel(opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func viewFor(u *models.User) ViewMode {
	switch {
	case u == nil:
		return ViewSignedOut
	case u.IsManager():
		return ViewManager
	case u.IsEmployee():
		return ViewEmployee
	}
	return ViewSignedOut
}

// mountView creates the view for the current mode with a fresh lifetime.
func (m *Model) mountView() {
	m.nextView++
	switch m.viewMode {
	case ViewManager:
		m.manager = newManagerView(m.nextView, m.store, m.logger)
	case ViewEmployee:
		m.employee = newEmployeeView(m.nextView, m.store, m.logger)
	}
}

// teardown cancels outstanding requests of the mounted view; late results are dropped.
func (m *Model) teardown() {
	if m.manager != nil {
		m.manager.close()
		m.manager = nil
	}
	if m.employee != nil {
		m.employee.close()
		m.employee = nil
	}
}

func (m Model) Init() tea.Cmd {
	var cmd tea.Cmd
	switch m.viewMode {
	case ViewManager:
		cmd = m.manager.init()
	case ViewEmployee:
		cmd = m.employee.init()
	}
	return tea.Batch(cmd, m.spinner.Tick)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case viewMsg:
		return m, m.routeViewMsg(msg)
	}
	return m, nil
}

// routeViewMsg delivers an async result to the view that issued it, if that
// view is still mounted.
func (m Model) routeViewMsg(msg viewMsg) tea.Cmd {
	switch {
	case m.manager != nil && m.manager.id == msg.viewID():
		return m.manager.handleMsg(msg)
	case m.employee != nil && m.employee.id == msg.viewID():
		return m.employee.handleMsg(msg)
	}
	m.logger.Debug("dropping result for unmounted view", zap.Int("view", msg.viewID()))
	return nil
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.teardown()
		return m, tea.Quit
	case "q":
		if !m.capturingText() {
			m.teardown()
			return m, tea.Quit
		}
	case "ctrl+l":
		if m.viewMode != ViewSignedOut && !m.busy() {
			return m.handleSignOut()
		}
		return m, nil
	}

	// Delegate to view-specific handlers
	switch m.viewMode {
	case ViewManager:
		return m, m.manager.handleKeys(msg)
	case ViewEmployee:
		return m, m.employee.handleKeys(msg)
	}
	return m, nil
}

// capturingText reports whether keystrokes belong to a text field.
func (m Model) capturingText() bool {
	return m.viewMode == ViewManager && m.manager.editor.open
}

// busy reports whether a modal must stay up until its request settles.
func (m Model) busy() bool {
	return m.viewMode == ViewManager && m.manager.editor.open && m.manager.editor.submitting
}

func (m Model) handleSignOut() (tea.Model, tea.Cmd) {
	if m.signOut != nil {
		if err := m.signOut(); err != nil {
			m.logger.Error("sign out failed", zap.Error(err))
			m.notice = "Sign out failed: " + err.Error()
			return m, nil
		}
	}
	m.teardown()
	m.user = nil
	m.viewMode = ViewSignedOut
	m.notice = "Signed out."
	return m, nil
}

func (m Model) View() string {
	var s strings.Builder

	s.WriteString(m.renderHeader())
	s.WriteString("\n\n")

	switch m.viewMode {
	case ViewManager:
		s.WriteString(m.manager.view(m.spinner.View(), m.width, m.height))
	case ViewEmployee:
		s.WriteString(m.employee.view(m.spinner.View(), m.width))
	default:
		s.WriteString(m.renderSignedOut())
	}

	return s.String()
}

func (m Model) renderHeader() string {
	var tabs []string
	tabs = append(tabs, tabInactiveStyle.Render("Home"))
	switch m.viewMode {
	case ViewManager:
		tabs = append(tabs, tabActiveStyle.Render("Manager Dashboard"))
	case ViewEmployee:
		tabs = append(tabs, tabActiveStyle.Render("Employee Dashboard"))
	}

	left := lipgloss.JoinHorizontal(lipgloss.Top, titleStyle.Render("FEEDBACK"), " ", lipgloss.JoinHorizontal(lipgloss.Top, tabs...))

	right := helpStyle.Render("not signed in")
	if m.user != nil {
		right = emailStyle.Render(m.user.Email) + helpStyle.Render("  ctrl+l: sign out")
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}

func (m Model) renderSignedOut() string {
	var s strings.Builder
	if m.notice != "" {
		s.WriteString(noticeStyle.Render(m.notice))
		s.WriteString("\n\n")
	}
	if m.user != nil && m.viewMode == ViewSignedOut {
		s.WriteString(errorStyle.Render(fmt.Sprintf("Role %q has no dashboard.", m.user.Role)))
		s.WriteString("\n\n")
	}
	s.WriteString("Run 'feedback login' to sign in, then start 'feedback tui' again.")
	s.WriteString("\n\n")
	s.WriteString(helpStyle.Render("q: Quit"))
	return s.String()
}

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170"))

	tabActiveStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			Background(lipgloss.Color("235")).
			Padding(0, 2)

	tabInactiveStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("240")).
				Padding(0, 2)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	emailStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9"))

	noticeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10"))

	spinnerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("170"))

	paneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	paneFocusedStyle = paneStyle.
				BorderForeground(lipgloss.Color("170"))

	paneTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))

	labelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("245"))

	selectedStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255")).
			Bold(true)

	ackStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10"))

	pendingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("208"))
)

// sentimentBadge renders a colored label for a sentiment.
func sentimentBadge(s models.Sentiment) string {
	color := lipgloss.Color("245")
	switch s {
	case models.SentimentPositive:
		color = lipgloss.Color("36")
	case models.SentimentNeutral:
		color = lipgloss.Color("220")
	case models.SentimentNegative:
		color = lipgloss.Color("9")
	}
	label := s.Short()
	if label == "" {
		label = "unknown"
	}
	return lipgloss.NewStyle().Foreground(color).Bold(true).Render("[" + label + "]")
}

func statusBadge(item models.FeedbackItem) string {
	if item.Acknowledged {
		return ackStyle.Render("✓ Acknowledged")
	}
	return pendingStyle.Render("Pending")
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

// truncate shortens s to n runes on a single line.
func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}

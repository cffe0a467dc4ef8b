// ABOUTME: Async result messages delivered back to the TUI views
// ABOUTME: Each carries the tag of the view that issued the request

package tui

import (
	"github.com/amanks009/feedback-client/models"
)

// viewMsg is an async result tagged with the view that requested it.
type viewMsg interface {
	viewID() int
}

type viewTag struct{ view int }

func (t viewTag) viewID() int { return t.view }

// rosterLoadedMsg carries GET /dashboard results for one data version.
type rosterLoadedMsg struct {
	viewTag
	version int
	team    []models.RosterEntry
	err     error
}

// feedbackLoadedMsg carries GET /feedback/{id} results for one request sequence.
type feedbackLoadedMsg struct {
	viewTag
	seq        int
	employeeID int64
	items      []models.FeedbackItem
	err        error
}

// feedbackSavedMsg settles an editor submission.
type feedbackSavedMsg struct {
	viewTag
	editing bool
	err     error
}

// feedbackDeletedMsg settles a confirmed delete.
type feedbackDeletedMsg struct {
	viewTag
	feedbackID int64
	err        error
}

// timelineLoadedMsg carries GET /employee-dashboard results.
type timelineLoadedMsg struct {
	viewTag
	timeline []models.FeedbackItem
	err      error
}

// acknowledgedMsg settles POST /acknowledge/{id}.
type acknowledgedMsg struct {
	viewTag
	feedbackID int64
	err        error
}

// ABOUTME: Interactive terminal UI subcommand
// ABOUTME: Opens the role-gated dashboards for the signed-in user
package cli

import (
	"go.uber.org/zap"

	"github.com/amanks009/feedback-client/session"
	"github.com/amanks009/feedback-client/tui"
)

// TUICommand runs the full-screen interface until the user quits.
func TUICommand(store tui.Store, sess *session.Session, sessionPath string, logger *zap.Logger) error {
	opts := tui.Options{
		Store:  store,
		Logger: logger,
		SignOut: func() error {
			return session.ClearAt(sessionPath)
		},
	}
	if sess.Valid() {
		user := sess.User
		opts.User = &user
	}
	return tui.Run(opts)
}

// ABOUTME: Employee feedback CLI commands
// ABOUTME: Shows feedback received and acknowledges it
package cli

import (
	"context"
	"flag"
	"fmt"

	"github.com/amanks009/feedback-client/handlers"
)

// TimelineCommand lists feedback addressed to the signed-in employee.
func TimelineCommand(store handlers.Store, args []string) error {
	fs := flag.NewFlagSet("timeline", flag.ExitOnError)
	pending := fs.Bool("pending", false, "Show only unacknowledged feedback")
	_ = fs.Parse(args)

	timeline, err := store.Timeline(context.Background())
	if err != nil {
		return fmt.Errorf("failed to load feedback: %w", err)
	}

	printFeedback(timeline, *pending, "No feedback received yet")
	return nil
}

// AckCommand acknowledges one feedback item.
func AckCommand(store handlers.Store, args []string) error {
	fs := flag.NewFlagSet("ack", flag.ExitOnError)
	_ = fs.Parse(args)

	if fs.NArg() < 1 {
		return fmt.Errorf("feedback ID required")
	}
	feedbackID, err := parseID(fs.Arg(0), "feedback ID")
	if err != nil {
		return err
	}

	if err := store.Acknowledge(context.Background(), feedbackID); err != nil {
		return fmt.Errorf("failed to acknowledge feedback: %w", err)
	}

	_, _ = fmt.Fprintf(stdout, "✓ Feedback acknowledged (ID: %d)\n", feedbackID)
	return nil
}

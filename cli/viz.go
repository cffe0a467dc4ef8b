// ABOUTME: Visualization CLI commands
// ABOUTME: Renders the team feedback summary from roster aggregates
package cli

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/amanks009/feedback-client/handlers"
	"github.com/amanks009/feedback-client/viz"
)

// SummaryCommand prints the team sentiment summary.
func SummaryCommand(store handlers.Store, args []string) error {
	fs := flag.NewFlagSet("summary", flag.ExitOnError)
	output := fs.String("output", "", "Output file (default: stdout)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	team, err := store.Team(context.Background())
	if err != nil {
		return fmt.Errorf("failed to load team: %w", err)
	}

	rendered := viz.RenderDashboard(viz.GenerateDashboardStats(team))

	if *output != "" {
		return os.WriteFile(*output, []byte(rendered), 0644)
	}

	_, _ = fmt.Fprint(stdout, rendered)
	return nil
}

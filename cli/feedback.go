// ABOUTME: Manager feedback CLI commands
// ABOUTME: Lists the team and gives, edits and deletes feedback for direct reports
package cli

import (
	"context"
	"flag"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/amanks009/feedback-client/handlers"
	"github.com/amanks009/feedback-client/models"
)

// TeamCommand lists direct reports with their feedback aggregates.
func TeamCommand(store handlers.Store, args []string) error {
	fs := flag.NewFlagSet("team", flag.ExitOnError)
	_ = fs.Parse(args)

	team, err := store.Team(context.Background())
	if err != nil {
		return fmt.Errorf("failed to load team: %w", err)
	}

	if len(team) == 0 {
		_, _ = fmt.Fprintln(stdout, "No team members found")
		return nil
	}

	w := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tNAME\tEMAIL\tFEEDBACK\tPOSITIVE\tNEUTRAL\tNEGATIVE")
	_, _ = fmt.Fprintln(w, "--\t----\t-----\t--------\t--------\t-------\t--------")

	for _, entry := range team {
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%d\t%d\t%d\n",
			entry.Employee.ID, entry.Employee.Name, dash(entry.Employee.Email),
			entry.FeedbackCount, entry.Sentiments.Positive, entry.Sentiments.Neutral, entry.Sentiments.Negative)
	}

	_ = w.Flush()
	return nil
}

// ListFeedbackCommand lists feedback for one employee.
func ListFeedbackCommand(store handlers.Store, args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	pending := fs.Bool("pending", false, "Show only unacknowledged feedback")
	_ = fs.Parse(args)

	if fs.NArg() < 1 {
		return fmt.Errorf("employee ID required")
	}
	employeeID, err := parseID(fs.Arg(0), "employee ID")
	if err != nil {
		return err
	}

	items, err := store.EmployeeFeedback(context.Background(), employeeID)
	if err != nil {
		return fmt.Errorf("failed to load feedback: %w", err)
	}

	printFeedback(items, *pending, "No feedback yet for this employee")
	return nil
}

func printFeedback(items []models.FeedbackItem, pendingOnly bool, empty string) {
	var shown []models.FeedbackItem
	for _, item := range items {
		if pendingOnly && item.Acknowledged {
			continue
		}
		shown = append(shown, item)
	}

	if len(shown) == 0 {
		_, _ = fmt.Fprintln(stdout, empty)
		return
	}

	w := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tDATE\tSENTIMENT\tSTATUS\tSTRENGTHS\tAREAS TO IMPROVE")
	_, _ = fmt.Fprintln(w, "--\t----\t---------\t------\t---------\t----------------")

	for _, item := range shown {
		date := "-"
		if !item.CreatedAt.IsZero() {
			date = item.CreatedAt.Local().Format("2006-01-02")
		}
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
			item.ID, date, item.Sentiment.Label(), item.Status(),
			clip(item.Strengths, 40), clip(item.AreasToImprove, 40))
	}

	_ = w.Flush()
}

// GiveFeedbackCommand creates feedback for an employee.
func GiveFeedbackCommand(store handlers.Store, args []string) error {
	fs := flag.NewFlagSet("give", flag.ExitOnError)
	employee := fs.Int64("employee", 0, "Employee ID (required)")
	strengths := fs.String("strengths", "", "Strengths (required)")
	improve := fs.String("improve", "", "Areas to improve (required)")
	sentiment := fs.String("sentiment", "", "positive, neutral or negative (required)")
	_ = fs.Parse(args)

	if *employee <= 0 {
		return fmt.Errorf("--employee is required")
	}

	s, err := models.ParseSentiment(*sentiment)
	if err != nil {
		return err
	}
	payload, err := models.NewFeedbackPayload(*employee, *strengths, *improve, s)
	if err != nil {
		return err
	}

	item, err := store.CreateFeedback(context.Background(), payload)
	if err != nil {
		return fmt.Errorf("failed to create feedback: %w", err)
	}

	if item != nil && item.ID != 0 {
		_, _ = fmt.Fprintf(stdout, "✓ Feedback created (ID: %d)\n", item.ID)
	} else {
		_, _ = fmt.Fprintln(stdout, "✓ Feedback created")
	}
	_, _ = fmt.Fprintf(stdout, "  Employee: %d\n", payload.EmployeeID)
	_, _ = fmt.Fprintf(stdout, "  Sentiment: %s\n", payload.Sentiment.Label())
	return nil
}

// EditFeedbackCommand updates feedback. Omitted fields keep their current
// values, looked up through the employee's feedback list.
func EditFeedbackCommand(store handlers.Store, args []string) error {
	fs := flag.NewFlagSet("edit", flag.ExitOnError)
	employee := fs.Int64("employee", 0, "Employee ID the feedback belongs to (required)")
	strengths := fs.String("strengths", "", "Updated strengths")
	improve := fs.String("improve", "", "Updated areas to improve")
	sentiment := fs.String("sentiment", "", "Updated sentiment")
	_ = fs.Parse(args)

	if fs.NArg() < 1 {
		return fmt.Errorf("feedback ID required")
	}
	feedbackID, err := parseID(fs.Arg(0), "feedback ID")
	if err != nil {
		return err
	}
	if *employee <= 0 {
		return fmt.Errorf("--employee is required")
	}

	ctx := context.Background()
	items, err := store.EmployeeFeedback(ctx, *employee)
	if err != nil {
		return fmt.Errorf("failed to load feedback: %w", err)
	}

	var current *models.FeedbackItem
	for i := range items {
		if items[i].ID == feedbackID {
			current = &items[i]
			break
		}
	}
	if current == nil {
		return fmt.Errorf("feedback %d not found for employee %d", feedbackID, *employee)
	}

	s := current.Sentiment
	if *sentiment != "" {
		if s, err = models.ParseSentiment(*sentiment); err != nil {
			return err
		}
	}
	if *strengths == "" {
		*strengths = current.Strengths
	}
	if *improve == "" {
		*improve = current.AreasToImprove
	}

	payload, err := models.NewFeedbackPayload(*employee, *strengths, *improve, s)
	if err != nil {
		return err
	}

	if _, err := store.UpdateFeedback(ctx, feedbackID, payload); err != nil {
		return fmt.Errorf("failed to update feedback: %w", err)
	}

	_, _ = fmt.Fprintf(stdout, "✓ Feedback updated (ID: %d)\n", feedbackID)
	return nil
}

// DeleteFeedbackCommand deletes feedback after confirmation.
func DeleteFeedbackCommand(store handlers.Store, args []string) error {
	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	yes := fs.Bool("yes", false, "Skip the confirmation prompt")
	_ = fs.Parse(args)

	if fs.NArg() < 1 {
		return fmt.Errorf("feedback ID required")
	}
	feedbackID, err := parseID(fs.Arg(0), "feedback ID")
	if err != nil {
		return err
	}

	if !*yes && !confirm("Delete feedback "+strconv.FormatInt(feedbackID, 10)+"? This cannot be undone.") {
		_, _ = fmt.Fprintln(stdout, "Cancelled")
		return nil
	}

	if err := store.DeleteFeedback(context.Background(), feedbackID); err != nil {
		return fmt.Errorf("failed to delete feedback: %w", err)
	}

	_, _ = fmt.Fprintf(stdout, "✓ Feedback deleted (ID: %d)\n", feedbackID)
	return nil
}

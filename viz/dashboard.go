// ABOUTME: Terminal team feedback summary and rendering
// ABOUTME: Turns roster aggregates into sentiment bars for the manager's team
package viz

import (
	"fmt"
	"sort"
	"strings"

	"github.com/amanks009/feedback-client/models"
)

type DashboardStats struct {
	Members       int
	TotalFeedback int
	Sentiments    models.SentimentCounts

	Employees []EmployeeStats

	// Needs attention
	NoFeedback   []string
	MostNegative []string
}

type EmployeeStats struct {
	Name       string
	Count      int
	Sentiments models.SentimentCounts
}

// GenerateDashboardStats aggregates a roster as returned by the server.
func GenerateDashboardStats(team []models.RosterEntry) *DashboardStats {
	stats := &DashboardStats{Members: len(team)}

	for _, entry := range team {
		stats.TotalFeedback += entry.FeedbackCount
		for _, s := range models.Sentiments {
			stats.Sentiments.Add(s, entry.Sentiments.Of(s))
		}

		stats.Employees = append(stats.Employees, EmployeeStats{
			Name:       entry.Employee.Name,
			Count:      entry.FeedbackCount,
			Sentiments: entry.Sentiments,
		})

		if entry.FeedbackCount == 0 {
			stats.NoFeedback = append(stats.NoFeedback, entry.Employee.Name)
		} else if entry.Sentiments.Negative*2 > entry.FeedbackCount {
			stats.MostNegative = append(stats.MostNegative, entry.Employee.Name)
		}
	}

	sort.SliceStable(stats.Employees, func(i, j int) bool {
		return stats.Employees[i].Count > stats.Employees[j].Count
	})

	return stats
}

func RenderDashboard(stats *DashboardStats) string {
	var out strings.Builder

	// Header
	out.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
	out.WriteString("  TEAM FEEDBACK SUMMARY\n")
	out.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n\n")

	out.WriteString("SENTIMENT\n")
	renderSentiments(&out, stats.Sentiments)
	out.WriteString("\n")

	out.WriteString("STATS\n")
	out.WriteString(fmt.Sprintf("  👥 %d team members  📝 %d feedback\n\n", stats.Members, stats.TotalFeedback))

	if len(stats.Employees) > 0 {
		out.WriteString("BY EMPLOYEE\n")
		for _, e := range stats.Employees {
			out.WriteString(fmt.Sprintf("  %-20s %2d  +%d ~%d -%d\n",
				truncateName(e.Name, 20), e.Count, e.Sentiments.Positive, e.Sentiments.Neutral, e.Sentiments.Negative))
		}
		out.WriteString("\n")
	}

	if len(stats.NoFeedback) > 0 || len(stats.MostNegative) > 0 {
		out.WriteString("NEEDS ATTENTION\n")

		if len(stats.NoFeedback) > 0 {
			out.WriteString(fmt.Sprintf("  ⚠️  %d without feedback: %s\n", len(stats.NoFeedback), strings.Join(stats.NoFeedback, ", ")))
		}

		if len(stats.MostNegative) > 0 {
			out.WriteString(fmt.Sprintf("  ⚠️  %d mostly negative: %s\n", len(stats.MostNegative), strings.Join(stats.MostNegative, ", ")))
		}
	}

	return out.String()
}

func renderSentiments(out *strings.Builder, counts models.SentimentCounts) {
	total := counts.Total()

	for _, s := range models.Sentiments {
		n := counts.Of(s)

		// Bar length is the share of all feedback, 0-10 blocks
		barLength := 0
		percent := 0
		if total > 0 {
			barLength = (n * 10) / total
			percent = (n * 100) / total
		}
		bar := strings.Repeat("█", barLength) + strings.Repeat("░", 10-barLength)

		out.WriteString(fmt.Sprintf("  %-9s %s  %2d (%d%%)\n", s.Label(), bar, n, percent))
	}
}

func truncateName(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

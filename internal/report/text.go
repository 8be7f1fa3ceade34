// Package report renders analysis results as a human-readable text report.
package report

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/a11y-tools/a11y-triage/internal/analyzer"
	"github.com/a11y-tools/a11y-triage/internal/models"
)

var titleCaser = cases.Title(language.English)

// WriteText renders a run result to w: summary line, priority breakdown,
// then per-issue detail in report order.
func WriteText(w io.Writer, result *analyzer.Result) error {
	var b strings.Builder

	b.WriteString("Accessibility Triage Report\n")
	b.WriteString("===========================\n\n")
	if result.URL != "" {
		fmt.Fprintf(&b, "URL:    %s\n", result.URL)
	}
	fmt.Fprintf(&b, "Run:    %s\n", result.RunID)
	fmt.Fprintf(&b, "Status: %s\n\n", result.Summary.Summary)

	fmt.Fprintf(&b, "Issues: %d total, estimated %s to fix\n",
		result.Summary.TotalIssues, formatMinutes(result.Summary.EstimatedTotalMinutes))
	fmt.Fprintf(&b, "  Critical: %d\n", result.Summary.CriticalIssues)
	fmt.Fprintf(&b, "  High:     %d\n", result.Summary.HighIssues)
	fmt.Fprintf(&b, "  Medium:   %d\n", result.Summary.MediumIssues)
	fmt.Fprintf(&b, "  Low:      %d\n", result.Summary.LowIssues)
	if result.Summary.AIEnhancedIssues > 0 {
		fmt.Fprintf(&b, "  AI-enhanced: %d\n", result.Summary.AIEnhancedIssues)
	}
	b.WriteString("\n")

	for i := range result.Issues {
		writeIssue(&b, i+1, &result.Issues[i])
	}

	fmt.Fprintf(&b, "Resolution: %d AI, %d rule database, %d heuristic",
		result.Stats.AICallsUsed, result.Stats.RuleDatabaseHits, result.Stats.FallbackCount)
	if result.Stats.CacheHits > 0 {
		fmt.Fprintf(&b, " (%d from cache)", result.Stats.CacheHits)
	}
	b.WriteString("\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func writeIssue(b *strings.Builder, n int, issue *models.EnhancedIssue) {
	fmt.Fprintf(b, "%d. [%s] %s\n", n, titleCaser.String(string(issue.Priority())), issue.Issue.ID)
	if issue.Issue.Description != "" {
		fmt.Fprintf(b, "   %s\n", issue.Issue.Description)
	}
	fmt.Fprintf(b, "   Impact: %s\n", issue.UserImpact())
	if issue.Enrichment != nil && issue.Enrichment.FixSuggestion != "" {
		fmt.Fprintf(b, "   Fix:    %s\n", issue.Enrichment.FixSuggestion)
	}
	fmt.Fprintf(b, "   Effort: %s", formatMinutes(issue.EffortMinutes()))
	if len(issue.Issue.Elements) > 0 {
		fmt.Fprintf(b, "  Elements: %d", len(issue.Issue.Elements))
	}
	fmt.Fprintf(b, "  Source: %s\n", issue.Source)
	if issue.Enrichment != nil && len(issue.Enrichment.WCAGRefs) > 0 {
		fmt.Fprintf(b, "   WCAG:   %s\n", strings.Join(issue.Enrichment.WCAGRefs, ", "))
	}
	b.WriteString("\n")
}

func formatMinutes(minutes int) string {
	if minutes < 60 {
		return fmt.Sprintf("%dm", minutes)
	}
	hours := minutes / 60
	rest := minutes % 60
	if rest == 0 {
		return fmt.Sprintf("%dh", hours)
	}
	return fmt.Sprintf("%dh %dm", hours, rest)
}

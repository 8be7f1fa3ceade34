package adapters

import "github.com/a11y-tools/a11y-triage/internal/models"

// ParsePa11y extracts issues from a Pa11y report's "issues" list. The Pa11y
// code becomes the rule id, the message the description, and the type the
// impact tag; the single selector (when present) becomes a one-element list.
func ParsePa11y(report map[string]any) []models.Issue {
	rawIssues, ok := report["issues"].([]any)
	if !ok {
		return nil
	}

	issues := make([]models.Issue, 0, len(rawIssues))
	for _, raw := range rawIssues {
		item, ok := raw.(map[string]any)
		if !ok {
			continue
		}

		var elements []string
		if selector := stringField(item, "selector", ""); selector != "" {
			elements = []string{selector}
		}

		issues = append(issues, models.Issue{
			ID:          stringField(item, "code", "unknown"),
			Description: stringField(item, "message", ""),
			Impact:      stringField(item, "type", "moderate"),
			Elements:    elements,
		})
	}
	return issues
}

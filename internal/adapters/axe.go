package adapters

import (
	"fmt"

	"github.com/a11y-tools/a11y-triage/internal/models"
)

// ParseAxe extracts issues from an axe-core report's "violations" list.
// Node target selectors are flattened and string-coerced; varied target
// shapes are tolerated.
func ParseAxe(report map[string]any) []models.Issue {
	violations, ok := report["violations"].([]any)
	if !ok {
		return nil
	}

	issues := make([]models.Issue, 0, len(violations))
	for _, raw := range violations {
		violation, ok := raw.(map[string]any)
		if !ok {
			continue
		}

		var elements []string
		if nodes, ok := violation["nodes"].([]any); ok {
			for _, rawNode := range nodes {
				node, ok := rawNode.(map[string]any)
				if !ok {
					continue
				}
				switch target := node["target"].(type) {
				case []any:
					for _, t := range target {
						elements = append(elements, fmt.Sprint(t))
					}
				case nil:
				default:
					elements = append(elements, fmt.Sprint(target))
				}
			}
		}

		issues = append(issues, models.Issue{
			ID:          stringField(violation, "id", "unknown"),
			Description: stringField(violation, "description", ""),
			Impact:      stringField(violation, "impact", "moderate"),
			Elements:    elements,
		})
	}
	return issues
}

// stringField returns the string coercion of m[key], or def when absent.
func stringField(m map[string]any, key, def string) string {
	v, ok := m[key]
	if !ok || v == nil {
		return def
	}
	if s, ok := v.(string); ok {
		if s == "" {
			return def
		}
		return s
	}
	return fmt.Sprint(v)
}

// stringList coerces an arbitrary value into a slice of strings. Non-list
// values become a one-element slice.
func stringList(v any) []string {
	switch val := v.(type) {
	case nil:
		return nil
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			out = append(out, fmt.Sprint(item))
		}
		return out
	default:
		return []string{fmt.Sprint(val)}
	}
}

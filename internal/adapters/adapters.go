// Package adapters normalizes heterogeneous accessibility-scan reports into
// the uniform issue model. Parsing is best-effort: an unrecognized or empty
// report yields an empty issue list, never an error.
package adapters

import (
	"sort"

	"github.com/a11y-tools/a11y-triage/internal/models"
)

// Format identifies the recognized report shape.
type Format string

// Recognized report formats.
const (
	AxeFormat     Format = "axe"
	Pa11yFormat   Format = "pa11y"
	GenericFormat Format = "generic"
)

// DetectFormat inspects a decoded report and returns its format. Reports
// that are neither axe-core nor Pa11y shaped fall through to GenericFormat.
func DetectFormat(report map[string]any) Format {
	if _, ok := report["violations"].([]any); ok {
		return AxeFormat
	}
	if _, ok := report["issues"].([]any); ok {
		return Pa11yFormat
	}
	return GenericFormat
}

// Parse converts a decoded report of any supported format into normalized
// issues, preserving report order. The input is never mutated.
func Parse(report map[string]any) []models.Issue {
	switch DetectFormat(report) {
	case AxeFormat:
		return ParseAxe(report)
	case Pa11yFormat:
		return ParsePa11y(report)
	default:
		return ParseGeneric(report)
	}
}

// ParseGeneric scans the report's top-level values for the first list of
// objects exposing any of id/description/impact and maps those. Keys are
// visited in sorted order so the chosen list is deterministic.
func ParseGeneric(report map[string]any) []models.Issue {
	keys := make([]string, 0, len(report))
	for k := range report {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		list, ok := report[k].([]any)
		if !ok || len(list) == 0 {
			continue
		}
		sample, ok := list[0].(map[string]any)
		if !ok {
			continue
		}
		if !hasAnyKey(sample, "id", "description", "impact") {
			continue
		}

		issues := make([]models.Issue, 0, len(list))
		for _, raw := range list {
			item, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			issues = append(issues, models.Issue{
				ID:          stringField(item, "id", "unknown"),
				Description: stringField(item, "description", ""),
				Impact:      stringField(item, "impact", "moderate"),
				Elements:    stringList(item["elements"]),
			})
		}
		return issues
	}
	return nil
}

func hasAnyKey(m map[string]any, keys ...string) bool {
	for _, k := range keys {
		if _, ok := m[k]; ok {
			return true
		}
	}
	return false
}

// Package models contains data structures for normalized accessibility issues
// and their enrichment results.
package models

import "strings"

// Priority is the fix priority assigned to an issue.
type Priority string

// Priority levels, ordered from most to least urgent.
const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

// ValidPriorities returns all valid priority levels.
func ValidPriorities() []Priority {
	return []Priority{PriorityCritical, PriorityHigh, PriorityMedium, PriorityLow}
}

// ParsePriority converts a free-form string into a Priority, defaulting to
// medium for anything unrecognized.
func ParsePriority(s string) Priority {
	switch Priority(strings.ToLower(strings.TrimSpace(s))) {
	case PriorityCritical:
		return PriorityCritical
	case PriorityHigh:
		return PriorityHigh
	case PriorityMedium:
		return PriorityMedium
	case PriorityLow:
		return PriorityLow
	default:
		return PriorityMedium
	}
}

// PriorityFromImpact maps a scanner-reported impact tag to a priority.
// Used as the fallback when an issue carries no enrichment result.
func PriorityFromImpact(impact string) Priority {
	switch strings.ToLower(strings.TrimSpace(impact)) {
	case "critical":
		return PriorityCritical
	case "serious", "high":
		return PriorityHigh
	case "moderate", "medium":
		return PriorityMedium
	case "minor", "low":
		return PriorityLow
	default:
		return PriorityMedium
	}
}

// DefaultEffortMinutes is the per-priority effort estimate applied when an
// issue has no enrichment result.
func DefaultEffortMinutes(p Priority) int {
	switch p {
	case PriorityCritical:
		return 45
	case PriorityHigh:
		return 25
	case PriorityMedium:
		return 15
	case PriorityLow:
		return 5
	default:
		return 15
	}
}

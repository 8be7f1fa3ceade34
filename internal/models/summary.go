package models

import (
	"fmt"
	"strings"
)

// Summary aggregates one analysis run.
type Summary struct {
	TotalIssues           int    `json:"total_issues"`
	CriticalIssues        int    `json:"critical_issues"`
	HighIssues            int    `json:"high_issues"`
	MediumIssues          int    `json:"medium_issues"`
	LowIssues             int    `json:"low_issues"`
	EstimatedTotalMinutes int    `json:"estimated_total_time_minutes"`
	AIEnhancedIssues      int    `json:"ai_enhanced_issues"`
	Summary               string `json:"summary"`
}

// Summarize computes the aggregate summary for a run's enhanced issues.
func Summarize(issues []EnhancedIssue) Summary {
	var s Summary
	for i := range issues {
		e := &issues[i]
		s.TotalIssues++
		switch e.Priority() {
		case PriorityCritical:
			s.CriticalIssues++
		case PriorityHigh:
			s.HighIssues++
		case PriorityMedium:
			s.MediumIssues++
		default:
			s.LowIssues++
		}
		s.EstimatedTotalMinutes += e.EffortMinutes()
		if e.Source == SourceAIEnhanced {
			s.AIEnhancedIssues++
		}
	}

	var parts []string
	if s.CriticalIssues > 0 {
		parts = append(parts, fmt.Sprintf("%d critical", s.CriticalIssues))
	}
	if s.HighIssues > 0 {
		parts = append(parts, fmt.Sprintf("%d high", s.HighIssues))
	}
	if s.MediumIssues > 0 {
		parts = append(parts, fmt.Sprintf("%d medium", s.MediumIssues))
	}
	if s.LowIssues > 0 {
		parts = append(parts, fmt.Sprintf("%d low", s.LowIssues))
	}
	if len(parts) > 0 {
		s.Summary = strings.Join(parts, ", ") + " issues detected"
	} else {
		s.Summary = "No issues detected"
	}
	return s
}

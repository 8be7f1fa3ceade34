package models

// Source identifies where an issue's guidance came from.
type Source string

// Analysis sources.
const (
	// SourceRuleDatabase marks deterministic guidance built from the rule
	// database without any AI involvement.
	SourceRuleDatabase Source = "rule_database"

	// SourceAIEnhanced marks guidance produced by the AI provider, including
	// persistent-cache hits of earlier AI output.
	SourceAIEnhanced Source = "ai_enhanced"

	// SourceRuleBased marks the plain fallback: no enrichment attached,
	// derived fields resolve from the scanner impact tag.
	SourceRuleBased Source = "rule_based"
)

// EnhancedIssue pairs a normalized issue with its optional enrichment.
// Created during one analysis pass and never mutated afterwards.
type EnhancedIssue struct {
	Issue      Issue       `json:"issue"`
	Enrichment *Enrichment `json:"enrichment,omitempty"`
	Source     Source      `json:"analysis_source"`
}

// Priority resolves the issue's priority: the enrichment's if present,
// otherwise the impact fallback mapping.
func (e *EnhancedIssue) Priority() Priority {
	if e.Enrichment != nil && e.Enrichment.Priority != "" {
		return e.Enrichment.Priority
	}
	return PriorityFromImpact(e.Issue.Impact)
}

// EffortMinutes resolves the fix effort: the enrichment's estimate if
// present, otherwise the per-priority default.
func (e *EnhancedIssue) EffortMinutes() int {
	if e.Enrichment != nil && e.Enrichment.EffortMinutes > 0 {
		return e.Enrichment.EffortMinutes
	}
	return DefaultEffortMinutes(e.Priority())
}

// UserImpact resolves the user impact text, with a generic fallback.
func (e *EnhancedIssue) UserImpact() string {
	if e.Enrichment != nil && e.Enrichment.UserImpact != "" {
		return e.Enrichment.UserImpact
	}
	return "This accessibility issue may affect users with disabilities."
}

package models

// Issue is a normalized accessibility violation from any scanner format.
// Instances are created once during normalization and never mutated.
type Issue struct {
	// ID is the scanner-supplied rule identifier, e.g. "button-name".
	ID string `json:"id"`

	// Description is the human-readable violation description.
	Description string `json:"description"`

	// Impact is the scanner's qualitative severity tag, e.g. "critical",
	// "serious", "moderate", "minor". Free text; not validated.
	Impact string `json:"impact"`

	// Elements holds the affected element selectors, in report order.
	Elements []string `json:"elements"`
}

// Enrichment is the guidance attached to an issue, produced either
// deterministically from the rule database or by the AI provider.
type Enrichment struct {
	Priority      Priority `json:"priority"`
	UserImpact    string   `json:"user_impact"`
	FixSuggestion string   `json:"fix_suggestion"`

	// EffortMinutes is always within [1, 240].
	EffortMinutes int `json:"effort_minutes"`

	// Optional rich fields; absent fields stay zero-valued.
	CodeExample         string              `json:"code_example,omitempty"`
	WCAGRefs            []string            `json:"wcag_refs,omitempty"`
	AcceptanceCriteria  []string            `json:"acceptance_criteria,omitempty"`
	TestSteps           []string            `json:"test_steps,omitempty"`
	AutomationHints     []string            `json:"automation_hints,omitempty"`
	PersonasImpact      map[string]string   `json:"personas_impact,omitempty"`
	RootCauseHypothesis string              `json:"root_cause_hypothesis,omitempty"`
	ComponentGuess      string              `json:"component_guess,omitempty"`
	FixPlan             map[string][]string `json:"fix_plan,omitempty"`
	TicketTitle         string              `json:"ticket_title,omitempty"`
	TicketBody          string              `json:"ticket_body,omitempty"`
	Confidence          *int                `json:"confidence,omitempty"`
	RiskLevel           string              `json:"risk_level,omitempty"`
}

// ClampEffort bounds an effort estimate to [1, 240] minutes.
func ClampEffort(minutes int) int {
	if minutes < 1 {
		return 1
	}
	if minutes > 240 {
		return 240
	}
	return minutes
}

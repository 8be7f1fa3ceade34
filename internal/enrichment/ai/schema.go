package ai

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/a11y-tools/a11y-triage/internal/models"
)

// DecodeEnrichment parses a raw provider response into an Enrichment.
// Responses are untrusted: markdown fences are stripped, the outermost JSON
// object is extracted, and every field is coerced individually so one
// malformed field never discards the rest. Returns an error only when no
// JSON object can be recovered at all.
func DecodeEnrichment(raw string) (*models.Enrichment, error) {
	cleaned := extractJSON(raw)
	if cleaned == "" {
		return nil, fmt.Errorf("no JSON object in response")
	}

	var fields map[string]any
	if err := json.Unmarshal([]byte(cleaned), &fields); err != nil {
		return nil, fmt.Errorf("parsing response JSON: %w", err)
	}

	enrichment := &models.Enrichment{
		Priority:      models.ParsePriority(asString(fields["priority"], "")),
		UserImpact:    asString(fields["user_impact"], ""),
		FixSuggestion: asString(fields["fix_suggestion"], ""),
		EffortMinutes: models.ClampEffort(asInt(fields["effort_minutes"], 15)),

		CodeExample:         asString(fields["code_example"], ""),
		WCAGRefs:            asStringList(fields["wcag_refs"]),
		AcceptanceCriteria:  asStringList(fields["acceptance_criteria"]),
		TestSteps:           asStringList(fields["test_steps"]),
		AutomationHints:     asStringList(fields["automation_hints"]),
		PersonasImpact:      asStringMap(fields["personas_impact"]),
		RootCauseHypothesis: asString(fields["root_cause_hypothesis"], ""),
		ComponentGuess:      asString(fields["component_guess"], ""),
		FixPlan:             asListMap(fields["fix_plan"]),
		TicketTitle:         asString(fields["ticket_title"], ""),
		TicketBody:          asString(fields["ticket_body"], ""),
		RiskLevel:           asString(fields["risk_level"], ""),
	}
	if confidence, ok := fields["confidence"]; ok {
		c := asInt(confidence, 0)
		enrichment.Confidence = &c
	}
	return enrichment, nil
}

// Fallback returns the terminal enrichment used when a provider response
// cannot be salvaged at all.
func Fallback() *models.Enrichment {
	return &models.Enrichment{
		Priority:      models.PriorityMedium,
		UserImpact:    "May affect users with disabilities",
		FixSuggestion: "Review accessibility guidelines for this issue",
		EffortMinutes: 15,
	}
}

// extractJSON strips markdown code fences and returns the outermost JSON
// object in the text, or "" when none is present.
func extractJSON(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return ""
	}
	return s[start : end+1]
}

func asString(v any, def string) string {
	switch s := v.(type) {
	case nil:
		return def
	case string:
		return s
	default:
		return fmt.Sprint(v)
	}
}

func asInt(v any, def int) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	case string:
		if parsed, err := strconv.Atoi(strings.TrimSpace(n)); err == nil {
			return parsed
		}
	}
	return def
}

func asStringList(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, asString(item, ""))
	}
	return out
}

func asStringMap(v any) map[string]string {
	fields, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	out := make(map[string]string, len(fields))
	for key, value := range fields {
		out[key] = asString(value, "")
	}
	return out
}

func asListMap(v any) map[string][]string {
	fields, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	out := make(map[string][]string, len(fields))
	for key, value := range fields {
		out[key] = asStringList(value)
	}
	return out
}

package ai

import (
	"fmt"
	"strings"

	"github.com/a11y-tools/a11y-triage/internal/rules"
)

// PromptVersion participates in cache fingerprints. Bump it whenever the
// prompt structure changes so stale cached responses are not reused.
const PromptVersion = "v1"

// maxPromptSelectors bounds how many element selectors are quoted in the
// prompt; the rest only contribute to the count.
const maxPromptSelectors = 3

// BuildPrompt renders the analysis prompt for one issue group. Known rules
// get a compact knowledge snippet from the rule database so the model
// grounds its answer instead of guessing.
func BuildPrompt(req Request, db *rules.DB) string {
	var b strings.Builder

	b.WriteString("You are an accessibility remediation expert. Analyze this issue ")
	fmt.Fprintf(&b, "found on a %s site and respond with structured guidance.\n\n", frameworkLabel(req.Framework))

	fmt.Fprintf(&b, "Rule: %s\n", req.RuleID)
	fmt.Fprintf(&b, "Description: %s\n", req.Description)
	fmt.Fprintf(&b, "Reported impact: %s\n", req.Impact)
	fmt.Fprintf(&b, "Affected elements: %d\n", len(req.Elements))
	for i, selector := range req.Elements {
		if i >= maxPromptSelectors {
			break
		}
		fmt.Fprintf(&b, "  - %s\n", selector)
	}

	if db != nil {
		if rule := db.Get(req.RuleID); rule != nil {
			b.WriteString("\nKnown rule background:\n")
			if len(rule.WCAG) > 0 {
				fmt.Fprintf(&b, "  WCAG: %s\n", strings.Join(rule.WCAG, ", "))
			}
			if len(rule.CommonCauses) > 0 {
				fmt.Fprintf(&b, "  Common causes: %s\n", strings.Join(rule.CommonCauses, "; "))
			}
			if fix := db.FixForFramework(req.RuleID, req.Framework); fix != "" {
				fmt.Fprintf(&b, "  Baseline fix: %s\n", fix)
			}
		}
	}

	b.WriteString(`
Respond with ONLY a valid JSON object, no markdown, in this shape:
{
  "priority": "CRITICAL|HIGH|MEDIUM|LOW",
  "user_impact": "one sentence on who is blocked and how",
  "fix_suggestion": "concrete fix guidance for this framework",
  "effort_minutes": 15,
  "code_example": "short before/after snippet",
  "wcag_refs": ["1.1.1"],
  "acceptance_criteria": ["verifiable completion condition"],
  "test_steps": ["manual verification step"],
  "confidence": 80
}
`)
	fmt.Fprintf(&b, "\nPrompt-Version: %s\n", PromptVersion)
	return b.String()
}

func frameworkLabel(framework string) string {
	framework = strings.TrimSpace(strings.ToLower(framework))
	if framework == "" {
		return "html"
	}
	return framework
}

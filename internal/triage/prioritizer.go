// Package triage scores accessibility issues and decides which of them are
// worth escalating to generative enrichment under a per-run budget.
package triage

import (
	"strings"

	"github.com/a11y-tools/a11y-triage/internal/models"
	"github.com/a11y-tools/a11y-triage/internal/rules"
	"github.com/a11y-tools/a11y-triage/pkg/logger"
)

// DefaultMaxAICalls caps generative calls per run when no explicit budget
// is configured.
const DefaultMaxAICalls = 5

// Context carries the run-scoped state the gate needs.
type Context struct {
	Framework   string
	AICallsUsed int
	// MaxAICalls is the per-run AI budget; zero or negative means the
	// default of DefaultMaxAICalls.
	MaxAICalls int
}

// Prioritizer ranks issues by user impact and gates AI usage.
type Prioritizer struct {
	rules  *rules.DB
	logger logger.Logger

	criticalBlockers []string
	highImpact       []string
	criticalFlows    []string
}

// NewPrioritizer creates a prioritizer backed by the rule database.
func NewPrioritizer(db *rules.DB, log logger.Logger) *Prioritizer {
	return &Prioritizer{
		rules:  db,
		logger: log,
		criticalBlockers: []string{
			"keyboard trap", "focus management", "modal dialog",
			"form submission", "navigation", "skip link", "timeout",
		},
		highImpact: []string{
			"form label", "button name", "link purpose",
			"image alt", "headings", "landmarks", "aria",
		},
		criticalFlows: []string{
			"login", "signin", "checkout", "payment", "submit", "buy", "purchase",
			"register", "signup", "contact", "search", "nav", "menu",
		},
	}
}

// ShouldEnrich decides whether an issue is escalated to generative
// enrichment. Evaluation order is fixed: budget exhaustion wins over
// everything, then unknown rules, then the rule's requires-AI flag.
func (p *Prioritizer) ShouldEnrich(issue models.Issue, ctx Context) bool {
	maxCalls := ctx.MaxAICalls
	if maxCalls <= 0 {
		maxCalls = DefaultMaxAICalls
	}
	if ctx.AICallsUsed >= maxCalls {
		p.logger.Debug("AI budget exhausted, using rule database",
			"used", ctx.AICallsUsed, "max", maxCalls)
		return false
	}

	if !p.rules.Has(issue.ID) {
		p.logger.Debug("unknown rule, escalating to AI", "rule_id", issue.ID)
		return true
	}

	if p.rules.RequiresAI(issue.ID) {
		p.logger.Debug("rule requires context-specific AI analysis", "rule_id", issue.ID)
		return true
	}

	return false
}

// Score computes a 0-100 urgency score for an issue, independent of the
// gating decision. Combines scanner impact, description patterns, critical
// user flows, and affected element count.
func (p *Prioritizer) Score(issue models.Issue) int {
	score := baseImpactScore(issue.Impact)

	description := strings.ToLower(issue.Description)
	for _, pattern := range p.criticalBlockers {
		if strings.Contains(description, pattern) {
			score += 40
			break
		}
	}
	for _, pattern := range p.highImpact {
		if strings.Contains(description, pattern) {
			score += 25
			break
		}
	}

	if p.inCriticalFlow(issue) {
		score += 20
	}

	switch count := len(issue.Elements); {
	case count > 10:
		score += 15
	case count > 5:
		score += 10
	case count > 1:
		score += 5
	}

	if score > 100 {
		score = 100
	}
	return score
}

func baseImpactScore(impact string) int {
	switch strings.ToLower(impact) {
	case "critical":
		return 80
	case "serious":
		return 60
	case "moderate":
		return 30
	case "minor":
		return 10
	default:
		return 20
	}
}

func (p *Prioritizer) inCriticalFlow(issue models.Issue) bool {
	for _, element := range issue.Elements {
		lower := strings.ToLower(element)
		for _, keyword := range p.criticalFlows {
			if strings.Contains(lower, keyword) {
				return true
			}
		}
	}
	return false
}

// ScoreToPriority maps an urgency score to a priority level.
func ScoreToPriority(score int) models.Priority {
	switch {
	case score >= 80:
		return models.PriorityCritical
	case score >= 60:
		return models.PriorityHigh
	case score >= 30:
		return models.PriorityMedium
	default:
		return models.PriorityLow
	}
}

// EstimateFixTime estimates fix effort in minutes from priority and the
// number of affected elements.
func EstimateFixTime(issue models.Issue, priority models.Priority) int {
	base := models.DefaultEffortMinutes(priority)

	multiplier := 1.0
	switch count := len(issue.Elements); {
	case count > 10:
		multiplier = 2.0
	case count > 5:
		multiplier = 1.5
	}
	return int(float64(base) * multiplier)
}

// UserImpactText returns a human-readable impact description for a
// priority level.
func UserImpactText(priority models.Priority) string {
	switch priority {
	case models.PriorityCritical:
		return "Completely blocks users with disabilities from completing tasks"
	case models.PriorityHigh:
		return "Significantly hinders user experience for people with disabilities"
	case models.PriorityMedium:
		return "Causes inconvenience and extra effort for some users"
	default:
		return "Minor usability issue that could be improved"
	}
}

// Package rules provides the static WCAG rule knowledge base: instant,
// deterministic guidance for common accessibility rules without AI calls.
// The table is loaded once and is read-only afterwards, so concurrent reads
// need no synchronization.
package rules

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed rules.yaml
var defaultRules []byte

// Rule holds the knowledge-base entry for one rule id.
type Rule struct {
	Severity       string            `yaml:"severity"`
	UserImpact     string            `yaml:"user_impact"`
	WCAG           []string          `yaml:"wcag"`
	CommonCauses   []string          `yaml:"common_causes"`
	EffortMinutes  int               `yaml:"effort_minutes"`
	RequiresAI     bool              `yaml:"requires_ai"`
	FixByFramework map[string]string `yaml:"fix_by_framework"`
}

// Stats describes the loaded rule table.
type Stats struct {
	TotalRules         int     `json:"total_rules"`
	RequiresAI         int     `json:"requires_ai"`
	RuleBased          int     `json:"rule_based"`
	CoveragePercentage float64 `json:"coverage_percentage"`
}

// DB is the in-memory rule lookup table.
type DB struct {
	rules map[string]*Rule
}

// Load parses a YAML rule table.
func Load(data []byte) (*DB, error) {
	rules := make(map[string]*Rule)
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("parsing rules database: %w", err)
	}
	// Normalize keys so lookups are case- and whitespace-insensitive.
	normalized := make(map[string]*Rule, len(rules))
	for id, rule := range rules {
		normalized[normalizeID(id)] = rule
	}
	return &DB{rules: normalized}, nil
}

// LoadDefault loads the embedded rule table.
func LoadDefault() (*DB, error) {
	return Load(defaultRules)
}

// LoadFile loads a rule table from disk, for operator-supplied overrides.
func LoadFile(path string) (*DB, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rules database: %w", err)
	}
	return Load(data)
}

func normalizeID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

// Get returns the rule for an id, or nil if unknown.
func (db *DB) Get(ruleID string) *Rule {
	return db.rules[normalizeID(ruleID)]
}

// Has reports whether the rule exists in the table.
func (db *DB) Has(ruleID string) bool {
	return db.Get(ruleID) != nil
}

// FixForFramework returns the framework-specific fix text. Unknown
// frameworks fall back to the "html" variant; missing both yields "".
func (db *DB) FixForFramework(ruleID, framework string) string {
	rule := db.Get(ruleID)
	if rule == nil {
		return ""
	}
	if fix, ok := rule.FixByFramework[normalizeID(framework)]; ok {
		return fix
	}
	return rule.FixByFramework["html"]
}

// EffortEstimate returns the estimated fix effort in minutes, defaulting to
// 5 for unknown rules.
func (db *DB) EffortEstimate(ruleID string) int {
	rule := db.Get(ruleID)
	if rule == nil || rule.EffortMinutes == 0 {
		return 5
	}
	return rule.EffortMinutes
}

// RequiresAI reports whether the rule needs generative enrichment. Unknown
// rules always escalate.
func (db *DB) RequiresAI(ruleID string) bool {
	rule := db.Get(ruleID)
	if rule == nil {
		return true
	}
	return rule.RequiresAI
}

// WCAGReferences returns the WCAG success criteria for the rule.
func (db *DB) WCAGReferences(ruleID string) []string {
	rule := db.Get(ruleID)
	if rule == nil {
		return nil
	}
	return rule.WCAG
}

// UserImpact returns the user impact description, with a generic default
// for unknown rules.
func (db *DB) UserImpact(ruleID string) string {
	rule := db.Get(ruleID)
	if rule == nil || rule.UserImpact == "" {
		return "This issue may affect users with disabilities."
	}
	return rule.UserImpact
}

// IDs returns all rule ids in the table.
func (db *DB) IDs() []string {
	ids := make([]string, 0, len(db.rules))
	for id := range db.rules {
		ids = append(ids, id)
	}
	return ids
}

// Stats summarizes the rule table.
func (db *DB) Stats() Stats {
	s := Stats{TotalRules: len(db.rules)}
	for _, rule := range db.rules {
		if rule.RequiresAI {
			s.RequiresAI++
		}
	}
	s.RuleBased = s.TotalRules - s.RequiresAI
	if s.TotalRules > 0 {
		s.CoveragePercentage = float64(s.RuleBased) / float64(s.TotalRules) * 100
	}
	return s
}

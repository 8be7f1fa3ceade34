// Package analyzer orchestrates the enrichment pipeline: normalization,
// deduplication, cache consultation, rule-database lookup, and budgeted AI
// escalation, producing enhanced issues in report order.
package analyzer

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"

	"github.com/a11y-tools/a11y-triage/internal/adapters"
	"github.com/a11y-tools/a11y-triage/internal/enrichment/ai"
	"github.com/a11y-tools/a11y-triage/internal/enrichment/cache"
	"github.com/a11y-tools/a11y-triage/internal/models"
	"github.com/a11y-tools/a11y-triage/internal/rules"
	"github.com/a11y-tools/a11y-triage/internal/triage"
	"github.com/a11y-tools/a11y-triage/pkg/logger"
)

// maxAIFailures is the per-run circuit breaker threshold: after this many
// provider failures, the rest of the run stays on deterministic paths.
const maxAIFailures = 5

// maxGroupDescription bounds the description portion of the dedup key.
const maxGroupDescription = 200

// maxGroupSelectors bounds how many selectors participate in the dedup key.
const maxGroupSelectors = 3

// Options configures a single analysis run.
type Options struct {
	// UseAI enables the generative path. Without it every issue resolves
	// deterministically.
	UseAI bool

	// MaxAIIssues caps the distinct issue groups routed to the provider.
	// Nil leaves routing bounded only by the gate's default budget; an
	// explicit zero disables provider calls entirely.
	MaxAIIssues *int

	// Framework selects fix guidance, e.g. "react". Empty means "html".
	Framework string

	// URL is the scanned page, carried through for reporting only.
	URL string
}

// UsageStats reports how a run's issues were resolved.
type UsageStats struct {
	AICallsUsed      int     `json:"ai_calls_used"`
	MaxAICalls       int     `json:"max_ai_calls"`
	RemainingBudget  int     `json:"remaining_budget"`
	RuleDatabaseHits int     `json:"rule_database_hits"`
	FallbackCount    int     `json:"fallback_count"`
	CacheHits        int     `json:"cache_hits"`
	AIFailures       int     `json:"ai_failures"`
	AIDisabled       bool    `json:"ai_disabled"`
	AIUsagePercent   float64 `json:"ai_usage_percent"`
	RuleDBPercent    float64 `json:"rule_db_percent"`
}

// Result is the outcome of one analysis run.
type Result struct {
	RunID   string                 `json:"run_id"`
	URL     string                 `json:"url,omitempty"`
	Issues  []models.EnhancedIssue `json:"issues"`
	Summary models.Summary         `json:"summary"`
	Stats   UsageStats             `json:"stats"`
}

// Analyzer coordinates the enrichment collaborators. Cache and provider are
// optional; a nil cache disables persistence and a nil provider disables AI.
type Analyzer struct {
	rules       *rules.DB
	prioritizer *triage.Prioritizer
	cache       cache.Store
	provider    ai.Provider
	logger      logger.Logger
}

// New creates an analyzer.
func New(db *rules.DB, store cache.Store, provider ai.Provider, log logger.Logger) *Analyzer {
	return &Analyzer{
		rules:       db,
		prioritizer: triage.NewPrioritizer(db, log),
		cache:       store,
		provider:    provider,
		logger:      log,
	}
}

// runState tracks per-run counters and the in-run deduplication cache.
// A fresh runState per run keeps concurrent runs safe by construction.
type runState struct {
	gateMax     int  // budget the gate sees
	groupBudget *int // explicit cap on provider-routed groups

	aiCallsUsed int // successful provider results
	aiRouted    int // groups routed to the provider, success or not
	aiFailures  int
	aiDisabled  bool

	ruleDBHits int
	fallbacks  int
	cacheHits  int

	resolved map[string]resolution
}

type resolution struct {
	enrichment *models.Enrichment
	source     models.Source
}

// AnalyzeReport normalizes a decoded scanner report and analyzes it.
func (a *Analyzer) AnalyzeReport(ctx context.Context, report map[string]any, opts Options) (*Result, error) {
	issues := adapters.Parse(report)
	return a.AnalyzeIssues(ctx, issues, opts)
}

// AnalyzeIssues runs the enrichment pipeline over normalized issues. Output
// order matches input order. Duplicate issue groups reuse the first group
// member's resolution, so each distinct group costs at most one cache,
// rule-DB, or AI round trip.
func (a *Analyzer) AnalyzeIssues(ctx context.Context, issues []models.Issue, opts Options) (*Result, error) {
	run := &runState{
		gateMax:     triage.DefaultMaxAICalls,
		groupBudget: opts.MaxAIIssues,
		resolved:    make(map[string]resolution),
	}
	if opts.MaxAIIssues != nil && *opts.MaxAIIssues > 0 {
		run.gateMax = *opts.MaxAIIssues
	}

	runID := uuid.NewString()
	log := a.logger.With("run_id", runID)
	log.Info("starting analysis",
		"issues", len(issues), "use_ai", opts.UseAI, "framework", opts.Framework)

	enhanced := make([]models.EnhancedIssue, 0, len(issues))
	for _, issue := range issues {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		key := groupKey(issue)
		res, seen := run.resolved[key]
		if !seen {
			res = a.resolve(ctx, issue, opts, run, log)
			run.resolved[key] = res
		}
		enhanced = append(enhanced, models.EnhancedIssue{
			Issue:      issue,
			Enrichment: res.enrichment,
			Source:     res.source,
		})
	}

	result := &Result{
		RunID:   runID,
		URL:     opts.URL,
		Issues:  enhanced,
		Summary: models.Summarize(enhanced),
		Stats:   run.stats(),
	}
	log.Info("analysis complete",
		"total", result.Summary.TotalIssues,
		"critical", result.Summary.CriticalIssues,
		"rule_db_hits", run.ruleDBHits,
		"ai_calls", run.aiCallsUsed,
		"fallbacks", run.fallbacks)
	return result, nil
}

// resolve produces the enrichment for one distinct issue group, in fixed
// order: persistent cache, rule database, gate, budget, provider. Anything
// that falls through emits the plain rule-based fallback.
func (a *Analyzer) resolve(ctx context.Context, issue models.Issue, opts Options, run *runState, log logger.Logger) resolution {
	if res, ok := a.lookupCache(ctx, issue, opts.Framework, run, log); ok {
		return res
	}

	if enrichment := a.ruleDatabaseEnrichment(issue, opts.Framework); enrichment != nil {
		run.ruleDBHits++
		return resolution{enrichment: enrichment, source: models.SourceRuleDatabase}
	}

	gate := triage.Context{
		Framework:   opts.Framework,
		AICallsUsed: run.aiCallsUsed,
		MaxAICalls:  run.gateMax,
	}
	if a.aiUsable(opts, run) && a.prioritizer.ShouldEnrich(issue, gate) && run.budgetOpen() {
		return a.resolveAI(ctx, issue, opts, run, log)
	}

	run.fallbacks++
	return resolution{source: models.SourceRuleBased}
}

func (a *Analyzer) aiUsable(opts Options, run *runState) bool {
	return opts.UseAI && !run.aiDisabled && a.provider != nil && a.provider.Available()
}

// budgetOpen reports whether the explicit group budget, when set, still has
// room for another provider-routed group.
func (r *runState) budgetOpen() bool {
	return r.groupBudget == nil || r.aiRouted < *r.groupBudget
}

// lookupCache consults the persistent cache. Read failures and corrupt
// entries degrade to a miss; the cache is an accelerator, never a gate.
func (a *Analyzer) lookupCache(ctx context.Context, issue models.Issue, framework string, run *runState, log logger.Logger) (resolution, bool) {
	if a.cache == nil {
		return resolution{}, false
	}

	key := fingerprintKey(issue, framework)
	value, ok, err := a.cache.Get(ctx, key)
	if err != nil {
		log.Warn("cache read failed", "rule_id", issue.ID, "error", err)
		return resolution{}, false
	}
	if !ok {
		return resolution{}, false
	}

	var enrichment models.Enrichment
	if err := json.Unmarshal([]byte(value), &enrichment); err != nil {
		log.Warn("discarding corrupt cache entry", "rule_id", issue.ID, "error", err)
		return resolution{}, false
	}

	run.cacheHits++
	log.Debug("cache hit", "rule_id", issue.ID)
	return resolution{enrichment: &enrichment, source: models.SourceAIEnhanced}, true
}

// resolveAI routes one group to the provider. A failure counts toward the
// circuit breaker and degrades to the rule-based fallback; only successes
// consume the gate's call budget.
func (a *Analyzer) resolveAI(ctx context.Context, issue models.Issue, opts Options, run *runState, log logger.Logger) resolution {
	run.aiRouted++

	enrichment, err := a.provider.Analyze(ctx, ai.Request{
		Description: issue.Description,
		Elements:    issue.Elements,
		Impact:      issue.Impact,
		RuleID:      issue.ID,
		Framework:   opts.Framework,
	})
	if err != nil {
		run.aiFailures++
		run.fallbacks++
		log.Warn("AI analysis failed", "rule_id", issue.ID,
			"failures", run.aiFailures, "error", err)
		if run.aiFailures >= maxAIFailures {
			run.aiDisabled = true
			log.Warn("AI failure threshold reached, disabling AI for this run")
		}
		return resolution{source: models.SourceRuleBased}
	}

	enrichment.EffortMinutes = models.ClampEffort(enrichment.EffortMinutes)
	run.aiCallsUsed++

	if a.cache != nil {
		if payload, err := json.Marshal(enrichment); err == nil {
			if err := a.cache.Set(ctx, fingerprintKey(issue, opts.Framework), string(payload)); err != nil {
				log.Warn("cache write failed", "rule_id", issue.ID, "error", err)
			}
		}
	}
	return resolution{enrichment: enrichment, source: models.SourceAIEnhanced}
}

// ruleDatabaseEnrichment builds deterministic guidance for rules the table
// fully covers; rules that are unknown or flagged for AI return nil.
func (a *Analyzer) ruleDatabaseEnrichment(issue models.Issue, framework string) *models.Enrichment {
	if !a.rules.Has(issue.ID) || a.rules.RequiresAI(issue.ID) {
		return nil
	}
	rule := a.rules.Get(issue.ID)
	enrichment := &models.Enrichment{
		Priority:      models.PriorityFromImpact(rule.Severity),
		UserImpact:    a.rules.UserImpact(issue.ID),
		FixSuggestion: a.rules.FixForFramework(issue.ID, framework),
		EffortMinutes: models.ClampEffort(a.rules.EffortEstimate(issue.ID)),
		WCAGRefs:      a.rules.WCAGReferences(issue.ID),
	}
	if enrichment.FixSuggestion == "" {
		enrichment.FixSuggestion = "Review accessibility guidelines for this issue"
	}
	return enrichment
}

func (r *runState) stats() UsageStats {
	stats := UsageStats{
		AICallsUsed:      r.aiCallsUsed,
		MaxAICalls:       r.gateMax,
		RemainingBudget:  r.gateMax - r.aiCallsUsed,
		RuleDatabaseHits: r.ruleDBHits,
		FallbackCount:    r.fallbacks,
		CacheHits:        r.cacheHits,
		AIFailures:       r.aiFailures,
		AIDisabled:       r.aiDisabled,
	}
	if stats.RemainingBudget < 0 {
		stats.RemainingBudget = 0
	}
	total := r.aiCallsUsed + r.cacheHits + r.ruleDBHits + r.fallbacks
	if total > 0 {
		stats.AIUsagePercent = float64(r.aiCallsUsed+r.cacheHits) / float64(total) * 100
		stats.RuleDBPercent = float64(r.ruleDBHits) / float64(total) * 100
	}
	return stats
}

// groupKey identifies an issue group for in-run deduplication: rule id,
// truncated description, impact, and the first few selectors, all
// case-insensitive.
func groupKey(issue models.Issue) string {
	return cache.Key(groupParts(issue)...)
}

// fingerprintKey extends the group identity with framework and prompt
// version for persistent cache addressing.
func fingerprintKey(issue models.Issue, framework string) string {
	parts := append(groupParts(issue), strings.ToLower(framework), ai.PromptVersion)
	return cache.Key(parts...)
}

func groupParts(issue models.Issue) []string {
	description := strings.ToLower(issue.Description)
	if len(description) > maxGroupDescription {
		description = description[:maxGroupDescription]
	}
	parts := []string{
		strings.ToLower(issue.ID),
		description,
		strings.ToLower(issue.Impact),
	}
	for i, selector := range issue.Elements {
		if i >= maxGroupSelectors {
			break
		}
		parts = append(parts, selector)
	}
	return parts
}

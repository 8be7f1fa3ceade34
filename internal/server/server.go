// Package server exposes the triage pipeline over HTTP: report analysis,
// health, and cache maintenance endpoints.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/a11y-tools/a11y-triage/internal/analyzer"
	"github.com/a11y-tools/a11y-triage/internal/enrichment/cache"
	"github.com/a11y-tools/a11y-triage/internal/models"
	"github.com/a11y-tools/a11y-triage/internal/rules"
	"github.com/a11y-tools/a11y-triage/pkg/logger"
)

// maxRequestBody bounds accepted report payloads.
const maxRequestBody = 10 << 20 // 10 MiB

// Server handles the HTTP API.
type Server struct {
	analyzer    *analyzer.Analyzer
	cache       cache.Store
	rules       *rules.DB
	aiAvailable bool
	logger      logger.Logger
}

// New creates the HTTP server. The cache store may be nil when persistence
// is disabled; the cache routes then return 404.
func New(a *analyzer.Analyzer, store cache.Store, db *rules.DB, aiAvailable bool, log logger.Logger) *Server {
	return &Server{
		analyzer:    a,
		cache:       store,
		rules:       db,
		aiAvailable: aiAvailable,
		logger:      log,
	}
}

// Router builds the chi router with middleware and all routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handle(s.handleHealth))
	r.Post("/analyze", s.handle(s.handleAnalyze))
	r.Get("/rules/stats", s.handle(s.handleRuleStats))

	if s.cache != nil {
		r.Route("/cache", func(r chi.Router) {
			r.Get("/stats", s.handle(s.handleCacheStats))
			r.Post("/cleanup", s.handle(s.handleCacheCleanup))
			r.Delete("/", s.handle(s.handleCacheClear))
		})
	}
	return r
}

// apiError carries an HTTP status alongside the message.
type apiError struct {
	status  int
	message string
}

func (e *apiError) Error() string { return e.message }

func badRequest(format string, args ...any) error {
	return &apiError{status: http.StatusBadRequest, message: fmt.Sprintf(format, args...)}
}

// handle adapts an error-returning handler, logging failures and rendering
// them as JSON.
func (s *Server) handle(fn func(w http.ResponseWriter, r *http.Request) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := fn(w, r); err != nil {
			status := http.StatusInternalServerError
			var apiErr *apiError
			if errors.As(err, &apiErr) {
				status = apiErr.status
			}
			if status >= http.StatusInternalServerError {
				s.logger.Error("request failed", "path", r.URL.Path, "error", err)
			}
			writeJSON(w, status, map[string]string{"error": err.Error()})
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) error {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":        "ok",
		"ai_configured": s.aiAvailable,
	})
	return nil
}

// analyzeRequest is the /analyze payload.
type analyzeRequest struct {
	Report      map[string]any `json:"report"`
	Framework   string         `json:"framework"`
	UseAI       *bool          `json:"use_ai"`
	MaxAIIssues *int           `json:"max_ai_issues"`
	URL         string         `json:"url"`
}

// issueOut is the flattened per-issue response shape.
type issueOut struct {
	RuleID        string   `json:"rule_id"`
	Priority      string   `json:"priority"`
	UserImpact    string   `json:"user_impact"`
	FixSuggestion string   `json:"fix_suggestion"`
	EffortMinutes int      `json:"effort_minutes"`
	WCAGRefs      []string `json:"wcag_refs"`
	Selector      string   `json:"selector"`
	Source        string   `json:"source"`
}

type analyzeResponse struct {
	RunID   string             `json:"run_id"`
	Summary models.Summary     `json:"summary"`
	Issues  []issueOut         `json:"issues"`
	Stats   analyzer.UsageStats `json:"stats"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) error {
	var req analyzeRequest
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err := decoder.Decode(&req); err != nil {
		return badRequest("invalid request body: %v", err)
	}
	if req.Report == nil {
		return badRequest("missing report")
	}

	useAI := true
	if req.UseAI != nil {
		useAI = *req.UseAI
	}

	result, err := s.analyzer.AnalyzeReport(r.Context(), req.Report, analyzer.Options{
		UseAI:       useAI,
		MaxAIIssues: req.MaxAIIssues,
		Framework:   req.Framework,
		URL:         req.URL,
	})
	if err != nil {
		return fmt.Errorf("analyzing report: %w", err)
	}

	issues := make([]issueOut, 0, len(result.Issues))
	for i := range result.Issues {
		issues = append(issues, flattenIssue(&result.Issues[i]))
	}
	writeJSON(w, http.StatusOK, analyzeResponse{
		RunID:   result.RunID,
		Summary: result.Summary,
		Issues:  issues,
		Stats:   result.Stats,
	})
	return nil
}

func flattenIssue(issue *models.EnhancedIssue) issueOut {
	out := issueOut{
		RuleID:        issue.Issue.ID,
		Priority:      string(issue.Priority()),
		UserImpact:    issue.UserImpact(),
		EffortMinutes: issue.EffortMinutes(),
		Source:        string(issue.Source),
	}
	if len(issue.Issue.Elements) > 0 {
		out.Selector = issue.Issue.Elements[0]
	}
	if issue.Enrichment != nil {
		out.FixSuggestion = issue.Enrichment.FixSuggestion
		out.WCAGRefs = issue.Enrichment.WCAGRefs
	}
	if out.WCAGRefs == nil {
		out.WCAGRefs = []string{}
	}
	return out
}

func (s *Server) handleRuleStats(w http.ResponseWriter, _ *http.Request) error {
	writeJSON(w, http.StatusOK, s.rules.Stats())
	return nil
}

func (s *Server) handleCacheStats(w http.ResponseWriter, r *http.Request) error {
	stats, err := s.cache.Stats(r.Context())
	if err != nil {
		return fmt.Errorf("reading cache stats: %w", err)
	}
	writeJSON(w, http.StatusOK, stats)
	return nil
}

func (s *Server) handleCacheCleanup(w http.ResponseWriter, r *http.Request) error {
	removed, err := s.cache.CleanupExpired(r.Context())
	if err != nil {
		return fmt.Errorf("cleaning cache: %w", err)
	}
	writeJSON(w, http.StatusOK, map[string]int64{"removed": removed})
	return nil
}

func (s *Server) handleCacheClear(w http.ResponseWriter, r *http.Request) error {
	removed, err := s.cache.Clear(r.Context())
	if err != nil {
		return fmt.Errorf("clearing cache: %w", err)
	}
	writeJSON(w, http.StatusOK, map[string]int64{"removed": removed})
	return nil
}

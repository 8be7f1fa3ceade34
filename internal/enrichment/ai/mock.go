package ai

import (
	"context"
	"sync"

	"github.com/a11y-tools/a11y-triage/internal/models"
)

// MockProvider is a configurable Provider for testing.
type MockProvider struct {
	mu sync.Mutex

	// AnalyzeFunc overrides Analyze when set.
	AnalyzeFunc func(ctx context.Context, req Request) (*models.Enrichment, error)

	// Result is returned by the default Analyze when AnalyzeFunc is nil.
	Result *models.Enrichment

	// Err is returned by the default Analyze when set.
	Err error

	// Unavailable makes Available return false.
	Unavailable bool

	Calls []Request
}

// NewMockProvider returns a provider answering every request with a fixed
// high-priority result.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		Result: &models.Enrichment{
			Priority:      models.PriorityHigh,
			UserImpact:    "Mock impact",
			FixSuggestion: "Mock fix",
			EffortMinutes: 10,
		},
	}
}

// Analyze implements Provider.
func (m *MockProvider) Analyze(ctx context.Context, req Request) (*models.Enrichment, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, req)
	m.mu.Unlock()

	if m.AnalyzeFunc != nil {
		return m.AnalyzeFunc(ctx, req)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Result, nil
}

// Available implements Provider.
func (m *MockProvider) Available() bool {
	return !m.Unavailable
}

// CallCount returns how many Analyze calls were made.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

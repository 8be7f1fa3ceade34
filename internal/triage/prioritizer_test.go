package triage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a11y-tools/a11y-triage/internal/models"
	"github.com/a11y-tools/a11y-triage/internal/rules"
	"github.com/a11y-tools/a11y-triage/pkg/logger"
)

func newTestPrioritizer(t *testing.T) *Prioritizer {
	t.Helper()
	db, err := rules.LoadDefault()
	require.NoError(t, err)
	return NewPrioritizer(db, logger.NewMockLogger())
}

func TestShouldEnrich(t *testing.T) {
	p := newTestPrioritizer(t)

	tests := []struct {
		name  string
		issue models.Issue
		ctx   Context
		want  bool
	}{
		{
			name:  "known rule without AI flag",
			issue: models.Issue{ID: "button-name"},
			ctx:   Context{},
			want:  false,
		},
		{
			name:  "unknown rule escalates",
			issue: models.Issue{ID: "weird-custom-rule"},
			ctx:   Context{},
			want:  true,
		},
		{
			name:  "requires-ai rule escalates",
			issue: models.Issue{ID: "color-contrast"},
			ctx:   Context{},
			want:  true,
		},
		{
			name:  "budget exhaustion beats unknown rule",
			issue: models.Issue{ID: "weird-custom-rule"},
			ctx:   Context{AICallsUsed: 5},
			want:  false,
		},
		{
			name:  "budget exhaustion beats requires-ai",
			issue: models.Issue{ID: "color-contrast"},
			ctx:   Context{AICallsUsed: 3, MaxAICalls: 3},
			want:  false,
		},
		{
			name:  "explicit budget still open",
			issue: models.Issue{ID: "color-contrast"},
			ctx:   Context{AICallsUsed: 3, MaxAICalls: 10},
			want:  true,
		},
		{
			name:  "zero max falls back to default",
			issue: models.Issue{ID: "color-contrast"},
			ctx:   Context{AICallsUsed: 4, MaxAICalls: 0},
			want:  true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.ShouldEnrich(tt.issue, tt.ctx))
		})
	}
}

func TestScore(t *testing.T) {
	p := newTestPrioritizer(t)

	tests := []struct {
		name  string
		issue models.Issue
		want  int
	}{
		{
			name:  "minor issue, one element",
			issue: models.Issue{Impact: "minor", Description: "small problem", Elements: []string{"#x"}},
			want:  10,
		},
		{
			name:  "unknown impact baseline",
			issue: models.Issue{Impact: "", Description: "something"},
			want:  20,
		},
		{
			name: "critical blocker phrase",
			issue: models.Issue{
				Impact:      "moderate",
				Description: "keyboard trap in dialog",
			},
			want: 30 + 40,
		},
		{
			name: "high impact phrase",
			issue: models.Issue{
				Impact:      "moderate",
				Description: "missing form label on input",
			},
			want: 30 + 25,
		},
		{
			name: "critical flow selector",
			issue: models.Issue{
				Impact:      "minor",
				Description: "small problem",
				Elements:    []string{"#checkout-button"},
			},
			want: 10 + 20,
		},
		{
			name: "element count bumps",
			issue: models.Issue{
				Impact:      "minor",
				Description: "styling issue",
				Elements:    []string{"#a1", "#a2", "#a3"},
			},
			want: 10 + 5,
		},
		{
			name: "capped at 100",
			issue: models.Issue{
				Impact:      "critical",
				Description: "keyboard trap prevents form label interaction",
				Elements: []string{
					"#login-1", "#b2", "#b3", "#b4", "#b5", "#b6",
					"#b7", "#b8", "#b9", "#b10", "#b11",
				},
			},
			want: 100,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.Score(tt.issue))
		})
	}
}

func TestScoreToPriority(t *testing.T) {
	assert.Equal(t, models.PriorityCritical, ScoreToPriority(100))
	assert.Equal(t, models.PriorityCritical, ScoreToPriority(80))
	assert.Equal(t, models.PriorityHigh, ScoreToPriority(79))
	assert.Equal(t, models.PriorityHigh, ScoreToPriority(60))
	assert.Equal(t, models.PriorityMedium, ScoreToPriority(59))
	assert.Equal(t, models.PriorityMedium, ScoreToPriority(30))
	assert.Equal(t, models.PriorityLow, ScoreToPriority(29))
	assert.Equal(t, models.PriorityLow, ScoreToPriority(0))
}

func TestEstimateFixTime(t *testing.T) {
	few := models.Issue{Elements: []string{"#a"}}
	some := models.Issue{Elements: make([]string, 6)}
	many := models.Issue{Elements: make([]string, 11)}

	assert.Equal(t, 45, EstimateFixTime(few, models.PriorityCritical))
	assert.Equal(t, 37, EstimateFixTime(some, models.PriorityCritical))
	assert.Equal(t, 90, EstimateFixTime(many, models.PriorityCritical))
	assert.Equal(t, 25, EstimateFixTime(few, models.PriorityHigh))
	assert.Equal(t, 7, EstimateFixTime(some, models.PriorityLow))
}

func TestUserImpactText(t *testing.T) {
	for _, priority := range models.ValidPriorities() {
		assert.NotEmpty(t, UserImpactText(priority))
	}
	assert.Contains(t, UserImpactText(models.PriorityCritical), "blocks")
}

package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a11y-tools/a11y-triage/internal/models"
)

func TestDecodeEnrichment(t *testing.T) {
	raw := `{
		"priority": "HIGH",
		"user_impact": "Screen reader users cannot submit the form",
		"fix_suggestion": "Add an accessible name to the button",
		"effort_minutes": 20,
		"code_example": "<button aria-label=\"Submit\">",
		"wcag_refs": ["4.1.2"],
		"acceptance_criteria": ["Button announces its purpose"],
		"test_steps": ["Tab to the button", "Verify the announcement"],
		"confidence": 85
	}`

	enrichment, err := DecodeEnrichment(raw)
	require.NoError(t, err)

	assert.Equal(t, models.PriorityHigh, enrichment.Priority)
	assert.Equal(t, "Screen reader users cannot submit the form", enrichment.UserImpact)
	assert.Equal(t, 20, enrichment.EffortMinutes)
	assert.Equal(t, []string{"4.1.2"}, enrichment.WCAGRefs)
	assert.Len(t, enrichment.TestSteps, 2)
	require.NotNil(t, enrichment.Confidence)
	assert.Equal(t, 85, *enrichment.Confidence)
}

func TestDecodeEnrichmentStripsMarkdownFences(t *testing.T) {
	raw := "```json\n{\"priority\": \"critical\", \"effort_minutes\": 5}\n```"
	enrichment, err := DecodeEnrichment(raw)
	require.NoError(t, err)
	assert.Equal(t, models.PriorityCritical, enrichment.Priority)
	assert.Equal(t, 5, enrichment.EffortMinutes)
}

func TestDecodeEnrichmentExtractsEmbeddedObject(t *testing.T) {
	raw := `Here is my analysis: {"priority": "low", "fix_suggestion": "fix it"} hope it helps`
	enrichment, err := DecodeEnrichment(raw)
	require.NoError(t, err)
	assert.Equal(t, models.PriorityLow, enrichment.Priority)
	assert.Equal(t, "fix it", enrichment.FixSuggestion)
}

func TestDecodeEnrichmentCoercion(t *testing.T) {
	t.Run("effort as string", func(t *testing.T) {
		enrichment, err := DecodeEnrichment(`{"effort_minutes": "25"}`)
		require.NoError(t, err)
		assert.Equal(t, 25, enrichment.EffortMinutes)
	})

	t.Run("effort clamped to bounds", func(t *testing.T) {
		enrichment, err := DecodeEnrichment(`{"effort_minutes": 1000}`)
		require.NoError(t, err)
		assert.Equal(t, 240, enrichment.EffortMinutes)

		enrichment, err = DecodeEnrichment(`{"effort_minutes": -5}`)
		require.NoError(t, err)
		assert.Equal(t, 1, enrichment.EffortMinutes)
	})

	t.Run("non-numeric effort uses default", func(t *testing.T) {
		enrichment, err := DecodeEnrichment(`{"effort_minutes": "soon"}`)
		require.NoError(t, err)
		assert.Equal(t, 15, enrichment.EffortMinutes)
	})

	t.Run("unrecognized priority becomes medium", func(t *testing.T) {
		enrichment, err := DecodeEnrichment(`{"priority": "URGENT!!"}`)
		require.NoError(t, err)
		assert.Equal(t, models.PriorityMedium, enrichment.Priority)
	})

	t.Run("list with mixed types", func(t *testing.T) {
		enrichment, err := DecodeEnrichment(`{"wcag_refs": ["1.1.1", 4.12]}`)
		require.NoError(t, err)
		assert.Equal(t, []string{"1.1.1", "4.12"}, enrichment.WCAGRefs)
	})

	t.Run("nested maps", func(t *testing.T) {
		enrichment, err := DecodeEnrichment(`{
			"personas_impact": {"screen_reader": "blocked"},
			"fix_plan": {"short_term": ["add aria-label"]}
		}`)
		require.NoError(t, err)
		assert.Equal(t, "blocked", enrichment.PersonasImpact["screen_reader"])
		assert.Equal(t, []string{"add aria-label"}, enrichment.FixPlan["short_term"])
	})
}

func TestDecodeEnrichmentErrors(t *testing.T) {
	_, err := DecodeEnrichment("I could not analyze this issue.")
	assert.Error(t, err)

	_, err = DecodeEnrichment("")
	assert.Error(t, err)

	_, err = DecodeEnrichment(`{"priority": broken}`)
	assert.Error(t, err)
}

func TestFallback(t *testing.T) {
	fallback := Fallback()
	assert.Equal(t, models.PriorityMedium, fallback.Priority)
	assert.Equal(t, 15, fallback.EffortMinutes)
	assert.NotEmpty(t, fallback.UserImpact)
	assert.NotEmpty(t, fallback.FixSuggestion)
}

package rules

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefault(t *testing.T) {
	db, err := LoadDefault()
	require.NoError(t, err)

	assert.True(t, db.Has("button-name"))
	assert.True(t, db.Has("image-alt"))
	assert.True(t, db.Has("color-contrast"))
	assert.False(t, db.Has("made-up-rule"))

	rule := db.Get("button-name")
	require.NotNil(t, rule)
	assert.Equal(t, "critical", rule.Severity)
	assert.Equal(t, 10, rule.EffortMinutes)
	assert.False(t, rule.RequiresAI)
}

func TestLookupNormalization(t *testing.T) {
	db, err := LoadDefault()
	require.NoError(t, err)

	assert.True(t, db.Has("Button-Name"))
	assert.True(t, db.Has("  button-name  "))
	assert.NotNil(t, db.Get("IMAGE-ALT"))
}

func TestFixForFramework(t *testing.T) {
	db, err := LoadDefault()
	require.NoError(t, err)

	reactFix := db.FixForFramework("button-name", "react")
	assert.Contains(t, reactFix, "aria-label")
	assert.NotEqual(t, db.FixForFramework("button-name", "html"), reactFix)

	// Unknown framework falls back to the html variant.
	assert.Equal(t,
		db.FixForFramework("button-name", "html"),
		db.FixForFramework("button-name", "svelte"))

	assert.Empty(t, db.FixForFramework("made-up-rule", "html"))
}

func TestEffortEstimate(t *testing.T) {
	db, err := LoadDefault()
	require.NoError(t, err)

	assert.Equal(t, 10, db.EffortEstimate("button-name"))
	assert.Equal(t, 5, db.EffortEstimate("made-up-rule"))
}

func TestRequiresAI(t *testing.T) {
	db, err := LoadDefault()
	require.NoError(t, err)

	assert.False(t, db.RequiresAI("button-name"))
	assert.True(t, db.RequiresAI("color-contrast"))
	assert.True(t, db.RequiresAI("aria-allowed-attr"))
	// Unknown rules always escalate.
	assert.True(t, db.RequiresAI("made-up-rule"))
}

func TestUserImpact(t *testing.T) {
	db, err := LoadDefault()
	require.NoError(t, err)

	assert.Contains(t, db.UserImpact("image-alt"), "Screen reader")
	assert.Equal(t, "This issue may affect users with disabilities.", db.UserImpact("made-up-rule"))
}

func TestWCAGReferences(t *testing.T) {
	db, err := LoadDefault()
	require.NoError(t, err)

	assert.Equal(t, []string{"WCAG 1.1.1"}, db.WCAGReferences("image-alt"))
	assert.Nil(t, db.WCAGReferences("made-up-rule"))
}

func TestStats(t *testing.T) {
	db, err := LoadDefault()
	require.NoError(t, err)

	stats := db.Stats()
	assert.Equal(t, 16, stats.TotalRules)
	assert.Equal(t, 2, stats.RequiresAI)
	assert.Equal(t, 14, stats.RuleBased)
	assert.InDelta(t, 87.5, stats.CoveragePercentage, 0.01)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
my-rule:
  severity: high
  effort_minutes: 7
  requires_ai: false
`), 0600))

	db, err := LoadFile(path)
	require.NoError(t, err)
	assert.True(t, db.Has("my-rule"))
	assert.Equal(t, 7, db.EffortEstimate("my-rule"))

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadRejectsInvalidYAML(t *testing.T) {
	_, err := Load([]byte("not: [valid"))
	assert.Error(t, err)
}

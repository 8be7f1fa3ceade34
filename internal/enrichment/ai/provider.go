// Package ai provides the generative enrichment collaborator: a narrow
// provider interface, the OpenRouter-backed implementation, and the schema
// validation applied to untrusted provider output.
package ai

import (
	"context"

	"github.com/a11y-tools/a11y-triage/internal/models"
)

// Request describes one issue group submitted for generative analysis.
type Request struct {
	Description string
	Elements    []string
	Impact      string
	RuleID      string
	Framework   string
}

// Provider is the generative-AI collaborator. Implementations must return
// within a bounded timeout or fail explicitly; responses are untrusted and
// schema-validated before use.
type Provider interface {
	// Analyze returns structured guidance for the issue, or an error on
	// transport failure. A syntactically valid but schema-invalid response
	// yields the terminal fallback result, not an error.
	Analyze(ctx context.Context, req Request) (*models.Enrichment, error)

	// Available reports whether the provider is configured and usable.
	Available() bool
}

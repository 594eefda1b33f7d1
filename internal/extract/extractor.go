// Package extract holds the in-page extraction payload and the text cleanup
// applied to what it returns. The protocol core treats the payload as opaque;
// this package is the only place that knows its content.
package extract

import (
	"context"

	"github.com/maverock24/webToText/internal/devtools"
)

// FallbackText is returned when the page yields nothing extractable.
const FallbackText = "No content could be extracted."

// PageExtractor runs the extraction payload against whatever tab the Session
// is currently bound to. It satisfies the batch orchestrator's collaborator
// shape.
type PageExtractor struct{}

// NewPageExtractor creates a PageExtractor.
func NewPageExtractor() *PageExtractor {
	return &PageExtractor{}
}

// Extract evaluates the payload on the bound tab and post-processes the
// returned text. An empty evaluation result is a valid outcome and maps to
// the fallback text.
func (e *PageExtractor) Extract(ctx context.Context, s *devtools.Session, _ devtools.Tab) (string, error) {
	runner := devtools.NewScriptRunner(s)
	text, err := runner.Evaluate(ctx, jsExtractPage())
	if err != nil {
		return "", err
	}
	if text == "" {
		return FallbackText, nil
	}
	return PostProcess(text), nil
}

// Package research provides the research agents: a primary web researcher
// and a disabled secondary summarizer kept around for experiments.
package research

import (
	"github.com/vk/agentgrid/internal/builder"
	"github.com/vk/agentgrid/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register announces the package's factories to the registry.
func (m *Module) Register(r *registry.Registry) error {
	if _, err := registry.Mark(r, NewResearchAgent,
		registry.WithTags("research", "web"),
		registry.WithPriority(70),
		registry.WithAttribute("model", "gemini-2.0-flash"),
	); err != nil {
		return err
	}

	_, err := registry.Mark(r, NewSummaryAgent,
		registry.WithTags("research", "summaries"),
		registry.WithPriority(40),
		registry.Disabled(),
	)
	return err
}

// NewResearchAgent builds the primary web research agent.
func NewResearchAgent() (any, error) {
	a, err := builder.New("Research Agent").
		WithModel("google", "gemini-2.0-flash").
		WithInstructions("You research topics on the open web. Prefer primary sources and include links for every finding.").
		WithTools("web_search", "web_fetch").
		WithHistory(3, 10).
		Build()
	if err != nil {
		return nil, err
	}
	return a, nil
}

// NewSummaryAgent builds the secondary summarizer. Disabled by default to
// reduce noise; enable it through the API when needed.
func NewSummaryAgent() (any, error) {
	a, err := builder.New("Summary Agent").
		WithModel("google", "gemini-2.0-flash").
		WithInstructions("You condense research notes into short, sourced summaries.").
		Build()
	if err != nil {
		return nil, err
	}
	return a, nil
}

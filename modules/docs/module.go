// Package docs provides the documentation assistant agent.
package docs

import (
	"github.com/vk/agentgrid/internal/builder"
	"github.com/vk/agentgrid/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register announces the package's factories to the registry.
func (m *Module) Register(r *registry.Registry) error {
	_, err := registry.Mark(r, NewDocsAgent,
		registry.WithTags("docs", "search"),
		registry.WithPriority(80),
		registry.WithDependencies("Relay Agent"),
		registry.WithAttribute("model", "gpt-4o"),
	)
	return err
}

// NewDocsAgent builds the documentation assistant.
func NewDocsAgent() (any, error) {
	a, err := builder.New("Docs Agent").
		WithModel("openai", "gpt-4o").
		WithInstructions("You are a documentation assistant. Answer from the indexed project documentation and cite the source page for every claim.").
		WithTools("docs_search", "docs_fetch").
		WithMemory().
		WithAttribute("corpus", "project-docs").
		Build()
	if err != nil {
		return nil, err
	}
	return a, nil
}

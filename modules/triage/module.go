// Package triage provides the support triage agent that routes incoming
// requests to the other agents.
package triage

import (
	"github.com/vk/agentgrid/internal/builder"
	"github.com/vk/agentgrid/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register announces the package's factories to the registry.
func (m *Module) Register(r *registry.Registry) error {
	_, err := registry.Mark(r, NewTriageAgent,
		registry.WithTags("support", "routing"),
		registry.WithPriority(90),
		registry.WithDependencies("Docs Agent", "Research Agent"),
		registry.WithAttribute("escalation", true),
	)
	return err
}

// NewTriageAgent builds the triage agent. It sits at the highest priority
// so it wins the listing order and greets traffic first.
func NewTriageAgent() (any, error) {
	a, err := builder.New("Triage Agent").
		WithModel("openai", "gpt-4o-mini").
		WithInstructions("You triage incoming requests. Route documentation questions to the docs agent and open-ended questions to the research agent; answer trivial ones yourself.").
		WithTools("handoff").
		WithHistory(1, 5).
		Build()
	if err != nil {
		return nil, err
	}
	return a, nil
}

// Package builder provides a fluent API for constructing agent values
// programmatically. Provider modules use it inside their factories; the
// discovery core never looks inside the values it produces.
package builder

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// knownProviders are the model providers the application ships adapters
// for. Build rejects anything else early instead of failing at runtime.
var knownProviders = map[string]struct{}{
	"openai": {},
	"google": {},
}

// ModelConfig selects the model backing an agent.
type ModelConfig struct {
	Provider string
	ID       string
	Options  map[string]any
}

// HistoryConfig controls how much conversation history an agent carries
// into each run.
type HistoryConfig struct {
	AddToContext     bool
	Sessions         int
	Runs             int
	SessionSummaries bool
}

// Agent is the built, immutable configuration handed to the hosting
// runtime. Instance IDs are unique per Build call.
type Agent struct {
	ID           string
	Name         string
	Model        ModelConfig
	Instructions string
	Tools        []string
	Memory       bool
	Markdown     bool
	History      HistoryConfig
	Attributes   map[string]any
}

// Builder accumulates agent configuration through method chaining. Zero
// validation happens until Build.
type Builder struct {
	name         string
	model        ModelConfig
	instructions string
	tools        []string
	memory       bool
	markdown     bool
	history      HistoryConfig
	attributes   map[string]any
}

// New starts a builder for an agent with the given display name.
func New(name string) *Builder {
	return &Builder{
		name: name,
		history: HistoryConfig{
			AddToContext:     true,
			Sessions:         5,
			Runs:             20,
			SessionSummaries: true,
		},
		markdown: true,
	}
}

// WithModel selects the model provider and model id.
func (b *Builder) WithModel(provider, id string) *Builder {
	b.model.Provider = provider
	b.model.ID = id
	return b
}

// WithModelOption adds one provider-specific model option.
func (b *Builder) WithModelOption(key string, value any) *Builder {
	if b.model.Options == nil {
		b.model.Options = make(map[string]any)
	}
	b.model.Options[key] = value
	return b
}

// WithInstructions sets the agent's system instructions.
func (b *Builder) WithInstructions(instructions string) *Builder {
	b.instructions = instructions
	return b
}

// WithTools appends named tools, order preserved.
func (b *Builder) WithTools(tools ...string) *Builder {
	b.tools = append(b.tools, tools...)
	return b
}

// WithMemory enables long-term memory for the agent.
func (b *Builder) WithMemory() *Builder {
	b.memory = true
	return b
}

// WithHistory overrides the default history window.
func (b *Builder) WithHistory(sessions, runs int) *Builder {
	b.history.Sessions = sessions
	b.history.Runs = runs
	return b
}

// WithAttribute attaches one opaque attribute to the built agent.
func (b *Builder) WithAttribute(key string, value any) *Builder {
	if b.attributes == nil {
		b.attributes = make(map[string]any)
	}
	b.attributes[key] = value
	return b
}

// Build validates the accumulated configuration and returns the agent with
// a freshly minted instance id.
func (b *Builder) Build() (*Agent, error) {
	if b.name == "" {
		return nil, errors.New("agent name must be a non-empty string")
	}
	if b.model.Provider == "" {
		return nil, fmt.Errorf("agent %q has no model configured", b.name)
	}
	if _, ok := knownProviders[b.model.Provider]; !ok {
		return nil, fmt.Errorf("agent %q uses unknown model provider %q", b.name, b.model.Provider)
	}

	return &Agent{
		ID:           uuid.NewString(),
		Name:         b.name,
		Model:        b.model,
		Instructions: b.instructions,
		Tools:        append([]string(nil), b.tools...),
		Memory:       b.memory,
		Markdown:     b.markdown,
		History:      b.history,
		Attributes:   b.attributes,
	}, nil
}

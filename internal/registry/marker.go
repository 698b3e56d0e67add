package registry

import (
	"reflect"
	"runtime"
	"strings"
	"unicode"

	"github.com/vk/agentgrid/internal/agent"
)

// Module is the interface provider packages implement to announce their
// factories during application bootstrap. Registration errors are isolated
// per module by the caller; a broken provider never takes down the rest.
type Module interface {
	Register(r *Registry) error
}

// Marked is the handle returned by Mark. It exposes the derived name and
// validated metadata so later code can confirm a factory was marked and
// read them back without re-deriving anything.
type Marked struct {
	Name     string
	Symbol   string
	Metadata *agent.Metadata

	fn agent.Factory
}

// Call invokes the underlying factory unchanged. Marking is purely additive
// instrumentation; same result, same error, no extra behavior.
func (m *Marked) Call() (any, error) { return m.fn() }

// Factory returns the underlying factory function.
func (m *Marked) Factory() agent.Factory { return m.fn }

type markOptions struct {
	name         string
	tags         []string
	priority     int
	enabled      bool
	dependencies []string
	attributes   map[string]any
}

// MarkOption configures a Mark call.
type MarkOption func(*markOptions)

// WithName overrides the name derived from the factory's Go identifier.
func WithName(name string) MarkOption {
	return func(o *markOptions) { o.name = name }
}

// WithTags sets the agent's tags, order preserved.
func WithTags(tags ...string) MarkOption {
	return func(o *markOptions) { o.tags = tags }
}

// WithPriority sets the agent's priority. Higher wins name conflicts.
func WithPriority(priority int) MarkOption {
	return func(o *markOptions) { o.priority = priority }
}

// Disabled registers the agent in a disabled state.
func Disabled() MarkOption {
	return func(o *markOptions) { o.enabled = false }
}

// WithDependencies records the named agents this one depends on. The core
// does not resolve or order them; they are informational.
func WithDependencies(deps ...string) MarkOption {
	return func(o *markOptions) { o.dependencies = deps }
}

// WithAttribute adds one custom attribute to the metadata's opaque bag.
func WithAttribute(key string, value any) MarkOption {
	return func(o *markOptions) {
		if o.attributes == nil {
			o.attributes = make(map[string]any)
		}
		o.attributes[key] = value
	}
}

// Mark announces a factory to the registry. It is the bootstrap-time analog
// of a registration decorator: it derives a human-readable agent name from
// the factory's Go identifier (unless WithName overrides it), validates the
// metadata, records the factory under its symbol for manifest references,
// and collects a pending registration. Marking the same derived name twice
// is a no-op at the pending stage, so repeated bootstrap of a provider is
// harmless.
func Mark(r *Registry, factory agent.Factory, opts ...MarkOption) (*Marked, error) {
	if factory == nil {
		return nil, &agent.ValidationError{Kind: agent.ErrNilFactory, Detail: "Mark called with a nil factory"}
	}

	o := &markOptions{priority: agent.DefaultPriority, enabled: true}
	for _, opt := range opts {
		opt(o)
	}

	symbol := factorySymbol(factory)
	name := o.name
	if name == "" {
		name = DeriveName(symbol)
	}

	md, err := agent.NewMetadata(agent.Metadata{
		Name:         name,
		Source:       agent.SourceCode,
		Tags:         o.tags,
		Priority:     o.priority,
		Enabled:      o.enabled,
		Dependencies: o.dependencies,
		Attributes:   o.attributes,
	})
	if err != nil {
		return nil, err
	}

	r.RegisterFactory(symbol, factory)
	r.RegisterPending(&Pending{
		Name:     name,
		Factory:  factory,
		Metadata: md,
		Origin:   agent.OriginUnknown,
	})

	return &Marked{Name: name, Symbol: symbol, Metadata: md, fn: factory}, nil
}

// factorySymbol resolves the bare Go identifier of a factory function, e.g.
// "NewDocsAgent" for github.com/vk/agentgrid/modules/docs.NewDocsAgent.
func factorySymbol(factory agent.Factory) string {
	full := runtime.FuncForPC(reflect.ValueOf(factory).Pointer()).Name()
	if i := strings.LastIndex(full, "."); i >= 0 {
		full = full[i+1:]
	}
	// Method values carry a "-fm" suffix.
	return strings.TrimSuffix(full, "-fm")
}

// DeriveName converts a factory identifier into a human-readable agent
// name: a conventional New/Create creation prefix is stripped and the
// remaining camel-case or snake-case words become title-cased, e.g.
// "NewDocsAgent" -> "Docs Agent", "create_docs_agent" -> "Docs Agent".
func DeriveName(symbol string) string {
	s := symbol
	for _, prefix := range []string{"New", "Create", "new", "create"} {
		rest := strings.TrimPrefix(s, prefix)
		if rest == s || rest == "" {
			continue
		}
		// Only treat it as a prefix at a word boundary.
		if rest[0] == '_' || unicode.IsUpper(rune(rest[0])) {
			s = strings.TrimPrefix(rest, "_")
			break
		}
	}

	words := splitWords(s)
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// splitWords breaks an identifier at underscores and camel case
// boundaries, keeping acronym runs together ("HTTPAgent" -> HTTP, Agent).
func splitWords(s string) []string {
	runes := []rune(s)
	var words []string
	var current []rune
	flush := func() {
		if len(current) > 0 {
			words = append(words, string(current))
			current = nil
		}
	}
	for i, r := range runes {
		if r == '_' {
			flush()
			continue
		}
		if i > 0 {
			if unicode.IsUpper(r) && unicode.IsLower(runes[i-1]) {
				flush()
			} else if unicode.IsLower(r) && unicode.IsUpper(runes[i-1]) && len(current) > 1 {
				// The final upper of an acronym run starts this word.
				last := current[len(current)-1]
				current = current[:len(current)-1]
				flush()
				current = []rune{last}
			}
		}
		current = append(current, r)
	}
	flush()
	if len(words) == 0 {
		return []string{s}
	}
	return words
}

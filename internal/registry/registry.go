package registry

import (
	"log/slog"
	"path/filepath"
	"sort"

	"github.com/vk/agentgrid/internal/agent"
)

// Pending is a collected-but-not-yet-conflict-resolved candidate
// registration. It bundles the factory with its metadata so the discovery
// engine can promote it without a second lookup.
type Pending struct {
	Name     string
	Factory  agent.Factory
	Metadata *agent.Metadata
	Origin   string
}

// Registry holds the registration state for a single application instance.
type Registry struct {
	definitions map[string]*agent.Definition
	pending     map[string]*Pending
	factories   map[string]agent.Factory
	paths       []string
	discovered  bool
}

// New creates and initializes an empty Registry instance.
func New() *Registry {
	return &Registry{
		definitions: make(map[string]*agent.Definition),
		pending:     make(map[string]*Pending),
		factories:   make(map[string]agent.Factory),
	}
}

// RegisterFactory records a compiled factory under its Go symbol so that
// manifests can reference it by name. Registering the same symbol twice is
// a logged no-op; the first registration wins.
func (r *Registry) RegisterFactory(symbol string, factory agent.Factory) {
	if symbol == "" || factory == nil {
		return
	}
	if _, exists := r.factories[symbol]; exists {
		slog.Debug("Factory symbol already registered, keeping first.", "symbol", symbol)
		return
	}
	slog.Debug("Registering factory symbol.", "symbol", symbol)
	r.factories[symbol] = factory
}

// Factory looks up a compiled factory by its Go symbol.
func (r *Registry) Factory(symbol string) (agent.Factory, bool) {
	f, ok := r.factories[symbol]
	return f, ok
}

// RegisterPending records a candidate registration keyed by agent name. The
// first registration for a given name during a discovery pass wins at the
// pending stage; duplicates are a no-op. This guards against a provider
// being registered twice in the same pass. Returns false for duplicates.
func (r *Registry) RegisterPending(p *Pending) bool {
	if _, exists := r.pending[p.Name]; exists {
		slog.Debug("Pending registration already collected, skipping.", "name", p.Name)
		return false
	}
	slog.Debug("Collected pending registration.", "name", p.Name, "origin", p.Origin)
	r.pending[p.Name] = p
	return true
}

// Pending returns the collected candidates sorted by name, giving the
// promotion pass a deterministic order.
func (r *Registry) Pending() []*Pending {
	out := make([]*Pending, 0, len(r.pending))
	for _, p := range r.pending {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Promote attempts to install a Definition for the given candidate.
//
// Conflict rule: with no existing Definition for the name, install
// unconditionally. Otherwise a strictly greater priority replaces the
// existing Definition; equal or lower priority is rejected with a log line,
// never an error. Ties always favor the earliest-installed Definition.
//
// The returned bool reports whether the candidate was installed; the error
// is non-nil only for an invalid candidate (validation failure).
func (r *Registry) Promote(name string, factory agent.Factory, md *agent.Metadata, origin string) (bool, error) {
	def, err := agent.NewDefinition(name, factory, md, origin)
	if err != nil {
		return false, err
	}

	if existing, ok := r.definitions[name]; ok {
		if md.Priority <= existing.Metadata.Priority {
			slog.Debug("Skipping promotion, existing definition has equal or higher priority.",
				"name", name,
				"existing_priority", existing.Metadata.Priority,
				"new_priority", md.Priority)
			return false, nil
		}
		slog.Info("Replacing definition with higher-priority registration.",
			"name", name,
			"existing_priority", existing.Metadata.Priority,
			"new_priority", md.Priority)
	}

	r.definitions[name] = def
	slog.Debug("Registered agent definition.", "name", name, "priority", md.Priority, "origin", def.Origin)
	return true, nil
}

// Get returns the Definition for a name, if one exists.
func (r *Registry) Get(name string) (*agent.Definition, bool) {
	def, ok := r.definitions[name]
	return def, ok
}

// Len returns the number of accepted definitions.
func (r *Registry) Len() int { return len(r.definitions) }

// List returns the definitions matching the optional filter, sorted by
// priority descending and name ascending, a deterministic total order even
// among equal priorities.
func (r *Registry) List(f *agent.Filter) []*agent.Definition {
	out := make([]*agent.Definition, 0, len(r.definitions))
	for _, def := range r.definitions {
		if f.Matches(def) {
			out = append(out, def)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		pi, pj := out[i].Metadata.Priority, out[j].Metadata.Priority
		if pi != pj {
			return pi > pj
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Enable marks the named agent as enabled. Returns false for unknown names.
func (r *Registry) Enable(name string) bool {
	return r.setEnabled(name, true)
}

// Disable marks the named agent as disabled. Returns false for unknown names.
func (r *Registry) Disable(name string) bool {
	return r.setEnabled(name, false)
}

func (r *Registry) setEnabled(name string, enabled bool) bool {
	def, ok := r.definitions[name]
	if !ok {
		return false
	}
	// Installed definitions are immutable snapshots. Replace instead of
	// mutating so a caller holding one never observes the flip.
	md := *def.Metadata
	md.Enabled = enabled
	next := *def
	next.Metadata = &md
	r.definitions[name] = &next
	slog.Info("Agent enabled state changed.", "name", name, "enabled", enabled)
	return true
}

// Clear empties the definition and pending tables and resets the discovery
// latch. Discovery paths and the compiled factory table are kept: paths are
// configuration, and compiled factories cannot be re-registered by a rescan.
func (r *Registry) Clear() {
	r.definitions = make(map[string]*agent.Definition)
	r.pending = make(map[string]*Pending)
	r.discovered = false
	slog.Info("Agent registry cleared.")
}

// AddPath appends a discovery path, normalizing it first. Adding a path
// that is already present is a no-op; order is preserved otherwise.
// Returns false for duplicates.
func (r *Registry) AddPath(path string) bool {
	norm := filepath.Clean(path)
	for _, p := range r.paths {
		if p == norm {
			return false
		}
	}
	r.paths = append(r.paths, norm)
	slog.Debug("Added discovery path.", "path", norm)
	return true
}

// RemovePath removes a discovery path. Returns false if it was not present.
func (r *Registry) RemovePath(path string) bool {
	norm := filepath.Clean(path)
	for i, p := range r.paths {
		if p == norm {
			r.paths = append(r.paths[:i], r.paths[i+1:]...)
			slog.Debug("Removed discovery path.", "path", norm)
			return true
		}
	}
	return false
}

// Paths returns a copy of the ordered discovery path set.
func (r *Registry) Paths() []string {
	return append([]string(nil), r.paths...)
}

// Discovered reports whether a discovery pass has completed.
func (r *Registry) Discovered() bool { return r.discovered }

// MarkDiscovered latches the discovery-completed flag. Clear resets it.
func (r *Registry) MarkDiscovered() { r.discovered = true }

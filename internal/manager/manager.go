package manager

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/gobwas/glob"
	"github.com/hashicorp/go-multierror"

	"github.com/vk/agentgrid/internal/agent"
	"github.com/vk/agentgrid/internal/ctxlog"
	"github.com/vk/agentgrid/internal/discovery"
	"github.com/vk/agentgrid/internal/registry"
)

// Manager is the public API for agent discovery, querying, lifecycle and
// instantiation. The registry underneath assumes a single writer, so the
// manager is also the concurrency boundary: discovery and lifecycle calls
// take the write lock, queries and instantiation share the read lock. All
// callers (HTTP handlers, the manifest watcher) must go through it.
type Manager struct {
	mu     sync.RWMutex
	reg    *registry.Registry
	engine *discovery.Engine
}

// New creates a Manager over the given registry and engine.
func New(reg *registry.Registry, engine *discovery.Engine) *Manager {
	return &Manager{reg: reg, engine: engine}
}

// Discover merges the extra paths into the registry's discovery path set,
// runs a discovery pass and returns the resulting definition count. Every
// supplied path must exist on the filesystem; a missing one fails the call
// with *agent.PathNotFoundError before anything is scanned.
func (m *Manager) Discover(ctx context.Context, paths []string, force bool) (int, error) {
	logger := ctxlog.FromContext(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil || !info.IsDir() {
			return 0, &agent.PathNotFoundError{Path: path}
		}
		m.reg.AddPath(path)
	}

	if err := m.engine.Discover(ctx, force); err != nil {
		return 0, err
	}

	count := m.reg.Len()
	logger.Info("Discovery finished.", "agents", count)
	return count, nil
}

// Refresh forces a full rediscovery and returns the new definition count.
func (m *Manager) Refresh(ctx context.Context) (int, error) {
	return m.Discover(ctx, nil, true)
}

// Watch blocks watching the discovery paths for manifest changes until the
// context ends. Rediscovery triggered by a change runs through Refresh, so
// it is serialized with every other manager call.
func (m *Manager) Watch(ctx context.Context) error {
	return m.engine.Watch(ctx, func(ctx context.Context) error {
		_, err := m.Refresh(ctx)
		return err
	})
}

// ListAll returns every definition sorted by priority descending, name
// ascending.
func (m *Manager) ListAll() []*agent.Definition {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.reg.List(nil)
}

// ListEnabled returns the enabled definitions in listing order.
func (m *Manager) ListEnabled() []*agent.Definition {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.reg.List(&agent.Filter{Enabled: agent.Bool(true)})
}

// List returns the definitions matching an arbitrary filter.
func (m *Manager) List(f *agent.Filter) []*agent.Definition {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.reg.List(f)
}

// Get returns the definition for a name. Empty names resolve to nothing.
func (m *Manager) Get(name string) (*agent.Definition, bool) {
	if name == "" {
		return nil, false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.reg.Get(name)
}

// GetByTags filters definitions by tags. With matchAll every tag must be
// present; otherwise one match suffices. An empty tag list returns an empty
// result, never "all".
func (m *Manager) GetByTags(tags []string, matchAll bool) []*agent.Definition {
	if len(tags) == 0 {
		return nil
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !matchAll {
		return m.reg.List(&agent.Filter{Tags: tags})
	}

	var out []*agent.Definition
	for _, def := range m.reg.List(nil) {
		all := true
		for _, tag := range tags {
			if !def.Metadata.HasTag(tag) {
				all = false
				break
			}
		}
		if all {
			out = append(out, def)
		}
	}
	return out
}

// GetBySource filters definitions by the discovery pattern that registered
// them ("code" or "manifest"). Unknown sources yield an empty result.
func (m *Manager) GetBySource(ctx context.Context, source string) []*agent.Definition {
	src, ok := agent.ParseSource(source)
	if !ok {
		ctxlog.FromContext(ctx).Error("Invalid discovery source.", "source", source)
		return nil
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.reg.List(&agent.Filter{Source: &src})
}

// Match returns the definitions whose name matches the glob pattern.
func (m *Manager) Match(pattern string) ([]*agent.Definition, error) {
	g, err := glob.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid name pattern %q: %w", pattern, err)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*agent.Definition
	for _, def := range m.reg.List(nil) {
		if g.Match(def.Name) {
			out = append(out, def)
		}
	}
	return out, nil
}

// Enable enables an agent. False for unknown or empty names, never an error.
func (m *Manager) Enable(ctx context.Context, name string) bool {
	if name == "" {
		return false
	}
	m.mu.Lock()
	ok := m.reg.Enable(name)
	m.mu.Unlock()
	if !ok {
		ctxlog.FromContext(ctx).Warn("Agent not found for enabling.", "name", name)
	}
	return ok
}

// Disable disables an agent. False for unknown or empty names.
func (m *Manager) Disable(ctx context.Context, name string) bool {
	if name == "" {
		return false
	}
	m.mu.Lock()
	ok := m.reg.Disable(name)
	m.mu.Unlock()
	if !ok {
		ctxlog.FromContext(ctx).Warn("Agent not found for disabling.", "name", name)
	}
	return ok
}

// Instantiate creates one agent instance by name. Unknown and disabled
// agents both return (nil, nil) with a logged warning; a disabled agent is
// never instantiated, even on direct request. A factory failure comes back
// as *agent.InstantiationError carrying the agent name.
func (m *Manager) Instantiate(ctx context.Context, name string) (any, error) {
	logger := ctxlog.FromContext(ctx)

	if name == "" {
		return nil, nil
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	def, ok := m.reg.Get(name)
	if !ok {
		logger.Warn("Agent definition not found.", "name", name)
		return nil, nil
	}
	if !def.Metadata.Enabled {
		logger.Warn("Agent is disabled, refusing to instantiate.", "name", name)
		return nil, nil
	}

	obj, err := def.Factory()
	if err != nil {
		logger.Error("Agent factory failed.", "name", name, "error", err)
		return nil, &agent.InstantiationError{Name: name, Err: err}
	}
	logger.Info("Created agent instance.", "name", name)
	return obj, nil
}

// InstantiateAllEnabled calls the factory of every enabled definition in
// listing order. Per-agent failures are collected rather than aborting the
// batch: the successfully built objects are always returned, and when any
// factory failed the error is a single aggregated *agent.InstantiationError
// naming every failure.
func (m *Manager) InstantiateAllEnabled(ctx context.Context) ([]any, error) {
	logger := ctxlog.FromContext(ctx)

	m.mu.RLock()
	defer m.mu.RUnlock()

	var built []any
	var failures *multierror.Error

	for _, def := range m.reg.List(&agent.Filter{Enabled: agent.Bool(true)}) {
		obj, err := def.Factory()
		if err != nil {
			logger.Error("Agent factory failed.", "name", def.Name, "error", err)
			failures = multierror.Append(failures, fmt.Errorf("%s: %w", def.Name, err))
			continue
		}
		logger.Debug("Created agent instance.", "name", def.Name)
		built = append(built, obj)
	}

	if failures != nil {
		return built, &agent.InstantiationError{Err: failures}
	}
	logger.Info("Created all enabled agents.", "count", len(built))
	return built, nil
}

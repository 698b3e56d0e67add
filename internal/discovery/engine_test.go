package discovery

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/agentgrid/internal/agent"
	"github.com/vk/agentgrid/internal/registry"
)

// writeManifest drops a manifest file into dir and returns its path.
func writeManifest(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// newHarness returns a registry preloaded with a couple of compiled factory
// symbols, the way provider modules would have left it after bootstrap.
func newHarness(t *testing.T) *registry.Registry {
	t.Helper()
	reg := registry.New()
	reg.RegisterFactory("NewDocsAgent", func() (any, error) { return "docs", nil })
	reg.RegisterFactory("NewResearchAgent", func() (any, error) { return "research", nil })
	return reg
}

const docsManifest = `
agent "Docs Agent" {
  factory      = "NewDocsAgent"
  tags         = ["docs", "search"]
  priority     = 80
  dependencies = ["Relay Agent"]
  attributes = {
    model   = "gpt-4o"
    version = 2
    beta    = true
  }
}
`

const researchManifest = `
agent "Research Agent" {
  factory  = "NewResearchAgent"
  tags     = ["research"]
  priority = 70
  enabled  = false
}
`

func TestDiscoverFromManifests(t *testing.T) {
	dir := t.TempDir()
	reg := newHarness(t)
	docsPath := writeManifest(t, dir, "docs.hcl", docsManifest)
	writeManifest(t, dir, "research.hcl", researchManifest)
	reg.AddPath(dir)

	engine := New(reg, nil)
	require.NoError(t, engine.Discover(context.Background(), false))

	assert.Equal(t, 2, reg.Len())
	assert.True(t, reg.Discovered())

	def, ok := reg.Get("Docs Agent")
	require.True(t, ok)
	assert.Equal(t, docsPath, def.Origin)
	assert.Equal(t, agent.SourceManifest, def.Metadata.Source)
	assert.Equal(t, 80, def.Metadata.Priority)
	assert.True(t, def.Metadata.Enabled, "enabled defaults to true")
	assert.Equal(t, []string{"Relay Agent"}, def.Metadata.Dependencies)

	wantAttrs := map[string]any{"model": "gpt-4o", "version": 2.0, "beta": true}
	if diff := cmp.Diff(wantAttrs, def.Metadata.Attributes); diff != "" {
		t.Errorf("attributes mismatch (-want +got):\n%s", diff)
	}

	research, ok := reg.Get("Research Agent")
	require.True(t, ok)
	assert.False(t, research.Metadata.Enabled)

	v, err := def.Factory()
	require.NoError(t, err)
	assert.Equal(t, "docs", v)
}

func TestDiscoverEmptyDirIsNotAnError(t *testing.T) {
	reg := newHarness(t)
	reg.AddPath(t.TempDir())

	engine := New(reg, nil)
	require.NoError(t, engine.Discover(context.Background(), false))
	assert.Equal(t, 0, reg.Len())
	assert.True(t, reg.Discovered())
}

func TestDiscoverNoPathsIsNotAnError(t *testing.T) {
	reg := newHarness(t)
	engine := New(reg, nil)
	require.NoError(t, engine.Discover(context.Background(), false))
	assert.Equal(t, 0, reg.Len())
}

func TestDiscoverIsolatesMalformedManifests(t *testing.T) {
	dir := t.TempDir()
	reg := newHarness(t)
	writeManifest(t, dir, "broken.hcl", `agent "Broken" { factory = `)
	writeManifest(t, dir, "docs.hcl", docsManifest)
	reg.AddPath(dir)

	engine := New(reg, nil)
	require.NoError(t, engine.Discover(context.Background(), false))

	// The broken sibling never prevents discovery of the rest.
	assert.Equal(t, 1, reg.Len())
	_, ok := reg.Get("Docs Agent")
	assert.True(t, ok)
}

func TestDiscoverSkipsUnknownFactorySymbols(t *testing.T) {
	dir := t.TempDir()
	reg := newHarness(t)
	writeManifest(t, dir, "ghost.hcl", `
agent "Ghost Agent" {
  factory = "NewGhostAgent"
}
`)
	writeManifest(t, dir, "docs.hcl", docsManifest)
	reg.AddPath(dir)

	engine := New(reg, nil)
	require.NoError(t, engine.Discover(context.Background(), false))

	assert.Equal(t, 1, reg.Len())
	_, ok := reg.Get("Ghost Agent")
	assert.False(t, ok)
}

func TestDiscoverSkipsPrivateAndReservedFiles(t *testing.T) {
	dir := t.TempDir()
	reg := newHarness(t)
	writeManifest(t, dir, "_docs.hcl", docsManifest)
	writeManifest(t, dir, "agentgrid.hcl", researchManifest)
	reg.AddPath(dir)

	engine := New(reg, nil)
	require.NoError(t, engine.Discover(context.Background(), false))
	assert.Equal(t, 0, reg.Len())
}

func TestDiscoverDoesNotRecurse(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "nested")
	require.NoError(t, os.Mkdir(sub, 0o755))

	reg := newHarness(t)
	writeManifest(t, sub, "docs.hcl", docsManifest)
	reg.AddPath(dir)

	engine := New(reg, nil)
	require.NoError(t, engine.Discover(context.Background(), false))
	assert.Equal(t, 0, reg.Len())
}

func TestDiscoverIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	reg := newHarness(t)
	writeManifest(t, dir, "docs.hcl", docsManifest)
	reg.AddPath(dir)

	engine := New(reg, nil)
	require.NoError(t, engine.Discover(context.Background(), false))
	require.Equal(t, 1, reg.Len())

	// A new manifest appears, but without force the pass is a no-op.
	writeManifest(t, dir, "research.hcl", researchManifest)
	require.NoError(t, engine.Discover(context.Background(), false))
	assert.Equal(t, 1, reg.Len())

	// Forcing re-reads everything from scratch.
	require.NoError(t, engine.Discover(context.Background(), true))
	assert.Equal(t, 2, reg.Len())
}

func TestForcedDiscoverReseedsCompiledRegistrations(t *testing.T) {
	reg := registry.New()
	seeded := 0
	seed := func(ctx context.Context) {
		seeded++
		md, err := agent.NewMetadata(agent.Metadata{Name: "Builtin Agent", Priority: 50, Enabled: true})
		require.NoError(t, err)
		reg.RegisterPending(&registry.Pending{
			Name:     "Builtin Agent",
			Factory:  func() (any, error) { return "builtin", nil },
			Metadata: md,
		})
	}
	seed(context.Background())

	engine := New(reg, seed)
	require.NoError(t, engine.Discover(context.Background(), false))
	require.Equal(t, 1, reg.Len())

	require.NoError(t, engine.Discover(context.Background(), true))
	assert.Equal(t, 1, reg.Len(), "builtin registrations survive a forced pass")
	assert.Equal(t, 2, seeded)
}

func TestClearThenDiscoverReproducesDefinitions(t *testing.T) {
	dir := t.TempDir()
	reg := newHarness(t)
	writeManifest(t, dir, "docs.hcl", docsManifest)
	writeManifest(t, dir, "research.hcl", researchManifest)
	reg.AddPath(dir)

	engine := New(reg, nil)
	require.NoError(t, engine.Discover(context.Background(), false))

	snapshot := func() map[string]int {
		out := make(map[string]int)
		for _, def := range reg.List(nil) {
			out[def.Name] = def.Metadata.Priority
		}
		return out
	}
	before := snapshot()

	reg.Clear()
	require.NoError(t, engine.Discover(context.Background(), false))

	if diff := cmp.Diff(before, snapshot()); diff != "" {
		t.Errorf("definition set changed across clear+discover (-before +after):\n%s", diff)
	}
}

func TestManifestPriorityConflictAcrossFiles(t *testing.T) {
	dir := t.TempDir()
	reg := newHarness(t)
	// Same agent name in two manifests; the pending stage keeps the first
	// file scanned (sorted order), so "a_docs.hcl" wins regardless of
	// priority.
	writeManifest(t, dir, "a_docs.hcl", `
agent "Docs Agent" {
  factory  = "NewDocsAgent"
  priority = 10
}
`)
	writeManifest(t, dir, "b_docs.hcl", `
agent "Docs Agent" {
  factory  = "NewDocsAgent"
  priority = 90
}
`)
	reg.AddPath(dir)

	engine := New(reg, nil)
	require.NoError(t, engine.Discover(context.Background(), false))

	def, ok := reg.Get("Docs Agent")
	require.True(t, ok)
	assert.Equal(t, 10, def.Metadata.Priority)
	assert.Equal(t, filepath.Join(dir, "a_docs.hcl"), def.Origin)
}

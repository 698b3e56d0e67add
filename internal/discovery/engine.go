package discovery

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/vk/agentgrid/internal/ctxlog"
	"github.com/vk/agentgrid/internal/fsutil"
	"github.com/vk/agentgrid/internal/registry"
)

// manifestExt is the file extension eligible for discovery scanning.
const manifestExt = ".hcl"

// reservedManifests are filenames that may legitimately sit inside a
// discovery path but belong to the application's own configuration, never
// to agent manifests.
var reservedManifests = map[string]struct{}{
	"agentgrid.hcl": {},
	"config.hcl":    {},
}

// Seed re-registers the compiled-in registrations after a forced clear.
// A forced pass wipes the pending table, and compiled providers cannot be
// re-imported the way manifest files can be re-read, so the application
// supplies the bootstrap step to run again.
type Seed func(ctx context.Context)

// Engine scans the registry's discovery paths and promotes the collected
// pending registrations into definitions.
type Engine struct {
	reg  *registry.Registry
	seed Seed
}

// New creates a discovery engine over the given registry. seed may be nil
// when there are no compiled-in providers to restore on a forced pass.
func New(reg *registry.Registry, seed Seed) *Engine {
	return &Engine{reg: reg, seed: seed}
}

// Discover runs one discovery pass.
//
// When discovery has already completed and force is false, the call is a
// guaranteed no-op. A forced pass first clears the registry and re-seeds
// the compiled-in registrations, then re-reads every manifest from scratch;
// this can change which registration wins a name conflict if files changed
// on disk, which is the point (hot reload).
//
// A single malformed manifest never prevents discovery of the others, and
// an empty path list or a path with zero eligible files is not an error.
func (e *Engine) Discover(ctx context.Context, force bool) error {
	logger := ctxlog.FromContext(ctx)

	if e.reg.Discovered() && !force {
		logger.Debug("Discovery already completed, skipping.")
		return nil
	}

	logger.Info("Starting agent discovery.", "paths", e.reg.Paths(), "force", force)

	if force {
		e.reg.Clear()
		if e.seed != nil {
			e.seed(ctx)
		}
	}

	parser := hclparse.NewParser()
	for _, dir := range e.reg.Paths() {
		files, err := fsutil.ListFilesByExtension(dir, manifestExt)
		if err != nil {
			logger.Error("Failed to scan discovery path.", "path", dir, "error", err)
			continue
		}
		for _, file := range files {
			base := filepath.Base(file)
			if strings.HasPrefix(base, "_") {
				logger.Debug("Skipping private manifest.", "file", file)
				continue
			}
			if _, reserved := reservedManifests[base]; reserved {
				continue
			}
			if _, err := loadManifest(ctx, e.reg, parser, file); err != nil {
				logger.Error("Failed to load manifest.", "file", file, "error", err)
			}
		}
	}

	// Promote every pending entry that does not already have a definition.
	for _, p := range e.reg.Pending() {
		if _, exists := e.reg.Get(p.Name); exists {
			continue
		}
		if _, err := e.reg.Promote(p.Name, p.Factory, p.Metadata, p.Origin); err != nil {
			logger.Error("Failed to promote pending registration.", "name", p.Name, "error", err)
		}
	}

	e.reg.MarkDiscovered()
	logger.Info("Agent discovery completed.", "definitions", e.reg.Len())
	return nil
}

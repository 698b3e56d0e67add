package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/vk/agentgrid/internal/ctxlog"
	"github.com/vk/agentgrid/internal/discovery"
	"github.com/vk/agentgrid/internal/manager"
	"github.com/vk/agentgrid/internal/registry"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW    io.Writer
	logger  *slog.Logger
	config  *Config
	reg     *registry.Registry
	engine  *discovery.Engine
	manager *manager.Manager
	modules []registry.Module
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance, including its own isolated logger and registry.
// Custom module lists are primarily for testing; by default the compiled-in
// coreModules are used.
func NewApp(outW io.Writer, cfg *Config, modules ...registry.Module) *App {
	logger := newLogger(cfg, outW)
	logger.Debug("Logger configured successfully.")

	if len(modules) == 0 {
		modules = coreModules
	}

	a := &App{
		outW:    outW,
		logger:  logger,
		config:  cfg,
		reg:     registry.New(),
		modules: modules,
	}
	// The engine re-runs module bootstrap after a forced clear, since
	// compiled providers cannot be re-read from disk the way manifests can.
	a.engine = discovery.New(a.reg, a.registerModules)
	a.manager = manager.New(a.reg, a.engine)
	return a
}

// Manager exposes the facade. This is primarily for testing and the server.
func (a *App) Manager() *manager.Manager { return a.manager }

// registerModules runs every provider module's bootstrap registration. A
// failing module is logged and skipped; it never takes down its siblings.
func (a *App) registerModules(ctx context.Context) {
	logger := ctxlog.FromContext(ctx)
	for _, mod := range a.modules {
		if err := mod.Register(a.reg); err != nil {
			logger.Error("Module registration failed, skipping provider.",
				"module", fmt.Sprintf("%T", mod), "error", err)
		}
	}
	logger.Debug("Provider modules registered.", "count", len(a.modules))
}

// Run executes the application lifecycle: bootstrap registrations, one
// discovery pass, bulk instantiation, then the optional watcher and API
// server until the context ends.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	a.registerModules(ctx)

	count, err := a.manager.Discover(ctx, a.config.ManifestPaths, false)
	if err != nil {
		return fmt.Errorf("agent discovery failed: %w", err)
	}
	a.logger.Info("🔎 Agent discovery completed.", "agents", count)

	// Survivors are served even when some factories failed; the aggregate
	// error names every failure.
	agents, err := a.manager.InstantiateAllEnabled(ctx)
	if err != nil {
		a.logger.Error("Some agents failed to start.", "error", err)
	}
	a.logger.Info("🤖 Agent instances created.", "count", len(agents))

	// The watcher rediscovers through the manager so it is serialized with
	// the API handlers.
	if a.config.Watch {
		go func() {
			if err := a.manager.Watch(ctx); err != nil {
				a.logger.Error("Manifest watcher failed.", "error", err)
			}
		}()
	}

	if a.config.ListenAddr != "" {
		return a.serveAPI(ctx)
	}

	a.logger.Debug("App.Run method finished.")
	return nil
}

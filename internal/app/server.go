package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/vk/agentgrid/internal/agent"
	"github.com/vk/agentgrid/internal/ctxlog"
)

// agentView is the JSON projection of a Definition served by the API.
type agentView struct {
	Name         string         `json:"name"`
	Source       string         `json:"source"`
	Tags         []string       `json:"tags,omitempty"`
	Priority     int            `json:"priority"`
	Enabled      bool           `json:"enabled"`
	Dependencies []string       `json:"dependencies,omitempty"`
	Attributes   map[string]any `json:"attributes,omitempty"`
	Origin       string         `json:"origin"`
}

func viewOf(def *agent.Definition) agentView {
	md := def.Metadata
	return agentView{
		Name:         def.Name,
		Source:       string(md.Source),
		Tags:         md.Tags,
		Priority:     md.Priority,
		Enabled:      md.Enabled,
		Dependencies: md.Dependencies,
		Attributes:   md.Attributes,
		Origin:       def.Origin,
	}
}

func viewsOf(defs []*agent.Definition) []agentView {
	out := make([]agentView, 0, len(defs))
	for _, def := range defs {
		out = append(out, viewOf(def))
	}
	return out
}

// newRouter wires the API routes over the manager.
func (a *App) newRouter(ctx context.Context) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	})

	e.GET("/agents", func(c echo.Context) error {
		if tag := c.QueryParam("tag"); tag != "" {
			return c.JSON(http.StatusOK, viewsOf(a.manager.GetByTags([]string{tag}, false)))
		}
		if pattern := c.QueryParam("match"); pattern != "" {
			defs, err := a.manager.Match(pattern)
			if err != nil {
				return echo.NewHTTPError(http.StatusBadRequest, err.Error())
			}
			return c.JSON(http.StatusOK, viewsOf(defs))
		}
		return c.JSON(http.StatusOK, viewsOf(a.manager.ListAll()))
	})

	e.GET("/agents/:name", func(c echo.Context) error {
		def, ok := a.manager.Get(c.Param("name"))
		if !ok {
			return echo.NewHTTPError(http.StatusNotFound, "agent not found")
		}
		return c.JSON(http.StatusOK, viewOf(def))
	})

	e.POST("/agents/:name/enable", func(c echo.Context) error {
		if !a.manager.Enable(ctx, c.Param("name")) {
			return echo.NewHTTPError(http.StatusNotFound, "agent not found")
		}
		return c.NoContent(http.StatusNoContent)
	})

	e.POST("/agents/:name/disable", func(c echo.Context) error {
		if !a.manager.Disable(ctx, c.Param("name")) {
			return echo.NewHTTPError(http.StatusNotFound, "agent not found")
		}
		return c.NoContent(http.StatusNoContent)
	})

	e.POST("/discover", func(c echo.Context) error {
		count, err := a.manager.Refresh(ctx)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		return c.JSON(http.StatusOK, map[string]int{"agents": count})
	})

	return e
}

// serveAPI runs the HTTP API until the context is cancelled, then shuts
// down gracefully.
func (a *App) serveAPI(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	e := a.newRouter(ctx)

	go func() {
		logger.Info("🌐 Agent API server starting.", "address", a.config.ListenAddr)
		if err := e.Start(a.config.ListenAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Agent API server failed unexpectedly.", "error", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logger.Info("🌐 Shutting down agent API server...")
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Agent API server shutdown failed.", "error", err)
		return err
	}
	logger.Debug("Agent API server shut down gracefully.")
	return nil
}

package httpapi

import (
	"context"
	"log/slog"

	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/thenoetrevino/tasks/internal/models"
	taskservice "github.com/thenoetrevino/tasks/internal/services/task"
)

// SyncController is the part of the session exposed over HTTP
type SyncController interface {
	ToggleSync(ctx context.Context) error
	SyncState() models.SyncState
}

// NewServer builds an echo instance with every route registered.
// sync may be nil, in which case the sync routes report 503.
func NewServer(tasks taskservice.Service, sync SyncController) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.JSONSerializer = sonicSerializer{}

	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []any{"method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency}
			if v.Error != nil {
				slog.Warn("request failed", append(attrs, "error", v.Error)...)
				return nil
			}
			slog.Debug("request", attrs...)
			return nil
		},
	}))

	Register(e, tasks, sync)
	return e
}

// Register wires up all API routes on the provided Echo instance.
func Register(e *echo.Echo, tasks taskservice.Service, sync SyncController) {
	h := &handlers{tasks: tasks, sync: sync}

	e.GET("/tasks", h.listTasks)
	e.POST("/tasks", h.createTask)
	e.GET("/tasks/stream", h.streamTasks)
	e.POST("/tasks/evict", h.evictDeleted)
	e.GET("/tasks/:id", h.getTask)
	e.PUT("/tasks/:id", h.updateTask)
	e.POST("/tasks/:id/toggle", h.toggleTask)
	e.DELETE("/tasks/:id", h.deleteTask)

	e.GET("/sync/state", h.syncState)
	e.POST("/sync/toggle", h.toggleSync)

	e.GET("/healthz", healthz)
}

// sonicSerializer implements echo.JSONSerializer with sonic
type sonicSerializer struct{}

func (sonicSerializer) Serialize(c echo.Context, i any, indent string) error {
	enc := sonic.ConfigStd.NewEncoder(c.Response())
	if indent != "" {
		enc.SetIndent("", indent)
	}
	return enc.Encode(i)
}

func (sonicSerializer) Deserialize(c echo.Context, i any) error {
	if err := sonic.ConfigStd.NewDecoder(c.Request().Body).Decode(i); err != nil {
		return echo.NewHTTPError(400, "invalid body").SetInternal(err)
	}
	return nil
}

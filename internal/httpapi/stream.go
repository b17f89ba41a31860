package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"

	"github.com/thenoetrevino/tasks/internal/models"
)

// keepAliveInterval is how often an idle stream gets a comment line
const keepAliveInterval = 15 * time.Second

// streamTasks sends the not-deleted task list as server-sent events: once
// when the stream opens and again after every change
func (h *handlers) streamTasks(c echo.Context) error {
	c.Response().Header().Set(echo.HeaderContentType, "text/event-stream")
	c.Response().Header().Set(echo.HeaderCacheControl, "no-cache")
	c.Response().Header().Set(echo.HeaderConnection, "keep-alive")
	c.Response().Header().Set("X-Accel-Buffering", "no")
	flusher, ok := c.Response().Writer.(http.Flusher)
	if !ok {
		return c.String(http.StatusInternalServerError, "stream unsupported")
	}

	ctx := c.Request().Context()

	// Keep only the latest result set when the client is slow
	updates := make(chan []models.Task, 1)
	sub, err := h.tasks.RegisterObserver(ctx, func(tasks []models.Task) {
		for {
			select {
			case updates <- tasks:
				return
			default:
			}
			select {
			case <-updates:
			default:
			}
		}
	})
	if err != nil {
		return respondError(c, err)
	}
	defer sub.Cancel()

	initial, err := h.tasks.GetTasks(ctx, false)
	if err != nil {
		return respondError(c, err)
	}

	c.Response().WriteHeader(http.StatusOK)
	if err := writeTaskList(c, flusher, initial); err != nil {
		return err
	}

	keepAlive := time.NewTicker(keepAliveInterval)
	defer keepAlive.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case tasks := <-updates:
			if err := writeTaskList(c, flusher, tasks); err != nil {
				return err
			}
		case <-keepAlive.C:
			if _, err := c.Response().Write([]byte(": keep-alive\n\n")); err != nil {
				return err
			}
			flusher.Flush()
		}
	}
}

func writeTaskList(c echo.Context, flusher http.Flusher, tasks []models.Task) error {
	if tasks == nil {
		tasks = []models.Task{}
	}
	data, err := sonic.ConfigStd.Marshal(tasks)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(c.Response(), "event: task_list\ndata: %s\n\n", data); err != nil {
		return err
	}
	flusher.Flush()
	return nil
}

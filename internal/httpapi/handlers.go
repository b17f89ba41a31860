package httpapi

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/thenoetrevino/tasks/internal/converters"
	"github.com/thenoetrevino/tasks/internal/models"
	taskservice "github.com/thenoetrevino/tasks/internal/services/task"
)

// maxBodySize bounds request bodies
const maxBodySize = 64 << 10

type handlers struct {
	tasks taskservice.Service
	sync  SyncController
}

type syncResponse struct {
	State models.SyncState `json:"state"`
}

func healthz(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}

func isJSON(c echo.Context) bool {
	return strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEApplicationJSON)
}

// readTask accepts either a JSON task document or "title" and "done" form
// fields. Fields missing from the request keep their zero values.
func readTask(c echo.Context) (models.Task, error) {
	if isJSON(c) {
		body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxBodySize))
		if err != nil {
			return models.Task{}, err
		}
		return converters.TaskFromJSON(string(body))
	}

	task := models.Task{Title: c.FormValue("title")}
	if done := c.FormValue("done"); done != "" {
		parsed, err := strconv.ParseBool(done)
		if err != nil {
			return models.Task{}, err
		}
		task.Done = parsed
	}
	return task, nil
}

func (h *handlers) listTasks(c echo.Context) error {
	includeDeleted, _ := strconv.ParseBool(c.QueryParam("include_deleted"))

	tasks, err := h.tasks.GetTasks(c.Request().Context(), includeDeleted)
	if err != nil {
		return respondError(c, err)
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	return c.JSON(http.StatusOK, tasks)
}

func (h *handlers) getTask(c echo.Context) error {
	task, err := h.tasks.GetTask(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, task)
}

func (h *handlers) createTask(c echo.Context) error {
	req, err := readTask(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid body"})
	}

	ctx := c.Request().Context()
	id, err := h.tasks.AddTask(ctx, req.Title, req.Done)
	if err != nil {
		return respondError(c, err)
	}

	task, err := h.tasks.GetTask(ctx, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, task)
}

// updateTask overwrites title, done and deleted from a JSON task, or only
// the title when given a form
func (h *handlers) updateTask(c echo.Context) error {
	req, err := readTask(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid body"})
	}

	ctx := c.Request().Context()
	id := c.Param("id")
	if isJSON(c) {
		req.ID = id
		err = h.tasks.UpdateTask(ctx, req)
	} else {
		err = h.tasks.UpdateTaskTitle(ctx, id, req.Title)
	}
	if err != nil {
		return respondError(c, err)
	}

	if req.Deleted {
		return c.JSON(http.StatusOK, req)
	}
	task, err := h.tasks.GetTask(ctx, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, task)
}

func (h *handlers) toggleTask(c echo.Context) error {
	ctx := c.Request().Context()
	task, err := h.tasks.GetTask(ctx, c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}

	if err := h.tasks.MarkTaskComplete(ctx, task.ID, !task.Done); err != nil {
		return respondError(c, err)
	}
	task.Done = !task.Done
	return c.JSON(http.StatusOK, task)
}

func (h *handlers) deleteTask(c echo.Context) error {
	if err := h.tasks.DeleteTask(c.Request().Context(), c.Param("id")); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *handlers) evictDeleted(c echo.Context) error {
	if err := h.tasks.EvictDeletedTasks(c.Request().Context()); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *handlers) syncState(c echo.Context) error {
	if h.sync == nil {
		return c.JSON(http.StatusServiceUnavailable, errorResponse{Error: "sync is not available"})
	}
	return c.JSON(http.StatusOK, syncResponse{State: h.sync.SyncState()})
}

func (h *handlers) toggleSync(c echo.Context) error {
	if h.sync == nil {
		return c.JSON(http.StatusServiceUnavailable, errorResponse{Error: "sync is not available"})
	}
	if err := h.sync.ToggleSync(c.Request().Context()); err != nil {
		return c.JSON(http.StatusBadGateway, errorResponse{Error: err.Error()})
	}
	return c.JSON(http.StatusOK, syncResponse{State: h.sync.SyncState()})
}

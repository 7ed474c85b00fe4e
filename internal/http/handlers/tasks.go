package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"taskboard/internal/domain"
	"taskboard/internal/engine"
	"taskboard/internal/repository"
	"taskboard/internal/service"

	"github.com/gin-gonic/gin"
)

// parseFilter maps list query params onto the engine filter. Values are
// passed through mostly unvalidated: the engine owns filter validation
// and its errors come back as 400s.
func parseFilter(c *gin.Context) (engine.Filter, error) {
	var f engine.Filter

	if v, ok := c.GetQuery("status"); ok {
		s := domain.Status(v)
		f.Status = &s
	}
	if v, ok := c.GetQuery("priority"); ok {
		p := domain.Priority(v)
		f.Priority = &p
	}
	if v, ok := c.GetQuery("tag"); ok {
		f.Tag = &v
	}
	if v, ok := c.GetQuery("search"); ok {
		f.Search = &v
	}
	if v, ok := c.GetQuery("archived"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return f, errors.New("archived must be a boolean")
		}
		f.Archived = &b
	}
	f.SortBy = c.Query("sort_by")
	f.SortOrder = c.Query("sort_order")
	if v, ok := c.GetQuery("page"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return f, errors.New("page must be an integer")
		}
		f.Page = &n
	}
	if v, ok := c.GetQuery("limit"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return f, errors.New("limit must be an integer")
		}
		f.Limit = &n
	}
	return f, nil
}

// ListTasks returns one page of the caller's tasks.
func (h *Handler) ListTasks(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	filter, err := parseFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	page, err := h.Tasks.List(c.Request.Context(), userID, filter)
	if err != nil {
		if errors.Is(err, engine.ErrInvalidFilter) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list tasks"})
		return
	}

	if page.Tasks == nil {
		page.Tasks = []*domain.Task{}
	}
	c.JSON(http.StatusOK, page)
}

// CreateTask adds a task at the end of the caller's list.
func (h *Handler) CreateTask(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	var in service.CreateTaskInput
	if err := c.BindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	task, err := h.Tasks.Create(c.Request.Context(), userID, in)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, task)
}

// UpdateTask applies a partial update to one task.
func (h *Handler) UpdateTask(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	var in service.UpdateTaskInput
	if err := c.BindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	task, err := h.Tasks.Update(c.Request.Context(), userID, c.Param("id"), in)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTaskNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		case errors.Is(err, repository.ErrWriteConflict):
			c.JSON(http.StatusConflict, gin.H{"error": "task changed concurrently, retry"})
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, task)
}

// DeleteTask removes a task permanently.
func (h *Handler) DeleteTask(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	if err := h.Tasks.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

type moveRequest struct {
	Index int `json:"index"`
}

// MoveTask reorders the caller's tasks so the target lands at the
// requested index.
func (h *Handler) MoveTask(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	var req moveRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	err := h.Tasks.Move(c.Request.Context(), userID, c.Param("id"), req.Index)
	if err != nil {
		switch {
		case errors.Is(err, engine.ErrInvalidMove):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, repository.ErrWriteConflict):
			c.JSON(http.StatusConflict, gin.H{"error": "tasks changed concurrently, retry"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to move task"})
		}
		return
	}
	c.Status(http.StatusNoContent)
}

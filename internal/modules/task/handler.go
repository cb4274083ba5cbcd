package task

import (
	"errors"
	"net/http"

	"taskboard/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

// Handler manages the HTTP surface for tasks. All routes sit behind the JWT
// middleware, which has already resolved user_id into the context.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(protected *gin.RouterGroup) {
	taskGroup := protected.Group("/tasks")
	{
		taskGroup.GET("", h.List)
		taskGroup.POST("", h.Create)
		taskGroup.GET("/:id", h.Get)
		taskGroup.PUT("/:id", h.Update)
		taskGroup.DELETE("/:id", h.Delete)
	}
}

func (h *Handler) List(c *gin.Context) {
	tasks, err := h.service.List(c.Request.Context(), c.GetString("user_id"))
	if err != nil {
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "TASKS_FAILED", "Failed to load tasks")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"tasks": tasks})
}

func (h *Handler) Get(c *gin.Context) {
	t, err := h.service.Get(c.Request.Context(), c.Param("id"), c.GetString("user_id"))
	if err != nil {
		if errors.Is(err, ErrTaskNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Task not found")
			return
		}
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "TASKS_FAILED", "Failed to load task")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"task": t})
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	t, err := h.service.Create(c.Request.Context(), c.GetString("user_id"), req)
	if err != nil {
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "TASKS_FAILED", "Failed to create task")
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"task": t})
}

func (h *Handler) Update(c *gin.Context) {
	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	t, err := h.service.Update(c.Request.Context(), c.Param("id"), c.GetString("user_id"), req)
	if err != nil {
		if errors.Is(err, ErrTaskNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Task not found")
			return
		}
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "TASKS_FAILED", "Failed to update task")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"task": t})
}

func (h *Handler) Delete(c *gin.Context) {
	err := h.service.Delete(c.Request.Context(), c.Param("id"), c.GetString("user_id"))
	if err != nil {
		if errors.Is(err, ErrTaskNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Task not found")
			return
		}
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "TASKS_FAILED", "Failed to delete task")
		return
	}

	response.Message(c, http.StatusOK, "Task deleted")
}

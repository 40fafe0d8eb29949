package tasks

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"geo-survey/survey-portal/survey-portal-backend/pkg/apperrors"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("", h.CreateTask)
	r.GET("", h.ListTasks)
	r.GET("/search", h.SearchTasks)
	r.GET("/:id", h.GetTask)
	r.PUT("/:id", h.UpdateTask)
	r.PUT("/:id/status", h.ChangeStatus)
	r.DELETE("/:id", h.DeleteTask)
	r.POST("/:id/techniciens/:technicienId", h.AssignTechnicien)
	r.DELETE("/:id/techniciens/:technicienId", h.UnassignTechnicien)
	r.PUT("/:id/techniciens", h.ReassignTechniciens)
}

func (h *Handler) CreateTask(c *gin.Context) {
	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := h.service.CreateTask(c.Request.Context(), req)
	if err != nil {
		c.JSON(apperrors.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, ToResponse(task))
}

func (h *Handler) GetTask(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task id"})
		return
	}

	task, err := h.service.GetTask(c.Request.Context(), id)
	if err != nil {
		c.JSON(apperrors.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, ToResponse(task))
}

func (h *Handler) ListTasks(c *gin.Context) {
	filter := TaskFilter{
		Status: c.Query("status"),
		Search: c.Query("search"),
		SortBy: c.Query("sort"),
	}
	if project := c.Query("project_id"); project != "" {
		id, err := uuid.Parse(project)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project_id"})
			return
		}
		filter.ProjectID = &id
	}
	if technicien := c.Query("technicien_id"); technicien != "" {
		id, err := uuid.Parse(technicien)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid technicien_id"})
			return
		}
		filter.TechnicienID = &id
	}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.PageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "20"))

	tasksList, total, err := h.service.ListTasks(c.Request.Context(), filter)
	if err != nil {
		c.JSON(apperrors.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	responses := make([]TaskResponse, 0, len(tasksList))
	for i := range tasksList {
		responses = append(responses, ToResponse(&tasksList[i]))
	}
	c.JSON(http.StatusOK, gin.H{
		"items": responses,
		"total": total,
		"page":  filter.Page,
	})
}

func (h *Handler) UpdateTask(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task id"})
		return
	}

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := h.service.UpdateTask(c.Request.Context(), id, req)
	if err != nil {
		c.JSON(apperrors.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, ToResponse(task))
}

func (h *Handler) ChangeStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task id"})
		return
	}

	var payload struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := h.service.ChangeStatus(c.Request.Context(), id, payload.Status)
	if err != nil {
		c.JSON(apperrors.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, ToResponse(task))
}

func (h *Handler) DeleteTask(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task id"})
		return
	}

	if err := h.service.DeleteTask(c.Request.Context(), id); err != nil {
		c.JSON(apperrors.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) AssignTechnicien(c *gin.Context) {
	taskID, technicienID, ok := h.pathIDs(c)
	if !ok {
		return
	}

	task, err := h.service.AssignTechnicien(c.Request.Context(), taskID, technicienID)
	if err != nil {
		c.JSON(apperrors.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, ToResponse(task))
}

func (h *Handler) UnassignTechnicien(c *gin.Context) {
	taskID, technicienID, ok := h.pathIDs(c)
	if !ok {
		return
	}

	task, err := h.service.UnassignTechnicien(c.Request.Context(), taskID, technicienID)
	if err != nil {
		c.JSON(apperrors.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, ToResponse(task))
}

func (h *Handler) ReassignTechniciens(c *gin.Context) {
	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task id"})
		return
	}

	var payload struct {
		TechnicienIDs []uuid.UUID `json:"technicien_ids"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := h.service.ReassignTechniciens(c.Request.Context(), taskID, payload.TechnicienIDs)
	if err != nil {
		c.JSON(apperrors.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, ToResponse(task))
}

func (h *Handler) SearchTasks(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "q is required"})
		return
	}
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))

	docs, err := h.service.SearchTasks(c.Request.Context(), query, size)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": docs})
}

func (h *Handler) pathIDs(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task id"})
		return uuid.Nil, uuid.Nil, false
	}
	technicienID, err := uuid.Parse(c.Param("technicienId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid technician id"})
		return uuid.Nil, uuid.Nil, false
	}
	return taskID, technicienID, true
}

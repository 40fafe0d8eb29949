package auth

import (
	"net/http"

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

func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		if apperrors.KindOf(err) == apperrors.KindValidation {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		c.JSON(apperrors.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Me reports the identity carried by the current token
func (h *Handler) Me(c *gin.Context) {
	userID, _ := c.Get(ContextUserID)
	c.JSON(http.StatusOK, gin.H{
		"user_id": userID.(uuid.UUID),
		"role":    c.GetString(ContextRole),
	})
}

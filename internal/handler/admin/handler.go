package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/clinichq/clinic-api/internal/handler"
	"github.com/clinichq/clinic-api/internal/model"
	"github.com/clinichq/clinic-api/internal/service/auth"
	"github.com/clinichq/clinic-api/internal/service/stats"
)

type Handler struct {
	stats *stats.Service
	auth  *auth.Service
}

func NewHandler(statsService *stats.Service, authService *auth.Service) *Handler {
	return &Handler{stats: statsService, auth: authService}
}

func (h *Handler) Statistics(c *gin.Context) {
	snapshot, err := h.stats.Snapshot(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(snapshot))
}

func (h *Handler) ListUsers(c *gin.Context) {
	if role := c.Query("role"); role != "" {
		users, err := h.auth.UsersInRole(c.Request.Context(), model.Role(role))
		if err != nil {
			c.Error(err)
			return
		}
		c.JSON(http.StatusOK, handler.NewSuccessResponse(users))
		return
	}

	users, err := h.auth.ListUsers(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(users))
}

func (h *Handler) PatientsByDoctor(c *gin.Context) {
	groups, err := h.stats.PatientsByDoctor(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(groups))
}

type assignRoleRequest struct {
	Role model.Role `json:"role" binding:"required"`
}

func (h *Handler) AssignRole(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid user ID"))
		return
	}

	var req assignRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	if err := h.auth.AssignRole(c.Request.Context(), id, req.Role); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"message": "role updated"}))
}

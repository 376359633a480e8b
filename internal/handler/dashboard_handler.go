package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/labworks/labviva-backend/internal/middleware"
	"github.com/labworks/labviva-backend/internal/response"
	"github.com/labworks/labviva-backend/internal/service"
)

// DashboardHandler handles the faculty dashboard endpoint.
type DashboardHandler struct {
	dashboardService *service.DashboardService
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(dashboardService *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// Get godoc
// GET /api/v1/faculty/dashboard
func (h *DashboardHandler) Get(c *gin.Context) {
	claims := middleware.GetClaims(c)

	data, err := h.dashboardService.GetDashboard(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, data)
}

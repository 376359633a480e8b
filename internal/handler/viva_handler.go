package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/labworks/labviva-backend/internal/middleware"
	"github.com/labworks/labviva-backend/internal/response"
	"github.com/labworks/labviva-backend/internal/service"
	"github.com/labworks/labviva-backend/internal/viva"
)

// VivaHandler handles the REST side of the viva flow: preflight, results,
// attempt history and faculty monitoring. The live test runs over the
// websocket handler.
type VivaHandler struct {
	vivaService *service.VivaService
}

// NewVivaHandler creates a new VivaHandler.
func NewVivaHandler(vivaService *service.VivaService) *VivaHandler {
	return &VivaHandler{vivaService: vivaService}
}

// Preflight godoc
// GET /api/v1/student/experiments/:experiment_id/viva/preflight
// Tells the client whether a test can be started and how long it will run.
func (h *VivaHandler) Preflight(c *gin.Context) {
	claims := middleware.GetClaims(c)

	experimentID, err := uuid.Parse(c.Param("experiment_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	info, err := h.vivaService.Preflight(c.Request.Context(), claims.UserID, experimentID)
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	response.Success(c, http.StatusOK, info)
}

// Results godoc
// GET /api/v1/student/experiments/:experiment_id/viva/results
// Replays a completed attempt: grade band plus per-question review.
func (h *VivaHandler) Results(c *gin.Context) {
	claims := middleware.GetClaims(c)

	experimentID, err := uuid.Parse(c.Param("experiment_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	result, err := h.vivaService.Results(c.Request.Context(), claims.UserID, experimentID)
	if err != nil {
		if errors.Is(err, service.ErrNoAttempt) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, result)
}

// MyAttempts godoc
// GET /api/v1/student/viva/attempts
func (h *VivaHandler) MyAttempts(c *gin.Context) {
	claims := middleware.GetClaims(c)

	attempts, err := h.vivaService.MyAttempts(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, attempts)
}

// AttemptsByExperiment godoc
// GET /api/v1/faculty/experiments/:experiment_id/viva/attempts
func (h *VivaHandler) AttemptsByExperiment(c *gin.Context) {
	claims := middleware.GetClaims(c)

	experimentID, err := uuid.Parse(c.Param("experiment_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	attempts, err := h.vivaService.AttemptsByExperiment(c.Request.Context(), experimentID, claims.UserID)
	if err != nil {
		if errors.Is(err, service.ErrNotExperimentOwner) {
			response.Fail(c, http.StatusForbidden, response.ErrForbidden)
			return
		}
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	response.Success(c, http.StatusOK, attempts)
}

// ViolationHistory godoc
// GET /api/v1/faculty/experiments/:experiment_id/viva/violations?student_id=N
func (h *VivaHandler) ViolationHistory(c *gin.Context) {
	claims := middleware.GetClaims(c)

	experimentID, err := uuid.Parse(c.Param("experiment_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	studentID, err := strconv.Atoi(c.Query("student_id"))
	if err != nil || studentID <= 0 {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	events, err := h.vivaService.ViolationHistory(c.Request.Context(), experimentID, studentID, claims.UserID)
	if err != nil {
		if errors.Is(err, service.ErrNotExperimentOwner) {
			response.Fail(c, http.StatusForbidden, response.ErrForbidden)
			return
		}
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	response.Success(c, http.StatusOK, events)
}

// Monitor godoc
// GET /api/v1/faculty/viva/monitor
// Snapshot of every test currently in flight on this instance.
func (h *VivaHandler) Monitor(c *gin.Context) {
	snapshots := h.vivaService.LiveSnapshots()
	if snapshots == nil {
		snapshots = []viva.Snapshot{}
	}
	response.Success(c, http.StatusOK, snapshots)
}

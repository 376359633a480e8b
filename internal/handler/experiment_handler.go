package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/labworks/labviva-backend/internal/middleware"
	"github.com/labworks/labviva-backend/internal/model"
	"github.com/labworks/labviva-backend/internal/repository"
	"github.com/labworks/labviva-backend/internal/response"
	"github.com/labworks/labviva-backend/internal/service"
	"github.com/labworks/labviva-backend/internal/validator"
)

// ExperimentHandler handles experiment endpoints.
type ExperimentHandler struct {
	experimentService *service.ExperimentService
}

// NewExperimentHandler creates a new ExperimentHandler.
func NewExperimentHandler(experimentService *service.ExperimentService) *ExperimentHandler {
	return &ExperimentHandler{experimentService: experimentService}
}

// ListMine godoc
// GET /api/v1/faculty/experiments
func (h *ExperimentHandler) ListMine(c *gin.Context) {
	claims := middleware.GetClaims(c)

	experiments, err := h.experimentService.ListByFaculty(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, experiments)
}

// ListAll godoc
// GET /api/v1/student/experiments
// The student's lab dashboard: every experiment across faculties.
func (h *ExperimentHandler) ListAll(c *gin.Context) {
	experiments, err := h.experimentService.ListAll(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, experiments)
}

// Create godoc
// POST /api/v1/faculty/experiments
func (h *ExperimentHandler) Create(c *gin.Context) {
	claims := middleware.GetClaims(c)

	var req model.CreateExperimentRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	experiment, err := h.experimentService.Create(c.Request.Context(), claims.UserID, &req)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, experiment)
}

// Update godoc
// PUT /api/v1/faculty/experiments/:experiment_id
func (h *ExperimentHandler) Update(c *gin.Context) {
	claims := middleware.GetClaims(c)

	id, err := uuid.Parse(c.Param("experiment_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.UpdateExperimentRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	experiment, err := h.experimentService.Update(c.Request.Context(), id, claims.UserID, &req)
	if err != nil {
		if errors.Is(err, service.ErrNotExperimentOwner) {
			response.Fail(c, http.StatusForbidden, response.ErrForbidden)
			return
		}
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	response.Success(c, http.StatusOK, experiment)
}

// Delete godoc
// DELETE /api/v1/faculty/experiments/:experiment_id
func (h *ExperimentHandler) Delete(c *gin.Context) {
	claims := middleware.GetClaims(c)

	id, err := uuid.Parse(c.Param("experiment_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.experimentService.Delete(c.Request.Context(), id, claims.UserID); err != nil {
		switch {
		case errors.Is(err, service.ErrNotExperimentOwner):
			response.Fail(c, http.StatusForbidden, response.ErrForbidden)
		case errors.Is(err, repository.ErrExperimentHasDependents):
			response.Fail(c, http.StatusConflict, response.ErrDependencyExists)
		default:
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}

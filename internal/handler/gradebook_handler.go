package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campusops/registrar-api/internal/service"
	appErrors "github.com/campusops/registrar-api/pkg/errors"
	"github.com/campusops/registrar-api/pkg/response"
)

// GradebookHandler exposes section grade submission endpoints.
type GradebookHandler struct {
	gradebook *service.GradebookService
}

// NewGradebookHandler constructs the handler.
func NewGradebookHandler(gradebook *service.GradebookService) *GradebookHandler {
	return &GradebookHandler{gradebook: gradebook}
}

// Roster godoc
// @Summary Section roster with current grades
// @Tags Gradebook
// @Produce json
// @Param sectionID path string true "Section ID"
// @Success 200 {object} response.Envelope
// @Router /sections/{sectionID}/grades [get]
func (h *GradebookHandler) Roster(c *gin.Context) {
	entries, err := h.gradebook.Roster(c.Request.Context(), c.Param("sectionID"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}

// Submit godoc
// @Summary Submit final grades for a section
// @Description The batch is atomic: one bad entry rejects the whole submission
// @Tags Gradebook
// @Accept json
// @Produce json
// @Param sectionID path string true "Section ID"
// @Param payload body service.BulkGradeRequest true "Grade changes"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /sections/{sectionID}/grades [put]
func (h *GradebookHandler) Submit(c *gin.Context) {
	var req service.BulkGradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid grade payload"))
		return
	}

	result, err := h.gradebook.SubmitGrades(c.Request.Context(), c.Param("sectionID"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campusops/registrar-api/internal/models"
	"github.com/campusops/registrar-api/internal/service"
	appErrors "github.com/campusops/registrar-api/pkg/errors"
	"github.com/campusops/registrar-api/pkg/response"
)

// ProgressHandler exposes student transcript, GPA, progress and
// degree-audit endpoints.
type ProgressHandler struct {
	transcripts  *service.TranscriptService
	degrees      *service.DegreeService
	registration *service.RegistrationService
}

// NewProgressHandler constructs the handler.
func NewProgressHandler(transcripts *service.TranscriptService, degrees *service.DegreeService, registration *service.RegistrationService) *ProgressHandler {
	return &ProgressHandler{transcripts: transcripts, degrees: degrees, registration: registration}
}

// Transcript godoc
// @Summary Student transcript
// @Description Raw transcript rows, optionally filtered by term or section
// @Tags Progress
// @Produce json
// @Param studentID path string true "Student ID"
// @Param termId query string false "Term ID"
// @Param sectionId query string false "Section ID"
// @Success 200 {object} response.Envelope
// @Router /students/{studentID}/transcript [get]
func (h *ProgressHandler) Transcript(c *gin.Context) {
	filter := models.TranscriptFilter{
		TermID:    c.Query("termId"),
		SectionID: c.Query("sectionId"),
	}
	entries, err := h.transcripts.List(c.Request.Context(), c.Param("studentID"), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}

// GPA godoc
// @Summary Credit and GPA summary
// @Tags Progress
// @Produce json
// @Param studentID path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{studentID}/gpa [get]
func (h *ProgressHandler) GPA(c *gin.Context) {
	summary, err := h.transcripts.Summary(c.Request.Context(), c.Param("studentID"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// Progress godoc
// @Summary Full progress report
// @Description Credit/GPA summary plus requirement-category state
// @Tags Progress
// @Produce json
// @Param studentID path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{studentID}/progress [get]
func (h *ProgressHandler) Progress(c *gin.Context) {
	report, err := h.transcripts.Progress(c.Request.Context(), c.Param("studentID"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// DegreeAudit godoc
// @Summary Degree requirement audit
// @Description Evaluates every declared program against the transcript
// @Tags Progress
// @Produce json
// @Param studentID path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{studentID}/degree-audit [get]
func (h *ProgressHandler) DegreeAudit(c *gin.Context) {
	statuses, err := h.degrees.Audit(c.Request.Context(), c.Param("studentID"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, statuses, nil)
}

// RegistrationWindow godoc
// @Summary Resolve the student's registration window
// @Tags Progress
// @Produce json
// @Param studentID path string true "Student ID"
// @Param termId query string true "Term ID"
// @Param standing query string true "Class standing (U1-U4)"
// @Success 200 {object} response.Envelope
// @Router /students/{studentID}/registration-window [get]
func (h *ProgressHandler) RegistrationWindow(c *gin.Context) {
	termID := c.Query("termId")
	standing := models.ClassStanding(c.Query("standing"))
	if termID == "" || standing == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "termId and standing required"))
		return
	}

	resolved, err := h.registration.ResolveForStudent(c.Request.Context(), c.Param("studentID"), termID, standing)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resolved, nil)
}

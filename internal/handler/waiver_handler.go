package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campusops/registrar-api/internal/models"
	"github.com/campusops/registrar-api/internal/service"
	appErrors "github.com/campusops/registrar-api/pkg/errors"
	"github.com/campusops/registrar-api/pkg/response"
)

// WaiverHandler exposes the time-conflict waiver workflow.
type WaiverHandler struct {
	waivers *service.WaiverService
}

// NewWaiverHandler constructs the handler.
func NewWaiverHandler(waivers *service.WaiverService) *WaiverHandler {
	return &WaiverHandler{waivers: waivers}
}

// Create godoc
// @Summary Submit a time-conflict waiver
// @Tags Waivers
// @Accept json
// @Produce json
// @Param payload body service.CreateWaiverRequest true "Waiver payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /waivers [post]
func (h *WaiverHandler) Create(c *gin.Context) {
	var req service.CreateWaiverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid waiver payload"))
		return
	}

	claims := claimsFromContext(c)
	if claims != nil && claims.Role == models.RoleStudent {
		// Students can only file waivers for themselves.
		req.StudentID = claims.UserID
	}

	waiver, err := h.waivers.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, waiver)
}

// List godoc
// @Summary List waivers
// @Tags Waivers
// @Produce json
// @Param studentId query string false "Student ID"
// @Param termId query string false "Term ID"
// @Param state query string false "PENDING, FULLY_APPROVED or DENIED"
// @Success 200 {object} response.Envelope
// @Router /waivers [get]
func (h *WaiverHandler) List(c *gin.Context) {
	filter := models.WaiverFilter{
		StudentID: c.Query("studentId"),
		TermID:    c.Query("termId"),
		State:     models.WaiverState(c.Query("state")),
	}

	claims := claimsFromContext(c)
	if claims != nil && claims.Role == models.RoleStudent {
		filter.StudentID = claims.UserID
	}

	waivers, err := h.waivers.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, waivers, nil)
}

// Get godoc
// @Summary Get one waiver with its derived state
// @Tags Waivers
// @Produce json
// @Param id path string true "Waiver ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /waivers/{id} [get]
func (h *WaiverHandler) Get(c *gin.Context) {
	waiver, err := h.waivers.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	claims := claimsFromContext(c)
	if claims != nil && claims.Role == models.RoleStudent && waiver.StudentID != claims.UserID {
		response.Error(c, appErrors.ErrForbidden)
		return
	}
	response.JSON(c, http.StatusOK, waiver, nil)
}

// Approve godoc
// @Summary Record one party's approval
// @Tags Waivers
// @Accept json
// @Produce json
// @Param id path string true "Waiver ID"
// @Param payload body service.DecideWaiverRequest true "Deciding party"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /waivers/{id}/approve [post]
func (h *WaiverHandler) Approve(c *gin.Context) {
	var req service.DecideWaiverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid approval payload"))
		return
	}

	waiver, err := h.waivers.Approve(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, waiver, nil)
}

// Deny godoc
// @Summary Record a terminal denial
// @Tags Waivers
// @Accept json
// @Produce json
// @Param id path string true "Waiver ID"
// @Param payload body service.DecideWaiverRequest true "Deciding party"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /waivers/{id}/deny [post]
func (h *WaiverHandler) Deny(c *gin.Context) {
	var req service.DecideWaiverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid denial payload"))
		return
	}

	waiver, err := h.waivers.Deny(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, waiver, nil)
}

package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campusops/registrar-api/internal/service"
	appErrors "github.com/campusops/registrar-api/pkg/errors"
	"github.com/campusops/registrar-api/pkg/response"
)

// WindowHandler manages a term's registration window configuration.
type WindowHandler struct {
	registration *service.RegistrationService
}

// NewWindowHandler constructs the handler.
func NewWindowHandler(registration *service.RegistrationService) *WindowHandler {
	return &WindowHandler{registration: registration}
}

// List godoc
// @Summary List a term's registration windows
// @Tags Registration
// @Produce json
// @Param termID path string true "Term ID"
// @Success 200 {object} response.Envelope
// @Router /terms/{termID}/registration-windows [get]
func (h *WindowHandler) List(c *gin.Context) {
	windows, err := h.registration.ListWindows(c.Request.Context(), c.Param("termID"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, windows, nil)
}

// Replace godoc
// @Summary Replace a term's registration windows
// @Description Swaps the full window configuration atomically
// @Tags Registration
// @Accept json
// @Produce json
// @Param termID path string true "Term ID"
// @Param payload body service.ReplaceWindowsRequest true "Window configuration"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /terms/{termID}/registration-windows [put]
func (h *WindowHandler) Replace(c *gin.Context) {
	var req service.ReplaceWindowsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid window payload"))
		return
	}

	windows, err := h.registration.ReplaceWindows(c.Request.Context(), c.Param("termID"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, windows, nil)
}

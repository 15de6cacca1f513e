package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/schoolware/timetable-api/internal/dto"
	"github.com/schoolware/timetable-api/internal/service"
	appErrors "github.com/schoolware/timetable-api/pkg/errors"
	"github.com/schoolware/timetable-api/pkg/response"
)

// TermHandler exposes academic year and term endpoints.
type TermHandler struct {
	service *service.TermService
}

// NewTermHandler constructs a term handler.
func NewTermHandler(svc *service.TermService) *TermHandler {
	return &TermHandler{service: svc}
}

// ListAcademicYears godoc
// @Summary List academic years
// @Tags Terms
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /academic-years [get]
func (h *TermHandler) ListAcademicYears(c *gin.Context) {
	years, err := h.service.ListAcademicYears(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, years, nil)
}

// GetActiveAcademicYear godoc
// @Summary Get the active academic year
// @Tags Terms
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /academic-years/active [get]
func (h *TermHandler) GetActiveAcademicYear(c *gin.Context) {
	year, err := h.service.GetActiveAcademicYear(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, year, nil)
}

// CreateAcademicYear godoc
// @Summary Create an academic year
// @Tags Terms
// @Accept json
// @Produce json
// @Param payload body dto.AcademicYearRequest true "Academic year payload"
// @Success 201 {object} response.Envelope
// @Router /academic-years [post]
func (h *TermHandler) CreateAcademicYear(c *gin.Context) {
	var req dto.AcademicYearRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	year, err := h.service.CreateAcademicYear(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, year)
}

// UpdateAcademicYear godoc
// @Summary Update an academic year
// @Tags Terms
// @Accept json
// @Produce json
// @Param id path string true "Academic year ID"
// @Param payload body dto.AcademicYearRequest true "Academic year payload"
// @Success 200 {object} response.Envelope
// @Router /academic-years/{id} [put]
func (h *TermHandler) UpdateAcademicYear(c *gin.Context) {
	var req dto.AcademicYearRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	year, err := h.service.UpdateAcademicYear(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, year, nil)
}

// ListTerms godoc
// @Summary List terms of an academic year
// @Tags Terms
// @Produce json
// @Param academic_year_id query string true "Academic year ID"
// @Success 200 {object} response.Envelope
// @Router /terms [get]
func (h *TermHandler) ListTerms(c *gin.Context) {
	terms, err := h.service.ListTerms(c.Request.Context(), c.Query("academic_year_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, terms, nil)
}

// GetTerm godoc
// @Summary Get one term
// @Tags Terms
// @Produce json
// @Param id path string true "Term ID"
// @Success 200 {object} response.Envelope
// @Router /terms/{id} [get]
func (h *TermHandler) GetTerm(c *gin.Context) {
	term, err := h.service.GetTerm(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, term, nil)
}

// CreateTerm godoc
// @Summary Create a term
// @Tags Terms
// @Accept json
// @Produce json
// @Param payload body dto.TermRequest true "Term payload"
// @Success 201 {object} response.Envelope
// @Router /terms [post]
func (h *TermHandler) CreateTerm(c *gin.Context) {
	var req dto.TermRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	term, err := h.service.CreateTerm(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, term)
}

// UpdateTerm godoc
// @Summary Update a term
// @Tags Terms
// @Accept json
// @Produce json
// @Param id path string true "Term ID"
// @Param payload body dto.TermRequest true "Term payload"
// @Success 200 {object} response.Envelope
// @Router /terms/{id} [put]
func (h *TermHandler) UpdateTerm(c *gin.Context) {
	var req dto.TermRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	term, err := h.service.UpdateTerm(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, term, nil)
}

// DeleteTerm godoc
// @Summary Delete a term
// @Tags Terms
// @Param id path string true "Term ID"
// @Success 204
// @Router /terms/{id} [delete]
func (h *TermHandler) DeleteTerm(c *gin.Context) {
	if err := h.service.DeleteTerm(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

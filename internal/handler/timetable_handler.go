package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/schoolware/timetable-api/internal/dto"
	"github.com/schoolware/timetable-api/internal/models"
	"github.com/schoolware/timetable-api/internal/service"
	appErrors "github.com/schoolware/timetable-api/pkg/errors"
	"github.com/schoolware/timetable-api/pkg/response"
)

// TimetableHandler exposes timetable generation, listing and mutation
// endpoints.
type TimetableHandler struct {
	service *service.TimetableService
	exports *service.ExportService
	metrics *service.MetricsService
}

// NewTimetableHandler constructs a timetable handler.
func NewTimetableHandler(svc *service.TimetableService, exports *service.ExportService, metrics *service.MetricsService) *TimetableHandler {
	return &TimetableHandler{service: svc, exports: exports, metrics: metrics}
}

// Generate godoc
// @Summary Generate the weekly timetable for a term
// @Tags Timetable
// @Accept json
// @Produce json
// @Param payload body dto.GenerateTimetableRequest true "Generation payload"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /timetable/generate [post]
func (h *TimetableHandler) Generate(c *gin.Context) {
	var req dto.GenerateTimetableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	start := time.Now()
	result, err := h.service.Generate(c.Request.Context(), req)
	h.metrics.ObserveGeneration("timetable", generationOutcome(err), time.Since(start))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// List godoc
// @Summary List timetable entries for a term
// @Tags Timetable
// @Produce json
// @Param term_id query string true "Term ID"
// @Param class_id query string false "Narrow to one class"
// @Param teacher_id query string false "Narrow to one teacher"
// @Success 200 {object} response.Envelope
// @Router /timetable [get]
func (h *TimetableHandler) List(c *gin.Context) {
	filter := models.TimetableFilter{
		TermID:    c.Query("term_id"),
		ClassID:   c.Query("class_id"),
		TeacherID: c.Query("teacher_id"),
	}
	entries, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}

// Swap godoc
// @Summary Swap the grid positions of two entries
// @Tags Timetable
// @Accept json
// @Produce json
// @Param payload body dto.SwapEntriesRequest true "Swap payload"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /timetable/swap [post]
func (h *TimetableHandler) Swap(c *gin.Context) {
	var req dto.SwapEntriesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	entries, conflicts, err := h.service.Swap(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"entries": entries, "conflicts": conflicts}, nil)
}

// Move godoc
// @Summary Move one entry to a new calendar cell
// @Tags Timetable
// @Accept json
// @Produce json
// @Param id path string true "Entry ID"
// @Param payload body dto.MoveEntryRequest true "Move payload"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /timetable/entries/{id}/move [post]
func (h *TimetableHandler) Move(c *gin.Context) {
	var req dto.MoveEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	entry, conflicts, err := h.service.Move(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"entry": entry, "conflicts": conflicts}, nil)
}

// Conflicts godoc
// @Summary Audit a term timetable for double bookings
// @Tags Timetable
// @Produce json
// @Param term_id query string true "Term ID"
// @Success 200 {object} response.Envelope
// @Router /timetable/conflicts [get]
func (h *TimetableHandler) Conflicts(c *gin.Context) {
	report, err := h.service.Conflicts(c.Request.Context(), c.Query("term_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// Export godoc
// @Summary Export the term timetable as CSV or PDF
// @Tags Timetable
// @Produce text/csv,application/pdf
// @Param term_id query string true "Term ID"
// @Param class_id query string false "Narrow to one class"
// @Param teacher_id query string false "Narrow to one teacher"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} binary
// @Router /timetable/export [get]
func (h *TimetableHandler) Export(c *gin.Context) {
	filter := models.TimetableFilter{
		TermID:    c.Query("term_id"),
		ClassID:   c.Query("class_id"),
		TeacherID: c.Query("teacher_id"),
	}
	file, err := h.exports.ExportTimetable(c.Request.Context(), filter, c.DefaultQuery("format", "csv"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+file.Filename)
	c.Data(http.StatusOK, file.ContentType, file.Data)
}

func generationOutcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, appErrors.ErrGenerationInfeasible):
		return "infeasible"
	default:
		return "error"
	}
}

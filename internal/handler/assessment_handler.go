package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/schoolware/timetable-api/internal/dto"
	"github.com/schoolware/timetable-api/internal/service"
	appErrors "github.com/schoolware/timetable-api/pkg/errors"
	"github.com/schoolware/timetable-api/pkg/response"
)

// AssessmentHandler exposes assessment session and sitting endpoints.
type AssessmentHandler struct {
	service *service.AssessmentService
	exports *service.ExportService
	metrics *service.MetricsService
}

// NewAssessmentHandler constructs an assessment handler.
func NewAssessmentHandler(svc *service.AssessmentService, exports *service.ExportService, metrics *service.MetricsService) *AssessmentHandler {
	return &AssessmentHandler{service: svc, exports: exports, metrics: metrics}
}

// CreateSession godoc
// @Summary Open a CA or exam session within a term
// @Tags Assessments
// @Accept json
// @Produce json
// @Param payload body dto.CreateAssessmentSessionRequest true "Session payload"
// @Success 201 {object} response.Envelope
// @Router /assessments/sessions [post]
func (h *AssessmentHandler) CreateSession(c *gin.Context) {
	var req dto.CreateAssessmentSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	session, err := h.service.CreateSession(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, session)
}

// ListSessions godoc
// @Summary List assessment sessions of a term
// @Tags Assessments
// @Produce json
// @Param term_id query string true "Term ID"
// @Success 200 {object} response.Envelope
// @Router /assessments/sessions [get]
func (h *AssessmentHandler) ListSessions(c *gin.Context) {
	sessions, err := h.service.ListSessions(c.Request.Context(), c.Query("term_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sessions, nil)
}

// GetSession godoc
// @Summary Get one assessment session
// @Tags Assessments
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Router /assessments/sessions/{id} [get]
func (h *AssessmentHandler) GetSession(c *gin.Context) {
	session, err := h.service.GetSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session, nil)
}

// DeleteSession godoc
// @Summary Delete an assessment session
// @Tags Assessments
// @Param id path string true "Session ID"
// @Success 204
// @Router /assessments/sessions/{id} [delete]
func (h *AssessmentHandler) DeleteSession(c *gin.Context) {
	if err := h.service.DeleteSession(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// RegisterSubject godoc
// @Summary Register a class-subject sitting in a session
// @Tags Assessments
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param payload body dto.RegisterAssessmentSubjectRequest true "Subject payload"
// @Success 201 {object} response.Envelope
// @Router /assessments/sessions/{id}/subjects [post]
func (h *AssessmentHandler) RegisterSubject(c *gin.Context) {
	var req dto.RegisterAssessmentSubjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	subject, err := h.service.RegisterSubject(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, subject)
}

// ListSubjects godoc
// @Summary List registered sittings of a session
// @Tags Assessments
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Router /assessments/sessions/{id}/subjects [get]
func (h *AssessmentHandler) ListSubjects(c *gin.Context) {
	subjects, err := h.service.ListSubjects(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, subjects, nil)
}

// RemoveSubject godoc
// @Summary Remove a registered sitting
// @Tags Assessments
// @Param subjectId path string true "Assessment subject ID"
// @Success 204
// @Router /assessments/subjects/{subjectId} [delete]
func (h *AssessmentHandler) RemoveSubject(c *gin.Context) {
	if err := h.service.RemoveSubject(c.Request.Context(), c.Param("subjectId")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Generate godoc
// @Summary Generate the sitting schedule for a session
// @Tags Assessments
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /assessments/sessions/{id}/generate [post]
func (h *AssessmentHandler) Generate(c *gin.Context) {
	sessionID := c.Param("id")
	scope := "ca"
	if session, err := h.service.GetSession(c.Request.Context(), sessionID); err == nil {
		scope = string(session.Type)
	}

	start := time.Now()
	result, err := h.service.Generate(c.Request.Context(), sessionID)
	h.metrics.ObserveGeneration(scope, generationOutcome(err), time.Since(start))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// ListEntries godoc
// @Summary List committed sittings of a session
// @Tags Assessments
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Router /assessments/sessions/{id}/entries [get]
func (h *AssessmentHandler) ListEntries(c *gin.Context) {
	entries, err := h.service.ListEntries(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}

// Swap godoc
// @Summary Swap the grid positions of two sittings
// @Tags Assessments
// @Accept json
// @Produce json
// @Param payload body dto.SwapAssessmentEntriesRequest true "Swap payload"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /assessments/entries/swap [post]
func (h *AssessmentHandler) Swap(c *gin.Context) {
	var req dto.SwapAssessmentEntriesRequest
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
// @Summary Move one sitting to a new calendar cell
// @Tags Assessments
// @Accept json
// @Produce json
// @Param id path string true "Entry ID"
// @Param payload body dto.MoveAssessmentEntryRequest true "Move payload"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /assessments/entries/{id}/move [post]
func (h *AssessmentHandler) Move(c *gin.Context) {
	var req dto.MoveAssessmentEntryRequest
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
// @Summary Audit a session schedule for double bookings
// @Tags Assessments
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Router /assessments/sessions/{id}/conflicts [get]
func (h *AssessmentHandler) Conflicts(c *gin.Context) {
	report, err := h.service.Conflicts(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// Export godoc
// @Summary Export a session schedule as CSV or PDF
// @Tags Assessments
// @Produce text/csv,application/pdf
// @Param id path string true "Session ID"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} binary
// @Router /assessments/sessions/{id}/export [get]
func (h *AssessmentHandler) Export(c *gin.Context) {
	file, err := h.exports.ExportAssessment(c.Request.Context(), c.Param("id"), c.DefaultQuery("format", "csv"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+file.Filename)
	c.Data(http.StatusOK, file.ContentType, file.Data)
}

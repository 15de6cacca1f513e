package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/schoolware/timetable-api/internal/dto"
	"github.com/schoolware/timetable-api/internal/service"
	appErrors "github.com/schoolware/timetable-api/pkg/errors"
	"github.com/schoolware/timetable-api/pkg/response"
)

// CalendarHandler exposes school day, time slot and break period endpoints.
type CalendarHandler struct {
	service *service.CalendarService
}

// NewCalendarHandler constructs a calendar handler.
func NewCalendarHandler(svc *service.CalendarService) *CalendarHandler {
	return &CalendarHandler{service: svc}
}

// ListSchoolDays godoc
// @Summary List school days in calendar order
// @Tags Calendar
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /calendar/days [get]
func (h *CalendarHandler) ListSchoolDays(c *gin.Context) {
	days, err := h.service.ListSchoolDays(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, days, nil)
}

// CreateSchoolDay godoc
// @Summary Create a school day
// @Tags Calendar
// @Accept json
// @Produce json
// @Param payload body dto.SchoolDayRequest true "School day payload"
// @Success 201 {object} response.Envelope
// @Router /calendar/days [post]
func (h *CalendarHandler) CreateSchoolDay(c *gin.Context) {
	var req dto.SchoolDayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	day, err := h.service.CreateSchoolDay(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, day)
}

// UpdateSchoolDay godoc
// @Summary Update a school day
// @Tags Calendar
// @Accept json
// @Produce json
// @Param id path string true "School day ID"
// @Param payload body dto.SchoolDayRequest true "School day payload"
// @Success 200 {object} response.Envelope
// @Router /calendar/days/{id} [put]
func (h *CalendarHandler) UpdateSchoolDay(c *gin.Context) {
	var req dto.SchoolDayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	day, err := h.service.UpdateSchoolDay(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, day, nil)
}

// DeleteSchoolDay godoc
// @Summary Delete a school day
// @Tags Calendar
// @Param id path string true "School day ID"
// @Success 204
// @Router /calendar/days/{id} [delete]
func (h *CalendarHandler) DeleteSchoolDay(c *gin.Context) {
	if err := h.service.DeleteSchoolDay(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListTimeSlots godoc
// @Summary List time slots in period order
// @Tags Calendar
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /calendar/slots [get]
func (h *CalendarHandler) ListTimeSlots(c *gin.Context) {
	slots, err := h.service.ListTimeSlots(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slots, nil)
}

// CreateTimeSlot godoc
// @Summary Create a time slot
// @Tags Calendar
// @Accept json
// @Produce json
// @Param payload body dto.TimeSlotRequest true "Time slot payload"
// @Success 201 {object} response.Envelope
// @Router /calendar/slots [post]
func (h *CalendarHandler) CreateTimeSlot(c *gin.Context) {
	var req dto.TimeSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	slot, err := h.service.CreateTimeSlot(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, slot)
}

// UpdateTimeSlot godoc
// @Summary Update a time slot
// @Tags Calendar
// @Accept json
// @Produce json
// @Param id path string true "Time slot ID"
// @Param payload body dto.TimeSlotRequest true "Time slot payload"
// @Success 200 {object} response.Envelope
// @Router /calendar/slots/{id} [put]
func (h *CalendarHandler) UpdateTimeSlot(c *gin.Context) {
	var req dto.TimeSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	slot, err := h.service.UpdateTimeSlot(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slot, nil)
}

// DeleteTimeSlot godoc
// @Summary Delete a time slot
// @Tags Calendar
// @Param id path string true "Time slot ID"
// @Success 204
// @Router /calendar/slots/{id} [delete]
func (h *CalendarHandler) DeleteTimeSlot(c *gin.Context) {
	if err := h.service.DeleteTimeSlot(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListBreakPeriods godoc
// @Summary List break exclusions
// @Tags Calendar
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /calendar/breaks [get]
func (h *CalendarHandler) ListBreakPeriods(c *gin.Context) {
	breaks, err := h.service.ListBreakPeriods(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, breaks, nil)
}

// CreateBreakPeriod godoc
// @Summary Exclude a slot from scheduling
// @Tags Calendar
// @Accept json
// @Produce json
// @Param payload body dto.BreakPeriodRequest true "Break payload"
// @Success 201 {object} response.Envelope
// @Router /calendar/breaks [post]
func (h *CalendarHandler) CreateBreakPeriod(c *gin.Context) {
	var req dto.BreakPeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	brk, err := h.service.CreateBreakPeriod(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, brk)
}

// DeleteBreakPeriod godoc
// @Summary Remove a break exclusion
// @Tags Calendar
// @Param id path string true "Break period ID"
// @Success 204
// @Router /calendar/breaks/{id} [delete]
func (h *CalendarHandler) DeleteBreakPeriod(c *gin.Context) {
	if err := h.service.DeleteBreakPeriod(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

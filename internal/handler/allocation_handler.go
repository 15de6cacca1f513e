package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/schoolware/timetable-api/internal/dto"
	"github.com/schoolware/timetable-api/internal/service"
	appErrors "github.com/schoolware/timetable-api/pkg/errors"
	"github.com/schoolware/timetable-api/pkg/response"
)

// AllocationHandler exposes teaching allocation endpoints.
type AllocationHandler struct {
	service *service.AllocationService
}

// NewAllocationHandler constructs an allocation handler.
func NewAllocationHandler(svc *service.AllocationService) *AllocationHandler {
	return &AllocationHandler{service: svc}
}

// List godoc
// @Summary List allocations of a term
// @Tags Allocations
// @Produce json
// @Param term_id query string true "Term ID"
// @Success 200 {object} response.Envelope
// @Router /allocations [get]
func (h *AllocationHandler) List(c *gin.Context) {
	allocations, err := h.service.ListByTerm(c.Request.Context(), c.Query("term_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, allocations, nil)
}

// Get godoc
// @Summary Get one allocation
// @Tags Allocations
// @Produce json
// @Param id path string true "Allocation ID"
// @Success 200 {object} response.Envelope
// @Router /allocations/{id} [get]
func (h *AllocationHandler) Get(c *gin.Context) {
	allocation, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, allocation, nil)
}

// Create godoc
// @Summary Create an allocation
// @Tags Allocations
// @Accept json
// @Produce json
// @Param payload body dto.AllocationRequest true "Allocation payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /allocations [post]
func (h *AllocationHandler) Create(c *gin.Context) {
	var req dto.AllocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	allocation, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, allocation)
}

// Update godoc
// @Summary Update an allocation
// @Tags Allocations
// @Accept json
// @Produce json
// @Param id path string true "Allocation ID"
// @Param payload body dto.AllocationRequest true "Allocation payload"
// @Success 200 {object} response.Envelope
// @Router /allocations/{id} [put]
func (h *AllocationHandler) Update(c *gin.Context) {
	var req dto.AllocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	allocation, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, allocation, nil)
}

// Delete godoc
// @Summary Delete an allocation
// @Tags Allocations
// @Param id path string true "Allocation ID"
// @Success 204
// @Router /allocations/{id} [delete]
func (h *AllocationHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/coursedocs/catalog-api/internal/service"
	appErrors "github.com/coursedocs/catalog-api/pkg/errors"
	"github.com/coursedocs/catalog-api/pkg/response"
)

// YearHandler exposes academic year endpoints.
type YearHandler struct {
	service *service.YearService
}

// NewYearHandler constructs a year handler.
func NewYearHandler(svc *service.YearService) *YearHandler {
	return &YearHandler{service: svc}
}

// List godoc
// @Summary List years
// @Description List years newest first, optionally filtered by course
// @Tags Years
// @Produce json
// @Param courseId query int false "Filter by course"
// @Success 200 {object} response.Envelope
// @Router /years [get]
func (h *YearHandler) List(c *gin.Context) {
	courseID, err := parseOptionalIDQuery(c, "courseId")
	if err != nil {
		response.Error(c, err)
		return
	}
	years, err := h.service.List(c.Request.Context(), courseID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, years)
}

// Get godoc
// @Summary Get year
// @Tags Years
// @Produce json
// @Param id path int true "Year ID"
// @Success 200 {object} response.Envelope
// @Router /years/{id} [get]
func (h *YearHandler) Get(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	year, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, year)
}

// Create godoc
// @Summary Create year
// @Tags Years
// @Accept json
// @Produce json
// @Param payload body service.CreateYearRequest true "Year payload"
// @Success 201 {object} response.Envelope
// @Router /years [post]
func (h *YearHandler) Create(c *gin.Context) {
	var req service.CreateYearRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	year, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, year)
}

// Update godoc
// @Summary Update year
// @Tags Years
// @Accept json
// @Produce json
// @Param id path int true "Year ID"
// @Param payload body service.UpdateYearRequest true "Year payload"
// @Success 200 {object} response.Envelope
// @Router /years/{id} [put]
func (h *YearHandler) Update(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.UpdateYearRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	year, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, year)
}

// Delete godoc
// @Summary Delete year
// @Tags Years
// @Produce json
// @Param id path int true "Year ID"
// @Success 204
// @Router /years/{id} [delete]
func (h *YearHandler) Delete(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/coursedocs/catalog-api/internal/models"
	"github.com/coursedocs/catalog-api/internal/service"
	"github.com/coursedocs/catalog-api/pkg/response"
)

// HierarchyHandler serves the cascading selector options.
type HierarchyHandler struct {
	service *service.HierarchyService
}

// NewHierarchyHandler constructs a hierarchy handler.
func NewHierarchyHandler(svc *service.HierarchyService) *HierarchyHandler {
	return &HierarchyHandler{service: svc}
}

// Options godoc
// @Summary Hierarchy options
// @Description Options for the course → year → semester → unit selectors
// @Tags Hierarchy
// @Produce json
// @Param courseId query int false "Scope years to this course"
// @Param yearId query int false "Scope semesters to this year"
// @Param semesterId query int false "Scope units to this semester"
// @Success 200 {object} response.Envelope
// @Router /hierarchy/options [get]
func (h *HierarchyHandler) Options(c *gin.Context) {
	var query models.HierarchyOptionsQuery
	var err error
	if query.CourseID, err = parseOptionalIDQuery(c, "courseId"); err != nil {
		response.Error(c, err)
		return
	}
	if query.YearID, err = parseOptionalIDQuery(c, "yearId"); err != nil {
		response.Error(c, err)
		return
	}
	if query.SemesterID, err = parseOptionalIDQuery(c, "semesterId"); err != nil {
		response.Error(c, err)
		return
	}

	options, err := h.service.Options(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, options)
}

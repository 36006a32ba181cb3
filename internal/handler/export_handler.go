package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/coursedocs/catalog-api/internal/service"
	"github.com/coursedocs/catalog-api/pkg/response"
)

// ExportHandler serves catalog exports as file downloads.
type ExportHandler struct {
	service *service.ExportService
}

// NewExportHandler constructs an export handler.
func NewExportHandler(svc *service.ExportService) *ExportHandler {
	return &ExportHandler{service: svc}
}

// CatalogSummary godoc
// @Summary Export catalog summary
// @Description Download per-course child counts as CSV or PDF
// @Tags Exports
// @Produce octet-stream
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} binary
// @Router /exports/catalog [get]
func (h *ExportHandler) CatalogSummary(c *gin.Context) {
	file, err := h.service.CatalogSummary(c.Request.Context(), c.DefaultQuery("format", "csv"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	c.Data(http.StatusOK, file.ContentType, file.Content)
}

package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/coursedocs/catalog-api/internal/models"
	"github.com/coursedocs/catalog-api/internal/service"
	appErrors "github.com/coursedocs/catalog-api/pkg/errors"
	"github.com/coursedocs/catalog-api/pkg/response"
)

// DocumentHandler exposes document endpoints. Uploads arrive as multipart
// forms; metadata updates are plain JSON.
type DocumentHandler struct {
	service *service.DocumentService
}

// NewDocumentHandler constructs a document handler.
func NewDocumentHandler(svc *service.DocumentService) *DocumentHandler {
	return &DocumentHandler{service: svc}
}

// List godoc
// @Summary List documents
// @Description List documents newest first, optionally filtered by context
// @Tags Documents
// @Produce json
// @Param courseId query int false "Filter by course"
// @Param yearId query int false "Filter by year"
// @Param semesterId query int false "Filter by semester"
// @Param unitId query int false "Filter by unit"
// @Success 200 {object} response.Envelope
// @Router /documents [get]
func (h *DocumentHandler) List(c *gin.Context) {
	var filter models.DocumentFilter
	var err error
	if filter.CourseID, err = parseOptionalIDQuery(c, "courseId"); err != nil {
		response.Error(c, err)
		return
	}
	if filter.YearID, err = parseOptionalIDQuery(c, "yearId"); err != nil {
		response.Error(c, err)
		return
	}
	if filter.SemesterID, err = parseOptionalIDQuery(c, "semesterId"); err != nil {
		response.Error(c, err)
		return
	}
	if filter.UnitID, err = parseOptionalIDQuery(c, "unitId"); err != nil {
		response.Error(c, err)
		return
	}

	documents, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, documents)
}

// Get godoc
// @Summary Get document
// @Tags Documents
// @Produce json
// @Param id path int true "Document ID"
// @Success 200 {object} response.Envelope
// @Router /documents/{id} [get]
func (h *DocumentHandler) Get(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	document, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, document)
}

// Upload godoc
// @Summary Upload document
// @Description Upload a file with metadata; at least one context id is required
// @Tags Documents
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Document file"
// @Param title formData string true "Title"
// @Param description formData string false "Description"
// @Param courseId formData int false "Course context"
// @Param yearId formData int false "Year context"
// @Param semesterId formData int false "Semester context"
// @Param unitId formData int false "Unit context"
// @Success 201 {object} response.Envelope
// @Router /documents [post]
func (h *DocumentHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "file is required"))
		return
	}

	req := service.CreateDocumentRequest{
		Title: strings.TrimSpace(c.PostForm("title")),
	}
	if description := strings.TrimSpace(c.PostForm("description")); description != "" {
		req.Description = &description
	}
	if req.CourseID, err = parseOptionalIDForm(c, "courseId"); err != nil {
		response.Error(c, err)
		return
	}
	if req.YearID, err = parseOptionalIDForm(c, "yearId"); err != nil {
		response.Error(c, err)
		return
	}
	if req.SemesterID, err = parseOptionalIDForm(c, "semesterId"); err != nil {
		response.Error(c, err)
		return
	}
	if req.UnitID, err = parseOptionalIDForm(c, "unitId"); err != nil {
		response.Error(c, err)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read upload"))
		return
	}
	defer file.Close()

	document, err := h.service.Upload(c.Request.Context(), req, service.DocumentUpload{
		Filename: fileHeader.Filename,
		Size:     fileHeader.Size,
		MimeType: fileHeader.Header.Get("Content-Type"),
		Content:  file,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, document)
}

// Update godoc
// @Summary Update document metadata
// @Description Replace title, description and the context pointers; the file is immutable
// @Tags Documents
// @Accept json
// @Produce json
// @Param id path int true "Document ID"
// @Param payload body service.UpdateDocumentRequest true "Document payload"
// @Success 200 {object} response.Envelope
// @Router /documents/{id} [put]
func (h *DocumentHandler) Update(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.UpdateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	document, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, document)
}

// Delete godoc
// @Summary Delete document
// @Description Delete the stored file (best-effort) and its metadata row
// @Tags Documents
// @Produce json
// @Param id path int true "Document ID"
// @Success 204
// @Router /documents/{id} [delete]
func (h *DocumentHandler) Delete(c *gin.Context) {
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

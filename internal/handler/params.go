package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	appErrors "github.com/coursedocs/catalog-api/pkg/errors"
)

// parseIDParam reads a numeric path parameter. Non-numeric values are a
// validation error, not a lookup miss.
func parseIDParam(c *gin.Context, name string) (int64, error) {
	raw := c.Param(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, "invalid "+name+" parameter")
	}
	return id, nil
}

// parseOptionalIDQuery reads a numeric query parameter, nil when absent.
func parseOptionalIDQuery(c *gin.Context, name string) (*int64, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid "+name+" parameter")
	}
	return &id, nil
}

// parseOptionalIDForm reads a numeric multipart form field, nil when absent.
func parseOptionalIDForm(c *gin.Context, name string) (*int64, error) {
	raw := c.PostForm(name)
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid "+name+" field")
	}
	return &id, nil
}

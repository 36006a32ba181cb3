package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/coursedocs/catalog-api/internal/middleware"
	"github.com/coursedocs/catalog-api/internal/service"
)

// Handlers bundles every HTTP handler for route registration.
type Handlers struct {
	Auth      *AuthHandler
	Courses   *CourseHandler
	Years     *YearHandler
	Semesters *SemesterHandler
	Units     *UnitHandler
	Documents *DocumentHandler
	Hierarchy *HierarchyHandler
	Exports   *ExportHandler
}

// RegisterRoutes mounts all API routes. Reads are public; every mutation
// requires an authenticated administrator.
func RegisterRoutes(r *gin.Engine, h Handlers, authSvc *service.AuthService) {
	api := r.Group("/api")

	api.POST("/auth/login", h.Auth.Login)

	admin := middleware.JWT(authSvc)

	api.GET("/auth/me", admin, h.Auth.Me)

	courses := api.Group("/courses")
	{
		courses.GET("", h.Courses.List)
		courses.GET("/:id", h.Courses.Get)
		courses.POST("", admin, h.Courses.Create)
		courses.PUT("/:id", admin, h.Courses.Update)
		courses.DELETE("/:id", admin, h.Courses.Delete)
	}

	years := api.Group("/years")
	{
		years.GET("", h.Years.List)
		years.GET("/:id", h.Years.Get)
		years.POST("", admin, h.Years.Create)
		years.PUT("/:id", admin, h.Years.Update)
		years.DELETE("/:id", admin, h.Years.Delete)
	}

	semesters := api.Group("/semesters")
	{
		semesters.GET("", h.Semesters.List)
		semesters.GET("/:id", h.Semesters.Get)
		semesters.POST("", admin, h.Semesters.Create)
		semesters.PUT("/:id", admin, h.Semesters.Update)
		semesters.DELETE("/:id", admin, h.Semesters.Delete)
	}

	units := api.Group("/units")
	{
		units.GET("", h.Units.List)
		units.GET("/:id", h.Units.Get)
		units.POST("", admin, h.Units.Create)
		units.PUT("/:id", admin, h.Units.Update)
		units.DELETE("/:id", admin, h.Units.Delete)
	}

	documents := api.Group("/documents")
	{
		documents.GET("", h.Documents.List)
		documents.GET("/:id", h.Documents.Get)
		documents.POST("", admin, h.Documents.Upload)
		documents.PUT("/:id", admin, h.Documents.Update)
		documents.DELETE("/:id", admin, h.Documents.Delete)
	}

	api.GET("/hierarchy/options", h.Hierarchy.Options)
	api.GET("/exports/catalog", admin, h.Exports.CatalogSummary)
}

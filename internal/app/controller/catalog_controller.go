package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/drukmotors/dealership-backend/internal/app/service"
	"github.com/drukmotors/dealership-backend/internal/errors"
	"github.com/drukmotors/dealership-backend/internal/middleware"
)

// CatalogController serves the public storefront reads: parts, categories,
// service types, success stories, employees and the active announcement.
type CatalogController struct {
	catalogService      service.CatalogService
	announcementService service.AnnouncementService
}

func NewCatalogController(catalogService service.CatalogService, announcementService service.AnnouncementService) *CatalogController {
	return &CatalogController{
		catalogService:      catalogService,
		announcementService: announcementService,
	}
}

// GetParts returns the parts catalog, optionally filtered by category
// GET /api/v1/parts?category_id=1
func (ctrl *CatalogController) GetParts(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var categoryID *int64
	if raw := c.Query("category_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			errors.BadRequest(c, errors.ValidationInvalidInput, "Invalid category_id")
			return
		}
		categoryID = &id
	}

	parts, err := ctrl.catalogService.ListParts(c.Request.Context(), categoryID)
	if err != nil {
		log.Error("Failed to fetch parts", err, nil)
		errors.InternalError(c, "Failed to fetch parts")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"parts": parts,
		"count": len(parts),
	})
}

// GetCategories returns all part categories
// GET /api/v1/categories
func (ctrl *CatalogController) GetCategories(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	categories, err := ctrl.catalogService.ListCategories(c.Request.Context())
	if err != nil {
		log.Error("Failed to fetch categories", err, nil)
		errors.InternalError(c, "Failed to fetch categories")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"categories": categories,
	})
}

// GetServiceTypes returns the bookable service types
// GET /api/v1/service-types
func (ctrl *CatalogController) GetServiceTypes(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	serviceTypes, err := ctrl.catalogService.ListServiceTypes(c.Request.Context())
	if err != nil {
		log.Error("Failed to fetch service types", err, nil)
		errors.InternalError(c, "Failed to fetch service types")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"serviceTypes": serviceTypes,
	})
}

// GetSuccessStories returns the storefront success stories
// GET /api/v1/success-stories
func (ctrl *CatalogController) GetSuccessStories(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	stories, err := ctrl.catalogService.ListSuccessStories(c.Request.Context())
	if err != nil {
		log.Error("Failed to fetch success stories", err, nil)
		errors.InternalError(c, "Failed to fetch success stories")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"successStories": stories,
	})
}

// GetEmployees returns the team roster
// GET /api/v1/employees
func (ctrl *CatalogController) GetEmployees(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	employees, err := ctrl.catalogService.ListEmployees(c.Request.Context())
	if err != nil {
		log.Error("Failed to fetch employees", err, nil)
		errors.InternalError(c, "Failed to fetch employees")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"employees": employees,
	})
}

// GetActiveAnnouncement returns the storefront banner, null when none is set
// GET /api/v1/announcement
func (ctrl *CatalogController) GetActiveAnnouncement(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	announcement, err := ctrl.announcementService.Active(c.Request.Context())
	if err != nil {
		log.Error("Failed to fetch active announcement", err, nil)
		errors.InternalError(c, "Failed to fetch announcement")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"announcement": announcement,
	})
}

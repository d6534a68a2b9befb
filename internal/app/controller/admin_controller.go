package controller

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/drukmotors/dealership-backend/internal/app/service"
	"github.com/drukmotors/dealership-backend/internal/errors"
	"github.com/drukmotors/dealership-backend/internal/middleware"
	"github.com/drukmotors/dealership-backend/internal/store"
)

// AdminController exposes the generic resource grid: one CRUD surface over
// every registered resource, plus the dashboard stats.
type AdminController struct {
	resourceService service.ResourceService
	statsService    service.StatsService
}

func NewAdminController(resourceService service.ResourceService, statsService service.StatsService) *AdminController {
	return &AdminController{
		resourceService: resourceService,
		statsService:    statsService,
	}
}

// parseListParams decodes the grid query parameters from their JSON wire
// forms: sort=["field","ASC"], range=[start,end], filter={...}.
func parseListParams(c *gin.Context) (service.ListParams, error) {
	params := service.ListParams{
		SortField: "id",
		SortOrder: "ASC",
		Start:     0,
		End:       9,
		Filter:    map[string]interface{}{},
	}

	if raw := c.Query("sort"); raw != "" {
		var sort []string
		if err := json.Unmarshal([]byte(raw), &sort); err != nil || len(sort) != 2 {
			return params, fmt.Errorf("malformed sort parameter")
		}
		params.SortField = sort[0]
		params.SortOrder = sort[1]
	}

	if raw := c.Query("range"); raw != "" {
		var rng []int
		if err := json.Unmarshal([]byte(raw), &rng); err != nil || len(rng) != 2 {
			return params, fmt.Errorf("malformed range parameter")
		}
		params.Start = rng[0]
		params.End = rng[1]
	}

	if raw := c.Query("filter"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &params.Filter); err != nil {
			return params, fmt.Errorf("malformed filter parameter")
		}
	}

	if params.Start < 0 || params.End < params.Start {
		return params, fmt.Errorf("invalid range bounds")
	}
	return params, nil
}

// GetList returns one grid page of a resource
// GET /api/v1/admin/:resource
func (ctrl *AdminController) GetList(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	resource := c.Param("resource")

	params, err := parseListParams(c)
	if err != nil {
		log.Warn("Invalid list parameters", map[string]interface{}{
			"resource": resource,
			"error":    err.Error(),
		})
		errors.BadRequest(c, errors.ValidationInvalidInput, err.Error())
		return
	}

	records, total, err := ctrl.resourceService.GetList(c.Request.Context(), resource, params)
	if err != nil {
		ctrl.respondError(c, resource, err)
		return
	}

	// Grid clients read the total from Content-Range, the body is the bare
	// page array
	c.Header("Content-Range", fmt.Sprintf("%s %d-%d/%d", resource, params.Start, params.End, total))
	c.Header("Access-Control-Expose-Headers", "Content-Range")
	c.JSON(http.StatusOK, records)
}

// GetOne returns a single record by id
// GET /api/v1/admin/:resource/:id
func (ctrl *AdminController) GetOne(c *gin.Context) {
	resource := c.Param("resource")
	id := c.Param("id")

	rec, err := ctrl.resourceService.GetOne(c.Request.Context(), resource, id)
	if err != nil {
		ctrl.respondError(c, resource, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// Create inserts a new record
// POST /api/v1/admin/:resource
func (ctrl *AdminController) Create(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	resource := c.Param("resource")

	var body store.Record
	if err := c.ShouldBindJSON(&body); err != nil {
		log.Warn("Invalid create body", map[string]interface{}{
			"resource": resource,
			"error":    err.Error(),
		})
		errors.BadRequest(c, errors.ValidationInvalidInput, "Invalid request body")
		return
	}

	rec, err := ctrl.resourceService.Create(c.Request.Context(), resource, body)
	if err != nil {
		ctrl.respondError(c, resource, err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

// Update applies a partial field map by id
// PUT /api/v1/admin/:resource/:id
func (ctrl *AdminController) Update(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	resource := c.Param("resource")
	id := c.Param("id")

	var body store.Record
	if err := c.ShouldBindJSON(&body); err != nil {
		log.Warn("Invalid update body", map[string]interface{}{
			"resource": resource,
			"id":       id,
			"error":    err.Error(),
		})
		errors.BadRequest(c, errors.ValidationInvalidInput, "Invalid request body")
		return
	}

	rec, err := ctrl.resourceService.Update(c.Request.Context(), resource, id, body)
	if err != nil {
		ctrl.respondError(c, resource, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// Delete removes a record by id and returns it
// DELETE /api/v1/admin/:resource/:id
func (ctrl *AdminController) Delete(c *gin.Context) {
	resource := c.Param("resource")
	id := c.Param("id")

	rec, err := ctrl.resourceService.Delete(c.Request.Context(), resource, id)
	if err != nil {
		ctrl.respondError(c, resource, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// GetStats returns the dashboard summary
// GET /api/v1/admin/stats
func (ctrl *AdminController) GetStats(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	stats, err := ctrl.statsService.Summary(c.Request.Context())
	if err != nil {
		log.Error("Failed to compute stats", err, nil)
		errors.InternalError(c, "Failed to compute stats")
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (ctrl *AdminController) respondError(c *gin.Context, resource string, err error) {
	log := middleware.GetLoggerFromContext(c)

	switch {
	case stderrors.Is(err, service.ErrUnknownResource):
		log.Warn("Unknown resource", map[string]interface{}{
			"resource": resource,
		})
		errors.NotFound(c, errors.ResourceNotFound, "Resource not found")
	case stderrors.Is(err, store.ErrNotFound):
		errors.NotFound(c, errors.RecordNotFound, "Record not found")
	case stderrors.Is(err, service.ErrInvalidField):
		errors.BadRequest(c, errors.ValidationInvalidInput, err.Error())
	default:
		log.Error("Resource operation failed", err, map[string]interface{}{
			"resource": resource,
		})
		// Operators diagnose grid failures from the response body, so the
		// underlying message rides along instead of a generic string.
		errors.InternalError(c, err.Error())
	}
}

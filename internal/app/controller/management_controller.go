package controller

import (
	stderrors "errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/drukmotors/dealership-backend/internal/app/service"
	"github.com/drukmotors/dealership-backend/internal/errors"
	"github.com/drukmotors/dealership-backend/internal/middleware"
	"github.com/drukmotors/dealership-backend/internal/store"
	"github.com/drukmotors/dealership-backend/pkg/logger"
)

// ManagementController exposes the admin content workflows: announcement
// banner management and form-based content creation with image upload.
type ManagementController struct {
	announcementService service.AnnouncementService
	contentService      service.ContentService
}

func NewManagementController(announcementService service.AnnouncementService, contentService service.ContentService) *ManagementController {
	return &ManagementController{
		announcementService: announcementService,
		contentService:      contentService,
	}
}

type PublishAnnouncementRequest struct {
	Text string `json:"text" binding:"required"`
}

// PublishAnnouncement swaps the active banner atomically
// POST /api/v1/admin/announcements/publish
func (ctrl *ManagementController) PublishAnnouncement(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req PublishAnnouncementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errors.BadRequest(c, errors.ValidationInvalidInput, "Announcement text is required")
		return
	}

	announcement, err := ctrl.announcementService.Publish(c.Request.Context(), req.Text)
	if err != nil {
		log.Error("Failed to publish announcement", err, nil)
		errors.InternalError(c, "Failed to publish announcement")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":      "Announcement published",
		"announcement": announcement,
	})
}

// ClearAnnouncements deactivates every active banner
// POST /api/v1/admin/announcements/clear
func (ctrl *ManagementController) ClearAnnouncements(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	if err := ctrl.announcementService.ClearAll(c.Request.Context()); err != nil {
		log.Error("Failed to clear announcements", err, nil)
		errors.InternalError(c, "Failed to clear announcements")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Announcements cleared",
	})
}

type UpdateAnnouncementRequest struct {
	Text string `json:"text" binding:"required"`
}

// UpdateAnnouncement rewrites the text of an existing announcement
// PUT /api/v1/admin/announcements/:id/text
func (ctrl *ManagementController) UpdateAnnouncement(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		errors.BadRequest(c, errors.ValidationInvalidInput, "Invalid announcement ID")
		return
	}

	var req UpdateAnnouncementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errors.BadRequest(c, errors.ValidationInvalidInput, "Announcement text is required")
		return
	}

	announcement, err := ctrl.announcementService.UpdateText(c.Request.Context(), id, req.Text)
	if err != nil {
		if stderrors.Is(err, store.ErrNotFound) {
			errors.NotFound(c, errors.RecordNotFound, "Announcement not found")
			return
		}
		log.Error("Failed to update announcement", err, map[string]interface{}{
			"announcement_id": id,
		})
		errors.InternalError(c, "Failed to update announcement")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "Announcement updated",
		"announcement": announcement,
	})
}

// AddPart creates a part from a multipart form with an optional image
// POST /api/v1/admin/content/parts
func (ctrl *ManagementController) AddPart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	adminID, ok := middleware.GetUserID(c)
	if !ok {
		errors.Unauthorized(c, "")
		return
	}

	price, err := strconv.ParseFloat(c.PostForm("price"), 64)
	if err != nil {
		errors.BadRequest(c, errors.ValidationInvalidInput, "Invalid price")
		return
	}
	stock, err := strconv.ParseInt(c.PostForm("stock"), 10, 64)
	if err != nil {
		errors.BadRequest(c, errors.ValidationInvalidInput, "Invalid stock")
		return
	}
	categoryID, err := strconv.ParseInt(c.PostForm("categoryId"), 10, 64)
	if err != nil {
		errors.BadRequest(c, errors.ValidationInvalidInput, "Invalid categoryId")
		return
	}

	input := service.PartInput{
		Name:        c.PostForm("name"),
		Description: c.PostForm("description"),
		Price:       price,
		Stock:       stock,
		CategoryID:  categoryID,
	}
	if input.Name == "" {
		errors.BadRequest(c, errors.ValidationInvalidInput, "Part name is required")
		return
	}
	input.Image = readImage(c, log, "image")

	part, err := ctrl.contentService.AddPart(c.Request.Context(), adminID, input)
	if err != nil {
		if stderrors.Is(err, store.ErrNotFound) {
			errors.NotFound(c, errors.RecordNotFound, "Category not found")
			return
		}
		log.Error("Failed to add part", err, nil)
		errors.InternalError(c, "Failed to add part")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Part added successfully",
		"part":    part,
	})
}

// CreateEmployee creates a team member from a multipart form
// POST /api/v1/admin/content/employees
func (ctrl *ManagementController) CreateEmployee(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	input := service.EmployeeInput{
		Name: c.PostForm("name"),
		Role: c.PostForm("role"),
		Bio:  c.PostForm("bio"),
	}
	if input.Name == "" || input.Role == "" {
		errors.BadRequest(c, errors.ValidationInvalidInput, "Employee name and role are required")
		return
	}
	input.Image = readImage(c, log, "image")

	employee, err := ctrl.contentService.CreateEmployee(c.Request.Context(), input)
	if err != nil {
		log.Error("Failed to create employee", err, nil)
		errors.InternalError(c, "Failed to create employee")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":  "Employee created successfully",
		"employee": employee,
	})
}

// CreateSuccessStory creates a storefront story from a multipart form
// POST /api/v1/admin/content/success-stories
func (ctrl *ManagementController) CreateSuccessStory(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	input := service.SuccessStoryInput{
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
	}
	if input.Title == "" {
		errors.BadRequest(c, errors.ValidationInvalidInput, "Story title is required")
		return
	}
	input.Image = readImage(c, log, "image")

	story, err := ctrl.contentService.CreateSuccessStory(c.Request.Context(), input)
	if err != nil {
		log.Error("Failed to create success story", err, nil)
		errors.InternalError(c, "Failed to create success story")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":      "Success story created successfully",
		"successStory": story,
	})
}

// readImage pulls an optional file from a multipart form. Returns nil when
// absent or unreadable; writes proceed without an image.
func readImage(c *gin.Context, log *logger.Logger, field string) *service.ImageUpload {
	header, err := c.FormFile(field)
	if err != nil {
		return nil
	}
	data, err := readAll(header)
	if err != nil {
		log.Warn("Failed to read uploaded image", map[string]interface{}{
			"filename": header.Filename,
			"error":    err.Error(),
		})
		return nil
	}
	return &service.ImageUpload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}
}

func readAll(header *multipart.FileHeader) ([]byte, error) {
	file, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return io.ReadAll(file)
}

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/drukmotors/dealership-backend/internal/cache"
	"github.com/drukmotors/dealership-backend/internal/storage"
	"github.com/drukmotors/dealership-backend/internal/store"
	"github.com/drukmotors/dealership-backend/pkg/logger"
)

// ImageUpload is an optional image attached to a content write.
type ImageUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// PartInput carries the admin add-part form fields.
type PartInput struct {
	Name        string
	Description string
	Price       float64
	Stock       int64
	CategoryID  int64
	Image       *ImageUpload
}

// EmployeeInput carries the admin add-employee form fields.
type EmployeeInput struct {
	Name  string
	Role  string
	Bio   string
	Image *ImageUpload
}

// SuccessStoryInput carries the admin add-story form fields.
type SuccessStoryInput struct {
	Title       string
	Description string
	Image       *ImageUpload
}

// ContentService creates storefront content from admin forms. Image bytes go
// to object storage and only the resulting URL is stored on the record; when
// storage is not configured the record is created without an image.
type ContentService interface {
	AddPart(ctx context.Context, adminID string, input PartInput) (store.Record, error)
	CreateEmployee(ctx context.Context, input EmployeeInput) (store.Record, error)
	CreateSuccessStory(ctx context.Context, input SuccessStoryInput) (store.Record, error)
}

type contentService struct {
	store       store.Store
	images      storage.ImageStorage
	invalidator cache.Invalidator
}

func NewContentService(s store.Store, images storage.ImageStorage, inv cache.Invalidator) ContentService {
	return &contentService{store: s, images: images, invalidator: inv}
}

func (s *contentService) AddPart(ctx context.Context, adminID string, input PartInput) (store.Record, error) {
	count, err := s.store.Count(ctx, "categories", store.Eq("id", input.CategoryID))
	if err != nil {
		return nil, fmt.Errorf("failed to check category: %w", err)
	}
	if count == 0 {
		return nil, store.ErrNotFound
	}

	now := time.Now().UTC()
	rec := store.Record{
		"name":        input.Name,
		"description": input.Description,
		"price":       input.Price,
		"stock":       input.Stock,
		"categoryId":  input.CategoryID,
		"addedBy":     adminID,
		"createdAt":   now,
		"updatedAt":   now,
	}
	s.attachImage(ctx, rec, "parts", input.Image)

	created, err := s.store.Insert(ctx, "parts", rec)
	if err != nil {
		return nil, fmt.Errorf("failed to create part: %w", err)
	}

	s.invalidate(ctx, "parts")
	logger.Info("Part added", map[string]interface{}{
		"part_id":  created["id"],
		"added_by": adminID,
	})
	return created, nil
}

func (s *contentService) CreateEmployee(ctx context.Context, input EmployeeInput) (store.Record, error) {
	now := time.Now().UTC()
	rec := store.Record{
		"name":      input.Name,
		"role":      input.Role,
		"bio":       input.Bio,
		"createdAt": now,
		"updatedAt": now,
	}
	s.attachImage(ctx, rec, "team", input.Image)

	created, err := s.store.Insert(ctx, "employees", rec)
	if err != nil {
		return nil, fmt.Errorf("failed to create employee: %w", err)
	}

	s.invalidate(ctx, "employees")
	logger.Info("Employee created", map[string]interface{}{
		"employee_id": created["id"],
	})
	return created, nil
}

func (s *contentService) CreateSuccessStory(ctx context.Context, input SuccessStoryInput) (store.Record, error) {
	now := time.Now().UTC()
	rec := store.Record{
		"title":       input.Title,
		"description": input.Description,
		"createdAt":   now,
		"updatedAt":   now,
	}
	s.attachImage(ctx, rec, "stories", input.Image)

	created, err := s.store.Insert(ctx, "successStories", rec)
	if err != nil {
		return nil, fmt.Errorf("failed to create success story: %w", err)
	}

	s.invalidate(ctx, "successStories")
	logger.Info("Success story created", map[string]interface{}{
		"story_id": created["id"],
	})
	return created, nil
}

// attachImage uploads the image and sets the URL on the record. A missing or
// failed upload leaves the record imageless rather than failing the write.
func (s *contentService) attachImage(ctx context.Context, rec store.Record, folder string, img *ImageUpload) {
	if img == nil || len(img.Data) == 0 {
		return
	}

	url, err := s.images.Store(ctx, folder, img.Filename, img.ContentType, img.Data)
	if err != nil {
		if errors.Is(err, storage.ErrNotConfigured) {
			logger.Warn("Image skipped, storage not configured", map[string]interface{}{
				"folder": folder,
			})
		} else {
			logger.Error("Image upload failed", err, map[string]interface{}{
				"folder":   folder,
				"filename": img.Filename,
			})
		}
		return
	}
	rec["image"] = url
}

func (s *contentService) invalidate(ctx context.Context, resource string) {
	if err := s.invalidator.InvalidateResource(ctx, resource); err != nil {
		logger.Warn("Page cache invalidation failed", map[string]interface{}{
			"resource": resource,
			"error":    err.Error(),
		})
	}
}

package service

import (
	"context"

	"github.com/drukmotors/dealership-backend/internal/store"
)

// CatalogService serves the public storefront reads. Results are unpaginated:
// the storefront renders full collections.
type CatalogService interface {
	// ListParts returns parts with their category attached, optionally
	// filtered to one category.
	ListParts(ctx context.Context, categoryID *int64) ([]store.Record, error)
	ListCategories(ctx context.Context) ([]store.Record, error)
	ListServiceTypes(ctx context.Context) ([]store.Record, error)
	ListSuccessStories(ctx context.Context) ([]store.Record, error)
	ListEmployees(ctx context.Context) ([]store.Record, error)
}

type catalogService struct {
	store store.Store
}

func NewCatalogService(s store.Store) CatalogService {
	return &catalogService{store: s}
}

func (s *catalogService) ListParts(ctx context.Context, categoryID *int64) ([]store.Record, error) {
	q := store.Query{Sort: store.Sort{Field: "createdAt", Desc: true}}
	if categoryID != nil {
		q.Where = store.Eq("categoryId", *categoryID)
	}
	records, _, err := s.store.List(ctx, "parts", q)
	return records, err
}

func (s *catalogService) ListCategories(ctx context.Context) ([]store.Record, error) {
	records, _, err := s.store.List(ctx, "categories", store.Query{
		Sort: store.Sort{Field: "name"},
	})
	return records, err
}

func (s *catalogService) ListServiceTypes(ctx context.Context) ([]store.Record, error) {
	records, _, err := s.store.List(ctx, "serviceTypes", store.Query{
		Sort: store.Sort{Field: "id"},
	})
	return records, err
}

func (s *catalogService) ListSuccessStories(ctx context.Context) ([]store.Record, error) {
	records, _, err := s.store.List(ctx, "successStories", store.Query{
		Sort: store.Sort{Field: "createdAt", Desc: true},
	})
	return records, err
}

func (s *catalogService) ListEmployees(ctx context.Context) ([]store.Record, error) {
	records, _, err := s.store.List(ctx, "employees", store.Query{
		Sort: store.Sort{Field: "id"},
	})
	return records, err
}

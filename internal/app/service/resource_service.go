package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/drukmotors/dealership-backend/internal/cache"
	"github.com/drukmotors/dealership-backend/internal/registry"
	"github.com/drukmotors/dealership-backend/internal/store"
	"github.com/drukmotors/dealership-backend/pkg/logger"
	"github.com/drukmotors/dealership-backend/pkg/util"
)

var (
	// ErrUnknownResource is returned for resource names outside the registry.
	ErrUnknownResource = store.ErrUnknownResource
	// ErrRecordNotFound is returned when no record matches the given id.
	ErrRecordNotFound = store.ErrNotFound
	// ErrInvalidField is returned when a sort or filter references a field the
	// resource does not define.
	ErrInvalidField = errors.New("invalid field")
)

// ListParams carries the grid read parameters: sort tuple, inclusive range
// and equality filter, all already decoded from their JSON wire forms.
type ListParams struct {
	SortField string
	SortOrder string // "ASC" or "DESC"
	Start     int
	End       int // inclusive
	Filter    map[string]interface{}
}

// ResourceService is the generic CRUD dispatcher over the registered resource
// set. All per-resource behavior (hidden fields, relations, key generation,
// stamping) is driven by the registry, never by per-resource branches.
type ResourceService interface {
	GetList(ctx context.Context, resource string, params ListParams) ([]store.Record, int64, error)
	GetOne(ctx context.Context, resource string, id string) (store.Record, error)
	Create(ctx context.Context, resource string, body store.Record) (store.Record, error)
	Update(ctx context.Context, resource string, id string, body store.Record) (store.Record, error)
	Delete(ctx context.Context, resource string, id string) (store.Record, error)
}

type resourceService struct {
	registry    *registry.Registry
	store       store.Store
	invalidator cache.Invalidator
}

func NewResourceService(reg *registry.Registry, s store.Store, inv cache.Invalidator) ResourceService {
	return &resourceService{
		registry:    reg,
		store:       s,
		invalidator: inv,
	}
}

func (s *resourceService) GetList(ctx context.Context, resource string, params ListParams) ([]store.Record, int64, error) {
	res, ok := s.registry.Lookup(resource)
	if !ok {
		return nil, 0, ErrUnknownResource
	}

	if !res.HasField(params.SortField) {
		logger.Warn("List rejected, unknown sort field", map[string]interface{}{
			"resource":   resource,
			"sort_field": params.SortField,
		})
		return nil, 0, fmt.Errorf("%w: sort field %q", ErrInvalidField, params.SortField)
	}

	where, err := buildFilter(res, params.Filter)
	if err != nil {
		return nil, 0, err
	}

	q := store.Query{
		Where: where,
		Sort: store.Sort{
			Field: params.SortField,
			Desc:  params.SortOrder == "DESC",
		},
		Offset: params.Start,
		Limit:  params.End - params.Start + 1,
	}

	records, total, err := s.store.List(ctx, resource, q)
	if err != nil {
		return nil, 0, err
	}

	for i := range records {
		records[i] = s.scrub(res, records[i])
	}

	logger.Debug("Resource list", map[string]interface{}{
		"resource": resource,
		"returned": len(records),
		"total":    total,
	})
	return records, total, nil
}

func (s *resourceService) GetOne(ctx context.Context, resource string, id string) (store.Record, error) {
	res, ok := s.registry.Lookup(resource)
	if !ok {
		return nil, ErrUnknownResource
	}

	rec, err := s.store.Get(ctx, resource, store.CoerceID(id))
	if err != nil {
		return nil, err
	}
	return s.scrub(res, rec), nil
}

func (s *resourceService) Create(ctx context.Context, resource string, body store.Record) (store.Record, error) {
	res, ok := s.registry.Lookup(resource)
	if !ok {
		return nil, ErrUnknownResource
	}

	body = body.Clone()
	stripRelations(res, body)

	// Opaque string keys are generated when the client omits one
	if res.StringPK {
		if id, _ := body["id"].(string); id == "" {
			body["id"] = uuid.NewString()
		}
	}

	if err := hashPasswordField(resource, body); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if _, ok := body["createdAt"]; !ok {
		body["createdAt"] = now
	}
	if res.HasUpdated {
		if _, ok := body["updatedAt"]; !ok {
			body["updatedAt"] = now
		}
	}

	rec, err := s.store.Insert(ctx, resource, body)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, resource)
	logger.Info("Resource created", map[string]interface{}{
		"resource": resource,
		"id":       rec["id"],
	})
	return s.scrub(res, rec), nil
}

func (s *resourceService) Update(ctx context.Context, resource string, id string, body store.Record) (store.Record, error) {
	res, ok := s.registry.Lookup(resource)
	if !ok {
		return nil, ErrUnknownResource
	}

	body = body.Clone()
	stripRelations(res, body)
	delete(body, "id")

	if err := hashPasswordField(resource, body); err != nil {
		return nil, err
	}

	if res.HasUpdated {
		body["updatedAt"] = time.Now().UTC()
	}

	rec, err := s.store.Update(ctx, resource, store.CoerceID(id), body)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, resource)
	logger.Info("Resource updated", map[string]interface{}{
		"resource": resource,
		"id":       rec["id"],
	})
	return s.scrub(res, rec), nil
}

func (s *resourceService) Delete(ctx context.Context, resource string, id string) (store.Record, error) {
	res, ok := s.registry.Lookup(resource)
	if !ok {
		return nil, ErrUnknownResource
	}

	rec, err := s.store.Delete(ctx, resource, store.CoerceID(id))
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, resource)
	logger.Info("Resource deleted", map[string]interface{}{
		"resource": resource,
		"id":       rec["id"],
	})
	return s.scrub(res, rec), nil
}

// buildFilter converts the equality filter map into a conjunction, rejecting
// fields the resource does not define.
func buildFilter(res registry.Resource, filter map[string]interface{}) (store.Predicate, error) {
	if len(filter) == 0 {
		return nil, nil
	}

	conds := make(store.And, 0, len(filter))
	for field, value := range filter {
		if !res.HasField(field) {
			return nil, fmt.Errorf("%w: filter field %q", ErrInvalidField, field)
		}
		conds = append(conds, store.Eq(field, value))
	}
	if len(conds) == 1 {
		return conds[0], nil
	}
	return conds, nil
}

// stripRelations drops attached relation objects from a write body so only
// scalar columns reach the store.
func stripRelations(res registry.Resource, body store.Record) {
	for _, rel := range res.Relations {
		delete(body, rel.Name)
	}
}

// hashPasswordField replaces a plaintext password in a users write body with
// its bcrypt hash. Raw passwords never reach the store.
func hashPasswordField(resource string, body store.Record) error {
	if resource != "users" {
		return nil
	}
	plain, ok := body["password"].(string)
	if !ok || plain == "" {
		delete(body, "password")
		return nil
	}
	hashed, err := util.HashPassword(plain)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	body["password"] = hashed
	return nil
}

// scrub removes hidden fields from a record and from any attached relation
// records.
func (s *resourceService) scrub(res registry.Resource, rec store.Record) store.Record {
	if rec == nil {
		return nil
	}
	for _, field := range res.Hidden {
		delete(rec, field)
	}
	for _, rel := range res.Relations {
		nested, ok := rec[rel.Name].(store.Record)
		if !ok {
			if m, isMap := rec[rel.Name].(map[string]interface{}); isMap {
				nested = store.Record(m)
			} else {
				continue
			}
		}
		if target, found := s.registry.Lookup(rel.Resource); found {
			for _, field := range target.Hidden {
				delete(nested, field)
			}
		}
	}
	return rec
}

// invalidate drops cached pages for the resource. Best effort: a cache miss
// is recoverable, a failed write is not.
func (s *resourceService) invalidate(ctx context.Context, resource string) {
	if err := s.invalidator.InvalidateResource(ctx, resource); err != nil {
		logger.Warn("Page cache invalidation failed", map[string]interface{}{
			"resource": resource,
			"error":    err.Error(),
		})
	}
}

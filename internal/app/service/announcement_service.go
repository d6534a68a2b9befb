package service

import (
	"context"
	"fmt"
	"time"

	"github.com/drukmotors/dealership-backend/internal/cache"
	"github.com/drukmotors/dealership-backend/internal/store"
	"github.com/drukmotors/dealership-backend/pkg/logger"
)

// AnnouncementService manages the storefront banner. At most one announcement
// is active at any time; Publish swaps the active one atomically.
type AnnouncementService interface {
	Publish(ctx context.Context, text string) (store.Record, error)
	ClearAll(ctx context.Context) error
	UpdateText(ctx context.Context, id int64, text string) (store.Record, error)
	// Active returns the latest active announcement, or nil when none is set.
	Active(ctx context.Context) (store.Record, error)
}

type announcementService struct {
	store       store.Store
	invalidator cache.Invalidator
}

func NewAnnouncementService(s store.Store, inv cache.Invalidator) AnnouncementService {
	return &announcementService{store: s, invalidator: inv}
}

func (s *announcementService) Publish(ctx context.Context, text string) (store.Record, error) {
	var created store.Record

	err := s.store.Transact(ctx, func(tx store.Store) error {
		now := time.Now().UTC()

		// Deactivate every active announcement before inserting the new one,
		// so the single-active invariant survives any prior state.
		n, err := tx.UpdateWhere(ctx, "announcements",
			store.Record{"active": false, "updatedAt": now},
			store.Eq("active", true),
		)
		if err != nil {
			return fmt.Errorf("failed to deactivate announcements: %w", err)
		}
		logger.Debug("Deactivated previous announcements", map[string]interface{}{
			"count": n,
		})

		created, err = tx.Insert(ctx, "announcements", store.Record{
			"text":      text,
			"active":    true,
			"createdAt": now,
			"updatedAt": now,
		})
		if err != nil {
			return fmt.Errorf("failed to insert announcement: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	logger.Info("Announcement published", map[string]interface{}{
		"id": created["id"],
	})
	return created, nil
}

func (s *announcementService) ClearAll(ctx context.Context) error {
	n, err := s.store.UpdateWhere(ctx, "announcements",
		store.Record{"active": false, "updatedAt": time.Now().UTC()},
		store.Eq("active", true),
	)
	if err != nil {
		return fmt.Errorf("failed to clear announcements: %w", err)
	}

	s.invalidate(ctx)
	logger.Info("Announcements cleared", map[string]interface{}{
		"count": n,
	})
	return nil
}

func (s *announcementService) UpdateText(ctx context.Context, id int64, text string) (store.Record, error) {
	rec, err := s.store.Update(ctx, "announcements", id, store.Record{
		"text":      text,
		"updatedAt": time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	return rec, nil
}

func (s *announcementService) Active(ctx context.Context) (store.Record, error) {
	matches, _, err := s.store.List(ctx, "announcements", store.Query{
		Where: store.Eq("active", true),
		Sort:  store.Sort{Field: "createdAt", Desc: true},
		Limit: 1,
	})
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, nil
	}
	return matches[0], nil
}

func (s *announcementService) invalidate(ctx context.Context) {
	if err := s.invalidator.InvalidateResource(ctx, "announcements"); err != nil {
		logger.Warn("Page cache invalidation failed", map[string]interface{}{
			"resource": "announcements",
			"error":    err.Error(),
		})
	}
}

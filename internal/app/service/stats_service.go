package service

import (
	"context"
	"fmt"

	"github.com/drukmotors/dealership-backend/internal/store"
)

// Stats is the admin dashboard summary.
type Stats struct {
	Users               int64        `json:"users"`
	Parts               int64        `json:"parts"`
	Categories          int64        `json:"categories"`
	Appointments        int64        `json:"appointments"`
	ActiveAnnouncements int64        `json:"activeAnnouncements"`
	LatestAnnouncement  store.Record `json:"latestAnnouncement"`
}

// StatsService aggregates counts for the admin dashboard.
type StatsService interface {
	Summary(ctx context.Context) (*Stats, error)
}

type statsService struct {
	store         store.Store
	announcements AnnouncementService
}

func NewStatsService(s store.Store, announcements AnnouncementService) StatsService {
	return &statsService{store: s, announcements: announcements}
}

func (s *statsService) Summary(ctx context.Context) (*Stats, error) {
	stats := &Stats{}

	counts := []struct {
		resource string
		where    store.Predicate
		dest     *int64
	}{
		{"users", nil, &stats.Users},
		{"parts", nil, &stats.Parts},
		{"categories", nil, &stats.Categories},
		{"appointments", nil, &stats.Appointments},
		{"announcements", store.Eq("active", true), &stats.ActiveAnnouncements},
	}

	for _, c := range counts {
		n, err := s.store.Count(ctx, c.resource, c.where)
		if err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", c.resource, err)
		}
		*c.dest = n
	}

	latest, err := s.announcements.Active(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load latest announcement: %w", err)
	}
	stats.LatestAnnouncement = latest

	return stats, nil
}

package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/drukmotors/dealership-backend/internal/store"
	"github.com/drukmotors/dealership-backend/pkg/logger"
	"github.com/drukmotors/dealership-backend/pkg/util"
)

// SeedDemoData inserts the demo dataset through the store interface so both
// backends start from the same state. Skips when users already exist.
func SeedDemoData(ctx context.Context, s store.Store) error {
	count, err := s.Count(ctx, "users", nil)
	if err != nil {
		return fmt.Errorf("failed to check existing users: %w", err)
	}
	if count > 0 {
		logger.Debug("Seed skipped, data already present", map[string]interface{}{
			"users": count,
		})
		return nil
	}

	logger.Info("Seeding demo data", nil)

	password, err := util.HashPassword("password123")
	if err != nil {
		return fmt.Errorf("failed to hash seed password: %w", err)
	}

	now := time.Now().UTC()

	// User keys are uuids: a numeric-looking string id would be coerced to a
	// number on the /:id path and the backends would disagree on the lookup.
	users := []store.Record{
		{
			"id":        uuid.NewString(),
			"username":  "admin",
			"password":  password,
			"email":     "admin@drukmotors.bt",
			"role":      "ADMIN",
			"createdAt": now,
		},
		{
			"id":        uuid.NewString(),
			"username":  "customer",
			"password":  password,
			"email":     "customer@drukmotors.test",
			"role":      "CUSTOMER",
			"phone":     "+975 17889900",
			"createdAt": now,
		},
	}

	categories := []store.Record{
		{"id": int64(1), "name": "Brakes"},
		{"id": int64(2), "name": "Engine"},
	}

	serviceTypes := []store.Record{
		{"id": int64(1), "name": "Standard Alignment", "basePrice": 1500.0},
		{"id": int64(2), "name": "Brake Service", "basePrice": 2500.0},
	}

	announcements := []store.Record{
		{
			"id":        int64(1),
			"text":      "Welcome to Druk Motors. Genuine Spare Parts and Expert Service.",
			"active":    true,
			"createdAt": now,
			"updatedAt": now,
		},
	}

	parts := []store.Record{
		{
			"id":          int64(1),
			"name":        "Brake Pads",
			"description": "High performance genuine brake pads.",
			"price":       4500.0,
			"stock":       int64(20),
			"categoryId":  int64(1),
			"image":       "/images/parts/brake_pads.png",
			"createdAt":   now,
			"updatedAt":   now,
		},
	}

	successStories := []store.Record{
		{
			"id":          int64(1),
			"title":       "2024 Regional Excellence Award",
			"description": "Druk Motors was honored with the Regional Service Excellence Award for achieving highest customer satisfaction in the Thimphu region.",
			"image":       "/images/hero_award.png",
			"createdAt":   now.AddDate(0, 0, -30),
			"updatedAt":   now,
		},
		{
			"id":          int64(2),
			"title":       "First EV Service Center in Bhutan",
			"description": "We are proud to announce our certification as the first authorized electric vehicle service center in the kingdom.",
			"image":       "/images/hero_ev.png",
			"createdAt":   now.AddDate(0, 0, -60),
			"updatedAt":   now,
		},
	}

	employees := []store.Record{
		{
			"id":        int64(1),
			"name":      "Tashi Dorji",
			"role":      "Senior Automotive Electrician",
			"bio":       "Certified specialist with 15+ years experience in advanced electrical diagnostics and hybrid vehicle systems.",
			"image":     "/images/profiles/tashi.png",
			"createdAt": now,
			"updatedAt": now,
		},
		{
			"id":        int64(2),
			"name":      "Pema Lhamo",
			"role":      "Service Manager",
			"bio":       "Ensuring excellence in customer care and workshop management through professional leadership and automotive expertise.",
			"image":     "/images/profiles/pema.png",
			"createdAt": now,
			"updatedAt": now,
		},
		{
			"id":        int64(3),
			"name":      "Karma Wangchuk",
			"role":      "Parts Specialist",
			"bio":       "Dedicated to sourcing and maintaining the highest quality of genuine parts for Bhutanese roads.",
			"image":     "/images/profiles/karma.png",
			"createdAt": now,
			"updatedAt": now,
		},
	}

	// Parents before children so foreign keys resolve
	batches := []struct {
		resource string
		records  []store.Record
	}{
		{"users", users},
		{"categories", categories},
		{"serviceTypes", serviceTypes},
		{"announcements", announcements},
		{"parts", parts},
		{"successStories", successStories},
		{"employees", employees},
	}

	for _, batch := range batches {
		for _, rec := range batch.records {
			if _, err := s.Insert(ctx, batch.resource, rec); err != nil {
				return fmt.Errorf("failed to seed %s: %w", batch.resource, err)
			}
		}
		logger.Debug("Seeded resource", map[string]interface{}{
			"resource": batch.resource,
			"count":    len(batch.records),
		})
	}

	logger.Info("Demo data seeded successfully", nil)
	return nil
}

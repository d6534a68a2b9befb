package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/drukmotors/dealership-backend/internal/app/model"
	"github.com/drukmotors/dealership-backend/internal/store"
	"github.com/drukmotors/dealership-backend/pkg/logger"
)

var ErrInvalidStatus = errors.New("invalid appointment status")

// BookInput carries a customer's booking request.
type BookInput struct {
	ServiceTypeID int64  `json:"serviceTypeId" binding:"required"`
	Date          string `json:"date" binding:"required"`
	Time          string `json:"time" binding:"required"`
	Notes         string `json:"notes"`
}

// AppointmentService handles customer bookings and the admin status workflow.
type AppointmentService interface {
	Book(ctx context.Context, userID string, input BookInput) (store.Record, error)
	ListForUser(ctx context.Context, userID string) ([]store.Record, error)
	UpdateStatus(ctx context.Context, id int64, status string) (store.Record, error)
	// CancelStale cancels PENDING appointments whose date has passed.
	CancelStale(ctx context.Context) (int64, error)
}

type appointmentService struct {
	store store.Store
}

func NewAppointmentService(s store.Store) AppointmentService {
	return &appointmentService{store: s}
}

func (s *appointmentService) Book(ctx context.Context, userID string, input BookInput) (store.Record, error) {
	count, err := s.store.Count(ctx, "serviceTypes", store.Eq("id", input.ServiceTypeID))
	if err != nil {
		return nil, fmt.Errorf("failed to check service type: %w", err)
	}
	if count == 0 {
		return nil, store.ErrNotFound
	}

	rec, err := s.store.Insert(ctx, "appointments", store.Record{
		"userId":        userID,
		"serviceTypeId": input.ServiceTypeID,
		"date":          input.Date,
		"time":          input.Time,
		"notes":         input.Notes,
		"status":        string(model.StatusPending),
		"createdAt":     time.Now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to book appointment: %w", err)
	}

	logger.Info("Appointment booked", map[string]interface{}{
		"appointment_id":  rec["id"],
		"user_id":         userID,
		"service_type_id": input.ServiceTypeID,
		"date":            input.Date,
	})
	return rec, nil
}

func (s *appointmentService) ListForUser(ctx context.Context, userID string) ([]store.Record, error) {
	records, _, err := s.store.List(ctx, "appointments", store.Query{
		Where: store.Eq("userId", userID),
		Sort:  store.Sort{Field: "createdAt", Desc: true},
	})
	if err != nil {
		return nil, err
	}

	// User records ride along on appointments; never expose the hash
	for _, rec := range records {
		if user, ok := rec["user"].(store.Record); ok {
			delete(user, "password")
		}
	}
	return records, nil
}

func (s *appointmentService) UpdateStatus(ctx context.Context, id int64, status string) (store.Record, error) {
	if !model.ValidStatus(status) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	rec, err := s.store.Update(ctx, "appointments", id, store.Record{
		"status": status,
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Appointment status updated", map[string]interface{}{
		"appointment_id": id,
		"status":         status,
	})
	return rec, nil
}

func (s *appointmentService) CancelStale(ctx context.Context) (int64, error) {
	today := time.Now().UTC().Format("2006-01-02")

	n, err := s.store.UpdateWhere(ctx, "appointments",
		store.Record{"status": string(model.StatusCancelled)},
		store.And{
			store.Eq("status", string(model.StatusPending)),
			store.Lt("date", today),
		},
	)
	if err != nil {
		return 0, fmt.Errorf("failed to cancel stale appointments: %w", err)
	}

	if n > 0 {
		logger.Info("Stale appointments cancelled", map[string]interface{}{
			"count": n,
		})
	}
	return n, nil
}

package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/drukmotors/dealership-backend/internal/app/service"
	"github.com/drukmotors/dealership-backend/pkg/logger"
)

// AppointmentScheduler cancels PENDING appointments whose date has passed.
type AppointmentScheduler struct {
	cron               *cron.Cron
	appointmentService service.AppointmentService
}

func NewAppointmentScheduler(appointmentService service.AppointmentService) *AppointmentScheduler {
	return &AppointmentScheduler{
		cron:               cron.New(),
		appointmentService: appointmentService,
	}
}

// Start registers the daily sweep at 01:00.
func (s *AppointmentScheduler) Start() error {
	_, err := s.cron.AddFunc("0 1 * * *", func() {
		logger.Info("Starting scheduled stale appointment sweep", nil)

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		n, err := s.appointmentService.CancelStale(ctx)
		if err != nil {
			logger.Error("Failed to cancel stale appointments", err)
			return
		}

		logger.Info("Stale appointment sweep completed", map[string]interface{}{
			"cancelled": n,
		})
	})

	if err != nil {
		logger.Error("Failed to add cron job for appointment sweep", err)
		return err
	}

	s.cron.Start()
	logger.Info("Appointment scheduler started successfully (daily at 1:00 AM)", nil)

	return nil
}

// Stop stops the scheduler.
func (s *AppointmentScheduler) Stop() {
	logger.Info("Stopping appointment scheduler...", nil)
	s.cron.Stop()
	logger.Info("Appointment scheduler stopped", nil)
}

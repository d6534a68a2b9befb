package controller

import (
	stderrors "errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/drukmotors/dealership-backend/internal/app/service"
	"github.com/drukmotors/dealership-backend/internal/errors"
	"github.com/drukmotors/dealership-backend/internal/middleware"
	"github.com/drukmotors/dealership-backend/internal/store"
)

type AppointmentController struct {
	appointmentService service.AppointmentService
}

func NewAppointmentController(appointmentService service.AppointmentService) *AppointmentController {
	return &AppointmentController{
		appointmentService: appointmentService,
	}
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// Book creates a PENDING appointment for the authenticated customer
// POST /api/v1/appointments
func (ctrl *AppointmentController) Book(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		errors.Unauthorized(c, "")
		return
	}

	var req service.BookInput
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid booking request", map[string]interface{}{
			"error": err.Error(),
		})
		errors.BadRequest(c, errors.ValidationInvalidInput, "Invalid request data")
		return
	}

	appointment, err := ctrl.appointmentService.Book(c.Request.Context(), userID, req)
	if err != nil {
		if stderrors.Is(err, store.ErrNotFound) {
			errors.NotFound(c, errors.RecordNotFound, "Service type not found")
			return
		}
		log.Error("Failed to book appointment", err, map[string]interface{}{
			"user_id": userID,
		})
		errors.InternalError(c, "Failed to book appointment")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":     "Appointment booked successfully",
		"appointment": appointment,
	})
}

// MyAppointments lists the authenticated customer's bookings
// GET /api/v1/appointments/my
func (ctrl *AppointmentController) MyAppointments(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		errors.Unauthorized(c, "")
		return
	}

	appointments, err := ctrl.appointmentService.ListForUser(c.Request.Context(), userID)
	if err != nil {
		log.Error("Failed to fetch appointments", err, map[string]interface{}{
			"user_id": userID,
		})
		errors.InternalError(c, "Failed to fetch appointments")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"appointments": appointments,
		"count":        len(appointments),
	})
}

// UpdateStatus moves an appointment through the status workflow (admin)
// PUT /api/v1/admin/appointments/:id/status
func (ctrl *AppointmentController) UpdateStatus(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		errors.BadRequest(c, errors.ValidationInvalidInput, "Invalid appointment ID")
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errors.BadRequest(c, errors.ValidationInvalidInput, "Invalid request data")
		return
	}

	appointment, err := ctrl.appointmentService.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		switch {
		case stderrors.Is(err, service.ErrInvalidStatus):
			errors.BadRequest(c, errors.ValidationInvalidInput, err.Error())
		case stderrors.Is(err, store.ErrNotFound):
			errors.NotFound(c, errors.RecordNotFound, "Appointment not found")
		default:
			log.Error("Failed to update appointment status", err, map[string]interface{}{
				"appointment_id": id,
			})
			errors.InternalError(c, "Failed to update appointment status")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "Appointment status updated",
		"appointment": appointment,
	})
}

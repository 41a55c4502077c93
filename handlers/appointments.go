package handlers

import (
	"net/http"

	"swasthsetu/middleware"
	"swasthsetu/models"
	"swasthsetu/service"

	"github.com/gin-gonic/gin"
)

// ListAppointments returns the caller's appointments. Doctors see their own
// calendar, everyone else the appointments they booked.
func ListAppointments(c *gin.Context) {
	claims, _ := middleware.CurrentClaims(c)
	filter := service.AppointmentFilter{
		Status: c.Query("status"),
		Type:   c.Query("appointment_type"),
	}

	appts, err := service.GlobalServices.Appointment.ListFor(claims.UserID, claims.IsDoctor, filter)
	if err != nil {
		fail(c, http.StatusInternalServerError, CodeInternal, "Failed to list appointments", err.Error())
		return
	}

	out := make([]models.AppointmentRead, 0, len(appts))
	for i := range appts {
		out = append(out, appts[i].ToRead())
	}
	ok(c, out)
}

// CreateAppointment books an appointment with a doctor.
func CreateAppointment(c *gin.Context) {
	claims, _ := middleware.CurrentClaims(c)

	var req models.AppointmentCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, CodeInvalidRequest, "Invalid request", err.Error())
		return
	}

	appt, err := service.GlobalServices.Appointment.Create(claims.UserID, req)
	if err != nil {
		failFromError(c, err)
		return
	}
	created(c, appt.ToRead())
}

// GetAppointment returns one appointment visible to the caller.
func GetAppointment(c *gin.Context) {
	claims, _ := middleware.CurrentClaims(c)
	id, okParam := paramUint(c, "id")
	if !okParam {
		fail(c, http.StatusBadRequest, CodeInvalidRequest, "Invalid appointment id", nil)
		return
	}

	appt, err := service.GlobalServices.Appointment.Get(claims.UserID, claims.IsDoctor, id)
	if err != nil {
		failFromError(c, err)
		return
	}
	ok(c, appt.ToRead())
}

// UpdateAppointment applies role-scoped edits to an appointment.
func UpdateAppointment(c *gin.Context) {
	claims, _ := middleware.CurrentClaims(c)
	id, okParam := paramUint(c, "id")
	if !okParam {
		fail(c, http.StatusBadRequest, CodeInvalidRequest, "Invalid appointment id", nil)
		return
	}

	var req models.AppointmentUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, CodeInvalidRequest, "Invalid request", err.Error())
		return
	}

	appt, err := service.GlobalServices.Appointment.Update(claims.UserID, claims.IsDoctor, id, req)
	if err != nil {
		failFromError(c, err)
		return
	}
	ok(c, appt.ToRead())
}

// CancelAppointment soft-cancels an appointment for either participant.
func CancelAppointment(c *gin.Context) {
	claims, _ := middleware.CurrentClaims(c)
	id, okParam := paramUint(c, "id")
	if !okParam {
		fail(c, http.StatusBadRequest, CodeInvalidRequest, "Invalid appointment id", nil)
		return
	}

	appt, err := service.GlobalServices.Appointment.Cancel(claims.UserID, claims.IsDoctor, id)
	if err != nil {
		failFromError(c, err)
		return
	}
	ok(c, gin.H{"id": appt.ID, "status": appt.Status})
}

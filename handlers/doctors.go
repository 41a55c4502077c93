package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"swasthsetu/middleware"
	"swasthsetu/models"
	"swasthsetu/service"

	"github.com/gin-gonic/gin"
)

// ListDoctors returns doctors, filterable by specialty and availability.
func ListDoctors(c *gin.Context) {
	filter := service.DoctorFilter{Specialty: c.Query("specialty")}
	if v := strings.TrimSpace(c.Query("available")); v != "" {
		avail, err := strconv.ParseBool(v)
		if err != nil {
			fail(c, http.StatusBadRequest, CodeInvalidRequest, "Invalid available filter", err.Error())
			return
		}
		filter.Available = &avail
	}

	doctors, err := service.GlobalServices.Doctor.List(filter)
	if err != nil {
		fail(c, http.StatusInternalServerError, CodeInternal, "Failed to list doctors", err.Error())
		return
	}

	out := make([]models.DoctorRead, 0, len(doctors))
	for i := range doctors {
		out = append(out, doctors[i].ToRead())
	}
	ok(c, out)
}

// GetDoctor returns one doctor profile.
func GetDoctor(c *gin.Context) {
	id, okParam := paramUint(c, "id")
	if !okParam {
		fail(c, http.StatusBadRequest, CodeInvalidRequest, "Invalid doctor id", nil)
		return
	}

	doctor, err := service.GlobalServices.Doctor.Get(id)
	if err != nil {
		failFromError(c, err)
		return
	}
	ok(c, doctor.ToRead())
}

// GetDoctorAvailability returns the free slots for a doctor on a date.
func GetDoctorAvailability(c *gin.Context) {
	id, okParam := paramUint(c, "id")
	if !okParam {
		fail(c, http.StatusBadRequest, CodeInvalidRequest, "Invalid doctor id", nil)
		return
	}
	date := c.Query("date")
	if strings.TrimSpace(date) == "" {
		fail(c, http.StatusBadRequest, CodeInvalidRequest, "date query parameter is required", nil)
		return
	}

	avail, err := service.GlobalServices.Doctor.Availability(id, date, 0)
	if err != nil {
		failFromError(c, err)
		return
	}
	ok(c, avail)
}

// GetDoctorSchedules returns a doctor's weekly schedule.
func GetDoctorSchedules(c *gin.Context) {
	id, okParam := paramUint(c, "id")
	if !okParam {
		fail(c, http.StatusBadRequest, CodeInvalidRequest, "Invalid doctor id", nil)
		return
	}
	if _, err := service.GlobalServices.Doctor.Get(id); err != nil {
		failFromError(c, err)
		return
	}

	rows, err := service.GlobalServices.Doctor.Schedules(id)
	if err != nil {
		fail(c, http.StatusInternalServerError, CodeInternal, "Failed to list schedules", err.Error())
		return
	}
	ok(c, rows)
}

// MyDoctorProfile returns the caller's doctor profile, creating it on first
// access. Doctor role required.
func MyDoctorProfile(c *gin.Context) {
	claims, _ := middleware.CurrentClaims(c)
	doctor, err := service.GlobalServices.Doctor.GetOrCreateProfile(claims.UserID)
	if err != nil {
		failFromError(c, err)
		return
	}
	ok(c, doctor.ToRead())
}

// UpdateMyDoctorProfile edits the caller's doctor profile.
func UpdateMyDoctorProfile(c *gin.Context) {
	claims, _ := middleware.CurrentClaims(c)

	var req models.DoctorUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, CodeInvalidRequest, "Invalid request", err.Error())
		return
	}

	doctor, err := service.GlobalServices.Doctor.UpdateProfile(claims.UserID, req)
	if err != nil {
		failFromError(c, err)
		return
	}
	ok(c, doctor.ToRead())
}

// MySchedules returns the caller's weekly schedule rows.
func MySchedules(c *gin.Context) {
	claims, _ := middleware.CurrentClaims(c)
	doctor, err := service.GlobalServices.Doctor.GetOrCreateProfile(claims.UserID)
	if err != nil {
		failFromError(c, err)
		return
	}

	rows, err := service.GlobalServices.Doctor.Schedules(doctor.ID)
	if err != nil {
		fail(c, http.StatusInternalServerError, CodeInternal, "Failed to list schedules", err.Error())
		return
	}
	ok(c, rows)
}

// SetMySchedule creates or replaces the caller's schedule for one weekday.
func SetMySchedule(c *gin.Context) {
	claims, _ := middleware.CurrentClaims(c)

	var req models.ScheduleCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, CodeInvalidRequest, "Invalid request", err.Error())
		return
	}

	doctor, err := service.GlobalServices.Doctor.GetOrCreateProfile(claims.UserID)
	if err != nil {
		failFromError(c, err)
		return
	}

	row, err := service.GlobalServices.Doctor.SetSchedule(doctor.ID, req)
	if err != nil {
		failFromError(c, err)
		return
	}
	ok(c, row)
}

// DeleteMySchedule removes one of the caller's schedule rows.
func DeleteMySchedule(c *gin.Context) {
	claims, _ := middleware.CurrentClaims(c)
	id, okParam := paramUint(c, "id")
	if !okParam {
		fail(c, http.StatusBadRequest, CodeInvalidRequest, "Invalid schedule id", nil)
		return
	}

	doctor, err := service.GlobalServices.Doctor.GetOrCreateProfile(claims.UserID)
	if err != nil {
		failFromError(c, err)
		return
	}

	if err := service.GlobalServices.Doctor.DeleteSchedule(doctor.ID, id); err != nil {
		failFromError(c, err)
		return
	}
	ok(c, gin.H{"deleted": id})
}

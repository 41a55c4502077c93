package handlers

import (
	"net/http"

	"swasthsetu/middleware"
	"swasthsetu/models"
	"swasthsetu/service"

	"github.com/gin-gonic/gin"
)

// ApplyDoctor files a doctor role application for the caller.
func ApplyDoctor(c *gin.Context) {
	claims, _ := middleware.CurrentClaims(c)

	var req models.DoctorApplicationCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, CodeInvalidRequest, "Invalid request", err.Error())
		return
	}

	app, err := service.GlobalServices.Application.ApplyDoctor(claims.UserID, req)
	if err != nil {
		failFromError(c, err)
		return
	}
	created(c, app)
}

// ApplyPharmacist files a pharmacist role application for the caller.
func ApplyPharmacist(c *gin.Context) {
	claims, _ := middleware.CurrentClaims(c)

	var req models.PharmacistApplicationCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, CodeInvalidRequest, "Invalid request", err.Error())
		return
	}

	app, err := service.GlobalServices.Application.ApplyPharmacist(claims.UserID, req)
	if err != nil {
		failFromError(c, err)
		return
	}
	created(c, app)
}

// MyApplications returns the caller's applications of both kinds.
func MyApplications(c *gin.Context) {
	claims, _ := middleware.CurrentClaims(c)
	doctorApps, pharmacistApps, err := service.GlobalServices.Application.MyApplications(claims.UserID)
	if err != nil {
		fail(c, http.StatusInternalServerError, CodeInternal, "Failed to list applications", err.Error())
		return
	}
	ok(c, gin.H{
		"doctor_applications":     doctorApps,
		"pharmacist_applications": pharmacistApps,
	})
}

// ListDoctorApplications returns doctor applications. Staff only.
func ListDoctorApplications(c *gin.Context) {
	apps, err := service.GlobalServices.Application.ListDoctorApplications(c.Query("status"))
	if err != nil {
		fail(c, http.StatusInternalServerError, CodeInternal, "Failed to list applications", err.Error())
		return
	}
	ok(c, apps)
}

// ListPharmacistApplications returns pharmacist applications. Staff only.
func ListPharmacistApplications(c *gin.Context) {
	apps, err := service.GlobalServices.Application.ListPharmacistApplications(c.Query("status"))
	if err != nil {
		fail(c, http.StatusInternalServerError, CodeInternal, "Failed to list applications", err.Error())
		return
	}
	ok(c, apps)
}

// ApproveDoctorApplication approves a doctor application. Staff only.
func ApproveDoctorApplication(c *gin.Context) {
	decideDoctor(c, true)
}

// RejectDoctorApplication rejects a doctor application. Staff only.
func RejectDoctorApplication(c *gin.Context) {
	decideDoctor(c, false)
}

// ApprovePharmacistApplication approves a pharmacist application. Staff only.
func ApprovePharmacistApplication(c *gin.Context) {
	decidePharmacist(c, true)
}

// RejectPharmacistApplication rejects a pharmacist application. Staff only.
func RejectPharmacistApplication(c *gin.Context) {
	decidePharmacist(c, false)
}

func decideDoctor(c *gin.Context, approve bool) {
	id, okParam := paramUint(c, "id")
	if !okParam {
		fail(c, http.StatusBadRequest, CodeInvalidRequest, "Invalid application id", nil)
		return
	}

	var req models.ApplicationDecision
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		fail(c, http.StatusBadRequest, CodeInvalidRequest, "Invalid request", err.Error())
		return
	}

	app, err := service.GlobalServices.Application.DecideDoctor(id, approve, req.Notes, service.GlobalServices.Notification)
	if err != nil {
		failFromError(c, err)
		return
	}
	ok(c, app)
}

func decidePharmacist(c *gin.Context, approve bool) {
	id, okParam := paramUint(c, "id")
	if !okParam {
		fail(c, http.StatusBadRequest, CodeInvalidRequest, "Invalid application id", nil)
		return
	}

	var req models.ApplicationDecision
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		fail(c, http.StatusBadRequest, CodeInvalidRequest, "Invalid request", err.Error())
		return
	}

	app, err := service.GlobalServices.Application.DecidePharmacist(id, approve, req.Notes, service.GlobalServices.Notification)
	if err != nil {
		failFromError(c, err)
		return
	}
	ok(c, app)
}

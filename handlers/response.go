package handlers

import (
	"errors"
	"net/http"

	"swasthsetu/service"

	"github.com/gin-gonic/gin"
)

// Response is the stable API envelope returned by every JSON endpoint.
type Response struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

const (
	CodeOK             = "OK"
	CodeInvalidRequest = "INVALID_REQUEST"
	CodeUnauthorized   = "UNAUTHORIZED"
	CodeForbidden      = "FORBIDDEN"
	CodeNotFound       = "NOT_FOUND"
	CodeConflict       = "CONFLICT"
	CodeInternal       = "INTERNAL_ERROR"
)

func respond(c *gin.Context, status int, code, message string, data any) {
	c.JSON(status, Response{Code: code, Message: message, Data: data})
}

func ok(c *gin.Context, data any) {
	respond(c, http.StatusOK, CodeOK, "OK", data)
}

func created(c *gin.Context, data any) {
	respond(c, http.StatusCreated, CodeOK, "Created", data)
}

func fail(c *gin.Context, status int, code, message string, detail any) {
	// Keep the envelope stable: put free-form details into `data.detail`.
	payload := gin.H{}
	if detail != nil {
		payload["detail"] = detail
	}
	respond(c, status, code, message, payload)
}

// failFromError maps service sentinel errors to HTTP statuses so handlers
// don't repeat the same switch.
func failFromError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrDoctorNotFound),
		errors.Is(err, service.ErrScheduleNotFound),
		errors.Is(err, service.ErrAppointmentNotFound),
		errors.Is(err, service.ErrPharmacistNotFound),
		errors.Is(err, service.ErrPrescriptionNotFound),
		errors.Is(err, service.ErrOrderNotFound),
		errors.Is(err, service.ErrNotificationNotFound),
		errors.Is(err, service.ErrRoomNotFound),
		errors.Is(err, service.ErrApplicationNotFound):
		fail(c, http.StatusNotFound, CodeNotFound, "Not found", err.Error())
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrAccountDisabled):
		fail(c, http.StatusUnauthorized, CodeUnauthorized, "Authentication failed", err.Error())
	case errors.Is(err, service.ErrNotParticipant),
		errors.Is(err, service.ErrRoomForbidden),
		errors.Is(err, service.ErrOrderForbidden):
		fail(c, http.StatusForbidden, CodeForbidden, "Forbidden", err.Error())
	case errors.Is(err, service.ErrUserExists),
		errors.Is(err, service.ErrSlotTaken),
		errors.Is(err, service.ErrRoomExists),
		errors.Is(err, service.ErrApplicationPending),
		errors.Is(err, service.ErrApplicationDecided),
		errors.Is(err, service.ErrAlreadyHasRole):
		fail(c, http.StatusConflict, CodeConflict, "Conflict", err.Error())
	case errors.Is(err, service.ErrInvalidSchedule):
		fail(c, http.StatusBadRequest, CodeInvalidRequest, "Invalid request", err.Error())
	default:
		fail(c, http.StatusBadRequest, CodeInvalidRequest, "Request failed", err.Error())
	}
}

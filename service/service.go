package service

import (
	"gorm.io/gorm"
)

// Services is the global service container
type Services struct {
	User         *UserService
	Doctor       *DoctorService
	Appointment  *AppointmentService
	Pharmacy     *PharmacyService
	Notification *NotificationService
	VideoCall    *VideoCallService
	Application  *ApplicationService
}

// GlobalServices is the global service instance
var GlobalServices *Services

// InitServices initializes all services
func InitServices(db *gorm.DB, slotMinutes int) {
	notificationSvc := NewNotificationService(db)
	userSvc := NewUserService(db)
	doctorSvc := NewDoctorService(db)
	appointmentSvc := NewAppointmentService(db, doctorSvc, notificationSvc, slotMinutes)
	pharmacySvc := NewPharmacyService(db)
	videoCallSvc := NewVideoCallService(db)
	applicationSvc := NewApplicationService(db)

	GlobalServices = &Services{
		User:         userSvc,
		Doctor:       doctorSvc,
		Appointment:  appointmentSvc,
		Pharmacy:     pharmacySvc,
		Notification: notificationSvc,
		VideoCall:    videoCallSvc,
		Application:  applicationSvc,
	}
}

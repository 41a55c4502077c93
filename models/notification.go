package models

import "time"

// Notification types
const (
	NotifyAppointment          = "appointment"
	NotifyAppointmentReminder  = "appointment_reminder"
	NotifyAppointmentCancelled = "appointment_cancelled"
	NotifyAppointmentConfirmed = "appointment_confirmed"
	NotifyPrescription         = "prescription"
	NotifyLabResult            = "lab_result"
	NotifyVaccination          = "vaccination"
	NotifyInfo                 = "info"
	NotifySystem               = "system"
)

// Notification model for users
type Notification struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	UserID        uint       `gorm:"index:idx_user_read;index:idx_user_created;not null" json:"user_id"`
	User          User       `gorm:"foreignKey:UserID" json:"-"`
	Title         string     `gorm:"size:255;not null" json:"title"`
	Message       string     `json:"message"`
	Type          string     `gorm:"size:50;default:'info'" json:"notification_type"`
	IsRead        bool       `gorm:"default:false;index:idx_user_read" json:"is_read"`
	ReadAt        *time.Time `json:"read_at,omitempty"`
	AppointmentID *uint      `json:"related_appointment,omitempty"`
	CreatedAt     time.Time  `gorm:"index:idx_user_created" json:"created_at"`
	UpdatedAt     time.Time  `json:"-"`
}

package models

import (
	"strings"
	"time"
)

// Appointment types
const (
	AppointmentTypeVideo    = "video"
	AppointmentTypeInPerson = "in_person"
)

// Appointment statuses
const (
	AppointmentScheduled  = "scheduled"
	AppointmentConfirmed  = "confirmed"
	AppointmentInProgress = "in_progress"
	AppointmentCompleted  = "completed"
	AppointmentCancelled  = "cancelled"
)

// ActiveAppointmentStatuses are the statuses that occupy a time slot.
var ActiveAppointmentStatuses = []string{AppointmentScheduled, AppointmentConfirmed, AppointmentInProgress}

// Appointment model. Dates are "YYYY-MM-DD", times "HH:MM".
type Appointment struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	PatientID     uint      `gorm:"index:idx_patient_status;not null" json:"patient_id"`
	Patient       User      `gorm:"foreignKey:PatientID" json:"-"`
	DoctorID      uint      `gorm:"index:idx_doctor_status;index:idx_doctor_slot;not null" json:"doctor_id"`
	Doctor        Doctor    `gorm:"foreignKey:DoctorID" json:"-"`
	Type          string    `gorm:"size:20;default:'video'" json:"appointment_type"`
	Status        string    `gorm:"size:20;default:'scheduled';index:idx_patient_status;index:idx_doctor_status" json:"status"`
	ScheduledDate string    `gorm:"size:10;index:idx_slot;index:idx_doctor_slot;not null" json:"scheduled_date"`
	ScheduledTime string    `gorm:"size:5;index:idx_slot;index:idx_doctor_slot;not null" json:"scheduled_time"`
	Reason        string    `json:"reason"`
	Notes         string    `json:"notes"`
	Prescription  string    `json:"prescription"`
	MeetingLink   string    `json:"meeting_link"`
	ReminderSent  bool      `gorm:"default:false" json:"-"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// AppointmentRead response model with participant names resolved
type AppointmentRead struct {
	ID            uint      `json:"id"`
	PatientID     uint      `json:"patient_id"`
	PatientName   string    `json:"patient_name"`
	DoctorID      uint      `json:"doctor_id"`
	DoctorName    string    `json:"doctor_name"`
	Specialty     string    `json:"specialty"`
	Type          string    `json:"appointment_type"`
	Status        string    `json:"status"`
	ScheduledDate string    `json:"scheduled_date"`
	ScheduledTime string    `json:"scheduled_time"`
	Reason        string    `json:"reason"`
	Notes         string    `json:"notes"`
	Prescription  string    `json:"prescription"`
	MeetingLink   string    `json:"meeting_link"`
	CreatedAt     time.Time `json:"created_at"`
}

// ToRead converts an appointment (with Patient and Doctor.User preloaded) to
// its response representation.
func (a *Appointment) ToRead() AppointmentRead {
	return AppointmentRead{
		ID:            a.ID,
		PatientID:     a.PatientID,
		PatientName:   a.Patient.FullName(),
		DoctorID:      a.DoctorID,
		DoctorName:    a.Doctor.User.FullName(),
		Specialty:     a.Doctor.Specialty,
		Type:          a.Type,
		Status:        a.Status,
		ScheduledDate: a.ScheduledDate,
		ScheduledTime: a.ScheduledTime,
		Reason:        a.Reason,
		Notes:         a.Notes,
		Prescription:  a.Prescription,
		MeetingLink:   a.MeetingLink,
		CreatedAt:     a.CreatedAt,
	}
}

// AppointmentCreate request payload for booking
type AppointmentCreate struct {
	DoctorID      uint   `json:"doctor_id" binding:"required"`
	Type          string `json:"appointment_type"`
	ScheduledDate string `json:"scheduled_date" binding:"required"`
	ScheduledTime string `json:"scheduled_time" binding:"required"`
	Reason        string `json:"reason"`
}

// Normalize trims whitespace from input fields
func (a *AppointmentCreate) Normalize() {
	a.Type = strings.TrimSpace(a.Type)
	a.ScheduledDate = strings.TrimSpace(a.ScheduledDate)
	a.ScheduledTime = strings.TrimSpace(a.ScheduledTime)
	a.Reason = strings.TrimSpace(a.Reason)
}

// AppointmentUpdate request payload. Patients may set notes; doctors may set
// status, prescription and the meeting link.
type AppointmentUpdate struct {
	Status       string `json:"status"`
	Notes        string `json:"notes"`
	Prescription string `json:"prescription"`
	MeetingLink  string `json:"meeting_link"`
}

// Normalize trims whitespace from input fields
func (a *AppointmentUpdate) Normalize() {
	a.Status = strings.TrimSpace(a.Status)
	a.Notes = strings.TrimSpace(a.Notes)
	a.Prescription = strings.TrimSpace(a.Prescription)
	a.MeetingLink = strings.TrimSpace(a.MeetingLink)
}

// ValidAppointmentStatus reports whether s is a known status value.
func ValidAppointmentStatus(s string) bool {
	switch s {
	case AppointmentScheduled, AppointmentConfirmed, AppointmentInProgress, AppointmentCompleted, AppointmentCancelled:
		return true
	default:
		return false
	}
}

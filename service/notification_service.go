package service

import (
	"errors"
	"fmt"
	"log"
	"time"

	"swasthsetu/models"

	"gorm.io/gorm"
)

// ErrNotificationNotFound is returned when a notification does not exist or
// belongs to another user.
var ErrNotificationNotFound = errors.New("notification not found")

// NotificationService creates and delivers in-app notifications
type NotificationService struct {
	db *gorm.DB
}

// NewNotificationService constructs a notification service
func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{db: db}
}

// Create stores a notification for a user. Failures are logged but a nil
// notification is still returned to the caller with the error.
func (s *NotificationService) Create(userID uint, title, message, notifType string, appointmentID *uint) (*models.Notification, error) {
	n := models.Notification{
		UserID:        userID,
		Title:         title,
		Message:       message,
		Type:          notifType,
		AppointmentID: appointmentID,
	}
	if err := s.db.Create(&n).Error; err != nil {
		log.Printf("Failed to create notification for user %d: %v", userID, err)
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}
	return &n, nil
}

// ListFor returns a user's notifications, newest first.
func (s *NotificationService) ListFor(userID uint) ([]models.Notification, error) {
	var items []models.Notification
	if err := s.db.Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return items, nil
}

// UnreadCount returns the number of unread notifications for a user.
func (s *NotificationService) UnreadCount(userID uint) (int64, error) {
	var count int64
	if err := s.db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count notifications: %w", err)
	}
	return count, nil
}

// MarkRead marks a single notification read. ReadAt is only set the first time.
func (s *NotificationService) MarkRead(userID, notificationID uint) (*models.Notification, error) {
	var n models.Notification
	if err := s.db.First(&n, "id = ? AND user_id = ?", notificationID, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotificationNotFound
		}
		return nil, fmt.Errorf("failed to get notification: %w", err)
	}

	if !n.IsRead {
		now := time.Now()
		n.IsRead = true
		n.ReadAt = &now
		if err := s.db.Model(&n).Updates(map[string]interface{}{
			"is_read": true,
			"read_at": now,
		}).Error; err != nil {
			return nil, fmt.Errorf("failed to mark notification read: %w", err)
		}
	}
	return &n, nil
}

// MarkAllRead marks every unread notification for a user as read.
func (s *NotificationService) MarkAllRead(userID uint) (int64, error) {
	res := s.db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Updates(map[string]interface{}{
			"is_read": true,
			"read_at": time.Now(),
		})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// NotifyBooked sends booking notifications to both parties of a new appointment.
func (s *NotificationService) NotifyBooked(appt *models.Appointment, doctorName, patientName string, doctorUserID uint) {
	when := fmt.Sprintf("%s at %s", appt.ScheduledDate, formatClock12(appt.ScheduledTime))

	s.mustCreate(appt.PatientID, "Appointment Booked",
		fmt.Sprintf("Your appointment with Dr. %s is scheduled for %s.", doctorName, when),
		models.NotifyAppointment, &appt.ID)

	s.mustCreate(doctorUserID, "New Appointment",
		fmt.Sprintf("%s booked an appointment with you for %s.", patientName, when),
		models.NotifyAppointment, &appt.ID)
}

// NotifyConfirmed tells the patient their appointment was confirmed.
func (s *NotificationService) NotifyConfirmed(appt *models.Appointment, doctorName string) {
	when := fmt.Sprintf("%s at %s", appt.ScheduledDate, formatClock12(appt.ScheduledTime))
	s.mustCreate(appt.PatientID, "Appointment Confirmed",
		fmt.Sprintf("Dr. %s confirmed your appointment for %s.", doctorName, when),
		models.NotifyAppointmentConfirmed, &appt.ID)
}

// NotifyCancelled tells both parties the appointment was cancelled, whoever
// cancelled it.
func (s *NotificationService) NotifyCancelled(appt *models.Appointment, doctorName, patientName string, doctorUserID uint) {
	when := fmt.Sprintf("%s at %s", appt.ScheduledDate, formatClock12(appt.ScheduledTime))

	s.mustCreate(appt.PatientID, "Appointment Cancelled",
		fmt.Sprintf("Your appointment with Dr. %s scheduled for %s has been cancelled.", doctorName, when),
		models.NotifyAppointmentCancelled, &appt.ID)

	s.mustCreate(doctorUserID, "Appointment Cancelled",
		fmt.Sprintf("The appointment with %s scheduled for %s has been cancelled.", patientName, when),
		models.NotifyAppointmentCancelled, &appt.ID)
}

// NotifyCompleted tells the patient their appointment is done.
func (s *NotificationService) NotifyCompleted(appt *models.Appointment, doctorName string) {
	s.mustCreate(appt.PatientID, "Appointment Completed",
		fmt.Sprintf("Your appointment with Dr. %s has been completed.", doctorName),
		models.NotifyAppointment, &appt.ID)
}

// NotifyReminder sends the day-before reminder to both parties.
func (s *NotificationService) NotifyReminder(appt *models.Appointment, doctorName, patientName string, doctorUserID uint) {
	at := formatClock12(appt.ScheduledTime)

	s.mustCreate(appt.PatientID, "Appointment Reminder",
		fmt.Sprintf("Reminder: you have an appointment with Dr. %s tomorrow at %s.", doctorName, at),
		models.NotifyAppointmentReminder, &appt.ID)

	s.mustCreate(doctorUserID, "Appointment Reminder",
		fmt.Sprintf("Reminder: you have an appointment with %s tomorrow at %s.", patientName, at),
		models.NotifyAppointmentReminder, &appt.ID)
}

// NotifyPrescriptionAdded tells the patient a prescription was added.
func (s *NotificationService) NotifyPrescriptionAdded(appt *models.Appointment, doctorName string) {
	s.mustCreate(appt.PatientID, "Prescription Added",
		fmt.Sprintf("Dr. %s added a prescription to your appointment.", doctorName),
		models.NotifyPrescription, &appt.ID)
}

// NotifyOrderStatus tells the patient their pharmacy order changed status.
func (s *NotificationService) NotifyOrderStatus(patientID uint, storeName, status string) {
	s.mustCreate(patientID, "Order Update",
		fmt.Sprintf("Your order at %s is now %s.", storeName, status),
		models.NotifyInfo, nil)
}

// NotifyApplicationDecision tells the applicant the outcome of their role application.
func (s *NotificationService) NotifyApplicationDecision(userID uint, role, status, notes string) {
	msg := fmt.Sprintf("Your %s application has been %s.", role, status)
	if notes != "" {
		msg = fmt.Sprintf("%s Notes: %s", msg, notes)
	}
	s.mustCreate(userID, "Application Update", msg, models.NotifySystem, nil)
}

// mustCreate creates a notification and only logs on failure. Notification
// delivery never fails the operation that triggered it.
func (s *NotificationService) mustCreate(userID uint, title, message, notifType string, appointmentID *uint) {
	if _, err := s.Create(userID, title, message, notifType, appointmentID); err != nil {
		log.Printf("Notification dropped (user %d, %q): %v", userID, title, err)
	}
}

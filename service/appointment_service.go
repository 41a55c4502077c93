package service

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"swasthsetu/models"

	"gorm.io/gorm"
)

var (
	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrSlotTaken           = errors.New("time slot is not available")
	ErrNotParticipant      = errors.New("not a participant of this appointment")
)

// AppointmentService handles booking, updates and reminders
type AppointmentService struct {
	db            *gorm.DB
	doctors       *DoctorService
	notifications *NotificationService
	slotMinutes   int
}

// NewAppointmentService constructs an appointment service
func NewAppointmentService(db *gorm.DB, doctors *DoctorService, notifications *NotificationService, slotMinutes int) *AppointmentService {
	if slotMinutes <= 0 {
		slotMinutes = 30
	}
	return &AppointmentService{
		db:            db,
		doctors:       doctors,
		notifications: notifications,
		slotMinutes:   slotMinutes,
	}
}

// AppointmentFilter narrows appointment listings
type AppointmentFilter struct {
	Status string
	Type   string
}

// ListFor returns the appointments visible to a user. Doctors see the ones on
// their own calendar, everyone else sees the ones they booked as a patient.
func (s *AppointmentService) ListFor(userID uint, isDoctor bool, filter AppointmentFilter) ([]models.Appointment, error) {
	q := s.db.Preload("Patient").Preload("Doctor").Preload("Doctor.User").Model(&models.Appointment{})

	if isDoctor {
		doctor, err := s.doctors.GetByUser(userID)
		if err != nil {
			if errors.Is(err, ErrDoctorNotFound) {
				return []models.Appointment{}, nil
			}
			return nil, err
		}
		q = q.Where("doctor_id = ?", doctor.ID)
	} else {
		q = q.Where("patient_id = ?", userID)
	}

	if status := strings.TrimSpace(filter.Status); status != "" {
		q = q.Where("status = ?", status)
	}
	if typ := strings.TrimSpace(filter.Type); typ != "" {
		q = q.Where("type = ?", typ)
	}

	var appts []models.Appointment
	if err := q.Order("scheduled_date desc, scheduled_time desc").Find(&appts).Error; err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appts, nil
}

// Create books a new appointment after checking the slot against both the
// doctor's and the patient's active appointments.
func (s *AppointmentService) Create(patientID uint, req models.AppointmentCreate) (*models.Appointment, error) {
	req.Normalize()

	if req.Type == "" {
		req.Type = models.AppointmentTypeVideo
	}
	if req.Type != models.AppointmentTypeVideo && req.Type != models.AppointmentTypeInPerson {
		return nil, fmt.Errorf("appointment_type must be %q or %q", models.AppointmentTypeVideo, models.AppointmentTypeInPerson)
	}

	date, err := parseDate(req.ScheduledDate)
	if err != nil {
		return nil, err
	}
	start, err := parseClock(req.ScheduledTime)
	if err != nil {
		return nil, err
	}
	req.ScheduledDate = date.Format(dateLayout)
	req.ScheduledTime = formatClock(start)

	doctor, err := s.doctors.Get(req.DoctorID)
	if err != nil {
		return nil, err
	}

	if err := s.checkSlotFree("doctor_id", doctor.ID, req.ScheduledDate, start); err != nil {
		return nil, err
	}
	if err := s.checkSlotFree("patient_id", patientID, req.ScheduledDate, start); err != nil {
		if errors.Is(err, ErrSlotTaken) {
			return nil, fmt.Errorf("%w: you already have an appointment at this time", ErrSlotTaken)
		}
		return nil, err
	}

	appt := models.Appointment{
		PatientID:     patientID,
		DoctorID:      doctor.ID,
		Type:          req.Type,
		Status:        models.AppointmentScheduled,
		ScheduledDate: req.ScheduledDate,
		ScheduledTime: req.ScheduledTime,
		Reason:        req.Reason,
	}
	if err := s.db.Create(&appt).Error; err != nil {
		return nil, fmt.Errorf("failed to create appointment: %w", err)
	}

	full, err := s.load(appt.ID)
	if err != nil {
		return nil, err
	}

	s.notifications.NotifyBooked(full, full.Doctor.User.FullName(), full.Patient.FullName(), full.Doctor.UserID)
	return full, nil
}

// checkSlotFree rejects the booking when an active appointment on the same
// date overlaps the requested slot.
func (s *AppointmentService) checkSlotFree(column string, ownerID uint, date string, start int) error {
	var existing []models.Appointment
	if err := s.db.Where(column+" = ? AND scheduled_date = ? AND status IN ?",
		ownerID, date, models.ActiveAppointmentStatuses).
		Find(&existing).Error; err != nil {
		return fmt.Errorf("failed to check slot: %w", err)
	}

	for _, appt := range existing {
		at, err := parseClock(appt.ScheduledTime)
		if err != nil {
			continue
		}
		if rangesOverlap(start, start+s.slotMinutes, at, at+s.slotMinutes) {
			return ErrSlotTaken
		}
	}
	return nil
}

// Get fetches an appointment visible to the user.
func (s *AppointmentService) Get(userID uint, isDoctor bool, id uint) (*models.Appointment, error) {
	appt, err := s.load(id)
	if err != nil {
		return nil, err
	}
	if !s.participant(appt, userID, isDoctor) {
		return nil, ErrNotParticipant
	}
	return appt, nil
}

// Update applies role-scoped edits. Doctors may change status, prescription
// and the meeting link; patients may only change their notes.
func (s *AppointmentService) Update(userID uint, isDoctor bool, id uint, req models.AppointmentUpdate) (*models.Appointment, error) {
	appt, err := s.Get(userID, isDoctor, id)
	if err != nil {
		return nil, err
	}

	req.Normalize()
	updates := map[string]interface{}{}

	if isDoctor && appt.Doctor.UserID == userID {
		if req.Status != "" {
			if !models.ValidAppointmentStatus(req.Status) {
				return nil, fmt.Errorf("invalid status %q", req.Status)
			}
			updates["status"] = req.Status
		}
		if req.Prescription != "" {
			updates["prescription"] = req.Prescription
		}
		if req.MeetingLink != "" {
			updates["meeting_link"] = req.MeetingLink
		}
	}
	if req.Notes != "" && appt.PatientID == userID {
		updates["notes"] = req.Notes
	}

	if len(updates) == 0 {
		return appt, nil
	}
	if err := s.db.Model(appt).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update appointment: %w", err)
	}

	doctorName := appt.Doctor.User.FullName()
	if status, ok := updates["status"]; ok {
		switch status {
		case models.AppointmentConfirmed:
			s.notifications.NotifyConfirmed(appt, doctorName)
		case models.AppointmentCancelled:
			s.notifications.NotifyCancelled(appt, doctorName, appt.Patient.FullName(), appt.Doctor.UserID)
		case models.AppointmentCompleted:
			s.notifications.NotifyCompleted(appt, doctorName)
		}
	}
	if _, ok := updates["prescription"]; ok {
		s.notifications.NotifyPrescriptionAdded(appt, doctorName)
	}

	return s.load(id)
}

// Cancel soft-cancels an appointment on behalf of either participant.
func (s *AppointmentService) Cancel(userID uint, isDoctor bool, id uint) (*models.Appointment, error) {
	appt, err := s.Get(userID, isDoctor, id)
	if err != nil {
		return nil, err
	}

	if appt.Status == models.AppointmentCancelled || appt.Status == models.AppointmentCompleted {
		return nil, fmt.Errorf("appointment is already %s", appt.Status)
	}

	if err := s.db.Model(appt).Update("status", models.AppointmentCancelled).Error; err != nil {
		return nil, fmt.Errorf("failed to cancel appointment: %w", err)
	}
	appt.Status = models.AppointmentCancelled

	s.notifications.NotifyCancelled(appt,
		appt.Doctor.User.FullName(), appt.Patient.FullName(), appt.Doctor.UserID)

	return appt, nil
}

// SendReminders delivers the day-before reminder for tomorrow's scheduled and
// confirmed appointments. Each appointment is reminded at most once.
func (s *AppointmentService) SendReminders(now time.Time) (int, error) {
	tomorrow := now.AddDate(0, 0, 1).Format(dateLayout)

	var due []models.Appointment
	if err := s.db.Preload("Patient").Preload("Doctor").Preload("Doctor.User").
		Where("scheduled_date = ? AND reminder_sent = ? AND status IN ?",
			tomorrow, false, []string{models.AppointmentScheduled, models.AppointmentConfirmed}).
		Find(&due).Error; err != nil {
		return 0, fmt.Errorf("failed to list due reminders: %w", err)
	}

	sent := 0
	for i := range due {
		appt := &due[i]
		s.notifications.NotifyReminder(appt,
			appt.Doctor.User.FullName(), appt.Patient.FullName(), appt.Doctor.UserID)
		if err := s.db.Model(appt).Update("reminder_sent", true).Error; err != nil {
			log.Printf("Failed to mark reminder sent for appointment %d: %v", appt.ID, err)
			continue
		}
		sent++
	}
	return sent, nil
}

func (s *AppointmentService) load(id uint) (*models.Appointment, error) {
	var appt models.Appointment
	if err := s.db.Preload("Patient").Preload("Doctor").Preload("Doctor.User").
		First(&appt, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAppointmentNotFound
		}
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return &appt, nil
}

func (s *AppointmentService) participant(appt *models.Appointment, userID uint, isDoctor bool) bool {
	if appt.PatientID == userID {
		return true
	}
	return isDoctor && appt.Doctor.UserID == userID
}

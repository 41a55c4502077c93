package service

import (
	"errors"
	"fmt"
	"strings"

	"swasthsetu/models"

	"gorm.io/gorm"
)

var (
	ErrDoctorNotFound   = errors.New("doctor not found")
	ErrScheduleNotFound = errors.New("schedule not found")
	ErrInvalidSchedule  = errors.New("invalid schedule")
)

// DoctorService handles doctor profiles, weekly schedules and availability
type DoctorService struct {
	db *gorm.DB
}

// NewDoctorService constructs a doctor service
func NewDoctorService(db *gorm.DB) *DoctorService {
	return &DoctorService{db: db}
}

// DoctorFilter narrows doctor listings
type DoctorFilter struct {
	Specialty string
	Available *bool
}

// List returns doctors matching the filter, best rated first.
func (s *DoctorService) List(filter DoctorFilter) ([]models.Doctor, error) {
	q := s.db.Preload("User").Model(&models.Doctor{})

	if spec := strings.TrimSpace(filter.Specialty); spec != "" {
		q = q.Where("LOWER(specialty) LIKE ?", "%"+strings.ToLower(spec)+"%")
	}
	if filter.Available != nil {
		q = q.Where("available = ?", *filter.Available)
	}

	var doctors []models.Doctor
	if err := q.Order("rating desc, created_at desc").Find(&doctors).Error; err != nil {
		return nil, fmt.Errorf("failed to list doctors: %w", err)
	}
	return doctors, nil
}

// Get fetches a doctor by ID with the owning user preloaded.
func (s *DoctorService) Get(id uint) (*models.Doctor, error) {
	var doctor models.Doctor
	if err := s.db.Preload("User").First(&doctor, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDoctorNotFound
		}
		return nil, fmt.Errorf("failed to get doctor: %w", err)
	}
	return &doctor, nil
}

// GetByUser fetches the doctor profile owned by a user.
func (s *DoctorService) GetByUser(userID uint) (*models.Doctor, error) {
	var doctor models.Doctor
	if err := s.db.Preload("User").First(&doctor, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDoctorNotFound
		}
		return nil, fmt.Errorf("failed to get doctor: %w", err)
	}
	return &doctor, nil
}

// GetOrCreateProfile returns the doctor profile for a user, creating an empty
// one on first access.
func (s *DoctorService) GetOrCreateProfile(userID uint) (*models.Doctor, error) {
	doctor, err := s.GetByUser(userID)
	if err == nil {
		return doctor, nil
	}
	if !errors.Is(err, ErrDoctorNotFound) {
		return nil, err
	}

	created := models.Doctor{UserID: userID, Available: true}
	if err := s.db.Create(&created).Error; err != nil {
		return nil, fmt.Errorf("failed to create doctor profile: %w", err)
	}
	return s.GetByUser(userID)
}

// UpdateProfile applies profile edits to the user's doctor profile.
func (s *DoctorService) UpdateProfile(userID uint, req models.DoctorUpdate) (*models.Doctor, error) {
	doctor, err := s.GetOrCreateProfile(userID)
	if err != nil {
		return nil, err
	}

	req.Normalize()
	doctor.Specialty = req.Specialty
	doctor.ExperienceYears = req.ExperienceYears
	doctor.Fee = req.Fee
	doctor.Bio = req.Bio
	doctor.ClinicAddress = req.ClinicAddress
	if req.Available != nil {
		doctor.Available = *req.Available
	}
	if req.Latitude != nil {
		doctor.Latitude = req.Latitude
	}
	if req.Longitude != nil {
		doctor.Longitude = req.Longitude
	}

	if err := s.db.Save(doctor).Error; err != nil {
		return nil, fmt.Errorf("failed to update doctor profile: %w", err)
	}
	return doctor, nil
}

// Schedules returns a doctor's weekly schedule rows ordered by weekday.
func (s *DoctorService) Schedules(doctorID uint) ([]models.DoctorSchedule, error) {
	var rows []models.DoctorSchedule
	if err := s.db.Where("doctor_id = ?", doctorID).
		Order("day_of_week asc").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list schedules: %w", err)
	}
	return rows, nil
}

// SetSchedule creates or replaces the schedule row for one weekday.
func (s *DoctorService) SetSchedule(doctorID uint, req models.ScheduleCreate) (*models.DoctorSchedule, error) {
	req.Normalize()

	if req.DayOfWeek == nil || *req.DayOfWeek < 0 || *req.DayOfWeek > 6 {
		return nil, fmt.Errorf("%w: day_of_week must be 0 (Monday) to 6 (Sunday)", ErrInvalidSchedule)
	}
	start, err := parseClock(req.StartTime)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSchedule, err)
	}
	end, err := parseClock(req.EndTime)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSchedule, err)
	}
	if start >= end {
		return nil, fmt.Errorf("%w: start_time must be before end_time", ErrInvalidSchedule)
	}

	available := true
	if req.IsAvailable != nil {
		available = *req.IsAvailable
	}

	var row models.DoctorSchedule
	err = s.db.First(&row, "doctor_id = ? AND day_of_week = ?", doctorID, *req.DayOfWeek).Error
	switch {
	case err == nil:
		row.StartTime = req.StartTime
		row.EndTime = req.EndTime
		row.IsAvailable = available
		if err := s.db.Save(&row).Error; err != nil {
			return nil, fmt.Errorf("failed to update schedule: %w", err)
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		row = models.DoctorSchedule{
			DoctorID:    doctorID,
			DayOfWeek:   *req.DayOfWeek,
			StartTime:   req.StartTime,
			EndTime:     req.EndTime,
			IsAvailable: available,
		}
		if err := s.db.Create(&row).Error; err != nil {
			return nil, fmt.Errorf("failed to create schedule: %w", err)
		}
	default:
		return nil, fmt.Errorf("failed to look up schedule: %w", err)
	}

	return &row, nil
}

// DeleteSchedule removes one weekday schedule row owned by the doctor.
func (s *DoctorService) DeleteSchedule(doctorID, scheduleID uint) error {
	res := s.db.Where("id = ? AND doctor_id = ?", scheduleID, doctorID).
		Delete(&models.DoctorSchedule{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete schedule: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrScheduleNotFound
	}
	return nil
}

// Availability lists the free appointment slots for a doctor on one date.
type Availability struct {
	DoctorID uint     `json:"doctor_id"`
	Date     string   `json:"date"`
	Day      string   `json:"day"`
	Slots    []string `json:"available_slots"`
	Message  string   `json:"message,omitempty"`
}

// Availability computes bookable slots from the weekday schedule minus the
// doctor's active appointments on that date.
func (s *DoctorService) Availability(doctorID uint, dateStr string, slotMinutes int) (*Availability, error) {
	if _, err := s.Get(doctorID); err != nil {
		return nil, err
	}

	date, err := parseDate(strings.TrimSpace(dateStr))
	if err != nil {
		return nil, err
	}
	day := scheduleWeekday(date)

	result := &Availability{
		DoctorID: doctorID,
		Date:     date.Format(dateLayout),
		Day:      models.WeekdayName(day),
		Slots:    []string{},
	}

	var schedule models.DoctorSchedule
	err = s.db.First(&schedule, "doctor_id = ? AND day_of_week = ? AND is_available = ?", doctorID, day, true).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		result.Message = fmt.Sprintf("Doctor is not available on %s", result.Day)
		return result, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get schedule: %w", err)
	}

	start, err := parseClock(schedule.StartTime)
	if err != nil {
		return nil, fmt.Errorf("corrupt schedule start time: %w", err)
	}
	end, err := parseClock(schedule.EndTime)
	if err != nil {
		return nil, fmt.Errorf("corrupt schedule end time: %w", err)
	}

	var booked []models.Appointment
	if err := s.db.Where("doctor_id = ? AND scheduled_date = ? AND status IN ?",
		doctorID, result.Date, models.ActiveAppointmentStatuses).
		Find(&booked).Error; err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}

	if slotMinutes <= 0 {
		slotMinutes = 30
	}

	for slot := start; slot+slotMinutes <= end; slot += slotMinutes {
		free := true
		for _, appt := range booked {
			at, err := parseClock(appt.ScheduledTime)
			if err != nil {
				continue
			}
			if rangesOverlap(slot, slot+slotMinutes, at, at+slotMinutes) {
				free = false
				break
			}
		}
		if free {
			result.Slots = append(result.Slots, formatClock(slot))
		}
	}

	if len(result.Slots) == 0 && result.Message == "" {
		result.Message = "No available slots on this date"
	}
	return result, nil
}

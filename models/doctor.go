package models

import (
	"strings"
	"time"
)

// Doctor profile, one per user with the doctor role.
type Doctor struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	UserID          uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	User            User      `gorm:"foreignKey:UserID" json:"-"`
	Specialty       string    `gorm:"size:100" json:"specialty"`
	ExperienceYears int       `gorm:"default:0" json:"experience"`
	Fee             float64   `json:"fee"`
	Rating          float64   `gorm:"default:0" json:"rating"`
	ReviewsCount    int       `gorm:"default:0" json:"reviews_count"`
	Bio             string    `json:"bio"`
	Available       bool      `gorm:"default:true" json:"available"`
	ClinicAddress   string    `json:"clinic_address"`
	Latitude        *float64  `json:"latitude,omitempty"`
	Longitude       *float64  `json:"longitude,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// DoctorRead response model including user-derived fields
type DoctorRead struct {
	ID              uint      `json:"id"`
	UserID          uint      `json:"user_id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	Specialty       string    `json:"specialty"`
	ExperienceYears int       `json:"experience"`
	Fee             float64   `json:"fee"`
	Rating          float64   `json:"rating"`
	ReviewsCount    int       `json:"reviews_count"`
	Bio             string    `json:"bio"`
	Available       bool      `json:"available"`
	ClinicAddress   string    `json:"clinic_address"`
	Latitude        *float64  `json:"latitude,omitempty"`
	Longitude       *float64  `json:"longitude,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// ToRead converts a doctor (with User preloaded) to its response representation.
func (d *Doctor) ToRead() DoctorRead {
	return DoctorRead{
		ID:              d.ID,
		UserID:          d.UserID,
		Name:            d.User.FullName(),
		Email:           d.User.Email,
		Specialty:       d.Specialty,
		ExperienceYears: d.ExperienceYears,
		Fee:             d.Fee,
		Rating:          d.Rating,
		ReviewsCount:    d.ReviewsCount,
		Bio:             d.Bio,
		Available:       d.Available,
		ClinicAddress:   d.ClinicAddress,
		Latitude:        d.Latitude,
		Longitude:       d.Longitude,
		CreatedAt:       d.CreatedAt,
	}
}

// DoctorUpdate payload for a doctor editing their own profile
type DoctorUpdate struct {
	Specialty       string   `json:"specialty"`
	ExperienceYears int      `json:"experience"`
	Fee             float64  `json:"fee"`
	Bio             string   `json:"bio"`
	Available       *bool    `json:"available"`
	ClinicAddress   string   `json:"clinic_address"`
	Latitude        *float64 `json:"latitude"`
	Longitude       *float64 `json:"longitude"`
}

// Normalize trims whitespace from input fields
func (d *DoctorUpdate) Normalize() {
	d.Specialty = strings.TrimSpace(d.Specialty)
	d.Bio = strings.TrimSpace(d.Bio)
	d.ClinicAddress = strings.TrimSpace(d.ClinicAddress)
}

// DoctorSchedule is a weekly availability window. Days run 0=Monday..6=Sunday,
// times are "HH:MM". One row per doctor and weekday.
type DoctorSchedule struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	DoctorID    uint      `gorm:"uniqueIndex:idx_doctor_day;not null" json:"doctor_id"`
	DayOfWeek   int       `gorm:"uniqueIndex:idx_doctor_day;not null" json:"day_of_week"`
	StartTime   string    `gorm:"size:5;not null" json:"start_time"`
	EndTime     string    `gorm:"size:5;not null" json:"end_time"`
	IsAvailable bool      `gorm:"default:true" json:"is_available"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ScheduleCreate request payload for schedule rows
type ScheduleCreate struct {
	DayOfWeek   *int   `json:"day_of_week" binding:"required"`
	StartTime   string `json:"start_time" binding:"required"`
	EndTime     string `json:"end_time" binding:"required"`
	IsAvailable *bool  `json:"is_available"`
}

// Normalize trims whitespace from input fields
func (s *ScheduleCreate) Normalize() {
	s.StartTime = strings.TrimSpace(s.StartTime)
	s.EndTime = strings.TrimSpace(s.EndTime)
}

// WeekdayName returns the schedule day name, Monday-based like the stored values.
func WeekdayName(day int) string {
	names := []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}
	if day < 0 || day >= len(names) {
		return "Unknown"
	}
	return names[day]
}

package models

import (
	"strings"
	"time"
)

// Application statuses
const (
	ApplicationPending  = "pending"
	ApplicationApproved = "approved"
	ApplicationRejected = "rejected"
)

// DoctorApplication is a request by a user to be granted the doctor role.
type DoctorApplication struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	UserID          uint      `gorm:"index;not null" json:"user_id"`
	User            User      `gorm:"foreignKey:UserID" json:"-"`
	Specialty       string    `gorm:"size:100" json:"specialty"`
	ExperienceYears int       `json:"experience"`
	Fee             float64   `json:"fee"`
	Bio             string    `json:"bio"`
	Qualification   string    `gorm:"size:255" json:"qualification"`
	LicenseNumber   string    `gorm:"size:100" json:"license_number"`
	ClinicAddress   string    `json:"clinic_address"`
	Phone           string    `gorm:"size:15" json:"phone"`
	Status          string    `gorm:"size:20;default:'pending'" json:"status"`
	Notes           string    `json:"notes"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// DoctorApplicationCreate request payload
type DoctorApplicationCreate struct {
	Specialty       string  `json:"specialty" binding:"required"`
	ExperienceYears int     `json:"experience"`
	Fee             float64 `json:"fee"`
	Bio             string  `json:"bio"`
	Qualification   string  `json:"qualification" binding:"required"`
	LicenseNumber   string  `json:"license_number"`
	ClinicAddress   string  `json:"clinic_address"`
	Phone           string  `json:"phone"`
}

// Normalize trims whitespace from input fields
func (d *DoctorApplicationCreate) Normalize() {
	d.Specialty = strings.TrimSpace(d.Specialty)
	d.Bio = strings.TrimSpace(d.Bio)
	d.Qualification = strings.TrimSpace(d.Qualification)
	d.LicenseNumber = strings.TrimSpace(d.LicenseNumber)
	d.ClinicAddress = strings.TrimSpace(d.ClinicAddress)
	d.Phone = strings.TrimSpace(d.Phone)
}

// PharmacistApplication is a request by a user to be granted the pharmacist role.
type PharmacistApplication struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        uint      `gorm:"index;not null" json:"user_id"`
	User          User      `gorm:"foreignKey:UserID" json:"-"`
	StoreName     string    `gorm:"size:200" json:"store_name"`
	StoreAddress  string    `json:"store_address"`
	Phone         string    `gorm:"size:15" json:"phone"`
	Email         string    `json:"email"`
	LicenseNumber string    `gorm:"size:100" json:"license_number"`
	Qualification string    `gorm:"size:255" json:"qualification"`
	Status        string    `gorm:"size:20;default:'pending'" json:"status"`
	Notes         string    `json:"notes"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// PharmacistApplicationCreate request payload
type PharmacistApplicationCreate struct {
	StoreName     string `json:"store_name" binding:"required"`
	StoreAddress  string `json:"store_address" binding:"required"`
	Phone         string `json:"phone"`
	Email         string `json:"email"`
	LicenseNumber string `json:"license_number"`
	Qualification string `json:"qualification"`
}

// Normalize trims whitespace from input fields
func (p *PharmacistApplicationCreate) Normalize() {
	p.StoreName = strings.TrimSpace(p.StoreName)
	p.StoreAddress = strings.TrimSpace(p.StoreAddress)
	p.Phone = strings.TrimSpace(p.Phone)
	p.Email = strings.TrimSpace(strings.ToLower(p.Email))
	p.LicenseNumber = strings.TrimSpace(p.LicenseNumber)
	p.Qualification = strings.TrimSpace(p.Qualification)
}

// ApplicationDecision payload for approving or rejecting an application
type ApplicationDecision struct {
	Notes string `json:"notes"`
}

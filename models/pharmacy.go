package models

import (
	"strings"
	"time"
)

// Order statuses
const (
	OrderPending   = "pending"
	OrderConfirmed = "confirmed"
	OrderPreparing = "preparing"
	OrderReady     = "ready"
	OrderCompleted = "completed"
	OrderCancelled = "cancelled"
)

// Pharmacist profile, one per user with the pharmacist role.
type Pharmacist struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	User         User      `gorm:"foreignKey:UserID" json:"-"`
	StoreName    string    `gorm:"size:200" json:"store_name"`
	StoreAddress string    `json:"store_address"`
	Latitude     *float64  `json:"latitude,omitempty"`
	Longitude    *float64  `json:"longitude,omitempty"`
	Phone        string    `gorm:"size:15" json:"phone"`
	Email        string    `json:"email"`
	IsActive     bool      `gorm:"default:true" json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// PharmacistRead response model, optionally carrying a computed distance.
type PharmacistRead struct {
	ID           uint     `json:"id"`
	UserID       uint     `json:"user_id"`
	Name         string   `json:"name"`
	StoreName    string   `json:"store_name"`
	StoreAddress string   `json:"store_address"`
	Latitude     *float64 `json:"latitude,omitempty"`
	Longitude    *float64 `json:"longitude,omitempty"`
	Phone        string   `json:"phone"`
	Email        string   `json:"email"`
	IsActive     bool     `json:"is_active"`
	DistanceKM   *float64 `json:"distance_km,omitempty"`
}

// ToRead converts a pharmacist (with User preloaded) to its response representation.
func (p *Pharmacist) ToRead() PharmacistRead {
	return PharmacistRead{
		ID:           p.ID,
		UserID:       p.UserID,
		Name:         p.User.FullName(),
		StoreName:    p.StoreName,
		StoreAddress: p.StoreAddress,
		Latitude:     p.Latitude,
		Longitude:    p.Longitude,
		Phone:        p.Phone,
		Email:        p.Email,
		IsActive:     p.IsActive,
	}
}

// PharmacistUpdate payload for a pharmacist editing their own profile
type PharmacistUpdate struct {
	StoreName    string   `json:"store_name"`
	StoreAddress string   `json:"store_address"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
	Phone        string   `json:"phone"`
	Email        string   `json:"email"`
	IsActive     *bool    `json:"is_active"`
}

// Normalize trims whitespace from input fields
func (p *PharmacistUpdate) Normalize() {
	p.StoreName = strings.TrimSpace(p.StoreName)
	p.StoreAddress = strings.TrimSpace(p.StoreAddress)
	p.Phone = strings.TrimSpace(p.Phone)
	p.Email = strings.TrimSpace(strings.ToLower(p.Email))
}

// Prescription is a patient-uploaded prescription record. Only the stored
// image path is kept; upload handling lives outside this service.
type Prescription struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PatientID uint      `gorm:"index;not null" json:"patient_id"`
	Patient   User      `gorm:"foreignKey:PatientID" json:"-"`
	Title     string    `gorm:"size:200" json:"title"`
	ImagePath string    `json:"image_path"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PrescriptionCreate request payload
type PrescriptionCreate struct {
	Title     string `json:"title"`
	ImagePath string `json:"image_path"`
	Notes     string `json:"notes"`
}

// Normalize trims whitespace from input fields
func (p *PrescriptionCreate) Normalize() {
	p.Title = strings.TrimSpace(p.Title)
	p.ImagePath = strings.TrimSpace(p.ImagePath)
	p.Notes = strings.TrimSpace(p.Notes)
}

// Order is a prescription order placed with a pharmacy.
type Order struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	PatientID        uint       `gorm:"index;not null" json:"patient_id"`
	Patient          User       `gorm:"foreignKey:PatientID" json:"-"`
	PharmacistID     uint       `gorm:"index;not null" json:"pharmacist_id"`
	Pharmacist       Pharmacist `gorm:"foreignKey:PharmacistID" json:"-"`
	PrescriptionID   *uint      `json:"prescription_id,omitempty"`
	AppointmentID    *uint      `json:"appointment_id,omitempty"`
	PrescriptionText string     `json:"prescription_text"`
	Status           string     `gorm:"size:20;default:'pending'" json:"status"`
	DeliveryAddress  string     `json:"delivery_address"`
	PatientLatitude  *float64   `json:"patient_latitude,omitempty"`
	PatientLongitude *float64   `json:"patient_longitude,omitempty"`
	Notes            string     `json:"notes"`
	TotalAmount      *float64   `json:"total_amount,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// OrderRead response model with names resolved
type OrderRead struct {
	ID               uint      `json:"id"`
	PatientID        uint      `json:"patient_id"`
	PatientName      string    `json:"patient_name"`
	PharmacistID     uint      `json:"pharmacist_id"`
	StoreName        string    `json:"store_name"`
	PrescriptionID   *uint     `json:"prescription_id,omitempty"`
	AppointmentID    *uint     `json:"appointment_id,omitempty"`
	PrescriptionText string    `json:"prescription_text"`
	Status           string    `json:"status"`
	DeliveryAddress  string    `json:"delivery_address"`
	Notes            string    `json:"notes"`
	TotalAmount      *float64  `json:"total_amount,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// ToRead converts an order (with Patient and Pharmacist preloaded) to its
// response representation.
func (o *Order) ToRead() OrderRead {
	return OrderRead{
		ID:               o.ID,
		PatientID:        o.PatientID,
		PatientName:      o.Patient.FullName(),
		PharmacistID:     o.PharmacistID,
		StoreName:        o.Pharmacist.StoreName,
		PrescriptionID:   o.PrescriptionID,
		AppointmentID:    o.AppointmentID,
		PrescriptionText: o.PrescriptionText,
		Status:           o.Status,
		DeliveryAddress:  o.DeliveryAddress,
		Notes:            o.Notes,
		TotalAmount:      o.TotalAmount,
		CreatedAt:        o.CreatedAt,
	}
}

// OrderCreate request payload
type OrderCreate struct {
	PharmacistID     uint     `json:"pharmacist_id" binding:"required"`
	PrescriptionID   *uint    `json:"prescription_id"`
	AppointmentID    *uint    `json:"appointment_id"`
	PrescriptionText string   `json:"prescription_text" binding:"required"`
	DeliveryAddress  string   `json:"delivery_address"`
	PatientLatitude  *float64 `json:"patient_latitude"`
	PatientLongitude *float64 `json:"patient_longitude"`
	Notes            string   `json:"notes"`
}

// Normalize trims whitespace from input fields
func (o *OrderCreate) Normalize() {
	o.PrescriptionText = strings.TrimSpace(o.PrescriptionText)
	o.DeliveryAddress = strings.TrimSpace(o.DeliveryAddress)
	o.Notes = strings.TrimSpace(o.Notes)
}

// OrderUpdate request payload; only pharmacists advance status.
type OrderUpdate struct {
	Status      string   `json:"status"`
	Notes       string   `json:"notes"`
	TotalAmount *float64 `json:"total_amount"`
}

// ValidOrderStatus reports whether s is a known order status value.
func ValidOrderStatus(s string) bool {
	switch s {
	case OrderPending, OrderConfirmed, OrderPreparing, OrderReady, OrderCompleted, OrderCancelled:
		return true
	default:
		return false
	}
}

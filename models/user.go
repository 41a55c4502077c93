package models

import (
	"strings"
	"time"
)

// User account model. Doctors and pharmacists are regular users with the
// corresponding role flag set; the flags are never settable through public
// registration.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"uniqueIndex;not null" json:"username"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Phone        string    `gorm:"size:15" json:"phone"`
	Location     string    `json:"location"`
	Latitude     *float64  `json:"latitude,omitempty"`
	Longitude    *float64  `json:"longitude,omitempty"`
	IsDoctor     bool      `gorm:"default:false" json:"is_doctor"`
	IsPharmacist bool      `gorm:"default:false" json:"is_pharmacist"`
	IsStaff      bool      `gorm:"default:false" json:"is_staff"`
	IsActive     bool      `gorm:"default:true" json:"is_active"`
	CreatedAt    time.Time `json:"date_joined"`
	UpdatedAt    time.Time `json:"-"`
}

// FullName returns "first last" or the username when both names are blank.
func (u *User) FullName() string {
	name := strings.TrimSpace(strings.TrimSpace(u.FirstName) + " " + strings.TrimSpace(u.LastName))
	if name == "" {
		return u.Username
	}
	return name
}

// UserRead response model for user data
type UserRead struct {
	ID           uint      `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	FullName     string    `json:"full_name"`
	Phone        string    `json:"phone"`
	Location     string    `json:"location"`
	Latitude     *float64  `json:"latitude,omitempty"`
	Longitude    *float64  `json:"longitude,omitempty"`
	IsDoctor     bool      `json:"is_doctor"`
	IsPharmacist bool      `json:"is_pharmacist"`
	IsStaff      bool      `json:"is_staff"`
	IsActive     bool      `json:"is_active"`
	DateJoined   time.Time `json:"date_joined"`
}

// ToRead converts a user to its response representation.
func (u *User) ToRead() UserRead {
	return UserRead{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		FullName:     u.FullName(),
		Phone:        u.Phone,
		Location:     u.Location,
		Latitude:     u.Latitude,
		Longitude:    u.Longitude,
		IsDoctor:     u.IsDoctor,
		IsPharmacist: u.IsPharmacist,
		IsStaff:      u.IsStaff,
		IsActive:     u.IsActive,
		DateJoined:   u.CreatedAt,
	}
}

// RegisterRequest payload for public registration
type RegisterRequest struct {
	Username        string `json:"username" binding:"required"`
	Email           string `json:"email" binding:"required"`
	Password        string `json:"password" binding:"required"`
	PasswordConfirm string `json:"password_confirm" binding:"required"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Phone           string `json:"phone"`
	Location        string `json:"location"`
}

// Normalize trims whitespace from input fields
func (r *RegisterRequest) Normalize() {
	r.Username = strings.TrimSpace(r.Username)
	r.Email = strings.TrimSpace(strings.ToLower(r.Email))
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.Phone = strings.TrimSpace(r.Phone)
	r.Location = strings.TrimSpace(r.Location)
}

// LoginRequest payload. Either username or email identifies the account.
type LoginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password" binding:"required"`
}

// Normalize trims whitespace from input fields
func (r *LoginRequest) Normalize() {
	r.Username = strings.TrimSpace(r.Username)
	r.Email = strings.TrimSpace(strings.ToLower(r.Email))
}

// ProfileUpdate payload. Role flags and credentials are immutable here.
// Coordinates are pointers so an absent field leaves the stored value alone.
type ProfileUpdate struct {
	FirstName string   `json:"first_name"`
	LastName  string   `json:"last_name"`
	Phone     string   `json:"phone"`
	Location  string   `json:"location"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// Normalize trims whitespace from input fields
func (p *ProfileUpdate) Normalize() {
	p.FirstName = strings.TrimSpace(p.FirstName)
	p.LastName = strings.TrimSpace(p.LastName)
	p.Phone = strings.TrimSpace(p.Phone)
	p.Location = strings.TrimSpace(p.Location)
}

// RefreshRequest payload for token refresh
type RefreshRequest struct {
	Refresh string `json:"refresh" binding:"required"`
}

// TokenPair is the issued access/refresh token set.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

package service

import (
	"errors"
	"fmt"

	"swasthsetu/auth"
	"swasthsetu/models"

	"gorm.io/gorm"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDisabled    = errors.New("account is disabled")
	ErrUserExists         = errors.New("user already exists")
)

// UserService handles account business logic
type UserService struct {
	db *gorm.DB
}

// NewUserService constructs a user service
func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// Register creates a regular user account. Role flags are forced off: doctors
// and pharmacists are only created through the application workflow.
func (s *UserService) Register(req models.RegisterRequest) (*models.User, error) {
	req.Normalize()

	if req.Username == "" || req.Email == "" {
		return nil, fmt.Errorf("username and email are required")
	}
	if req.Password != req.PasswordConfirm {
		return nil, fmt.Errorf("passwords don't match")
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	var count int64
	if err := s.db.Model(&models.User{}).
		Where("username = ? OR email = ?", req.Username, req.Email).
		Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check existing users: %w", err)
	}
	if count > 0 {
		return nil, ErrUserExists
	}

	user := models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Phone:        req.Phone,
		Location:     req.Location,
		IsActive:     true,
	}

	if err := s.db.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return &user, nil
}

// Authenticate verifies credentials by username or email.
func (s *UserService) Authenticate(req models.LoginRequest) (*models.User, error) {
	req.Normalize()

	ident := req.Username
	column := "username = ?"
	if ident == "" {
		ident = req.Email
		column = "email = ?"
	}
	if ident == "" {
		return nil, fmt.Errorf("username or email is required")
	}

	var user models.User
	if err := s.db.First(&user, column, ident).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrAccountDisabled
	}

	return &user, nil
}

// Get fetches a user by ID
func (s *UserService) Get(id uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// UpdateProfile updates the editable profile fields.
func (s *UserService) UpdateProfile(id uint, req models.ProfileUpdate) (*models.User, error) {
	user, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	req.Normalize()
	user.FirstName = req.FirstName
	user.LastName = req.LastName
	user.Phone = req.Phone
	user.Location = req.Location
	if req.Latitude != nil {
		user.Latitude = req.Latitude
	}
	if req.Longitude != nil {
		user.Longitude = req.Longitude
	}

	if err := s.db.Save(user).Error; err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return user, nil
}

// List returns all users, newest first. Staff-only callers.
func (s *UserService) List() ([]models.User, error) {
	var users []models.User
	if err := s.db.Order("id desc").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// ToggleActive flips the active flag on an account. Staff-only callers.
func (s *UserService) ToggleActive(id uint) (*models.User, error) {
	user, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	user.IsActive = !user.IsActive
	if err := s.db.Model(user).Update("is_active", user.IsActive).Error; err != nil {
		return nil, fmt.Errorf("failed to toggle user: %w", err)
	}
	return user, nil
}

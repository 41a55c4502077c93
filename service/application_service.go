package service

import (
	"errors"
	"fmt"
	"strings"

	"swasthsetu/models"

	"gorm.io/gorm"
)

var (
	ErrApplicationNotFound = errors.New("application not found")
	ErrApplicationPending  = errors.New("an application is already pending")
	ErrApplicationDecided  = errors.New("application has already been decided")
	ErrAlreadyHasRole      = errors.New("user already has this role")
)

// ApplicationService handles doctor and pharmacist role applications
type ApplicationService struct {
	db *gorm.DB
}

// NewApplicationService constructs an application service
func NewApplicationService(db *gorm.DB) *ApplicationService {
	return &ApplicationService{db: db}
}

// ApplyDoctor files a doctor role application for a user.
func (s *ApplicationService) ApplyDoctor(userID uint, req models.DoctorApplicationCreate) (*models.DoctorApplication, error) {
	req.Normalize()

	user, err := s.loadUser(userID)
	if err != nil {
		return nil, err
	}
	if user.IsDoctor {
		return nil, ErrAlreadyHasRole
	}

	var pending int64
	if err := s.db.Model(&models.DoctorApplication{}).
		Where("user_id = ? AND status = ?", userID, models.ApplicationPending).
		Count(&pending).Error; err != nil {
		return nil, fmt.Errorf("failed to check applications: %w", err)
	}
	if pending > 0 {
		return nil, ErrApplicationPending
	}

	app := models.DoctorApplication{
		UserID:          userID,
		Specialty:       req.Specialty,
		ExperienceYears: req.ExperienceYears,
		Fee:             req.Fee,
		Bio:             req.Bio,
		Qualification:   req.Qualification,
		LicenseNumber:   req.LicenseNumber,
		ClinicAddress:   req.ClinicAddress,
		Phone:           req.Phone,
		Status:          models.ApplicationPending,
	}
	if err := s.db.Create(&app).Error; err != nil {
		return nil, fmt.Errorf("failed to create application: %w", err)
	}
	return &app, nil
}

// ApplyPharmacist files a pharmacist role application for a user.
func (s *ApplicationService) ApplyPharmacist(userID uint, req models.PharmacistApplicationCreate) (*models.PharmacistApplication, error) {
	req.Normalize()

	user, err := s.loadUser(userID)
	if err != nil {
		return nil, err
	}
	if user.IsPharmacist {
		return nil, ErrAlreadyHasRole
	}

	var pending int64
	if err := s.db.Model(&models.PharmacistApplication{}).
		Where("user_id = ? AND status = ?", userID, models.ApplicationPending).
		Count(&pending).Error; err != nil {
		return nil, fmt.Errorf("failed to check applications: %w", err)
	}
	if pending > 0 {
		return nil, ErrApplicationPending
	}

	app := models.PharmacistApplication{
		UserID:        userID,
		StoreName:     req.StoreName,
		StoreAddress:  req.StoreAddress,
		Phone:         req.Phone,
		Email:         req.Email,
		LicenseNumber: req.LicenseNumber,
		Qualification: req.Qualification,
		Status:        models.ApplicationPending,
	}
	if err := s.db.Create(&app).Error; err != nil {
		return nil, fmt.Errorf("failed to create application: %w", err)
	}
	return &app, nil
}

// ListDoctorApplications returns doctor applications, optionally by status.
func (s *ApplicationService) ListDoctorApplications(status string) ([]models.DoctorApplication, error) {
	q := s.db.Preload("User").Model(&models.DoctorApplication{})
	if status = strings.TrimSpace(status); status != "" {
		q = q.Where("status = ?", status)
	}
	var apps []models.DoctorApplication
	if err := q.Order("created_at desc").Find(&apps).Error; err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	return apps, nil
}

// ListPharmacistApplications returns pharmacist applications, optionally by status.
func (s *ApplicationService) ListPharmacistApplications(status string) ([]models.PharmacistApplication, error) {
	q := s.db.Preload("User").Model(&models.PharmacistApplication{})
	if status = strings.TrimSpace(status); status != "" {
		q = q.Where("status = ?", status)
	}
	var apps []models.PharmacistApplication
	if err := q.Order("created_at desc").Find(&apps).Error; err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	return apps, nil
}

// DecideDoctor approves or rejects a doctor application. Approval grants the
// doctor role and creates the profile from the application in one transaction.
func (s *ApplicationService) DecideDoctor(appID uint, approve bool, notes string, notify *NotificationService) (*models.DoctorApplication, error) {
	var app models.DoctorApplication
	if err := s.db.Preload("User").First(&app, appID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, fmt.Errorf("failed to get application: %w", err)
	}
	if app.Status != models.ApplicationPending {
		return nil, ErrApplicationDecided
	}

	status := models.ApplicationRejected
	if approve {
		status = models.ApplicationApproved
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&app).Updates(map[string]interface{}{
			"status": status,
			"notes":  notes,
		}).Error; err != nil {
			return fmt.Errorf("failed to update application: %w", err)
		}
		if !approve {
			return nil
		}
		if err := tx.Model(&models.User{}).
			Where("id = ?", app.UserID).
			Update("is_doctor", true).Error; err != nil {
			return fmt.Errorf("failed to grant doctor role: %w", err)
		}

		var count int64
		if err := tx.Model(&models.Doctor{}).
			Where("user_id = ?", app.UserID).
			Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check doctor profile: %w", err)
		}
		if count > 0 {
			return nil
		}
		doctor := models.Doctor{
			UserID:          app.UserID,
			Specialty:       app.Specialty,
			ExperienceYears: app.ExperienceYears,
			Fee:             app.Fee,
			Bio:             app.Bio,
			ClinicAddress:   app.ClinicAddress,
			Available:       true,
		}
		if err := tx.Create(&doctor).Error; err != nil {
			return fmt.Errorf("failed to create doctor profile: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	app.Status = status
	app.Notes = notes
	if notify != nil {
		notify.NotifyApplicationDecision(app.UserID, "doctor", status, notes)
	}
	return &app, nil
}

// DecidePharmacist approves or rejects a pharmacist application. Approval
// grants the pharmacist role and creates the store profile from the
// application in one transaction.
func (s *ApplicationService) DecidePharmacist(appID uint, approve bool, notes string, notify *NotificationService) (*models.PharmacistApplication, error) {
	var app models.PharmacistApplication
	if err := s.db.Preload("User").First(&app, appID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, fmt.Errorf("failed to get application: %w", err)
	}
	if app.Status != models.ApplicationPending {
		return nil, ErrApplicationDecided
	}

	status := models.ApplicationRejected
	if approve {
		status = models.ApplicationApproved
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&app).Updates(map[string]interface{}{
			"status": status,
			"notes":  notes,
		}).Error; err != nil {
			return fmt.Errorf("failed to update application: %w", err)
		}
		if !approve {
			return nil
		}
		if err := tx.Model(&models.User{}).
			Where("id = ?", app.UserID).
			Update("is_pharmacist", true).Error; err != nil {
			return fmt.Errorf("failed to grant pharmacist role: %w", err)
		}

		var count int64
		if err := tx.Model(&models.Pharmacist{}).
			Where("user_id = ?", app.UserID).
			Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check pharmacist profile: %w", err)
		}
		if count > 0 {
			return nil
		}
		pharmacist := models.Pharmacist{
			UserID:       app.UserID,
			StoreName:    app.StoreName,
			StoreAddress: app.StoreAddress,
			Phone:        app.Phone,
			Email:        app.Email,
			IsActive:     true,
		}
		if err := tx.Create(&pharmacist).Error; err != nil {
			return fmt.Errorf("failed to create pharmacist profile: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	app.Status = status
	app.Notes = notes
	if notify != nil {
		notify.NotifyApplicationDecision(app.UserID, "pharmacist", status, notes)
	}
	return &app, nil
}

// MyApplications returns a user's own applications of both kinds.
func (s *ApplicationService) MyApplications(userID uint) ([]models.DoctorApplication, []models.PharmacistApplication, error) {
	var doctors []models.DoctorApplication
	if err := s.db.Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&doctors).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to list doctor applications: %w", err)
	}
	var pharmacists []models.PharmacistApplication
	if err := s.db.Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&pharmacists).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to list pharmacist applications: %w", err)
	}
	return doctors, pharmacists, nil
}

func (s *ApplicationService) loadUser(id uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

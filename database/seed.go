package database

import (
	"errors"
	"fmt"
	"log"

	"swasthsetu/auth"
	"swasthsetu/models"

	"gorm.io/gorm"
)

type seedDoctor struct {
	username   string
	email      string
	firstName  string
	lastName   string
	phone      string
	location   string
	specialty  string
	experience int
	fee        float64
	rating     float64
	reviews    int
	bio        string
}

type seedPharmacist struct {
	username     string
	email        string
	firstName    string
	lastName     string
	phone        string
	storeName    string
	storeAddress string
	latitude     float64
	longitude    float64
}

var seedDoctors = []seedDoctor{
	{
		username: "dr_gurpreet", email: "gurpreet.kaur@ruralhealth.com",
		firstName: "Gurpreet", lastName: "Kaur",
		phone: "+91 98765 43210", location: "Punjab, India",
		specialty: "General Physician", experience: 12, fee: 500, rating: 4.8, reviews: 245,
		bio: "Experienced general physician with expertise in rural healthcare. Specializes in preventive medicine and chronic disease management.",
	},
	{
		username: "dr_rajinder", email: "rajinder.sharma@ruralhealth.com",
		firstName: "Rajinder", lastName: "Sharma",
		phone: "+91 98765 43211", location: "Haryana, India",
		specialty: "Pediatrician", experience: 15, fee: 600, rating: 4.9, reviews: 312,
		bio: "Pediatric specialist with extensive experience in child healthcare. Passionate about providing quality care to children in rural areas.",
	},
	{
		username: "dr_manpreet", email: "manpreet.singh@ruralhealth.com",
		firstName: "Manpreet", lastName: "Singh",
		phone: "+91 98765 43212", location: "Punjab, India",
		specialty: "Dermatologist", experience: 10, fee: 700, rating: 4.7, reviews: 189,
		bio: "Dermatology expert specializing in skin conditions common in rural areas. Provides both in-person and video consultations.",
	},
	{
		username: "dr_priya", email: "priya.sharma@ruralhealth.com",
		firstName: "Priya", lastName: "Sharma",
		phone: "+91 98765 43213", location: "Rajasthan, India",
		specialty: "Gynecologist", experience: 14, fee: 650, rating: 4.8, reviews: 278,
		bio: "Women's health specialist focused on maternal care and reproductive health in underserved communities.",
	},
}

var seedPharmacists = []seedPharmacist{
	{
		username: "pharma1", email: "pharma1@example.com",
		firstName: "Rajesh", lastName: "Kumar", phone: "9876543210",
		storeName: "City Medical Store", storeAddress: "123 Main Street, City Center, Mumbai",
		latitude: 19.0759837, longitude: 72.8776559,
	},
	{
		username: "pharma2", email: "pharma2@example.com",
		firstName: "Priya", lastName: "Sharma", phone: "9876543211",
		storeName: "Health Plus Pharmacy", storeAddress: "456 Market Road, Near Hospital, Mumbai",
		latitude: 19.0760, longitude: 72.8777,
	},
	{
		username: "pharma3", email: "pharma3@example.com",
		firstName: "Amit", lastName: "Patel", phone: "9876543212",
		storeName: "Wellness Pharmacy", storeAddress: "789 Station Road, Thane",
		latitude: 19.2183, longitude: 72.9781,
	},
}

// defaultSchedule is Monday to Friday, 9 AM to 6 PM.
var defaultSchedule = []struct {
	day   int
	start string
	end   string
}{
	{0, "09:00", "18:00"},
	{1, "09:00", "18:00"},
	{2, "09:00", "18:00"},
	{3, "09:00", "18:00"},
	{4, "09:00", "18:00"},
}

const seedPassword = "demo1234"

// Seed creates demo doctors, pharmacists, default schedules and an admin
// account. Idempotent: existing usernames are reused, never duplicated.
func Seed(db *gorm.DB) error {
	hash, err := auth.HashPassword(seedPassword)
	if err != nil {
		return fmt.Errorf("failed to hash seed password: %w", err)
	}

	if err := seedAdmin(db, hash); err != nil {
		return err
	}

	for _, d := range seedDoctors {
		user, err := getOrCreateUser(db, models.User{
			Username:     d.username,
			Email:        d.email,
			PasswordHash: hash,
			FirstName:    d.firstName,
			LastName:     d.lastName,
			Phone:        d.phone,
			Location:     d.location,
			IsDoctor:     true,
			IsActive:     true,
		})
		if err != nil {
			return err
		}

		var doctor models.Doctor
		err = db.First(&doctor, "user_id = ?", user.ID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			doctor = models.Doctor{
				UserID:          user.ID,
				Specialty:       d.specialty,
				ExperienceYears: d.experience,
				Fee:             d.fee,
				Rating:          d.rating,
				ReviewsCount:    d.reviews,
				Bio:             d.bio,
				Available:       true,
			}
			if err := db.Create(&doctor).Error; err != nil {
				return fmt.Errorf("failed to seed doctor %s: %w", d.username, err)
			}
		} else if err != nil {
			return fmt.Errorf("failed to look up doctor %s: %w", d.username, err)
		}

		if err := seedSchedules(db, doctor.ID); err != nil {
			return err
		}
	}

	for _, p := range seedPharmacists {
		user, err := getOrCreateUser(db, models.User{
			Username:     p.username,
			Email:        p.email,
			PasswordHash: hash,
			FirstName:    p.firstName,
			LastName:     p.lastName,
			Phone:        p.phone,
			IsPharmacist: true,
			IsActive:     true,
		})
		if err != nil {
			return err
		}

		var count int64
		if err := db.Model(&models.Pharmacist{}).
			Where("user_id = ?", user.ID).
			Count(&count).Error; err != nil {
			return fmt.Errorf("failed to look up pharmacist %s: %w", p.username, err)
		}
		if count > 0 {
			continue
		}

		lat, lon := p.latitude, p.longitude
		pharmacist := models.Pharmacist{
			UserID:       user.ID,
			StoreName:    p.storeName,
			StoreAddress: p.storeAddress,
			Latitude:     &lat,
			Longitude:    &lon,
			Phone:        p.phone,
			Email:        p.email,
			IsActive:     true,
		}
		if err := db.Create(&pharmacist).Error; err != nil {
			return fmt.Errorf("failed to seed pharmacist %s: %w", p.username, err)
		}
	}

	log.Printf("Seeded %d doctors and %d pharmacists (password %q)", len(seedDoctors), len(seedPharmacists), seedPassword)
	return nil
}

func seedAdmin(db *gorm.DB, hash string) error {
	_, err := getOrCreateUser(db, models.User{
		Username:     "admin",
		Email:        "admin@swasthsetu.local",
		PasswordHash: hash,
		FirstName:    "Admin",
		IsStaff:      true,
		IsActive:     true,
	})
	return err
}

func getOrCreateUser(db *gorm.DB, user models.User) (*models.User, error) {
	var existing models.User
	err := db.First(&existing, "username = ?", user.Username).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up user %s: %w", user.Username, err)
	}
	if err := db.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to seed user %s: %w", user.Username, err)
	}
	return &user, nil
}

func seedSchedules(db *gorm.DB, doctorID uint) error {
	for _, s := range defaultSchedule {
		var row models.DoctorSchedule
		err := db.First(&row, "doctor_id = ? AND day_of_week = ?", doctorID, s.day).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			row = models.DoctorSchedule{
				DoctorID:    doctorID,
				DayOfWeek:   s.day,
				StartTime:   s.start,
				EndTime:     s.end,
				IsAvailable: true,
			}
			if err := db.Create(&row).Error; err != nil {
				return fmt.Errorf("failed to seed schedule: %w", err)
			}
		case err != nil:
			return fmt.Errorf("failed to look up schedule: %w", err)
		}
	}
	return nil
}

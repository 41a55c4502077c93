package service

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"swasthsetu/models"

	"gorm.io/gorm"
)

var (
	ErrPharmacistNotFound   = errors.New("pharmacist not found")
	ErrPrescriptionNotFound = errors.New("prescription not found")
	ErrOrderNotFound        = errors.New("order not found")
	ErrOrderForbidden       = errors.New("not allowed to modify this order")
)

// PharmacyService handles pharmacist profiles, prescriptions and orders
type PharmacyService struct {
	db *gorm.DB
}

// NewPharmacyService constructs a pharmacy service
func NewPharmacyService(db *gorm.DB) *PharmacyService {
	return &PharmacyService{db: db}
}

// ListPharmacists returns all active pharmacies.
func (s *PharmacyService) ListPharmacists() ([]models.Pharmacist, error) {
	var rows []models.Pharmacist
	if err := s.db.Preload("User").
		Where("is_active = ?", true).
		Order("store_name asc").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list pharmacists: %w", err)
	}
	return rows, nil
}

// GetPharmacist fetches a pharmacist by ID.
func (s *PharmacyService) GetPharmacist(id uint) (*models.Pharmacist, error) {
	var p models.Pharmacist
	if err := s.db.Preload("User").First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPharmacistNotFound
		}
		return nil, fmt.Errorf("failed to get pharmacist: %w", err)
	}
	return &p, nil
}

// GetPharmacistByUser fetches the pharmacist profile owned by a user.
func (s *PharmacyService) GetPharmacistByUser(userID uint) (*models.Pharmacist, error) {
	var p models.Pharmacist
	if err := s.db.Preload("User").First(&p, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPharmacistNotFound
		}
		return nil, fmt.Errorf("failed to get pharmacist: %w", err)
	}
	return &p, nil
}

// GetOrCreateProfile returns the pharmacist profile for a user, creating an
// empty one on first access.
func (s *PharmacyService) GetOrCreateProfile(userID uint) (*models.Pharmacist, error) {
	p, err := s.GetPharmacistByUser(userID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, ErrPharmacistNotFound) {
		return nil, err
	}

	created := models.Pharmacist{UserID: userID, IsActive: true}
	if err := s.db.Create(&created).Error; err != nil {
		return nil, fmt.Errorf("failed to create pharmacist profile: %w", err)
	}
	return s.GetPharmacistByUser(userID)
}

// UpdateProfile applies profile edits to the user's pharmacist profile.
func (s *PharmacyService) UpdateProfile(userID uint, req models.PharmacistUpdate) (*models.Pharmacist, error) {
	p, err := s.GetOrCreateProfile(userID)
	if err != nil {
		return nil, err
	}

	req.Normalize()
	p.StoreName = req.StoreName
	p.StoreAddress = req.StoreAddress
	p.Phone = req.Phone
	p.Email = req.Email
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}
	if req.Latitude != nil {
		p.Latitude = req.Latitude
	}
	if req.Longitude != nil {
		p.Longitude = req.Longitude
	}

	if err := s.db.Save(p).Error; err != nil {
		return nil, fmt.Errorf("failed to update pharmacist profile: %w", err)
	}
	return p, nil
}

// Nearest returns active pharmacies with coordinates, closest first, with the
// distance in kilometres rounded to two decimals.
func (s *PharmacyService) Nearest(lat, lon float64) ([]models.PharmacistRead, error) {
	pharmacies, err := s.ListPharmacists()
	if err != nil {
		return nil, err
	}

	out := make([]models.PharmacistRead, 0, len(pharmacies))
	for i := range pharmacies {
		p := &pharmacies[i]
		if p.Latitude == nil || p.Longitude == nil {
			continue
		}
		read := p.ToRead()
		d := math.Round(haversineKM(lat, lon, *p.Latitude, *p.Longitude)*100) / 100
		read.DistanceKM = &d
		out = append(out, read)
	}

	sort.Slice(out, func(i, j int) bool {
		return *out[i].DistanceKM < *out[j].DistanceKM
	})
	return out, nil
}

// haversineKM computes the great-circle distance between two points in km.
func haversineKM(lat1, lon1, lat2, lon2 float64) float64 {
	const earthRadiusKM = 6371.0

	rad := func(deg float64) float64 { return deg * math.Pi / 180 }
	dLat := rad(lat2 - lat1)
	dLon := rad(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rad(lat1))*math.Cos(rad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return earthRadiusKM * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// CreatePrescription stores a prescription record for a patient.
func (s *PharmacyService) CreatePrescription(patientID uint, req models.PrescriptionCreate) (*models.Prescription, error) {
	req.Normalize()
	p := models.Prescription{
		PatientID: patientID,
		Title:     req.Title,
		ImagePath: req.ImagePath,
		Notes:     req.Notes,
	}
	if err := s.db.Create(&p).Error; err != nil {
		return nil, fmt.Errorf("failed to create prescription: %w", err)
	}
	return &p, nil
}

// ListPrescriptions returns the patient's own prescriptions, newest first.
func (s *PharmacyService) ListPrescriptions(patientID uint) ([]models.Prescription, error) {
	var rows []models.Prescription
	if err := s.db.Where("patient_id = ?", patientID).
		Order("created_at desc").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list prescriptions: %w", err)
	}
	return rows, nil
}

// DeletePrescription removes a prescription owned by the patient.
func (s *PharmacyService) DeletePrescription(patientID, id uint) error {
	res := s.db.Where("id = ? AND patient_id = ?", id, patientID).
		Delete(&models.Prescription{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete prescription: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrPrescriptionNotFound
	}
	return nil
}

// CreateOrder places an order with a pharmacy on behalf of a patient.
func (s *PharmacyService) CreateOrder(patientID uint, req models.OrderCreate) (*models.Order, error) {
	req.Normalize()

	if _, err := s.GetPharmacist(req.PharmacistID); err != nil {
		return nil, err
	}
	if req.PrescriptionID != nil {
		var count int64
		if err := s.db.Model(&models.Prescription{}).
			Where("id = ? AND patient_id = ?", *req.PrescriptionID, patientID).
			Count(&count).Error; err != nil {
			return nil, fmt.Errorf("failed to check prescription: %w", err)
		}
		if count == 0 {
			return nil, ErrPrescriptionNotFound
		}
	}

	order := models.Order{
		PatientID:        patientID,
		PharmacistID:     req.PharmacistID,
		PrescriptionID:   req.PrescriptionID,
		AppointmentID:    req.AppointmentID,
		PrescriptionText: req.PrescriptionText,
		Status:           models.OrderPending,
		DeliveryAddress:  req.DeliveryAddress,
		PatientLatitude:  req.PatientLatitude,
		PatientLongitude: req.PatientLongitude,
		Notes:            req.Notes,
	}
	if err := s.db.Create(&order).Error; err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	return s.loadOrder(order.ID)
}

// ListOrders returns orders visible to a user. Pharmacists see the orders
// placed with their store, everyone else their own orders as a patient.
func (s *PharmacyService) ListOrders(userID uint, isPharmacist bool) ([]models.Order, error) {
	q := s.db.Preload("Patient").Preload("Pharmacist").Model(&models.Order{})

	if isPharmacist {
		p, err := s.GetPharmacistByUser(userID)
		if err != nil {
			if errors.Is(err, ErrPharmacistNotFound) {
				return []models.Order{}, nil
			}
			return nil, err
		}
		q = q.Where("pharmacist_id = ?", p.ID)
	} else {
		q = q.Where("patient_id = ?", userID)
	}

	var orders []models.Order
	if err := q.Order("created_at desc").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// GetOrder fetches an order visible to the user.
func (s *PharmacyService) GetOrder(userID uint, isPharmacist bool, id uint) (*models.Order, error) {
	order, err := s.loadOrder(id)
	if err != nil {
		return nil, err
	}
	if order.PatientID == userID {
		return order, nil
	}
	if isPharmacist && order.Pharmacist.UserID == userID {
		return order, nil
	}
	return nil, ErrOrderNotFound
}

// UpdateOrder applies role-scoped edits. The pharmacist advances status and
// sets the total; the patient may only cancel while the order is pending.
func (s *PharmacyService) UpdateOrder(userID uint, isPharmacist bool, id uint, req models.OrderUpdate, notify *NotificationService) (*models.Order, error) {
	order, err := s.GetOrder(userID, isPharmacist, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	ownsAsPharmacist := isPharmacist && order.Pharmacist.UserID == userID

	if req.Status != "" {
		if !models.ValidOrderStatus(req.Status) {
			return nil, fmt.Errorf("invalid status %q", req.Status)
		}
		switch {
		case ownsAsPharmacist:
			updates["status"] = req.Status
		case order.PatientID == userID && req.Status == models.OrderCancelled:
			if order.Status != models.OrderPending {
				return nil, fmt.Errorf("%w: only pending orders can be cancelled", ErrOrderForbidden)
			}
			updates["status"] = req.Status
		default:
			return nil, ErrOrderForbidden
		}
	}
	if ownsAsPharmacist {
		if req.Notes != "" {
			updates["notes"] = req.Notes
		}
		if req.TotalAmount != nil {
			updates["total_amount"] = *req.TotalAmount
		}
	}

	if len(updates) == 0 {
		return order, nil
	}
	if err := s.db.Model(order).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update order: %w", err)
	}

	if status, ok := updates["status"]; ok && ownsAsPharmacist && notify != nil {
		notify.NotifyOrderStatus(order.PatientID, order.Pharmacist.StoreName, status.(string))
	}

	return s.loadOrder(id)
}

func (s *PharmacyService) loadOrder(id uint) (*models.Order, error) {
	var order models.Order
	if err := s.db.Preload("Patient").Preload("Pharmacist").
		First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return &order, nil
}

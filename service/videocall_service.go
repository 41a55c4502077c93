package service

import (
	"errors"
	"fmt"
	"time"

	"swasthsetu/models"

	"gorm.io/gorm"
)

var (
	ErrRoomNotFound  = errors.New("video call room not found")
	ErrRoomExists    = errors.New("room already exists for this appointment")
	ErrRoomForbidden = errors.New("not a participant of this call")
)

// VideoCallService handles signaling rooms and call participation
type VideoCallService struct {
	db *gorm.DB
}

// NewVideoCallService constructs a video call service
func NewVideoCallService(db *gorm.DB) *VideoCallService {
	return &VideoCallService{db: db}
}

// GetOrCreateRoom returns the signaling room for an appointment, creating one
// on first access. Only the appointment's patient or doctor may get it.
func (s *VideoCallService) GetOrCreateRoom(userID, appointmentID uint) (*models.VideoCallRoom, error) {
	appt, err := s.loadAppointment(appointmentID)
	if err != nil {
		return nil, err
	}
	if !s.appointmentParticipant(appt, userID) {
		return nil, ErrRoomForbidden
	}

	var room models.VideoCallRoom
	err = s.db.First(&room, "appointment_id = ?", appointmentID).Error
	if err == nil {
		return &room, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to get room: %w", err)
	}

	room = models.VideoCallRoom{
		AppointmentID: appointmentID,
		Status:        models.RoomScheduled,
	}
	if err := s.db.Create(&room).Error; err != nil {
		return nil, fmt.Errorf("failed to create room: %w", err)
	}
	return &room, nil
}

// CreateRoom explicitly creates a room and fails when one already exists.
func (s *VideoCallService) CreateRoom(userID, appointmentID uint) (*models.VideoCallRoom, error) {
	appt, err := s.loadAppointment(appointmentID)
	if err != nil {
		return nil, err
	}
	if !s.appointmentParticipant(appt, userID) {
		return nil, ErrRoomForbidden
	}

	var count int64
	if err := s.db.Model(&models.VideoCallRoom{}).
		Where("appointment_id = ?", appointmentID).
		Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check room: %w", err)
	}
	if count > 0 {
		return nil, ErrRoomExists
	}

	room := models.VideoCallRoom{
		AppointmentID: appointmentID,
		Status:        models.RoomScheduled,
	}
	if err := s.db.Create(&room).Error; err != nil {
		return nil, fmt.Errorf("failed to create room: %w", err)
	}
	return &room, nil
}

// GetRoom fetches a room by its ID or room name.
func (s *VideoCallService) GetRoom(roomID string) (*models.VideoCallRoom, error) {
	var room models.VideoCallRoom
	if err := s.db.First(&room, "id = ? OR room_name = ?", roomID, roomID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, fmt.Errorf("failed to get room: %w", err)
	}
	return &room, nil
}

// VerifyAccess checks that a user belongs to the room's appointment. Used by
// the websocket upgrade path before admitting a signaling client.
func (s *VideoCallService) VerifyAccess(userID uint, roomID string) (*models.VideoCallRoom, error) {
	room, err := s.GetRoom(roomID)
	if err != nil {
		return nil, err
	}
	appt, err := s.loadAppointment(room.AppointmentID)
	if err != nil {
		return nil, err
	}
	if !s.appointmentParticipant(appt, userID) {
		return nil, ErrRoomForbidden
	}
	return room, nil
}

// Join records a user entering a room. The first join activates the room and
// stamps its start time.
func (s *VideoCallService) Join(userID uint, roomID string) (*models.VideoCallRoom, error) {
	room, err := s.VerifyAccess(userID, roomID)
	if err != nil {
		return nil, err
	}

	var participant models.CallParticipant
	err = s.db.First(&participant, "room_id = ? AND user_id = ?", room.ID, userID).Error
	switch {
	case err == nil:
		if err := s.db.Model(&participant).Updates(map[string]interface{}{
			"is_active": true,
			"joined_at": time.Now(),
			"left_at":   nil,
		}).Error; err != nil {
			return nil, fmt.Errorf("failed to rejoin room: %w", err)
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		participant = models.CallParticipant{
			RoomID:   room.ID,
			UserID:   userID,
			JoinedAt: time.Now(),
			IsActive: true,
		}
		if err := s.db.Create(&participant).Error; err != nil {
			return nil, fmt.Errorf("failed to join room: %w", err)
		}
	default:
		return nil, fmt.Errorf("failed to look up participant: %w", err)
	}

	updates := map[string]interface{}{"status": models.RoomActive}
	if room.StartedAt == nil {
		now := time.Now()
		room.StartedAt = &now
		updates["started_at"] = now
	}
	room.Status = models.RoomActive
	if err := s.db.Model(room).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to activate room: %w", err)
	}

	return room, nil
}

// Leave records a user leaving a room. When the last active participant
// leaves, the room ends and its duration is recorded.
func (s *VideoCallService) Leave(userID uint, roomID string) (*models.VideoCallRoom, error) {
	room, err := s.GetRoom(roomID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	res := s.db.Model(&models.CallParticipant{}).
		Where("room_id = ? AND user_id = ? AND is_active = ?", room.ID, userID, true).
		Updates(map[string]interface{}{
			"is_active": false,
			"left_at":   now,
		})
	if res.Error != nil {
		return nil, fmt.Errorf("failed to leave room: %w", res.Error)
	}

	var active int64
	if err := s.db.Model(&models.CallParticipant{}).
		Where("room_id = ? AND is_active = ?", room.ID, true).
		Count(&active).Error; err != nil {
		return nil, fmt.Errorf("failed to count participants: %w", err)
	}

	if active == 0 && room.Status == models.RoomActive {
		updates := map[string]interface{}{
			"status":   models.RoomEnded,
			"ended_at": now,
		}
		if room.StartedAt != nil {
			duration := int(now.Sub(*room.StartedAt).Seconds())
			updates["duration_seconds"] = duration
			room.DurationSeconds = &duration
		}
		if err := s.db.Model(room).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to end room: %w", err)
		}
		room.Status = models.RoomEnded
		room.EndedAt = &now
	}

	return room, nil
}

// Participants returns everyone who joined a room.
func (s *VideoCallService) Participants(roomID string) ([]models.CallParticipant, error) {
	room, err := s.GetRoom(roomID)
	if err != nil {
		return nil, err
	}
	var rows []models.CallParticipant
	if err := s.db.Preload("User").
		Where("room_id = ?", room.ID).
		Order("joined_at asc").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	return rows, nil
}

func (s *VideoCallService) loadAppointment(id uint) (*models.Appointment, error) {
	var appt models.Appointment
	if err := s.db.Preload("Doctor").First(&appt, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAppointmentNotFound
		}
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return &appt, nil
}

func (s *VideoCallService) appointmentParticipant(appt *models.Appointment, userID uint) bool {
	return appt.PatientID == userID || appt.Doctor.UserID == userID
}

package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Video call room statuses
const (
	RoomScheduled = "scheduled"
	RoomActive    = "active"
	RoomEnded     = "ended"
	RoomCancelled = "cancelled"
)

// VideoCallRoom is the signaling room attached to a video appointment.
type VideoCallRoom struct {
	ID              string      `gorm:"primaryKey;size:36" json:"id"`
	AppointmentID   uint        `gorm:"uniqueIndex;not null" json:"appointment_id"`
	Appointment     Appointment `gorm:"foreignKey:AppointmentID" json:"-"`
	RoomName        string      `gorm:"uniqueIndex;size:255" json:"room_name"`
	Status          string      `gorm:"size:20;default:'scheduled'" json:"status"`
	StartedAt       *time.Time  `json:"started_at,omitempty"`
	EndedAt         *time.Time  `json:"ended_at,omitempty"`
	DurationSeconds *int        `json:"duration,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// BeforeCreate GORM hook - assign id and room name when missing
func (r *VideoCallRoom) BeforeCreate(tx *gorm.DB) error {
	if strings.TrimSpace(r.ID) == "" {
		r.ID = uuid.NewString()
	}
	if strings.TrimSpace(r.RoomName) == "" {
		r.RoomName = fmt.Sprintf("room_%d_%s", r.AppointmentID, strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	}
	return nil
}

// CallParticipant tracks who joined a room and whether they are still in it.
type CallParticipant struct {
	ID       uint          `gorm:"primaryKey" json:"id"`
	RoomID   string        `gorm:"size:36;uniqueIndex:idx_room_user;not null" json:"room_id"`
	Room     VideoCallRoom `gorm:"foreignKey:RoomID" json:"-"`
	UserID   uint          `gorm:"uniqueIndex:idx_room_user;not null" json:"user_id"`
	User     User          `gorm:"foreignKey:UserID" json:"-"`
	JoinedAt time.Time     `json:"joined_at"`
	LeftAt   *time.Time    `json:"left_at,omitempty"`
	IsActive bool          `gorm:"default:true" json:"is_active"`
}

// RoomCreateRequest payload for explicit room creation
type RoomCreateRequest struct {
	AppointmentID uint `json:"appointment_id" binding:"required"`
}

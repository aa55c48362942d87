package models

import (
	"padelbook/src/types"
	"time"

	"github.com/google/uuid"
)

// Event carries the allocation unit of truth: MaxSeats is the capacity
// ceiling and CurrentSeats caches the confirmed-participant count. The
// counter is only ever mutated through the conditional updates issued by
// the registration, cancellation and sweep paths; reads never write it.
type Event struct {
	ID           uuid.UUID         `gorm:"primarykey;type:uuid;default:gen_random_uuid()" json:"id"`
	Type         types.EventType   `gorm:"default:'training'" json:"type,omitempty"`
	Date         time.Time         `json:"date,omitempty"`
	StartTime    string            `json:"start_time,omitempty"`
	EndTime      string            `json:"end_time,omitempty"`
	Location     string            `json:"location,omitempty"`
	Level        string            `json:"level,omitempty"`
	MaxSeats     uint              `json:"max_seats"`
	CurrentSeats uint              `json:"current_seats"`
	Price        float64           `json:"price"`
	Description  *string           `json:"description,omitempty"`
	Status       types.EventStatus `gorm:"default:'scheduled'" json:"status,omitempty"`
	Slug         string            `json:"slug,omitempty"`
	CreatedBy    *uuid.UUID        `gorm:"type:uuid" json:"created_by,omitempty"`

	Creator      *User              `gorm:"foreignKey:created_by" json:"-"`
	Participants []EventParticipant `gorm:"foreignKey:event_id" json:"participants,omitempty"`

	types.Timestamps
}

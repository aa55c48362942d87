package models

import (
	"padelbook/src/types"
	"time"

	"github.com/google/uuid"
)

// EventParticipant is the per-(event,user) ledger row. At most one
// non-canceled row exists per pair; re-registration after a cancellation
// restores the same row instead of inserting a duplicate, so payment
// history keeps pointing at a stable id. QueuePosition is set only while
// the row is waiting and positions of one event's waiting rows form a
// contiguous sequence starting at 1.
type EventParticipant struct {
	ID            uuid.UUID               `gorm:"primarykey;type:uuid;default:gen_random_uuid()" json:"id"`
	EventID       uuid.UUID               `gorm:"type:uuid;index:idx_event_user,unique;index:idx_event_queue,unique,where:status = 'waiting'" json:"event_id"`
	UserID        uuid.UUID               `gorm:"type:uuid;index:idx_event_user,unique" json:"user_id"`
	Status        types.ParticipantStatus `gorm:"default:'confirmed'" json:"status,omitempty"`
	QueuePosition *int                    `gorm:"index:idx_event_queue,unique,where:status = 'waiting'" json:"queue_position,omitempty"`
	RegisteredAt  time.Time               `gorm:"autoCreateTime" json:"registered_at,omitempty"`
	CanceledAt    *time.Time              `json:"canceled_at,omitempty"`

	Event *Event `gorm:"foreignKey:event_id" json:"event,omitempty"`
	User  *User  `gorm:"foreignKey:user_id" json:"user,omitempty"`

	types.Timestamps
}

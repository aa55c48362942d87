package models

import (
	"padelbook/src/types"

	"github.com/google/uuid"
)

type User struct {
	ID               uuid.UUID              `gorm:"primarykey;type:uuid;default:gen_random_uuid()" json:"id"`
	TelegramID       int64                  `gorm:"uniqueIndex" json:"telegram_id"`
	DisplayName      string                 `json:"display_name,omitempty"`
	Username         *string                `json:"username,omitempty"`
	AvatarURL        *string                `json:"avatar_url,omitempty"`
	Level            *string                `json:"level,omitempty"`
	Role             types.UserRole         `gorm:"default:'player'" json:"role,omitempty"`
	MembershipStatus types.MembershipStatus `gorm:"default:'unpaid'" json:"membership_status,omitempty"`

	Registrations []EventParticipant `gorm:"foreignKey:user_id" json:"registrations,omitempty"`
	Payments      []Payment          `gorm:"foreignKey:user_id" json:"payments,omitempty"`

	types.Timestamps
}

package types

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"gorm.io/gorm"
)

type Timestamps struct {
	CreatedAt time.Time      `gorm:"autoCreateTime:nano" json:"created_at,omitempty"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime:nano" json:"updated_at,omitempty"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty,omitnil"`
}

type JSONB map[string]any

func (a JSONB) Value() (driver.Value, error) {
	valueString, err := json.Marshal(a)
	return string(valueString), err
}
func (a *JSONB) Scan(value any) error {
	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	return nil
}

type EventStatus string

const (
	EVENT_SCHEDULED EventStatus = "scheduled"
	EVENT_CANCELED  EventStatus = "canceled"
	EVENT_COMPLETED EventStatus = "completed"
)

type EventType string

const (
	EVENT_TRAINING   EventType = "training"
	EVENT_TOURNAMENT EventType = "tournament"
	EVENT_STRETCHING EventType = "stretching"
	EVENT_OTHER      EventType = "other"
)

type ParticipantStatus string

const (
	PARTICIPANT_CONFIRMED ParticipantStatus = "confirmed"
	PARTICIPANT_WAITING   ParticipantStatus = "waiting"
	PARTICIPANT_CANCELED  ParticipantStatus = "canceled"
)

type PaymentStatus string

const (
	PAYMENT_PENDING  PaymentStatus = "pending"
	PAYMENT_PAID     PaymentStatus = "paid"
	PAYMENT_CANCELED PaymentStatus = "canceled"
	PAYMENT_EXPIRED  PaymentStatus = "expired"
)

type UserRole string

const (
	ROLE_PLAYER    UserRole = "player"
	ROLE_ASSISTANT UserRole = "assistant"
	ROLE_OWNER     UserRole = "owner"
)

type MembershipStatus string

const (
	MEMBERSHIP_UNPAID MembershipStatus = "unpaid"
	MEMBERSHIP_PAID   MembershipStatus = "paid"
	MEMBERSHIP_PAUSE  MembershipStatus = "pause"
)

type Claims struct {
	Username   string `json:"username"`
	Role       string `json:"role"`
	TelegramID int64  `json:"telegram_id"`
	jwt.RegisteredClaims
}

type CreateEventRequestBody struct {
	Type        EventType `json:"type" binding:"required,oneof=training tournament stretching other"`
	Date        string    `json:"date" binding:"required,bookabledate"`
	StartTime   string    `json:"start_time" binding:"required"`
	EndTime     string    `json:"end_time" binding:"required"`
	Location    string    `json:"location" binding:"required"`
	Level       string    `json:"level" binding:"required"`
	MaxSeats    uint      `json:"max_seats" binding:"required,gt=0"`
	Price       float64   `json:"price" binding:"gte=0"`
	Description *string   `json:"description,omitempty"`
}

type UpdateEventRequestBody struct {
	Date        *string  `json:"date,omitempty" binding:"omitempty,bookabledate"`
	StartTime   *string  `json:"start_time,omitempty"`
	EndTime     *string  `json:"end_time,omitempty"`
	Location    *string  `json:"location,omitempty"`
	Level       *string  `json:"level,omitempty"`
	MaxSeats    *uint    `json:"max_seats,omitempty" binding:"omitempty,gt=0"`
	Price       *float64 `json:"price,omitempty" binding:"omitempty,gte=0"`
	Description *string  `json:"description,omitempty"`
}

type RegisterParticipantRequestBody struct {
	EventID string `json:"event_id" binding:"required,uuid"`
}

type CreatePaymentRequestBody struct {
	ParticipantID string `json:"participant_id" binding:"required,uuid"`
	ReturnURL     string `json:"return_url" binding:"required,url"`
}

type TelegramAuthRequestBody struct {
	TelegramID  int64   `json:"telegram_id" binding:"required"`
	DisplayName string  `json:"display_name" binding:"required"`
	Username    *string `json:"username,omitempty"`
	AvatarURL   *string `json:"avatar_url,omitempty"`
}

type SimpleRequestParams struct {
	ID string `uri:"id" binding:"required,uuid"`
}

type CancelParticipantRequestParams struct {
	EventID string `uri:"id" binding:"required,uuid"`
	UserID  string `uri:"user" binding:"required,uuid"`
}

// GatewayNotification is the inbound webhook envelope the payment gateway
// posts on payment state changes.
type GatewayNotification struct {
	Event  string               `json:"event" binding:"required"`
	Object GatewayPaymentObject `json:"object" binding:"required"`
}

type GatewayPaymentObject struct {
	ID       string            `json:"id"`
	Status   string            `json:"status"`
	Paid     bool              `json:"paid"`
	Amount   GatewayAmount     `json:"amount"`
	Metadata map[string]string `json:"metadata"`
}

type GatewayAmount struct {
	Value    string `json:"value"`
	Currency string `json:"currency"`
}

package models

import (
	"padelbook/src/types"
	"time"

	"github.com/google/uuid"
)

// Payment is the time-boxed obligation attached to a priced confirmed
// registration. One row per participant; retries and re-registrations
// reopen the row in place. Once Status is paid the row is terminal;
// a cancellation after that only raises RefundRequired for manual
// follow-up, it never rewrites the status.
type Payment struct {
	ID                uuid.UUID           `gorm:"primarykey;type:uuid;default:gen_random_uuid()" json:"id"`
	ParticipantID     uuid.UUID           `gorm:"type:uuid;uniqueIndex" json:"participant_id"`
	EventID           uuid.UUID           `gorm:"type:uuid" json:"event_id"`
	UserID            uuid.UUID           `gorm:"type:uuid" json:"user_id"`
	Amount            float64             `json:"amount"`
	Status            types.PaymentStatus `gorm:"default:'pending'" json:"status,omitempty"`
	PaymentDeadline   *time.Time          `json:"payment_deadline,omitempty"`
	PaidAt            *time.Time          `json:"paid_at,omitempty"`
	ExternalPaymentID *string             `json:"external_payment_id,omitempty"`
	CheckoutURL       *string             `json:"checkout_url,omitempty"`
	RefundRequired    bool                `json:"refund_required,omitempty"`

	Participant *EventParticipant `gorm:"foreignKey:participant_id" json:"participant,omitempty"`
	Event       *Event            `gorm:"foreignKey:event_id" json:"event,omitempty"`
	User        *User             `gorm:"foreignKey:user_id" json:"user,omitempty"`

	types.Timestamps
}

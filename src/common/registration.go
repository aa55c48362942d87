package common

import (
	"errors"
	"log"
	"time"

	"padelbook/src/db"
	"padelbook/src/models"
	"padelbook/src/types"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RegistrationResult struct {
	ParticipantID uuid.UUID               `json:"participant_id"`
	Status        types.ParticipantStatus `json:"status"`
	QueuePosition *int                    `json:"queue_position,omitempty"`
	Payment       *models.Payment         `json:"payment,omitempty"`
}

// RegisterParticipant decides confirmed-vs-waiting for one (event,user)
// pair and applies all bookkeeping in a single transaction. The event row
// is locked for the duration, which serializes concurrent registrations
// per event; the seat itself is still claimed with a conditional update
// on current_seats < max_seats and the final status is derived from that
// update's outcome, never from the pre-read counters.
func RegisterParticipant(eventID, userID uuid.UUID) (*RegistrationResult, error) {
	var result RegistrationResult
	db := db.GetDb()
	err := db.Transaction(func(tx *gorm.DB) error {
		var event models.Event
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where(&models.Event{ID: eventID}).
			First(&event).
			Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEventNotFound
			}
			return err
		}
		if event.Status != types.EVENT_SCHEDULED {
			return ErrEventNotOpen
		}

		// Look up any prior row, canceled ones included.
		var existing models.EventParticipant
		err := tx.
			Where(&models.EventParticipant{EventID: eventID, UserID: userID}).
			First(&existing).
			Error
		found := err == nil
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if found && existing.Status != types.PARTICIPANT_CANCELED {
			return ErrAlreadyRegistered
		}

		status := types.PARTICIPANT_WAITING
		claim := tx.
			Model(&models.Event{}).
			Where("id = ? AND current_seats < max_seats", eventID).
			Update("current_seats", gorm.Expr("current_seats + 1"))
		if claim.Error != nil {
			return claim.Error
		}
		if claim.RowsAffected > 0 {
			status = types.PARTICIPANT_CONFIRMED
		}

		var queuePosition *int
		if status == types.PARTICIPANT_WAITING {
			var waiting int64
			if err := tx.
				Model(&models.EventParticipant{}).
				Where(&models.EventParticipant{EventID: eventID, Status: types.PARTICIPANT_WAITING}).
				Count(&waiting).
				Error; err != nil {
				return err
			}
			position := int(waiting) + 1
			queuePosition = &position
		}

		var participant models.EventParticipant
		if found {
			// Restore the canceled row in place.
			if err := tx.
				Model(&models.EventParticipant{}).
				Where("id = ?", existing.ID).
				Updates(map[string]any{
					"status":         status,
					"queue_position": queuePosition,
					"canceled_at":    nil,
					"registered_at":  time.Now(),
				}).
				Error; err != nil {
				return err
			}
			participant = existing
			participant.Status = status
			participant.QueuePosition = queuePosition
			log.Printf("Restored registration %s for event %s\n", participant.ID, eventID)
		} else {
			participant = models.EventParticipant{
				EventID:       eventID,
				UserID:        userID,
				Status:        status,
				QueuePosition: queuePosition,
				RegisteredAt:  time.Now(),
			}
			if err := tx.Create(&participant).Error; err != nil {
				return err
			}
			log.Printf("Created registration %s for event %s\n", participant.ID, eventID)
		}

		result = RegistrationResult{
			ParticipantID: participant.ID,
			Status:        status,
			QueuePosition: queuePosition,
		}

		if event.Price > 0 && status == types.PARTICIPANT_CONFIRMED {
			payment, err := OpenPayment(tx, &participant, &event)
			if err != nil {
				return err
			}
			result.Payment = payment
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

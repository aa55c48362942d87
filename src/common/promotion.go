package common

import (
	"errors"
	"log"

	"padelbook/src/models"
	"padelbook/src/types"

	"gorm.io/gorm"
)

// promoteNextInLine moves the lowest-positioned waiting participant of an
// event into the seat that was just released. Must run inside the same
// transaction that released the seat, with the event row still locked. The
// seat is re-claimed with the same conditional update the registration path
// uses, so promotion can never overshoot capacity; a fresh payment
// obligation is opened when the event is priced. Returns the promoted row,
// or nil when the waitlist is empty.
func promoteNextInLine(tx *gorm.DB, event *models.Event) (*models.EventParticipant, error) {
	var next models.EventParticipant
	err := tx.
		Where(&models.EventParticipant{EventID: event.ID, Status: types.PARTICIPANT_WAITING}).
		Order("queue_position asc").
		First(&next).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	claim := tx.
		Model(&models.Event{}).
		Where("id = ? AND current_seats < max_seats", event.ID).
		Update("current_seats", gorm.Expr("current_seats + 1"))
	if claim.Error != nil {
		return nil, claim.Error
	}
	if claim.RowsAffected == 0 {
		return nil, nil
	}

	res := tx.
		Model(&models.EventParticipant{}).
		Where("id = ? AND status = ?", next.ID, types.PARTICIPANT_WAITING).
		Updates(map[string]any{
			"status":         types.PARTICIPANT_CONFIRMED,
			"queue_position": nil,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		// The row changed underneath us; give the claimed seat back.
		return nil, releaseSeat(tx, event.ID)
	}

	if next.QueuePosition != nil {
		if err := closeQueueGap(tx, event.ID, *next.QueuePosition); err != nil {
			return nil, err
		}
	}

	next.Status = types.PARTICIPANT_CONFIRMED
	next.QueuePosition = nil
	log.Printf("Promoted participant %s for event %s\n", next.ID, event.ID)

	if event.Price > 0 {
		if _, err := OpenPayment(tx, &next, event); err != nil {
			return nil, err
		}
	}
	return &next, nil
}

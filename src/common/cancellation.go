package common

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"padelbook/src/db"
	"padelbook/src/lib"
	"padelbook/src/models"
	"padelbook/src/types"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CancelRegistration releases one (event,user) registration: the ledger row
// is marked canceled, any open payment is closed, and a confirmed seat is
// handed to the head of the waitlist inside the same transaction. Returns
// false when there was nothing to cancel, which is how the client-side
// countdown losing the race against the server sweep stays harmless.
func CancelRegistration(eventID, userID uuid.UUID) (bool, error) {
	canceled := false
	var promoted *models.EventParticipant
	var event models.Event
	db := db.GetDb()
	err := db.Transaction(func(tx *gorm.DB) error {
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

		var participant models.EventParticipant
		err := tx.
			Where(&models.EventParticipant{EventID: eventID, UserID: userID}).
			Where("status <> ?", types.PARTICIPANT_CANCELED).
			First(&participant).
			Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		now := time.Now()
		res := tx.
			Model(&models.EventParticipant{}).
			Where("id = ? AND status <> ?", participant.ID, types.PARTICIPANT_CANCELED).
			Updates(map[string]any{
				"status":         types.PARTICIPANT_CANCELED,
				"queue_position": nil,
				"canceled_at":    now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		canceled = true

		if err := closePaymentFor(tx, participant.ID); err != nil {
			return err
		}

		switch participant.Status {
		case types.PARTICIPANT_CONFIRMED:
			if err := releaseSeat(tx, eventID); err != nil {
				return err
			}
			promoted, err = promoteNextInLine(tx, &event)
			if err != nil {
				return err
			}
		case types.PARTICIPANT_WAITING:
			if participant.QueuePosition != nil {
				if err := closeQueueGap(tx, eventID, *participant.QueuePosition); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	if promoted != nil {
		go notifyPromoted(promoted.ID, event.ID)
	}
	return canceled, nil
}

// closePaymentFor closes the participant's open payment. A paid row is left
// paid and flagged for a manual refund instead.
func closePaymentFor(tx *gorm.DB, participantID uuid.UUID) error {
	if err := tx.
		Model(&models.Payment{}).
		Where("participant_id = ? AND status = ?", participantID, types.PAYMENT_PAID).
		Update("refund_required", true).
		Error; err != nil {
		return err
	}
	return tx.
		Model(&models.Payment{}).
		Where("participant_id = ? AND status = ?", participantID, types.PAYMENT_PENDING).
		Update("status", types.PAYMENT_CANCELED).
		Error
}

// releaseSeat gives a confirmed seat back, floored at zero.
func releaseSeat(tx *gorm.DB, eventID uuid.UUID) error {
	return tx.
		Model(&models.Event{}).
		Where("id = ? AND current_seats > 0", eventID).
		Update("current_seats", gorm.Expr("current_seats - 1")).
		Error
}

// closeQueueGap shifts every waiting participant behind the vacated
// position down by one so positions stay contiguous from 1.
func closeQueueGap(tx *gorm.DB, eventID uuid.UUID, vacated int) error {
	return tx.
		Model(&models.EventParticipant{}).
		Where("event_id = ? AND status = ? AND queue_position > ?", eventID, types.PARTICIPANT_WAITING, vacated).
		Update("queue_position", gorm.Expr("queue_position - 1")).
		Error
}

func notifyPromoted(participantID, eventID uuid.UUID) {
	ctx := context.Background()
	if !lib.ClaimOnce(ctx, fmt.Sprintf("notify:promoted:%s", participantID), 24*time.Hour) {
		return
	}
	db := db.GetDb()
	var participant models.EventParticipant
	if err := db.
		Where(&models.EventParticipant{ID: participantID}).
		Preload("User").
		Preload("Event").
		First(&participant).
		Error; err != nil {
		log.Printf("Error loading participant %s for notification: %s\n", participantID, err.Error())
		return
	}
	if participant.User == nil || participant.Event == nil {
		return
	}
	msg := fmt.Sprintf("🎾 Место освободилось!\n\nВы записаны на событие %s.", participant.Event.Slug)
	if participant.Event.Price > 0 {
		msg = fmt.Sprintf("%s\n⏱ На оплату отводится 15 минут.", msg)
	}
	if err := lib.TelegramSendMessage(ctx, participant.User.TelegramID, msg); err != nil {
		log.Printf("Error sending promotion notification for %s: %s\n", participantID, err.Error())
	}
}

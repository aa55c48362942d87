package common

import (
	"errors"
	"log"
	"time"

	"padelbook/src/db"
	"padelbook/src/models"
	"padelbook/src/models/scopes"
	"padelbook/src/types"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SweepExpiredPayments expires every pending payment whose deadline passed
// before now, cancels the confirmed participant behind it, releases the
// seat and promotes from the waitlist. Stateless and safe to run
// concurrently with itself, with user cancellations and with webhook
// confirmations: every transition below is a conditional update keyed on
// the row's current state, so whichever writer lands first wins and the
// rest fall through as no-ops. Returns the number of payments expired.
func SweepExpiredPayments(now time.Time) (int, error) {
	db := db.GetDb()
	var overdue []models.Payment
	if err := db.
		Model(&models.Payment{}).
		Select("id", "participant_id", "event_id").
		Scopes(scopes.WithPendingStatus, scopes.OverdueBy(now)).
		Limit(200).
		Find(&overdue).
		Error; err != nil {
		return 0, err
	}
	if len(overdue) == 0 {
		return 0, nil
	}
	log.Printf("[sweep] Found %d overdue payments\n", len(overdue))

	count := 0
	for _, payment := range overdue {
		expired, err := expireOne(db, payment, now)
		if err != nil {
			log.Printf("[sweep] Error processing payment %s: %s\n", payment.ID, err.Error())
			continue
		}
		if expired {
			count++
		}
	}
	log.Printf("[sweep] Expired %d payments\n", count)
	return count, nil
}

// expireOne handles a single overdue payment in its own transaction so one
// poisoned row cannot stall the rest of the sweep.
func expireOne(db *gorm.DB, payment models.Payment, now time.Time) (bool, error) {
	expired := false
	var promoted *models.EventParticipant
	var event models.Event
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where(&models.Event{ID: payment.EventID}).
			First(&event).
			Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEventNotFound
			}
			return err
		}

		// Only rows still pending transition; a payment settled or canceled
		// since the scan is left alone.
		res := tx.
			Model(&models.Payment{}).
			Where("id = ? AND status = ?", payment.ID, types.PAYMENT_PENDING).
			Update("status", types.PAYMENT_EXPIRED)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		expired = true

		res = tx.
			Model(&models.EventParticipant{}).
			Where("id = ? AND status = ?", payment.ParticipantID, types.PARTICIPANT_CONFIRMED).
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

		if err := releaseSeat(tx, payment.EventID); err != nil {
			return err
		}
		var err error
		promoted, err = promoteNextInLine(tx, &event)
		return err
	})
	if err != nil {
		return false, err
	}
	if expired {
		go notifyReservationDropped(payment.ParticipantID)
	}
	if promoted != nil {
		go notifyPromoted(promoted.ID, event.ID)
	}
	return expired, nil
}

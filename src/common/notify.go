package common

import (
	"context"
	"fmt"
	"log"
	"time"

	"padelbook/src/db"
	"padelbook/src/lib"
	"padelbook/src/models"

	"github.com/google/uuid"
)

func notifyReservationDropped(participantID uuid.UUID) {
	ctx := context.Background()
	if !lib.ClaimOnce(ctx, fmt.Sprintf("notify:dropped:%s", participantID), 24*time.Hour) {
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
	msg := fmt.Sprintf("⏰ Время на оплату истекло.\n\nВаша бронь на событие %s была отменена.", participant.Event.Slug)
	if err := lib.TelegramSendMessage(ctx, participant.User.TelegramID, msg); err != nil {
		log.Printf("Error sending expiry notification for %s: %s\n", participantID, err.Error())
	}
}

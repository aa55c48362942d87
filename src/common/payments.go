package common

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"padelbook/src/config"
	"padelbook/src/db"
	"padelbook/src/lib"
	"padelbook/src/models"
	"padelbook/src/types"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OpenPayment creates the payment obligation for a priced confirmed
// registration, or reopens the participant's existing row: status back to
// pending, a fresh deadline, and any stale gateway reference cleared. A row
// that already reached paid is left untouched.
func OpenPayment(tx *gorm.DB, participant *models.EventParticipant, event *models.Event) (*models.Payment, error) {
	deadline := time.Now().Add(config.PAYMENT_WINDOW)
	var payment models.Payment
	err := tx.
		Where(&models.Payment{ParticipantID: participant.ID}).
		First(&payment).
		Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if err == nil {
		if payment.Status == types.PAYMENT_PAID {
			return &payment, nil
		}
		if err := tx.
			Model(&models.Payment{}).
			Where("id = ?", payment.ID).
			Updates(map[string]any{
				"status":              types.PAYMENT_PENDING,
				"payment_deadline":    deadline,
				"external_payment_id": nil,
				"checkout_url":        nil,
				"paid_at":             nil,
				"amount":              event.Price,
			}).
			Error; err != nil {
			return nil, err
		}
		payment.Status = types.PAYMENT_PENDING
		payment.PaymentDeadline = &deadline
		payment.ExternalPaymentID = nil
		payment.CheckoutURL = nil
		payment.PaidAt = nil
		payment.Amount = event.Price
		log.Printf("Reopened payment %s for participant %s\n", payment.ID, participant.ID)
		return &payment, nil
	}

	payment = models.Payment{
		ParticipantID:   participant.ID,
		EventID:         event.ID,
		UserID:          participant.UserID,
		Amount:          event.Price,
		Status:          types.PAYMENT_PENDING,
		PaymentDeadline: &deadline,
	}
	if err := tx.Create(&payment).Error; err != nil {
		return nil, err
	}
	log.Printf("Created payment %s for participant %s\n", payment.ID, participant.ID)
	return &payment, nil
}

// ApplyPaidStatus is the single reconciliation point for "the gateway says
// this payment succeeded". Both the webhook push and the manual poll land
// here, and so does the admin mark-paid action. Only pending rows
// transition; a second application is a no-op, so the caller can safely be
// beaten by the other path. Money arriving for a row the sweep or a
// cancellation already closed flags the row for a manual refund instead of
// resurrecting the seat.
func ApplyPaidStatus(paymentID uuid.UUID, externalID *string) (bool, error) {
	changed := false
	db := db.GetDb()
	err := db.Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		updates := map[string]any{
			"status":  types.PAYMENT_PAID,
			"paid_at": now,
		}
		if externalID != nil {
			updates["external_payment_id"] = *externalID
		}
		res := tx.
			Model(&models.Payment{}).
			Where("id = ? AND status = ?", paymentID, types.PAYMENT_PENDING).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			changed = true
			return nil
		}

		var payment models.Payment
		if err := tx.
			Where(&models.Payment{ID: paymentID}).
			First(&payment).
			Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPaymentNotFound
			}
			return err
		}
		switch payment.Status {
		case types.PAYMENT_PAID:
			// Replay of an already-applied confirmation.
			return nil
		case types.PAYMENT_EXPIRED, types.PAYMENT_CANCELED:
			log.Printf("Payment %s settled after %s; flagging for refund\n", paymentID, payment.Status)
			return tx.
				Model(&models.Payment{}).
				Where("id = ?", paymentID).
				Update("refund_required", true).
				Error
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	if changed {
		go notifyPaymentReceived(paymentID)
	}
	return changed, nil
}

// ApplyCanceledStatus reconciles a gateway-side cancellation. Paid rows are
// terminal and are never rewritten.
func ApplyCanceledStatus(externalID string) error {
	db := db.GetDb()
	return db.
		Model(&models.Payment{}).
		Where("external_payment_id = ? AND status = ?", externalID, types.PAYMENT_PENDING).
		Update("status", types.PAYMENT_CANCELED).
		Error
}

// CreateCheckout asks the gateway for a hosted checkout page for a pending
// payment and stores the returned reference on the row. Retried calls simply
// replace the stale reference.
func CreateCheckout(ctx context.Context, paymentID uuid.UUID, returnURL string) (*models.Payment, error) {
	db := db.GetDb()
	var payment models.Payment
	if err := db.
		Where(&models.Payment{ID: paymentID}).
		Preload("Event").
		First(&payment).
		Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	if payment.Status != types.PAYMENT_PENDING {
		return nil, fmt.Errorf("payment %s is %s, not pending", paymentID, payment.Status)
	}

	description := fmt.Sprintf("Оплата: %s", payment.Event.Slug)
	yk := lib.GetYooKassaClient()
	created, err := yk.CreatePayment(ctx, payment.Amount, description, map[string]string{
		"event_id":       payment.EventID.String(),
		"participant_id": payment.ParticipantID.String(),
		"user_id":        payment.UserID.String(),
	}, returnURL)
	if err != nil {
		return nil, ErrExternalService
	}

	var checkoutURL *string
	if created.Confirmation != nil && created.Confirmation.ConfirmationURL != "" {
		checkoutURL = &created.Confirmation.ConfirmationURL
	}
	if err := db.
		Model(&models.Payment{}).
		Where("id = ?", payment.ID).
		Updates(map[string]any{
			"external_payment_id": created.ID,
			"checkout_url":        checkoutURL,
		}).
		Error; err != nil {
		return nil, err
	}
	payment.ExternalPaymentID = &created.ID
	payment.CheckoutURL = checkoutURL
	return &payment, nil
}

// FindPaymentForNotification locates the local payment a gateway
// notification refers to, by the stored external id first and by the
// participant id carried in the gateway metadata as a fallback. The
// fallback covers confirmations arriving before CreateCheckout managed to
// persist the external reference.
func FindPaymentForNotification(externalID, participantID string) (*models.Payment, error) {
	db := db.GetDb()
	var payment models.Payment
	err := db.
		Where("external_payment_id = ?", externalID).
		First(&payment).
		Error
	if err == nil {
		return &payment, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	pid, err := uuid.Parse(participantID)
	if err != nil {
		return nil, ErrPaymentNotFound
	}
	if err := db.
		Where(&models.Payment{ParticipantID: pid}).
		First(&payment).
		Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	return &payment, nil
}

// CheckoutForParticipant resolves the participant's payment row, checks it
// belongs to the requesting user, and opens a gateway checkout for it.
func CheckoutForParticipant(ctx context.Context, participantID, userID uuid.UUID, returnURL string) (*models.Payment, error) {
	db := db.GetDb()
	var payment models.Payment
	if err := db.
		Where(&models.Payment{ParticipantID: participantID}).
		First(&payment).
		Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	if payment.UserID != userID {
		return nil, ErrPaymentNotFound
	}
	return CreateCheckout(ctx, payment.ID, returnURL)
}

// CheckPayment polls the gateway for a payment's state and reconciles the
// local row through the same transition used by the webhook.
func CheckPayment(ctx context.Context, paymentID uuid.UUID) (*models.Payment, error) {
	db := db.GetDb()
	var payment models.Payment
	if err := db.
		Where(&models.Payment{ID: paymentID}).
		First(&payment).
		Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	if payment.ExternalPaymentID == nil {
		return &payment, nil
	}

	yk := lib.GetYooKassaClient()
	remote, err := yk.GetPayment(ctx, *payment.ExternalPaymentID)
	if err != nil {
		return nil, ErrExternalService
	}
	switch {
	case remote.Paid || remote.Status == "succeeded":
		if _, err := ApplyPaidStatus(payment.ID, payment.ExternalPaymentID); err != nil {
			return nil, err
		}
	case remote.Status == "canceled":
		if err := ApplyCanceledStatus(*payment.ExternalPaymentID); err != nil {
			return nil, err
		}
	}

	if err := db.
		Where(&models.Payment{ID: paymentID}).
		First(&payment).
		Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

func notifyPaymentReceived(paymentID uuid.UUID) {
	ctx := context.Background()
	if !lib.ClaimOnce(ctx, fmt.Sprintf("notify:paid:%s", paymentID), 24*time.Hour) {
		return
	}
	db := db.GetDb()
	var payment models.Payment
	if err := db.
		Where(&models.Payment{ID: paymentID}).
		Preload("User").
		First(&payment).
		Error; err != nil {
		log.Printf("Error loading payment %s for notification: %s\n", paymentID, err.Error())
		return
	}
	if payment.User == nil {
		return
	}
	msg := fmt.Sprintf("✅ Оплата получена!\n\n💰 Сумма: %.2f ₽\n\nСпасибо за оплату, %s!", payment.Amount, payment.User.DisplayName)
	if err := lib.TelegramSendMessage(ctx, payment.User.TelegramID, msg); err != nil {
		log.Printf("Error sending payment notification for %s: %s\n", paymentID, err.Error())
	}
}

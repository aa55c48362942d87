package common

import (
	"testing"
	"time"

	"padelbook/src/models"
	"padelbook/src/types"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestPromoteNextInLineOpensPaymentForPricedEvent(t *testing.T) {
	gormDB, mock := newMockDB()
	eventId := uuid.New()
	nextId := uuid.New()
	paymentId := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "event_participants"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "event_id", "user_id", "status", "queue_position"}).
			AddRow(nextId.String(), eventId.String(), uuid.New().String(), "waiting", 1))
	mock.ExpectExec(`UPDATE "events" SET "current_seats"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "event_participants" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "event_participants" SET "queue_position"`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	// No prior payment row, so a fresh obligation is created.
	mock.ExpectQuery(`SELECT (.+) FROM "payments"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(`INSERT INTO "payments"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(paymentId.String()))
	mock.ExpectCommit()

	event := models.Event{ID: eventId, MaxSeats: 2, CurrentSeats: 1, Price: 1500}
	var promoted *models.EventParticipant
	err := gormDB.Transaction(func(tx *gorm.DB) error {
		var err error
		promoted, err = promoteNextInLine(tx, &event)
		return err
	})
	assert.Nil(t, err)
	assert.NotNil(t, promoted)
	assert.Equal(t, nextId, promoted.ID)
	assert.Equal(t, types.PARTICIPANT_CONFIRMED, promoted.Status)
	assert.Nil(t, promoted.QueuePosition)
	assert.Nil(t, mock.ExpectationsWereMet())
}

func TestOpenPaymentReopensWithFreshDeadline(t *testing.T) {
	gormDB, mock := newMockDB()
	eventId := uuid.New()
	participantId := uuid.New()
	paymentId := uuid.New()
	staleDeadline := time.Now().Add(-time.Hour)

	mock.ExpectBegin()
	// A canceled row from an earlier registration is reopened in place.
	mock.ExpectQuery(`SELECT (.+) FROM "payments"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "participant_id", "status", "payment_deadline", "amount"}).
			AddRow(paymentId.String(), participantId.String(), "canceled", staleDeadline, 1000.0))
	mock.ExpectExec(`UPDATE "payments" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	event := models.Event{ID: eventId, Price: 1500}
	participant := models.EventParticipant{ID: participantId, EventID: eventId, UserID: uuid.New()}
	var payment *models.Payment
	err := gormDB.Transaction(func(tx *gorm.DB) error {
		var err error
		payment, err = OpenPayment(tx, &participant, &event)
		return err
	})
	assert.Nil(t, err)
	assert.Equal(t, paymentId, payment.ID)
	assert.Equal(t, types.PAYMENT_PENDING, payment.Status)
	assert.Equal(t, 1500.0, payment.Amount)
	assert.NotNil(t, payment.PaymentDeadline)
	assert.True(t, payment.PaymentDeadline.After(time.Now()), "reopened payment must get a fresh deadline")
	assert.Nil(t, payment.ExternalPaymentID)
	assert.Nil(t, payment.PaidAt)
	assert.Nil(t, mock.ExpectationsWereMet())
}

func TestOpenPaymentLeavesPaidRowAlone(t *testing.T) {
	gormDB, mock := newMockDB()
	participantId := uuid.New()
	paymentId := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "payments"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "participant_id", "status", "amount"}).
			AddRow(paymentId.String(), participantId.String(), "paid", 1000.0))
	mock.ExpectCommit()

	event := models.Event{ID: uuid.New(), Price: 1500}
	participant := models.EventParticipant{ID: participantId, EventID: event.ID, UserID: uuid.New()}
	var payment *models.Payment
	err := gormDB.Transaction(func(tx *gorm.DB) error {
		var err error
		payment, err = OpenPayment(tx, &participant, &event)
		return err
	})
	assert.Nil(t, err)
	assert.Equal(t, types.PAYMENT_PAID, payment.Status)
	assert.Equal(t, 1000.0, payment.Amount)
	assert.Nil(t, mock.ExpectationsWereMet())
}

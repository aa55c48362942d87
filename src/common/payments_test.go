package common

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestApplyPaidStatusTransitionsPending(t *testing.T) {
	_, mock := newMockDB()
	paymentId := uuid.New()
	externalId := "yk-22e12f66"

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "payments" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	// The notification goroutine loads the payment after commit; an empty
	// result stops it before it reaches the bot API.
	mock.ExpectQuery(`SELECT (.+) FROM "payments"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	changed, err := ApplyPaidStatus(paymentId, &externalId)
	assert.Nil(t, err)
	assert.True(t, changed)

	time.Sleep(50 * time.Millisecond)
	assert.Nil(t, mock.ExpectationsWereMet())
}

func TestApplyPaidStatusReplayIsNoop(t *testing.T) {
	_, mock := newMockDB()
	paymentId := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "payments" SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT (.+) FROM "payments"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "status"}).
			AddRow(paymentId.String(), "paid"))
	mock.ExpectCommit()

	changed, err := ApplyPaidStatus(paymentId, nil)
	assert.Nil(t, err)
	assert.False(t, changed)
	assert.Nil(t, mock.ExpectationsWereMet())
}

func TestApplyPaidStatusAfterExpiryFlagsRefund(t *testing.T) {
	_, mock := newMockDB()
	paymentId := uuid.New()
	externalId := "yk-8a01d9c4"

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "payments" SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT (.+) FROM "payments"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "status"}).
			AddRow(paymentId.String(), "expired"))
	mock.ExpectExec(`UPDATE "payments" SET "refund_required"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	changed, err := ApplyPaidStatus(paymentId, &externalId)
	assert.Nil(t, err)
	assert.False(t, changed)
	assert.Nil(t, mock.ExpectationsWereMet())
}

func TestApplyPaidStatusUnknownPayment(t *testing.T) {
	_, mock := newMockDB()
	paymentId := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "payments" SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT (.+) FROM "payments"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	changed, err := ApplyPaidStatus(paymentId, nil)
	assert.False(t, changed)
	assert.ErrorIs(t, err, ErrPaymentNotFound)
	assert.Nil(t, mock.ExpectationsWereMet())
}

func TestApplyCanceledStatusLeavesPaidAlone(t *testing.T) {
	_, mock := newMockDB()

	// The update is keyed on pending status; a paid row matches nothing.
	mock.ExpectExec(`UPDATE "payments" SET "status"`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := ApplyCanceledStatus("yk-5507bb19")
	assert.Nil(t, err)
	assert.Nil(t, mock.ExpectationsWereMet())
}

func TestFindPaymentForNotificationFallsBackToMetadata(t *testing.T) {
	_, mock := newMockDB()
	paymentId := uuid.New()
	participantId := uuid.New()

	mock.ExpectQuery(`SELECT (.+) FROM "payments"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(`SELECT (.+) FROM "payments"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "participant_id"}).
			AddRow(paymentId.String(), participantId.String()))

	payment, err := FindPaymentForNotification("yk-unseen", participantId.String())
	assert.Nil(t, err)
	assert.Equal(t, paymentId, payment.ID)
	assert.Nil(t, mock.ExpectationsWereMet())
}

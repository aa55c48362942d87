package common

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestSweepExpiredPaymentsNothingOverdue(t *testing.T) {
	_, mock := newMockDB()

	mock.ExpectQuery(`SELECT (.+) FROM "payments"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "participant_id", "event_id"}))

	count, err := SweepExpiredPayments(time.Now())
	assert.Nil(t, err)
	assert.Equal(t, 0, count)
	assert.Nil(t, mock.ExpectationsWereMet())
}

func TestSweepExpiredPaymentsReleasesSeat(t *testing.T) {
	_, mock := newMockDB()
	paymentId := uuid.New()
	participantId := uuid.New()
	eventId := uuid.New()

	mock.ExpectQuery(`SELECT (.+) FROM "payments"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "participant_id", "event_id"}).
			AddRow(paymentId.String(), participantId.String(), eventId.String()))

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "events"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "status", "max_seats", "current_seats", "price"}).
			AddRow(eventId.String(), "scheduled", 4, 4, 1500.0))
	mock.ExpectExec(`UPDATE "payments" SET "status"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "event_participants" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "events" SET "current_seats"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	// Empty waitlist, nobody to promote.
	mock.ExpectQuery(`SELECT (.+) FROM "event_participants"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectCommit()
	// Expiry notification goroutine; an empty result stops it early.
	mock.ExpectQuery(`SELECT (.+) FROM "event_participants"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	count, err := SweepExpiredPayments(time.Now())
	assert.Nil(t, err)
	assert.Equal(t, 1, count)

	time.Sleep(50 * time.Millisecond)
	assert.Nil(t, mock.ExpectationsWereMet())
}

func TestSweepExpiredPaymentsSkipsSettledRow(t *testing.T) {
	_, mock := newMockDB()
	paymentId := uuid.New()
	participantId := uuid.New()
	eventId := uuid.New()

	mock.ExpectQuery(`SELECT (.+) FROM "payments"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "participant_id", "event_id"}).
			AddRow(paymentId.String(), participantId.String(), eventId.String()))

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "events"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "status", "max_seats", "current_seats", "price"}).
			AddRow(eventId.String(), "scheduled", 4, 4, 1500.0))
	// A webhook settled the payment between the scan and the lock.
	mock.ExpectExec(`UPDATE "payments" SET "status"`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	count, err := SweepExpiredPayments(time.Now())
	assert.Nil(t, err)
	assert.Equal(t, 0, count)
	assert.Nil(t, mock.ExpectationsWereMet())
}

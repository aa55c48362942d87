package utils

import (
	"log"
	"testing"

	"padelbook/src/db"
	"padelbook/src/types"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockDB() (*gorm.DB, sqlmock.Sqlmock) {
	conn, mock, err := sqlmock.New()
	if err != nil {
		log.Fatalf("An error '%s' was not expected when opening a stub database connection", err)
	}

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: conn,
	}), &gorm.Config{})
	if err != nil {
		log.Fatalf("An error '%s' was not expected when opening gorm database", err)
	}

	db.NewDB(gormDB)
	return gormDB, mock
}

func TestCreateNewEventRejectsBadDate(t *testing.T) {
	newMockDB()

	body := types.CreateEventRequestBody{
		Type:      types.EVENT_TRAINING,
		Date:      "01.09.2026",
		StartTime: "19:00",
		EndTime:   "20:30",
		Location:  "Корт 1",
		Level:     "beginner",
		MaxSeats:  4,
	}
	id, err := CreateNewEvent(&body, uuid.New())
	assert.NotNil(t, err)
	assert.Equal(t, uuid.Nil, id)
}

func TestUpdateEventKeepsCapacityAboveTakenSeats(t *testing.T) {
	_, mock := newMockDB()
	eventId := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "events"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "status", "max_seats", "current_seats"}).
			AddRow(eventId.String(), "scheduled", 4, 3))
	mock.ExpectRollback()

	seats := uint(2)
	err := UpdateEvent(eventId, &types.UpdateEventRequestBody{MaxSeats: &seats})
	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "max_seats")
	assert.Nil(t, mock.ExpectationsWereMet())
}

func TestUpdateEventWithNothingToChange(t *testing.T) {
	_, mock := newMockDB()
	eventId := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "events"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "status", "max_seats", "current_seats"}).
			AddRow(eventId.String(), "scheduled", 4, 3))
	mock.ExpectCommit()

	err := UpdateEvent(eventId, &types.UpdateEventRequestBody{})
	assert.Nil(t, err)
	assert.Nil(t, mock.ExpectationsWereMet())
}

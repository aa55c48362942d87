package utils

import (
	"errors"
	"fmt"
	"log"
	"time"

	"padelbook/src/config"
	"padelbook/src/db"
	"padelbook/src/models"
	"padelbook/src/types"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func CreateNewEvent(params *types.CreateEventRequestBody, creatorId uuid.UUID) (uuid.UUID, error) {
	date, err := time.Parse(config.DATE_PARSE_FORMAT, params.Date)
	if err != nil {
		log.Printf("Error parsing date: %s\n", err.Error())
		return uuid.Nil, err
	}

	event := models.Event{
		Type:        params.Type,
		Date:        date,
		StartTime:   params.StartTime,
		EndTime:     params.EndTime,
		Location:    params.Location,
		Level:       params.Level,
		MaxSeats:    params.MaxSeats,
		Price:       params.Price,
		Description: params.Description,
		Status:      types.EVENT_SCHEDULED,
		Slug:        slug.Make(fmt.Sprintf("%s %s %s", params.Type, params.Date, params.StartTime)),
		CreatedBy:   &creatorId,
	}

	db := db.GetDb()
	err = db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&event).Error
	})
	if err != nil {
		return uuid.Nil, err
	}
	return event.ID, nil
}

// UpdateEvent applies a partial edit. The capacity ceiling can never drop
// below the seats already handed out; shrinking past that would break the
// allocation invariant for everyone already confirmed.
func UpdateEvent(id uuid.UUID, params *types.UpdateEventRequestBody) error {
	db := db.GetDb()
	return db.Transaction(func(tx *gorm.DB) error {
		var event models.Event
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where(&models.Event{ID: id}).
			First(&event).
			Error; err != nil {
			return err
		}

		updates := map[string]any{}
		if params.Date != nil {
			date, err := time.Parse(config.DATE_PARSE_FORMAT, *params.Date)
			if err != nil {
				return err
			}
			updates["date"] = date
		}
		if params.StartTime != nil {
			updates["start_time"] = *params.StartTime
		}
		if params.EndTime != nil {
			updates["end_time"] = *params.EndTime
		}
		if params.Location != nil {
			updates["location"] = *params.Location
		}
		if params.Level != nil {
			updates["level"] = *params.Level
		}
		if params.MaxSeats != nil {
			if *params.MaxSeats < event.CurrentSeats {
				return errors.New("max_seats cannot be lower than seats already taken")
			}
			updates["max_seats"] = *params.MaxSeats
		}
		if params.Price != nil {
			updates["price"] = *params.Price
		}
		if params.Description != nil {
			updates["description"] = *params.Description
		}
		if len(updates) == 0 {
			return nil
		}
		return tx.
			Model(&models.Event{}).
			Where("id = ?", id).
			Updates(updates).
			Error
	})
}

func UpdateEventStatus(id uuid.UUID, newStatus types.EventStatus) error {
	db := db.GetDb()
	return db.Transaction(func(tx *gorm.DB) error {
		res := tx.
			Model(&models.Event{}).
			Where("id = ?", id).
			Update("status", newStatus)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func GetUpcomingEvents() ([]models.Event, error) {
	var events []models.Event
	db := db.GetDb()
	today := time.Now().Truncate(24 * time.Hour)
	err := db.
		Model(&models.Event{}).
		Where("status = ?", types.EVENT_SCHEDULED).
		Where("date >= ?", today).
		Order("date asc").
		Limit(50).
		Find(&events).
		Error
	return events, err
}

func GetEventWithParticipants(id uuid.UUID) (*models.Event, error) {
	var event models.Event
	db := db.GetDb()
	err := db.
		Model(&models.Event{}).
		Where(&models.Event{ID: id}).
		Preload("Participants", func(tx *gorm.DB) *gorm.DB {
			return tx.Where("status <> ?", types.PARTICIPANT_CANCELED).Order("registered_at asc")
		}).
		Preload("Participants.User").
		First(&event).
		Error
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func GetOwnRegistrations(userId uuid.UUID) ([]models.EventParticipant, error) {
	var registrations []models.EventParticipant
	db := db.GetDb()
	err := db.
		Model(&models.EventParticipant{}).
		Where(&models.EventParticipant{UserID: userId}).
		Where("status <> ?", types.PARTICIPANT_CANCELED).
		Preload("Event").
		Order("registered_at desc").
		Limit(100).
		Find(&registrations).
		Error
	return registrations, err
}

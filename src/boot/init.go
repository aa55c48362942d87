package boot

import (
	"log"
	"time"

	"padelbook/src/common"
	"padelbook/src/config"
	"padelbook/src/db"
	"padelbook/src/lib"
	"padelbook/src/models"

	"gorm.io/gorm"
)

func InitDb() *gorm.DB {
	db := db.GetDb()

	err := db.AutoMigrate(
		&models.User{},
		&models.Event{},
		&models.EventParticipant{},
		&models.Payment{},
	)
	if err != nil {
		log.Fatalf("error migration: %s", err.Error())
	}

	return db
}

// InitScheduler starts the payment deadline sweep. The sweep interval is a
// fraction of the payment window so an overdue payment is never left
// hanging for long after its deadline.
func InitScheduler() {
	id, err := lib.CreateCronJob(func() {
		expired, err := common.SweepExpiredPayments(time.Now())
		if err != nil {
			log.Printf("Error sweeping expired payments: %s\n", err.Error())
			return
		}
		if expired > 0 {
			log.Printf("Sweep released %d expired reservations\n", expired)
		}
	}, config.SWEEP_INTERVAL)
	if err != nil {
		log.Printf("Error running job: %s\n", err.Error())
		return
	}
	log.Printf("Job ID: %s\n", *id)

	sched, err := lib.GetScheduler()
	if err != nil {
		return
	}
	sched.Start()
}

func StopScheduler() {
	sched, err := lib.GetScheduler()
	if err != nil {
		return
	}
	if err := sched.Shutdown(); err != nil {
		log.Printf("Error shutting down scheduler: %s\n", err.Error())
	}
}

package boot

import (
	"log"
	"os"
	"time"

	"stays/src/common"
	"stays/src/db"
	"stays/src/lib"
	"stays/src/models"

	"gorm.io/gorm"
)

func InitDb() *gorm.DB {
	db := db.GetDb()

	err := db.AutoMigrate(
		&models.User{},
		&models.Listing{},
		&models.Booking{},
		&models.Review{},
	)
	if err != nil {
		log.Fatalf("error migration: %s", err.Error())
	}

	return db
}

// InitScheduler wires the hourly payment expiry sweep. Tests drive the
// sweep directly, so the scheduler stays off there.
func InitScheduler() {
	if os.Getenv("API_ENV") == "test" {
		return
	}
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("An error has occurred. Check logs for info")
		return
	}
	jobID, err := lib.CreateCronJob(common.RunPaymentExpirySweep, time.Hour)
	if err != nil {
		log.Printf("Error creating sweep job: %s\n", err.Error())
		return
	}
	log.Printf("Payment expiry sweep scheduled: %s\n", *jobID)
	sched.Start()
}

func StopScheduler() {
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("Error retrieving Scheduler. Check logs for info")
		return
	}
	err = sched.Shutdown()
	if err != nil {
		log.Println("An error has occurred while shutting stopping Scheduler. Check logs for info")
		return
	}
}

package database

import (
	"log"

	"inkwell/models"

	"gorm.io/gorm"
)

func RunMigrations(db *gorm.DB) error {
	log.Println("Running database migrations...")

	err := db.AutoMigrate(
		&models.Entry{},
		&models.Category{},
		&models.Image{},
		&models.Tag{},
		&models.EntryTag{},
	)

	if err != nil {
		log.Printf("Error running migrations: %v", err)
		return err
	}

	log.Println("Migrations completed successfully")
	return nil
}

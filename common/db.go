package common

import (
	"log"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// ConnectDb opens the sqlite database at path. Returns nil when the
// path is empty or the database cannot be opened; callers decide
// whether that is fatal.
func ConnectDb(path string) *gorm.DB {
	if path == "" {
		log.Println("database path not set")
		return nil
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		log.Println("Error opening sqlite db: " + err.Error())
		return nil
	}
	log.Println("opened sqlite db at:", path)
	return db
}

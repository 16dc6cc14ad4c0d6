package common

import (
	"log"
	"os"
	"path/filepath"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const defaultDbFile = "data/filmkiste.db"

// ConnectDb opens the sqlite database configured via the sqlite_db env var.
// Without a configured location a default file under the data directory is
// created on demand. Returns nil when the database cannot be opened; the
// caller must treat that as fatal.
func ConnectDb() *gorm.DB {
	dbFile := os.Getenv("sqlite_db")
	if dbFile == "" {
		dbFile = defaultDbFile
		if err := os.MkdirAll(filepath.Dir(dbFile), 0755); err != nil {
			log.Println("Error creating data directory: " + err.Error())
			return nil
		}
	}

	return OpenDb(dbFile)
}

// OpenDb opens the sqlite database at the given path with foreign key
// enforcement enabled.
func OpenDb(dbFile string) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(dbFile+"?_foreign_keys=on"), &gorm.Config{})
	if err != nil {
		log.Println("Error opening sqlite db: " + err.Error())
		return nil
	}
	log.Println("opened sqlite db at:", dbFile)
	return db
}

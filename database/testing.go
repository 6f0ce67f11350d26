package database

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"lms/config"
)

// OpenInMemory returns a migrated, private in-memory sqlite database.
func OpenInMemory() (*gorm.DB, error) {
	db, err := Open(config.DBConfig{
		Driver: "sqlite",
		DSN:    fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
	})
	if err != nil {
		return nil, err
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}
